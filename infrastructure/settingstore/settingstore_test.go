package settingstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsRoundTrip(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "settings.db"))
	ctx := context.Background()

	saved := Settings{
		SimulatorMaxAgeMs:   30000,
		ProjectMaxAgeMs:     600000,
		PersistenceEnabled:  true,
		PersistenceCacheDir: "storages/cache",
	}
	require.NoError(t, store.Save(ctx, saved))

	loaded, err := store.Load(ctx, Settings{SimulatorMaxAgeMs: 60000})
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestSettingsLoadKeepsDefaultsWhenEmpty(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "settings.db"))

	defaults := Settings{SimulatorMaxAgeMs: 60000, ProjectMaxAgeMs: 300000}
	loaded, err := store.Load(context.Background(), defaults)
	require.NoError(t, err)
	assert.Equal(t, defaults, loaded)
}

func TestSettingsSaveReportsFailure(t *testing.T) {
	// A database path inside a directory that does not exist cannot be
	// created; Save must surface that instead of returning nil.
	store := New(filepath.Join(t.TempDir(), "missing", "settings.db"))

	err := store.Save(context.Background(), Settings{SimulatorMaxAgeMs: 30000})
	require.Error(t, err)
}
