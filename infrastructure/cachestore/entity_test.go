package cachestore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgError "github.com/crossforge/xcodemcp/pkg/error"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func newTestEntityCache(t *testing.T, maxAge time.Duration) (*EntityCache[string, string], *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	cache := NewEntityCache[string, string]("simulator", maxAge)
	cache.now = clock.Now
	return cache, clock
}

func TestEntityCacheFreshness(t *testing.T) {
	cache, clock := newTestEntityCache(t, 10*time.Second)

	cache.UpsertMany(map[string]string{"udid-1": "iPhone 15", "udid-2": "iPad Air"})

	value, ok := cache.GetFresh("udid-1")
	require.True(t, ok)
	assert.Equal(t, "iPhone 15", value)

	clock.Advance(9 * time.Second)
	_, ok = cache.GetFresh("udid-1")
	assert.True(t, ok, "entry just under max age should still be fresh")

	clock.Advance(2 * time.Second)
	_, ok = cache.GetFresh("udid-1")
	assert.False(t, ok, "entry past max age must not be returned")

	// Lazy expiry: staleness never mutates the map.
	assert.Equal(t, 2, cache.Len())
}

func TestEntityCacheUpsertOneInsertsMissingKey(t *testing.T) {
	cache, _ := newTestEntityCache(t, 10*time.Second)

	cache.UpsertOne("udid-9", "Apple Watch")

	value, ok := cache.GetFresh("udid-9")
	require.True(t, ok)
	assert.Equal(t, "Apple Watch", value)

	// Incremental upserts must not count as a bulk refresh.
	_, refreshed := cache.LastBulkRefresh()
	assert.False(t, refreshed)
	assert.False(t, cache.BulkFresh())
}

func TestEntityCacheBulkRefreshTracking(t *testing.T) {
	cache, clock := newTestEntityCache(t, 10*time.Second)

	assert.False(t, cache.BulkFresh())
	cache.UpsertMany(map[string]string{"udid-1": "iPhone 15"})
	assert.True(t, cache.BulkFresh())

	clock.Advance(11 * time.Second)
	assert.False(t, cache.BulkFresh())
}

func TestEntityCacheSetMaxAgeValidation(t *testing.T) {
	cache, _ := newTestEntityCache(t, 10*time.Second)

	err := cache.SetMaxAge(999 * time.Millisecond)
	require.Error(t, err)
	assert.IsType(t, pkgError.InvalidConfigurationError(""), err)
	assert.Equal(t, 10*time.Second, cache.MaxAge(), "failed set must leave previous max age")

	require.NoError(t, cache.SetMaxAge(time.Second))
	assert.Equal(t, time.Second, cache.MaxAge())
}

func TestEntityCacheClearIsIdempotent(t *testing.T) {
	cache, _ := newTestEntityCache(t, 10*time.Second)

	cache.UpsertMany(map[string]string{"udid-1": "iPhone 15"})
	cache.SetPreferred("/tmp/App.xcodeproj", "udid-1")

	cache.Clear()
	cache.Clear()

	assert.Equal(t, 0, cache.Len())
	_, ok := cache.Preferred("/tmp/App.xcodeproj")
	assert.False(t, ok)
	_, refreshed := cache.LastBulkRefresh()
	assert.False(t, refreshed)
}

func TestEntityCachePreferredPrunesDanglingKey(t *testing.T) {
	cache, _ := newTestEntityCache(t, 10*time.Second)

	cache.UpsertOne("udid-1", "iPhone 15")
	cache.SetPreferred("/tmp/App.xcodeproj", "udid-1")

	key, ok := cache.Preferred("/tmp/App.xcodeproj")
	require.True(t, ok)
	assert.Equal(t, "udid-1", key)

	// Drop the referenced entry; the association must not survive.
	cache.Clear()
	cache.SetPreferred("/tmp/App.xcodeproj", "udid-1")
	_, ok = cache.Preferred("/tmp/App.xcodeproj")
	assert.False(t, ok)
	_, ok = cache.Preferred("/tmp/App.xcodeproj")
	assert.False(t, ok, "pruned association stays gone")
}

func TestEntityCacheFreshValuesSkipsStale(t *testing.T) {
	cache, clock := newTestEntityCache(t, 10*time.Second)

	cache.UpsertMany(map[string]string{"udid-1": "iPhone 15"})
	clock.Advance(11 * time.Second)
	cache.UpsertOne("udid-2", "iPad Air")

	values := cache.FreshValues()
	require.Len(t, values, 1)
	assert.Equal(t, "iPad Air", values[0])
}

func TestEntityCacheOnChangeHook(t *testing.T) {
	cache, _ := newTestEntityCache(t, 10*time.Second)

	var calls int
	cache.SetOnChange(func() { calls++ })

	cache.UpsertMany(map[string]string{"udid-1": "iPhone 15"})
	cache.UpsertOne("udid-2", "iPad Air")
	cache.SetPreferred("scope", "udid-1")
	cache.Clear()

	assert.Equal(t, 4, calls)
}
