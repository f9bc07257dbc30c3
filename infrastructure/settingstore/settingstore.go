package settingstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
)

// Settings are the runtime-tunable values remembered across restarts. All
// loading and saving is best effort; callers never fail because of it.
type Settings struct {
	SimulatorMaxAgeMs   int64
	ProjectMaxAgeMs     int64
	PersistenceEnabled  bool
	PersistenceCacheDir string
}

// Store keeps settings in a key/value table in sqlite. Connections are
// opened per call; the table is tiny and writes are rare.
type Store struct {
	dbPath string
}

func New(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

func (s *Store) open() (*sql.DB, error) {
	connStr := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on", s.dbPath)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_settings (key TEXT PRIMARY KEY, value TEXT)`); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Load returns the defaults overlaid with whatever was saved before.
func (s *Store) Load(ctx context.Context, defaults Settings) (Settings, error) {
	db, err := s.open()
	if err != nil {
		return defaults, err
	}
	defer db.Close()

	settings := defaults

	rows, err := db.QueryContext(ctx, `SELECT key, value FROM global_settings WHERE key LIKE 'cache_%' OR key LIKE 'persistence_%'`)
	if err != nil {
		return settings, nil
	}
	defer rows.Close()

	for rows.Next() {
		var key, val string
		if err := rows.Scan(&key, &val); err != nil {
			continue
		}
		switch key {
		case "cache_simulator_max_age_ms":
			if n, err := strconv.ParseInt(val, 10, 64); err == nil && n > 0 {
				settings.SimulatorMaxAgeMs = n
			}
		case "cache_project_max_age_ms":
			if n, err := strconv.ParseInt(val, 10, 64); err == nil && n > 0 {
				settings.ProjectMaxAgeMs = n
			}
		case "persistence_enabled":
			settings.PersistenceEnabled = val == "1" || val == "true"
		case "persistence_cache_dir":
			settings.PersistenceCacheDir = val
		}
	}

	return settings, rows.Err()
}

func (s *Store) Save(ctx context.Context, settings Settings) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	var firstErr error
	save := func(key, val string) {
		_, err := db.ExecContext(ctx, `INSERT INTO global_settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, val)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	enabled := "0"
	if settings.PersistenceEnabled {
		enabled = "1"
	}

	save("cache_simulator_max_age_ms", strconv.FormatInt(settings.SimulatorMaxAgeMs, 10))
	save("cache_project_max_age_ms", strconv.FormatInt(settings.ProjectMaxAgeMs, 10))
	save("persistence_enabled", enabled)
	save("persistence_cache_dir", settings.PersistenceCacheDir)

	return firstErr
}
