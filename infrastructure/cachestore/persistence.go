package cachestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	pkgError "github.com/crossforge/xcodemcp/pkg/error"
)

// SnapshotSource is what the persistence manager needs from a cache: a
// serialized snapshot and the ability to restore one, all-or-nothing per
// schema version.
type SnapshotSource interface {
	MarshalSnapshot(schemaVersion int) ([]byte, error)
	RestoreSnapshot(data []byte, schemaVersion int) error
}

// PersistTarget names one cache to mirror; the snapshot lives in
// <cacheDir>/<Name>.json.
type PersistTarget struct {
	Name   string
	Source SnapshotSource
}

type snapshotWriter struct {
	running bool
	pending bool
}

// PersistenceManager mirrors cache state to a directory, best effort. The
// in-memory caches stay the source of truth: a failed write is recorded on
// status and logged, never raised to the mutation that triggered it. At most
// one write per cache is in flight; further requests coalesce into one
// pending write.
type PersistenceManager struct {
	mu            sync.Mutex
	enabled       bool
	cacheDir      string
	schemaVersion int
	targets       []PersistTarget
	writers       map[string]*snapshotWriter
	lastSaveAt    time.Time
	lastWriteErr  string
	wg            sync.WaitGroup
}

func NewPersistenceManager(schemaVersion int, targets ...PersistTarget) *PersistenceManager {
	return &PersistenceManager{
		schemaVersion: schemaVersion,
		targets:       targets,
		writers:       make(map[string]*snapshotWriter, len(targets)),
	}
}

func (m *PersistenceManager) SchemaVersion() int {
	return m.schemaVersion
}

func (m *PersistenceManager) IsEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

func (m *PersistenceManager) CacheDir() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cacheDir
}

// Enable validates the directory, rehydrates every target from a matching
// snapshot and turns mirroring on. Mismatched or corrupt snapshots are
// discarded silently; only an unusable directory is an error.
func (m *PersistenceManager) Enable(cacheDir string) error {
	if cacheDir == "" {
		return pkgError.PersistenceIOError("cache directory is required to enable persistence")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return pkgError.PersistenceIOError(fmt.Sprintf("cannot create cache directory %s: %v", cacheDir, err))
	}
	if err := probeWritable(cacheDir); err != nil {
		return pkgError.PersistenceIOError(fmt.Sprintf("cache directory %s is not writable: %v", cacheDir, err))
	}

	for _, target := range m.targets {
		path := filepath.Join(cacheDir, target.Name+".json")
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				logrus.WithError(err).Warnf("[PERSIST] Failed to read snapshot %s", path)
			}
			continue
		}
		if err := target.Source.RestoreSnapshot(data, m.schemaVersion); err != nil {
			logrus.Warnf("[PERSIST] Discarding unusable snapshot %s", path)
			continue
		}
		logrus.Debugf("[PERSIST] Restored %s cache from %s", target.Name, path)
	}

	m.mu.Lock()
	m.enabled = true
	m.cacheDir = cacheDir
	m.lastWriteErr = ""
	m.mu.Unlock()

	logrus.Infof("[PERSIST] Persistence enabled, cache dir: %s", cacheDir)
	return nil
}

// Disable turns mirroring off. With clearData it also deletes the snapshot
// files; a failed delete is reported but persistence stays disabled.
func (m *PersistenceManager) Disable(clearData bool) error {
	m.mu.Lock()
	m.enabled = false
	cacheDir := m.cacheDir
	m.mu.Unlock()

	// Drain in-flight writers before touching the files: a write that passed
	// the enabled check must not land after the delete and resurrect a
	// snapshot.
	m.wg.Wait()

	logrus.Info("[PERSIST] Persistence disabled")

	if !clearData || cacheDir == "" {
		return nil
	}

	var failed []string
	for _, target := range m.targets {
		path := filepath.Join(cacheDir, target.Name+".json")
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			failed = append(failed, fmt.Sprintf("%s: %v", path, err))
		}
	}
	if len(failed) > 0 {
		return pkgError.PersistenceIOError(fmt.Sprintf("failed to delete snapshot data: %v", failed))
	}
	return nil
}

// RequestSave schedules an asynchronous snapshot write for the named cache.
// No-op while disabled.
func (m *PersistenceManager) RequestSave(name string) {
	m.mu.Lock()
	if !m.enabled {
		m.mu.Unlock()
		return
	}
	var target *PersistTarget
	for i := range m.targets {
		if m.targets[i].Name == name {
			target = &m.targets[i]
			break
		}
	}
	if target == nil {
		m.mu.Unlock()
		return
	}
	writer, ok := m.writers[name]
	if !ok {
		writer = &snapshotWriter{}
		m.writers[name] = writer
	}
	if writer.running {
		writer.pending = true
		m.mu.Unlock()
		return
	}
	writer.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.writeLoop(*target, writer)
}

// Flush waits for in-flight snapshot writes. Test and shutdown helper.
func (m *PersistenceManager) Flush() {
	m.wg.Wait()
}

func (m *PersistenceManager) writeLoop(target PersistTarget, writer *snapshotWriter) {
	defer m.wg.Done()
	for {
		m.writeSnapshot(target)

		m.mu.Lock()
		if writer.pending {
			writer.pending = false
			m.mu.Unlock()
			continue
		}
		writer.running = false
		m.mu.Unlock()
		return
	}
}

func (m *PersistenceManager) writeSnapshot(target PersistTarget) {
	m.mu.Lock()
	cacheDir := m.cacheDir
	enabled := m.enabled
	m.mu.Unlock()
	if !enabled || cacheDir == "" {
		return
	}

	record := func(err error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if err != nil {
			m.lastWriteErr = err.Error()
			return
		}
		m.lastSaveAt = time.Now()
		m.lastWriteErr = ""
	}

	data, err := target.Source.MarshalSnapshot(m.schemaVersion)
	if err != nil {
		logrus.WithError(err).Errorf("[PERSIST] Failed to serialize %s snapshot", target.Name)
		record(err)
		return
	}

	// Write to a temp file then rename so a crash mid-write never leaves a
	// half-written snapshot behind.
	path := filepath.Join(cacheDir, target.Name+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		logrus.WithError(err).Errorf("[PERSIST] Failed to write %s snapshot", target.Name)
		record(err)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		logrus.WithError(err).Errorf("[PERSIST] Failed to move %s snapshot into place", target.Name)
		_ = os.Remove(tmp)
		record(err)
		return
	}
	record(nil)
}

// StorageInfo describes on-disk state. Computed on demand because it scans
// the directory.
type StorageInfo struct {
	SizeBytes      int64
	FileCount      int
	LastSaveAt     time.Time
	Writable       bool
	LastWriteError string
}

func (m *PersistenceManager) StorageInfo() StorageInfo {
	m.mu.Lock()
	cacheDir := m.cacheDir
	info := StorageInfo{
		LastSaveAt:     m.lastSaveAt,
		LastWriteError: m.lastWriteErr,
	}
	m.mu.Unlock()

	if cacheDir == "" {
		return info
	}
	info.Writable = probeWritable(cacheDir) == nil

	dirEntries, err := os.ReadDir(cacheDir)
	if err != nil {
		return info
	}
	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() || filepath.Ext(dirEntry.Name()) != ".json" {
			continue
		}
		fileInfo, err := dirEntry.Info()
		if err != nil {
			continue
		}
		info.FileCount++
		info.SizeBytes += fileInfo.Size()
	}
	return info
}

func probeWritable(dir string) error {
	probe := filepath.Join(dir, ".write_probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return err
	}
	return os.Remove(probe)
}
