package cachestore

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	pkgError "github.com/crossforge/xcodemcp/pkg/error"
)

// DefaultRetention is the fixed lifetime of stored responses.
const DefaultRetention = 30 * time.Minute

// BlobEntry is one captured command result. Entries are immutable once
// stored.
type BlobEntry struct {
	ID           string         `json:"id"`
	Tool         string         `json:"tool"`
	FullOutput   string         `json:"full_output"`
	StderrOutput string         `json:"stderr_output"`
	ExitCode     int            `json:"exit_code"`
	Command      string         `json:"command"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	StoredAt     time.Time      `json:"stored_at"`
}

// SizeBytes reports the payload size counted toward store statistics.
func (e BlobEntry) SizeBytes() int64 {
	return int64(len(e.FullOutput) + len(e.StderrOutput))
}

// ListStats describes the filtered set before any limit truncation.
type ListStats struct {
	TotalEntries   int
	TotalSizeBytes int64
}

// BlobStore keeps large command outputs addressable by a generated id so
// callers can hand around the id instead of the payload. Retention is a
// fixed window from store time; aged-out entries behave exactly like
// unknown ids and are swept on the next Store.
type BlobStore struct {
	mu        sync.RWMutex
	entries   map[string]BlobEntry
	retention time.Duration
	now       func() time.Time
}

func NewBlobStore(retention time.Duration) *BlobStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &BlobStore{
		entries:   make(map[string]BlobEntry),
		retention: retention,
		now:       time.Now,
	}
}

func (s *BlobStore) Retention() time.Duration {
	return s.retention
}

// Store inserts a new entry and returns its generated id. The id embeds the
// tool name for debuggability only; callers must treat it as opaque.
func (s *BlobStore) Store(tool, fullOutput, stderrOutput string, exitCode int, command string, metadata map[string]any) string {
	id := fmt.Sprintf("%s-%s", tool, uuid.NewString())

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for existing, entry := range s.entries {
		if now.Sub(entry.StoredAt) >= s.retention {
			delete(s.entries, existing)
		}
	}

	// Copy the metadata so a caller mutating its map afterwards cannot
	// change a stored entry.
	var meta map[string]any
	if len(metadata) > 0 {
		meta = make(map[string]any, len(metadata))
		for key, value := range metadata {
			meta[key] = value
		}
	}

	s.entries[id] = BlobEntry{
		ID:           id,
		Tool:         tool,
		FullOutput:   fullOutput,
		StderrOutput: stderrOutput,
		ExitCode:     exitCode,
		Command:      command,
		Metadata:     meta,
		StoredAt:     now,
	}
	return id
}

// Get returns the entry for id. Unknown and expired ids are
// indistinguishable.
func (s *BlobStore) Get(id string) (BlobEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok || s.now().Sub(entry.StoredAt) >= s.retention {
		return BlobEntry{}, pkgError.NotFoundOrExpiredError(
			fmt.Sprintf("response %s not found or expired", id))
	}
	return entry, nil
}

// List returns live entries, newest first, ties broken by id so repeated
// calls without intervening writes keep a stable order. The tool filter is
// an exact match. Stats reflect the filtered set before limit truncation.
func (s *BlobStore) List(tool string, limit int) ([]BlobEntry, ListStats) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	var entries []BlobEntry
	var stats ListStats
	for _, entry := range s.entries {
		if now.Sub(entry.StoredAt) >= s.retention {
			continue
		}
		if tool != "" && entry.Tool != tool {
			continue
		}
		entries = append(entries, entry)
		stats.TotalEntries++
		stats.TotalSizeBytes += entry.SizeBytes()
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].StoredAt.Equal(entries[j].StoredAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].StoredAt.After(entries[j].StoredAt)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, stats
}

// Stats reports the live entry count and total payload size.
func (s *BlobStore) Stats() ListStats {
	_, stats := s.List("", 0)
	return stats
}

// Clear empties the store. Idempotent.
func (s *BlobStore) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]BlobEntry)
	s.mu.Unlock()
}
