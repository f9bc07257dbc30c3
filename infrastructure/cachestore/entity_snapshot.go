package cachestore

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrSnapshotMismatch marks a snapshot that cannot be used: wrong schema
// version or undecodable content. Loaders treat it as "no snapshot".
var ErrSnapshotMismatch = errors.New("cachestore: unusable snapshot")

type entitySnapshotEntry[K comparable, V any] struct {
	Key        K         `json:"key"`
	Value      V         `json:"value"`
	ObservedAt time.Time `json:"observed_at"`
}

type entitySnapshot[K comparable, V any] struct {
	SchemaVersion   int                         `json:"schema_version"`
	SavedAt         time.Time                   `json:"saved_at"`
	LastBulkRefresh *time.Time                  `json:"last_bulk_refresh,omitempty"`
	Preferred       map[string]K                `json:"preferred,omitempty"`
	Entries         []entitySnapshotEntry[K, V] `json:"entries"`
}

// MarshalSnapshot serializes the full cache state under the given schema
// version.
func (c *EntityCache[K, V]) MarshalSnapshot(schemaVersion int) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := entitySnapshot[K, V]{
		SchemaVersion: schemaVersion,
		SavedAt:       c.now(),
		Entries:       make([]entitySnapshotEntry[K, V], 0, len(c.entries)),
	}
	if !c.lastBulkRefresh.IsZero() {
		refresh := c.lastBulkRefresh
		snap.LastBulkRefresh = &refresh
	}
	if len(c.preferred) > 0 {
		snap.Preferred = make(map[string]K, len(c.preferred))
		for scope, key := range c.preferred {
			snap.Preferred[scope] = key
		}
	}
	for key, entry := range c.entries {
		snap.Entries = append(snap.Entries, entitySnapshotEntry[K, V]{
			Key:        key,
			Value:      entry.value,
			ObservedAt: entry.observedAt,
		})
	}
	return json.Marshal(snap)
}

// RestoreSnapshot replaces the cache contents from serialized state. It is
// all-or-nothing: a corrupt payload or a schema version other than the
// expected one leaves the cache untouched and returns ErrSnapshotMismatch.
// Observation times are restored as written, so entries stale at save time
// stay stale.
func (c *EntityCache[K, V]) RestoreSnapshot(data []byte, schemaVersion int) error {
	var snap entitySnapshot[K, V]
	if err := json.Unmarshal(data, &snap); err != nil {
		return ErrSnapshotMismatch
	}
	if snap.SchemaVersion != schemaVersion {
		return ErrSnapshotMismatch
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]entityEntry[V], len(snap.Entries))
	for _, entry := range snap.Entries {
		c.entries[entry.Key] = entityEntry[V]{value: entry.Value, observedAt: entry.ObservedAt}
	}
	c.preferred = make(map[string]K, len(snap.Preferred))
	for scope, key := range snap.Preferred {
		c.preferred[scope] = key
	}
	c.lastBulkRefresh = time.Time{}
	if snap.LastBulkRefresh != nil {
		c.lastBulkRefresh = *snap.LastBulkRefresh
	}
	return nil
}
