package persistence

import (
	"context"
	"time"
)

type StorageInfo struct {
	SizeBytes      int64      `json:"size_bytes"`
	HumanSize      string     `json:"human_size"`
	FileCount      int        `json:"file_count"`
	LastSaveAt     *time.Time `json:"last_save_at,omitempty"`
	Writable       bool       `json:"writable"`
	LastWriteError string     `json:"last_write_error,omitempty"`
}

type Status struct {
	Enabled       bool         `json:"enabled"`
	SchemaVersion int          `json:"schema_version"`
	CacheDir      string       `json:"cache_dir,omitempty"`
	StorageInfo   *StorageInfo `json:"storage_info,omitempty"`
}

type IPersistenceUsecase interface {
	Enable(ctx context.Context, cacheDir string) (Status, error)
	Disable(ctx context.Context, clearData bool) (Status, error)
	Status(ctx context.Context, includeStorageInfo bool) (Status, error)
}
