package cache

import (
	"context"
	"time"
)

// Type selects which cache a facade operation applies to.
type Type string

const (
	TypeSimulator Type = "simulator"
	TypeProject   Type = "project"
	TypeResponse  Type = "response"
	TypeAll       Type = "all"
)

type EntityStats struct {
	Entries         int        `json:"entries"`
	LastBulkRefresh *time.Time `json:"last_bulk_refresh,omitempty"`
}

type ResponseStats struct {
	TotalEntries   int    `json:"total_entries"`
	TotalSizeBytes int64  `json:"total_size_bytes"`
	HumanSize      string `json:"human_size"`
}

type Stats struct {
	Simulator *EntityStats   `json:"simulator,omitempty"`
	Project   *EntityStats   `json:"project,omitempty"`
	Response  *ResponseStats `json:"response,omitempty"`
}

type Config struct {
	SimulatorMaxAgeMs   int64 `json:"simulator_max_age_ms"`
	ProjectMaxAgeMs     int64 `json:"project_max_age_ms"`
	ResponseRetentionMs int64 `json:"response_retention_ms"` // fixed policy, read-only
}

// SetConfigRequest carries the new max-age for one or both entity caches.
// Exactly one of the duration fields must be supplied.
type SetConfigRequest struct {
	CacheType       string `json:"cache_type"`
	DurationMs      *int64 `json:"duration_ms,omitempty"`
	DurationMinutes *int64 `json:"duration_minutes,omitempty"`
	DurationHours   *int64 `json:"duration_hours,omitempty"`
}

type ClearResult struct {
	Cleared []string `json:"cleared"`
}

type ListResponsesRequest struct {
	Tool  string `json:"tool,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// ResponseSummary describes a stored response without its payload.
type ResponseSummary struct {
	ID        string         `json:"id"`
	Tool      string         `json:"tool"`
	Command   string         `json:"command"`
	ExitCode  int            `json:"exit_code"`
	SizeBytes int64          `json:"size_bytes"`
	StoredAt  time.Time      `json:"stored_at"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type ListResponsesResponse struct {
	Entries        []ResponseSummary `json:"entries"`
	TotalEntries   int               `json:"total_entries"`
	TotalSizeBytes int64             `json:"total_size_bytes"`
}

type ResponseDetail struct {
	ResponseSummary
	FullOutput   string `json:"full_output"`
	StderrOutput string `json:"stderr_output,omitempty"`
}

type ICacheUsecase interface {
	GetStats(ctx context.Context, cacheType string) (Stats, error)
	GetConfig(ctx context.Context) (Config, error)
	SetConfig(ctx context.Context, request SetConfigRequest) (Config, error)
	Clear(ctx context.Context, cacheType string) (ClearResult, error)

	ListResponses(ctx context.Context, request ListResponsesRequest) (ListResponsesResponse, error)
	GetResponse(ctx context.Context, id string, tailLines int) (ResponseDetail, error)
}
