package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	domainCache "github.com/crossforge/xcodemcp/domains/cache"
	domainProject "github.com/crossforge/xcodemcp/domains/project"
	domainSimulator "github.com/crossforge/xcodemcp/domains/simulator"
	"github.com/crossforge/xcodemcp/infrastructure/cachestore"
	"github.com/crossforge/xcodemcp/infrastructure/settingstore"
	pkgError "github.com/crossforge/xcodemcp/pkg/error"
	"github.com/crossforge/xcodemcp/validations"
)

type cacheService struct {
	devices   *cachestore.EntityCache[string, domainSimulator.Device]
	projects  *cachestore.EntityCache[string, domainProject.Info]
	responses *cachestore.BlobStore
	settings  *settingstore.Store
}

func NewCacheService(
	devices *cachestore.EntityCache[string, domainSimulator.Device],
	projects *cachestore.EntityCache[string, domainProject.Info],
	responses *cachestore.BlobStore,
	settings *settingstore.Store,
) domainCache.ICacheUsecase {
	return &cacheService{
		devices:   devices,
		projects:  projects,
		responses: responses,
		settings:  settings,
	}
}

func parseCacheType(raw string) (domainCache.Type, error) {
	switch domainCache.Type(strings.ToLower(strings.TrimSpace(raw))) {
	case domainCache.TypeSimulator:
		return domainCache.TypeSimulator, nil
	case domainCache.TypeProject:
		return domainCache.TypeProject, nil
	case domainCache.TypeResponse:
		return domainCache.TypeResponse, nil
	case domainCache.TypeAll:
		return domainCache.TypeAll, nil
	default:
		return "", pkgError.InvalidConfigurationError(
			fmt.Sprintf("unknown cache type %q, expected simulator, project, response or all", raw))
	}
}

func (s *cacheService) GetStats(ctx context.Context, cacheType string) (domainCache.Stats, error) {
	parsed, err := parseCacheType(cacheType)
	if err != nil {
		return domainCache.Stats{}, err
	}

	var stats domainCache.Stats
	if parsed == domainCache.TypeSimulator || parsed == domainCache.TypeAll {
		stats.Simulator = entityStats(s.devices)
	}
	if parsed == domainCache.TypeProject || parsed == domainCache.TypeAll {
		stats.Project = entityStats(s.projects)
	}
	if parsed == domainCache.TypeResponse || parsed == domainCache.TypeAll {
		blobStats := s.responses.Stats()
		stats.Response = &domainCache.ResponseStats{
			TotalEntries:   blobStats.TotalEntries,
			TotalSizeBytes: blobStats.TotalSizeBytes,
			HumanSize:      humanize.Bytes(uint64(blobStats.TotalSizeBytes)),
		}
	}
	return stats, nil
}

func entityStats[K comparable, V any](cache *cachestore.EntityCache[K, V]) *domainCache.EntityStats {
	stats := &domainCache.EntityStats{Entries: cache.Len()}
	if refresh, ok := cache.LastBulkRefresh(); ok {
		stats.LastBulkRefresh = &refresh
	}
	return stats
}

func (s *cacheService) GetConfig(ctx context.Context) (domainCache.Config, error) {
	return domainCache.Config{
		SimulatorMaxAgeMs:   s.devices.MaxAge().Milliseconds(),
		ProjectMaxAgeMs:     s.projects.MaxAge().Milliseconds(),
		ResponseRetentionMs: s.responses.Retention().Milliseconds(),
	}, nil
}

func (s *cacheService) SetConfig(ctx context.Context, request domainCache.SetConfigRequest) (domainCache.Config, error) {
	if err := validations.ValidateSetCacheConfig(ctx, request); err != nil {
		return domainCache.Config{}, err
	}

	parsed, err := parseCacheType(request.CacheType)
	if err != nil {
		return domainCache.Config{}, err
	}
	if parsed == domainCache.TypeResponse {
		return domainCache.Config{}, pkgError.InvalidConfigurationError(
			"response cache retention is a fixed policy and cannot be changed")
	}

	maxAge := requestedMaxAge(request)

	// Validate against every selected cache before mutating any, so a failed
	// set-config leaves all previous values intact.
	if maxAge < cachestore.MinMaxAge {
		return domainCache.Config{}, pkgError.InvalidConfigurationError(
			fmt.Sprintf("cache max age must be at least %s, got %s", cachestore.MinMaxAge, maxAge))
	}

	if parsed == domainCache.TypeSimulator || parsed == domainCache.TypeAll {
		if err := s.devices.SetMaxAge(maxAge); err != nil {
			return domainCache.Config{}, err
		}
	}
	if parsed == domainCache.TypeProject || parsed == domainCache.TypeAll {
		if err := s.projects.SetMaxAge(maxAge); err != nil {
			return domainCache.Config{}, err
		}
	}

	s.saveSettings(ctx)
	return s.GetConfig(ctx)
}

func requestedMaxAge(request domainCache.SetConfigRequest) time.Duration {
	switch {
	case request.DurationMs != nil:
		return time.Duration(*request.DurationMs) * time.Millisecond
	case request.DurationMinutes != nil:
		return time.Duration(*request.DurationMinutes) * time.Minute
	case request.DurationHours != nil:
		return time.Duration(*request.DurationHours) * time.Hour
	default:
		return 0
	}
}

// saveSettings mirrors the current configuration to the settings store,
// best effort.
func (s *cacheService) saveSettings(ctx context.Context) {
	if s.settings == nil {
		return
	}
	current, err := s.settings.Load(ctx, settingstore.Settings{})
	if err != nil {
		logrus.WithError(err).Debug("[CACHE] Failed to load settings before save")
	}
	current.SimulatorMaxAgeMs = s.devices.MaxAge().Milliseconds()
	current.ProjectMaxAgeMs = s.projects.MaxAge().Milliseconds()
	if err := s.settings.Save(ctx, current); err != nil {
		logrus.WithError(err).Warn("[CACHE] Failed to save cache settings")
	}
}

func (s *cacheService) Clear(ctx context.Context, cacheType string) (domainCache.ClearResult, error) {
	parsed, err := parseCacheType(cacheType)
	if err != nil {
		return domainCache.ClearResult{}, err
	}

	var result domainCache.ClearResult
	clearOne := func(name string, clear func()) {
		// A panic in one clear must not prevent attempting the others.
		defer func() {
			if r := recover(); r != nil {
				logrus.Errorf("[CACHE] Clear of %s cache panicked: %v", name, r)
			}
		}()
		clear()
		result.Cleared = append(result.Cleared, name)
	}

	if parsed == domainCache.TypeSimulator || parsed == domainCache.TypeAll {
		clearOne(string(domainCache.TypeSimulator), s.devices.Clear)
	}
	if parsed == domainCache.TypeProject || parsed == domainCache.TypeAll {
		clearOne(string(domainCache.TypeProject), s.projects.Clear)
	}
	if parsed == domainCache.TypeResponse || parsed == domainCache.TypeAll {
		clearOne(string(domainCache.TypeResponse), s.responses.Clear)
	}

	logrus.Infof("[CACHE] Cleared caches: %v", result.Cleared)
	return result, nil
}

func (s *cacheService) ListResponses(ctx context.Context, request domainCache.ListResponsesRequest) (domainCache.ListResponsesResponse, error) {
	entries, stats := s.responses.List(request.Tool, request.Limit)

	response := domainCache.ListResponsesResponse{
		Entries:        make([]domainCache.ResponseSummary, 0, len(entries)),
		TotalEntries:   stats.TotalEntries,
		TotalSizeBytes: stats.TotalSizeBytes,
	}
	for _, entry := range entries {
		response.Entries = append(response.Entries, summarize(entry))
	}
	return response, nil
}

func (s *cacheService) GetResponse(ctx context.Context, id string, tailLines int) (domainCache.ResponseDetail, error) {
	entry, err := s.responses.Get(id)
	if err != nil {
		return domainCache.ResponseDetail{}, err
	}

	detail := domainCache.ResponseDetail{
		ResponseSummary: summarize(entry),
		FullOutput:      entry.FullOutput,
		StderrOutput:    entry.StderrOutput,
	}
	if tailLines > 0 {
		detail.FullOutput, _ = tailText(entry.FullOutput, tailLines)
	}
	return detail, nil
}

func summarize(entry cachestore.BlobEntry) domainCache.ResponseSummary {
	return domainCache.ResponseSummary{
		ID:        entry.ID,
		Tool:      entry.Tool,
		Command:   entry.Command,
		ExitCode:  entry.ExitCode,
		SizeBytes: entry.SizeBytes(),
		StoredAt:  entry.StoredAt,
		Metadata:  entry.Metadata,
	}
}
