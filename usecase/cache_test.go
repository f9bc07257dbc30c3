package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainCache "github.com/crossforge/xcodemcp/domains/cache"
	domainProject "github.com/crossforge/xcodemcp/domains/project"
	domainSimulator "github.com/crossforge/xcodemcp/domains/simulator"
	"github.com/crossforge/xcodemcp/infrastructure/cachestore"
	pkgError "github.com/crossforge/xcodemcp/pkg/error"
)

type cacheFixture struct {
	devices   *cachestore.EntityCache[string, domainSimulator.Device]
	projects  *cachestore.EntityCache[string, domainProject.Info]
	responses *cachestore.BlobStore
	service   domainCache.ICacheUsecase
}

func newCacheFixture(t *testing.T) *cacheFixture {
	t.Helper()
	devices := cachestore.NewEntityCache[string, domainSimulator.Device]("simulator", time.Minute)
	projects := cachestore.NewEntityCache[string, domainProject.Info]("project", 5*time.Minute)
	responses := cachestore.NewBlobStore(30 * time.Minute)
	return &cacheFixture{
		devices:   devices,
		projects:  projects,
		responses: responses,
		service:   NewCacheService(devices, projects, responses, nil),
	}
}

func int64Ptr(v int64) *int64 {
	return &v
}

func TestCacheServiceGetStatsAll(t *testing.T) {
	fixture := newCacheFixture(t)
	ctx := context.Background()

	fixture.devices.UpsertMany(map[string]domainSimulator.Device{
		"udid-1": {UDID: "udid-1", Name: "iPhone 15"},
	})
	fixture.responses.Store("simctl-list", "{}", "", 0, "xcrun simctl list devices -j", nil)

	stats, err := fixture.service.GetStats(ctx, "all")
	require.NoError(t, err)
	require.NotNil(t, stats.Simulator)
	require.NotNil(t, stats.Project)
	require.NotNil(t, stats.Response)
	assert.Equal(t, 1, stats.Simulator.Entries)
	assert.NotNil(t, stats.Simulator.LastBulkRefresh)
	assert.Equal(t, 0, stats.Project.Entries)
	assert.Equal(t, 1, stats.Response.TotalEntries)
	assert.NotEmpty(t, stats.Response.HumanSize)
}

func TestCacheServiceGetStatsRejectsUnknownType(t *testing.T) {
	fixture := newCacheFixture(t)

	_, err := fixture.service.GetStats(context.Background(), "bogus")
	require.Error(t, err)
	assert.IsType(t, pkgError.InvalidConfigurationError(""), err)
}

func TestCacheServiceSetConfigUnits(t *testing.T) {
	fixture := newCacheFixture(t)
	ctx := context.Background()

	config, err := fixture.service.SetConfig(ctx, domainCache.SetConfigRequest{
		CacheType:       "simulator",
		DurationMinutes: int64Ptr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(120000), config.SimulatorMaxAgeMs)

	config, err = fixture.service.SetConfig(ctx, domainCache.SetConfigRequest{
		CacheType:     "project",
		DurationHours: int64Ptr(1),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3600000), config.ProjectMaxAgeMs)

	config, err = fixture.service.SetConfig(ctx, domainCache.SetConfigRequest{
		CacheType:  "all",
		DurationMs: int64Ptr(5000),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), config.SimulatorMaxAgeMs)
	assert.Equal(t, int64(5000), config.ProjectMaxAgeMs)
}

func TestCacheServiceSetConfigBelowFloorKeepsPrevious(t *testing.T) {
	fixture := newCacheFixture(t)
	ctx := context.Background()

	before, err := fixture.service.GetConfig(ctx)
	require.NoError(t, err)

	_, err = fixture.service.SetConfig(ctx, domainCache.SetConfigRequest{
		CacheType:  "all",
		DurationMs: int64Ptr(999),
	})
	require.Error(t, err)
	assert.IsType(t, pkgError.InvalidConfigurationError(""), err)

	after, err := fixture.service.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCacheServiceSetConfigRejectsResponseCache(t *testing.T) {
	fixture := newCacheFixture(t)

	_, err := fixture.service.SetConfig(context.Background(), domainCache.SetConfigRequest{
		CacheType:  "response",
		DurationMs: int64Ptr(5000),
	})
	require.Error(t, err)
	assert.IsType(t, pkgError.InvalidConfigurationError(""), err)
}

func TestCacheServiceSetConfigRequiresExactlyOneUnit(t *testing.T) {
	fixture := newCacheFixture(t)

	_, err := fixture.service.SetConfig(context.Background(), domainCache.SetConfigRequest{
		CacheType:       "simulator",
		DurationMs:      int64Ptr(5000),
		DurationMinutes: int64Ptr(1),
	})
	require.Error(t, err)
	assert.IsType(t, pkgError.ValidationError(""), err)
}

func TestCacheServiceClearAll(t *testing.T) {
	fixture := newCacheFixture(t)
	ctx := context.Background()

	fixture.devices.UpsertOne("udid-1", domainSimulator.Device{UDID: "udid-1"})
	fixture.projects.UpsertOne("/tmp/App.xcodeproj", domainProject.Info{Name: "App"})
	fixture.responses.Store("simctl-list", "{}", "", 0, "xcrun simctl list devices -j", nil)

	result, err := fixture.service.Clear(ctx, "all")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"simulator", "project", "response"}, result.Cleared)

	stats, err := fixture.service.GetStats(ctx, "all")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Simulator.Entries)
	assert.Equal(t, 0, stats.Project.Entries)
	assert.Equal(t, 0, stats.Response.TotalEntries)
}

func TestCacheServiceListResponsesScenario(t *testing.T) {
	fixture := newCacheFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		fixture.responses.Store("xcodebuild-build", "log", "", 0, "xcodebuild build", nil)
	}
	firstSim := fixture.responses.Store("simctl-list", "{}", "", 0, "xcrun simctl list", nil)
	secondSim := fixture.responses.Store("simctl-list", "{}", "", 0, "xcrun simctl list", nil)

	response, err := fixture.service.ListResponses(ctx, domainCache.ListResponsesRequest{Tool: "simctl-list"})
	require.NoError(t, err)
	require.Len(t, response.Entries, 2)
	assert.Equal(t, 2, response.TotalEntries)
	assert.ElementsMatch(t,
		[]string{firstSim, secondSim},
		[]string{response.Entries[0].ID, response.Entries[1].ID})
	assert.False(t, response.Entries[0].StoredAt.Before(response.Entries[1].StoredAt))
}

func TestCacheServiceGetResponseTail(t *testing.T) {
	fixture := newCacheFixture(t)
	ctx := context.Background()

	id := fixture.responses.Store("xcodebuild-build", "line1\nline2\nline3", "", 0, "xcodebuild build", nil)

	detail, err := fixture.service.GetResponse(ctx, id, 2)
	require.NoError(t, err)
	assert.Equal(t, "line2\nline3", detail.FullOutput)

	full, err := fixture.service.GetResponse(ctx, id, 0)
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2\nline3", full.FullOutput)

	_, err = fixture.service.GetResponse(ctx, "missing", 0)
	require.Error(t, err)
	assert.IsType(t, pkgError.NotFoundOrExpiredError(""), err)
}
