package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainSimulator "github.com/crossforge/xcodemcp/domains/simulator"
	"github.com/crossforge/xcodemcp/infrastructure/cachestore"
	"github.com/crossforge/xcodemcp/infrastructure/xcrun"
)

// fakeRunner plays back canned results and counts invocations.
type fakeRunner struct {
	listDevices xcrun.Result
	boot        xcrun.Result
	list        xcrun.Result
	build       xcrun.Result

	listDevicesCalls int
	bootCalls        int
	listCalls        int
	buildCalls       int
}

func (f *fakeRunner) SimctlListDevices(ctx context.Context) (xcrun.Result, error) {
	f.listDevicesCalls++
	return f.listDevices, nil
}

func (f *fakeRunner) SimctlBoot(ctx context.Context, udid string) (xcrun.Result, error) {
	f.bootCalls++
	return f.boot, nil
}

func (f *fakeRunner) XcodebuildList(ctx context.Context, projectPath string) (xcrun.Result, error) {
	f.listCalls++
	return f.list, nil
}

func (f *fakeRunner) XcodebuildBuild(ctx context.Context, args xcrun.BuildArgs) (xcrun.Result, error) {
	f.buildCalls++
	return f.build, nil
}

const simctlListOutput = `{
	"devices": {
		"com.apple.CoreSimulator.SimRuntime.iOS-17-0": [
			{"udid": "AAAA-1111", "name": "iPhone 15", "state": "Shutdown", "isAvailable": true}
		]
	}
}`

func newSimulatorFixture(t *testing.T) (*fakeRunner, *cachestore.EntityCache[string, domainSimulator.Device], domainSimulator.ISimulatorUsecase) {
	t.Helper()
	runner := &fakeRunner{
		listDevices: xcrun.Result{Stdout: simctlListOutput, Command: "xcrun simctl list devices -j"},
		boot:        xcrun.Result{Command: "xcrun simctl boot AAAA-1111"},
	}
	devices := cachestore.NewEntityCache[string, domainSimulator.Device]("simulator", time.Minute)
	responses := cachestore.NewBlobStore(30 * time.Minute)
	return runner, devices, NewSimulatorService(runner, devices, responses)
}

func TestSimulatorListPopulatesCache(t *testing.T) {
	runner, _, service := newSimulatorFixture(t)
	ctx := context.Background()

	result, err := service.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, result.Devices, 1)
	assert.False(t, result.FromCache)
	assert.NotEmpty(t, result.ResponseID, "refresh output must be retrievable by id")
	assert.Equal(t, "iPhone 15", result.Devices[0].Name)

	// Second call within max age must not touch the native tool.
	cached, err := service.List(ctx, false)
	require.NoError(t, err)
	assert.True(t, cached.FromCache)
	assert.Equal(t, 1, runner.listDevicesCalls)
}

func TestSimulatorListForceRefresh(t *testing.T) {
	runner, _, service := newSimulatorFixture(t)
	ctx := context.Background()

	_, err := service.List(ctx, false)
	require.NoError(t, err)
	_, err = service.List(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, runner.listDevicesCalls)
}

func TestSimulatorBootUpsertsAndRecordsPreferred(t *testing.T) {
	runner, devices, service := newSimulatorFixture(t)
	ctx := context.Background()

	_, err := service.List(ctx, false)
	require.NoError(t, err)

	result, err := service.Boot(ctx, "AAAA-1111", "/tmp/App.xcodeproj")
	require.NoError(t, err)
	assert.Equal(t, "Booted", result.State)
	assert.Equal(t, 1, runner.bootCalls)

	device, ok := devices.GetFresh("AAAA-1111")
	require.True(t, ok)
	assert.Equal(t, "Booted", device.State)

	preferred, ok, err := service.Preferred(ctx, "/tmp/App.xcodeproj")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "AAAA-1111", preferred.UDID)
}

func TestSimulatorBootUnknownDeviceStillCached(t *testing.T) {
	_, devices, service := newSimulatorFixture(t)
	ctx := context.Background()

	// No bulk refresh happened; boot alone must insert the entry.
	_, err := service.Boot(ctx, "AAAA-1111", "")
	require.NoError(t, err)

	device, ok := devices.GetFresh("AAAA-1111")
	require.True(t, ok)
	assert.Equal(t, "Booted", device.State)
}

func TestSimulatorPreferredGoneAfterClear(t *testing.T) {
	_, devices, service := newSimulatorFixture(t)
	ctx := context.Background()

	_, err := service.Boot(ctx, "AAAA-1111", "/tmp/App.xcodeproj")
	require.NoError(t, err)

	devices.Clear()

	_, ok, err := service.Preferred(ctx, "/tmp/App.xcodeproj")
	require.NoError(t, err)
	assert.False(t, ok)
}
