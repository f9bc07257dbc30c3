package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	domainSimulator "github.com/crossforge/xcodemcp/domains/simulator"
	"github.com/crossforge/xcodemcp/infrastructure/cachestore"
	"github.com/crossforge/xcodemcp/infrastructure/xcrun"
	pkgError "github.com/crossforge/xcodemcp/pkg/error"
)

type simulatorService struct {
	runner    xcrun.Runner
	devices   *cachestore.EntityCache[string, domainSimulator.Device]
	responses *cachestore.BlobStore
}

func NewSimulatorService(
	runner xcrun.Runner,
	devices *cachestore.EntityCache[string, domainSimulator.Device],
	responses *cachestore.BlobStore,
) domainSimulator.ISimulatorUsecase {
	return &simulatorService{runner: runner, devices: devices, responses: responses}
}

// List serves from the device cache while the last bulk refresh is fresh,
// otherwise re-enumerates through simctl and repopulates the cache. The raw
// tool output lands in the response cache either way the refresh path is
// taken, so callers can inspect it by id without re-running the tool.
func (s *simulatorService) List(ctx context.Context, forceRefresh bool) (domainSimulator.ListResult, error) {
	if !forceRefresh && s.devices.BulkFresh() {
		return domainSimulator.ListResult{
			Devices:   sortedDevices(s.devices.FreshValues()),
			FromCache: true,
		}, nil
	}

	result, err := s.runner.SimctlListDevices(ctx)
	if err != nil {
		return domainSimulator.ListResult{}, pkgError.InternalServerError(
			fmt.Sprintf("failed to run simctl: %v", err))
	}

	responseID := s.responses.Store("simctl-list", result.Stdout, result.Stderr,
		result.ExitCode, result.Command, nil)

	if result.ExitCode != 0 {
		return domainSimulator.ListResult{ResponseID: responseID}, pkgError.InternalServerError(
			fmt.Sprintf("simctl list failed with exit code %d, see response %s", result.ExitCode, responseID))
	}

	devices, err := xcrun.ParseSimctlDevices(result.Stdout)
	if err != nil {
		return domainSimulator.ListResult{ResponseID: responseID}, pkgError.InternalServerError(err.Error())
	}

	s.devices.UpsertMany(devices)
	logrus.Debugf("[SIMULATOR] Refreshed device cache with %d devices", len(devices))

	values := make([]domainSimulator.Device, 0, len(devices))
	for _, device := range devices {
		values = append(values, device)
	}
	return domainSimulator.ListResult{
		Devices:    sortedDevices(values),
		ResponseID: responseID,
	}, nil
}

// Boot starts a simulator and records the success against the single device
// entry without forcing a full re-enumeration. With a project path it also
// remembers this device as the project's preferred simulator.
func (s *simulatorService) Boot(ctx context.Context, udid string, projectPath string) (domainSimulator.BootResult, error) {
	if udid == "" {
		return domainSimulator.BootResult{}, pkgError.ValidationError("udid is required")
	}

	result, err := s.runner.SimctlBoot(ctx, udid)
	if err != nil {
		return domainSimulator.BootResult{}, pkgError.InternalServerError(
			fmt.Sprintf("failed to run simctl boot: %v", err))
	}

	responseID := s.responses.Store("simctl-boot", result.Stdout, result.Stderr,
		result.ExitCode, result.Command, map[string]any{"udid": udid})

	if result.ExitCode != 0 {
		return domainSimulator.BootResult{ResponseID: responseID}, pkgError.InternalServerError(
			fmt.Sprintf("simctl boot failed with exit code %d, see response %s", result.ExitCode, responseID))
	}

	device, ok := s.devices.GetFresh(udid)
	if !ok {
		device = domainSimulator.Device{UDID: udid, IsAvailable: true}
	}
	device.State = "Booted"
	s.devices.UpsertOne(udid, device)

	if projectPath != "" {
		s.devices.SetPreferred(projectPath, udid)
	}

	return domainSimulator.BootResult{UDID: udid, State: device.State, ResponseID: responseID}, nil
}

// Preferred resolves the remembered simulator for a project path. The
// association is weak: it disappears with the device entry.
func (s *simulatorService) Preferred(ctx context.Context, projectPath string) (domainSimulator.Device, bool, error) {
	udid, ok := s.devices.Preferred(projectPath)
	if !ok {
		return domainSimulator.Device{}, false, nil
	}
	device, fresh := s.devices.GetFresh(udid)
	if !fresh {
		return domainSimulator.Device{UDID: udid}, false, nil
	}
	return device, true, nil
}

func sortedDevices(devices []domainSimulator.Device) []domainSimulator.Device {
	sort.Slice(devices, func(i, j int) bool {
		if devices[i].Name == devices[j].Name {
			return devices[i].UDID < devices[j].UDID
		}
		return devices[i].Name < devices[j].Name
	})
	return devices
}
