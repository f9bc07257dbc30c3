package xcrun

import (
	"encoding/json"
	"fmt"
	"strings"

	domainProject "github.com/crossforge/xcodemcp/domains/project"
	domainSimulator "github.com/crossforge/xcodemcp/domains/simulator"
)

type simctlDeviceList struct {
	Devices map[string][]simctlDevice `json:"devices"`
}

type simctlDevice struct {
	UDID        string `json:"udid"`
	Name        string `json:"name"`
	State       string `json:"state"`
	IsAvailable bool   `json:"isAvailable"`
}

// ParseSimctlDevices decodes `simctl list devices -j` output into device
// records keyed by UDID.
func ParseSimctlDevices(stdout string) (map[string]domainSimulator.Device, error) {
	var list simctlDeviceList
	if err := json.Unmarshal([]byte(stdout), &list); err != nil {
		return nil, fmt.Errorf("failed to decode simctl device list: %w", err)
	}

	devices := make(map[string]domainSimulator.Device)
	for runtime, runtimeDevices := range list.Devices {
		for _, device := range runtimeDevices {
			devices[device.UDID] = domainSimulator.Device{
				UDID:        device.UDID,
				Name:        device.Name,
				Runtime:     shortRuntime(runtime),
				State:       device.State,
				IsAvailable: device.IsAvailable,
			}
		}
	}
	return devices, nil
}

// shortRuntime turns "com.apple.CoreSimulator.SimRuntime.iOS-17-0" into
// "iOS-17-0".
func shortRuntime(identifier string) string {
	if idx := strings.LastIndex(identifier, "."); idx >= 0 {
		return identifier[idx+1:]
	}
	return identifier
}

type xcodebuildList struct {
	Project   *xcodebuildContainer `json:"project"`
	Workspace *xcodebuildContainer `json:"workspace"`
}

type xcodebuildContainer struct {
	Name           string   `json:"name"`
	Schemes        []string `json:"schemes"`
	Targets        []string `json:"targets"`
	Configurations []string `json:"configurations"`
}

// ParseXcodebuildList decodes `xcodebuild -list -json` output.
func ParseXcodebuildList(stdout, projectPath string) (domainProject.Info, error) {
	var list xcodebuildList
	if err := json.Unmarshal([]byte(stdout), &list); err != nil {
		return domainProject.Info{}, fmt.Errorf("failed to decode xcodebuild list output: %w", err)
	}

	container := list.Project
	if container == nil {
		container = list.Workspace
	}
	if container == nil {
		return domainProject.Info{}, fmt.Errorf("xcodebuild list output has neither project nor workspace")
	}

	return domainProject.Info{
		Path:           projectPath,
		Name:           container.Name,
		Schemes:        container.Schemes,
		Targets:        container.Targets,
		Configurations: container.Configurations,
	}, nil
}
