package simulator

import "context"

// Device is one simulator as reported by `xcrun simctl list devices -j`.
type Device struct {
	UDID        string `json:"udid"`
	Name        string `json:"name"`
	Runtime     string `json:"runtime"`
	State       string `json:"state"`
	IsAvailable bool   `json:"is_available"`
}

type ListResult struct {
	Devices    []Device `json:"devices"`
	FromCache  bool     `json:"from_cache"`
	ResponseID string   `json:"response_id,omitempty"`
}

type BootResult struct {
	UDID       string `json:"udid"`
	State      string `json:"state"`
	ResponseID string `json:"response_id,omitempty"`
}

type ISimulatorUsecase interface {
	List(ctx context.Context, forceRefresh bool) (ListResult, error)
	Boot(ctx context.Context, udid string, projectPath string) (BootResult, error)
	Preferred(ctx context.Context, projectPath string) (Device, bool, error)
}
