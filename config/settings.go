package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	AppVersion = "v1.0.0"
	AppPort    = "3000"
	AppDebug   = false
	AppOs      = "Xcodemcp"

	McpPort = "8080"
	McpHost = "localhost"

	PathStorages = "storages"

	// TTL entity cache defaults. Configurable at runtime through the cache
	// facade, floor enforced at 1 second.
	SimulatorCacheMaxAge = 60 * time.Second
	ProjectCacheMaxAge   = 5 * time.Minute
	CacheMaxAgeFloor     = 1 * time.Second

	// Response cache retention is a fixed policy, reported but never settable.
	ResponseRetention = 30 * time.Minute

	// Persistence snapshot format version. Snapshots written under a
	// different version are discarded wholesale on load.
	PersistenceSchemaVersion = 1
	PersistenceCacheDir      = "storages/cache"

	// Paths of the native tools the usecases shell out to.
	XcrunPath      = "xcrun"
	XcodebuildPath = "xcodebuild"
)

func init() {
	if v := strings.TrimSpace(os.Getenv("SIMULATOR_CACHE_MAX_AGE_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= int(CacheMaxAgeFloor/time.Millisecond) {
			SimulatorCacheMaxAge = time.Duration(n) * time.Millisecond
		}
	}
	if v := strings.TrimSpace(os.Getenv("PROJECT_CACHE_MAX_AGE_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= int(CacheMaxAgeFloor/time.Millisecond) {
			ProjectCacheMaxAge = time.Duration(n) * time.Millisecond
		}
	}
	if v := strings.TrimSpace(os.Getenv("PERSISTENCE_CACHE_DIR")); v != "" {
		PersistenceCacheDir = v
	}
	if v := strings.TrimSpace(os.Getenv("XCRUN_PATH")); v != "" {
		XcrunPath = v
	}
	if v := strings.TrimSpace(os.Getenv("XCODEBUILD_PATH")); v != "" {
		XcodebuildPath = v
	}
}
