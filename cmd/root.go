package cmd

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	globalConfig "github.com/crossforge/xcodemcp/config"
	domainCache "github.com/crossforge/xcodemcp/domains/cache"
	domainPersistence "github.com/crossforge/xcodemcp/domains/persistence"
	domainProject "github.com/crossforge/xcodemcp/domains/project"
	domainSimulator "github.com/crossforge/xcodemcp/domains/simulator"
	"github.com/crossforge/xcodemcp/infrastructure/cachestore"
	"github.com/crossforge/xcodemcp/infrastructure/settingstore"
	"github.com/crossforge/xcodemcp/infrastructure/xcrun"
	"github.com/crossforge/xcodemcp/pkg/utils"
	"github.com/crossforge/xcodemcp/usecase"
)

var (
	// Stores
	deviceCache    *cachestore.EntityCache[string, domainSimulator.Device]
	projectCache   *cachestore.EntityCache[string, domainProject.Info]
	responseCache  *cachestore.BlobStore
	persistManager *cachestore.PersistenceManager
	settingsStore  *settingstore.Store

	// Usecase
	cacheUsecase       domainCache.ICacheUsecase
	persistenceUsecase domainPersistence.IPersistenceUsecase
	simulatorUsecase   domainSimulator.ISimulatorUsecase
	projectUsecase     domainProject.IProjectUsecase
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Short: "Xcode developer automation server",
	Long: `Expose simulator and project automation over MCP and HTTP, backed by
in-process caches that survive restarts when persistence is enabled.`,
}

func init() {
	// Load environment variables first
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Initialize flags first, before any subcommands are added
	initFlags()

	// Then initialize other components
	cobra.OnInitialize(initEnvConfig, initApp)
}

// initEnvConfig loads configuration from environment variables
func initEnvConfig() {
	if envPort := viper.GetString("app_port"); envPort != "" {
		globalConfig.AppPort = envPort
	}
	if envDebug := viper.GetBool("app_debug"); envDebug {
		globalConfig.AppDebug = envDebug
	}
	if envOs := viper.GetString("app_os"); envOs != "" {
		globalConfig.AppOs = envOs
	}
	if envCacheDir := viper.GetString("persistence_cache_dir"); envCacheDir != "" {
		globalConfig.PersistenceCacheDir = envCacheDir
	}
	if envXcrun := viper.GetString("xcrun_path"); envXcrun != "" {
		globalConfig.XcrunPath = envXcrun
	}
	if envXcodebuild := viper.GetString("xcodebuild_path"); envXcodebuild != "" {
		globalConfig.XcodebuildPath = envXcodebuild
	}
}

func initFlags() {
	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.AppPort,
		"port", "p",
		globalConfig.AppPort,
		"change port number with --port <number> | example: --port=8080",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&globalConfig.AppDebug,
		"debug", "d",
		globalConfig.AppDebug,
		"hide or displaying log with --debug <true/false> | example: --debug=true",
	)
	rootCmd.PersistentFlags().DurationVarP(
		&globalConfig.SimulatorCacheMaxAge,
		"simulator-cache-max-age", "",
		globalConfig.SimulatorCacheMaxAge,
		`max age of the simulator device cache | example: --simulator-cache-max-age=30s`,
	)
	rootCmd.PersistentFlags().DurationVarP(
		&globalConfig.ProjectCacheMaxAge,
		"project-cache-max-age", "",
		globalConfig.ProjectCacheMaxAge,
		`max age of the project metadata cache | example: --project-cache-max-age=10m`,
	)
	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.PersistenceCacheDir,
		"cache-dir", "",
		globalConfig.PersistenceCacheDir,
		`directory for cache snapshots when persistence is enabled | example: --cache-dir="storages/cache"`,
	)
	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.XcrunPath,
		"xcrun-path", "",
		globalConfig.XcrunPath,
		`path to the xcrun binary | example: --xcrun-path="/usr/bin/xcrun"`,
	)
	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.XcodebuildPath,
		"xcodebuild-path", "",
		globalConfig.XcodebuildPath,
		`path to the xcodebuild binary | example: --xcodebuild-path="/usr/bin/xcodebuild"`,
	)
}

func initApp() {
	if globalConfig.AppDebug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if err := utils.CreateFolder(globalConfig.PathStorages); err != nil {
		logrus.Errorln(err)
	}

	ctx := context.Background()

	// 1. Stores
	deviceCache = cachestore.NewEntityCache[string, domainSimulator.Device]("simulator", globalConfig.SimulatorCacheMaxAge)
	projectCache = cachestore.NewEntityCache[string, domainProject.Info]("project", globalConfig.ProjectCacheMaxAge)
	responseCache = cachestore.NewBlobStore(globalConfig.ResponseRetention)

	persistManager = cachestore.NewPersistenceManager(
		globalConfig.PersistenceSchemaVersion,
		cachestore.PersistTarget{Name: "simulator", Source: deviceCache},
		cachestore.PersistTarget{Name: "project", Source: projectCache},
	)
	deviceCache.SetOnChange(func() { persistManager.RequestSave("simulator") })
	projectCache.SetOnChange(func() { persistManager.RequestSave("project") })

	// 2. Saved settings override the static defaults
	settingsStore = settingstore.New(filepath.Join(globalConfig.PathStorages, "settings.db"))
	saved, err := settingsStore.Load(ctx, settingstore.Settings{
		SimulatorMaxAgeMs:   globalConfig.SimulatorCacheMaxAge.Milliseconds(),
		ProjectMaxAgeMs:     globalConfig.ProjectCacheMaxAge.Milliseconds(),
		PersistenceCacheDir: globalConfig.PersistenceCacheDir,
	})
	if err != nil {
		logrus.WithError(err).Warn("[APP] Failed to load saved settings, using defaults")
		saved = settingstore.Settings{
			SimulatorMaxAgeMs:   globalConfig.SimulatorCacheMaxAge.Milliseconds(),
			ProjectMaxAgeMs:     globalConfig.ProjectCacheMaxAge.Milliseconds(),
			PersistenceCacheDir: globalConfig.PersistenceCacheDir,
		}
	}
	if err := deviceCache.SetMaxAge(time.Duration(saved.SimulatorMaxAgeMs) * time.Millisecond); err != nil {
		logrus.WithError(err).Warn("[APP] Ignoring saved simulator cache max age")
	}
	if err := projectCache.SetMaxAge(time.Duration(saved.ProjectMaxAgeMs) * time.Millisecond); err != nil {
		logrus.WithError(err).Warn("[APP] Ignoring saved project cache max age")
	}
	if saved.PersistenceEnabled {
		cacheDir := saved.PersistenceCacheDir
		if cacheDir == "" {
			cacheDir = globalConfig.PersistenceCacheDir
		}
		if err := persistManager.Enable(cacheDir); err != nil {
			logrus.WithError(err).Warn("[APP] Failed to re-enable persistence, starting without it")
		}
	}

	// 3. Usecases
	runner := xcrun.NewExecRunner(globalConfig.XcrunPath, globalConfig.XcodebuildPath)
	cacheUsecase = usecase.NewCacheService(deviceCache, projectCache, responseCache, settingsStore)
	persistenceUsecase = usecase.NewPersistenceService(persistManager, settingsStore)
	simulatorUsecase = usecase.NewSimulatorService(runner, deviceCache, responseCache)
	projectUsecase = usecase.NewProjectService(runner, projectCache, responseCache)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// StopApp performs a clean shutdown, waiting for in-flight snapshot writes.
func StopApp() {
	logrus.Info("[APP] Stopping application...")

	if persistManager != nil {
		persistManager.Flush()
	}

	logrus.Info("[APP] Application stopped cleanly.")
}
