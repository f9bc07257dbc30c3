package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	globalConfig "github.com/crossforge/xcodemcp/config"
	"github.com/crossforge/xcodemcp/ui/rest"
	"github.com/crossforge/xcodemcp/ui/rest/middleware"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Serve the Xcode automation API over http",
	Long:  `Serve simulator, project and cache management endpoints over HTTP.`,
	Run:   restServer,
}

func init() {
	rootCmd.AddCommand(restCmd)
}

func restServer(_ *cobra.Command, _ []string) {
	app := fiber.New(fiber.Config{
		Network:               "tcp",
		AppName:               "Xcode Automation Server",
		DisableStartupMessage: false,
	})

	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.Recovery())

	if globalConfig.AppDebug {
		app.Use(logger.New())
	}

	apiGroup := app.Group("/api")
	rest.InitRestApp(apiGroup)
	rest.InitRestCache(apiGroup, cacheUsecase)
	rest.InitRestPersistence(apiGroup, persistenceUsecase)
	rest.InitRestSimulator(apiGroup, simulatorUsecase)
	rest.InitRestProject(apiGroup, projectUsecase)

	// Graceful shutdown handler
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] Reception of termination signal, shutting down gracefully...")
		StopApp()
		_ = app.Shutdown()
	}()

	if err := app.Listen(":" + globalConfig.AppPort); err != nil {
		logrus.Fatalf("Failed to start REST server: %v", err)
	}
}
