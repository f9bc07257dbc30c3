package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	globalConfig "github.com/crossforge/xcodemcp/config"
	"github.com/crossforge/xcodemcp/ui/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start Xcode MCP server using SSE",
	Long:  `Start an Xcode MCP (Model Context Protocol) server using Server-Sent Events (SSE) transport. This allows AI agents to drive simulators and builds through a standardized protocol.`,
	Run:   mcpServer,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&globalConfig.McpPort, "port", "8080", "Port for the SSE MCP server")
	mcpCmd.Flags().StringVar(&globalConfig.McpHost, "host", "localhost", "Host for the SSE MCP server")
}

func mcpServer(_ *cobra.Command, _ []string) {
	mcpServer := server.NewMCPServer(
		"Xcode Automation MCP Server",
		globalConfig.AppVersion,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, true),
	)

	cacheHandler := mcp.InitMcpCache(cacheUsecase)
	cacheHandler.AddCacheTools(mcpServer)

	persistenceHandler := mcp.InitMcpPersistence(persistenceUsecase)
	persistenceHandler.AddPersistenceTools(mcpServer)

	simulatorHandler := mcp.InitMcpSimulator(simulatorUsecase)
	simulatorHandler.AddSimulatorTools(mcpServer)

	projectHandler := mcp.InitMcpProject(projectUsecase)
	projectHandler.AddProjectTools(mcpServer)

	sseServer := server.NewSSEServer(
		mcpServer,
		server.WithBaseURL(fmt.Sprintf("http://%s:%s", globalConfig.McpHost, globalConfig.McpPort)),
		server.WithKeepAlive(true),
	)

	addr := fmt.Sprintf("%s:%s", globalConfig.McpHost, globalConfig.McpPort)
	logrus.Printf("Starting Xcode MCP SSE server on %s", addr)
	logrus.Printf("SSE endpoint: http://%s:%s/sse", globalConfig.McpHost, globalConfig.McpPort)
	logrus.Printf("Message endpoint: http://%s:%s/message", globalConfig.McpHost, globalConfig.McpPort)

	// Graceful shutdown handler
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[MCP] Reception of termination signal, shutting down gracefully...")
		StopApp()
		os.Exit(0)
	}()

	if err := sseServer.Start(addr); err != nil {
		logrus.Fatalf("Failed to start SSE server: %v", err)
	}
}
