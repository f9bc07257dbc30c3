package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	domainSimulator "github.com/crossforge/xcodemcp/domains/simulator"
)

type SimulatorHandler struct {
	simulatorService domainSimulator.ISimulatorUsecase
}

func InitMcpSimulator(simulatorService domainSimulator.ISimulatorUsecase) *SimulatorHandler {
	return &SimulatorHandler{simulatorService: simulatorService}
}

func (h *SimulatorHandler) AddSimulatorTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(h.toolSimulatorList(), h.handleSimulatorList)
	mcpServer.AddTool(h.toolSimulatorBoot(), h.handleSimulatorBoot)
}

func (h *SimulatorHandler) toolSimulatorList() mcp.Tool {
	return mcp.NewTool(
		"simulator_list",
		mcp.WithDescription("List available simulator devices. Served from cache unless stale or force_refresh is set."),
		mcp.WithTitleAnnotation("List Simulators"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithBoolean("force_refresh",
			mcp.Description("Bypass the cache and re-enumerate devices."),
		),
	)
}

func (h *SimulatorHandler) handleSimulatorList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := h.simulatorService.List(ctx, request.GetBool("force_refresh", false))
	if err != nil {
		return nil, err
	}

	source := "fresh enumeration"
	if result.FromCache {
		source = "cache"
	}
	fallback := fmt.Sprintf("Found %d simulators (%s)", len(result.Devices), source)
	return mcp.NewToolResultStructured(result, fallback), nil
}

func (h *SimulatorHandler) toolSimulatorBoot() mcp.Tool {
	return mcp.NewTool(
		"simulator_boot",
		mcp.WithDescription("Boot a simulator by UDID and optionally remember it as the preferred device for a project."),
		mcp.WithTitleAnnotation("Boot Simulator"),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithString("udid",
			mcp.Description("The UDID of the simulator to boot."),
			mcp.Required(),
		),
		mcp.WithString("project_path",
			mcp.Description("Project path to associate this simulator with."),
		),
	)
}

func (h *SimulatorHandler) handleSimulatorBoot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	udid, err := request.RequireString("udid")
	if err != nil {
		return nil, err
	}

	result, err := h.simulatorService.Boot(ctx, udid, request.GetString("project_path", ""))
	if err != nil {
		return nil, err
	}

	fallback := fmt.Sprintf("Simulator %s is now %s", result.UDID, result.State)
	return mcp.NewToolResultStructured(result, fallback), nil
}
