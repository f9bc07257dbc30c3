package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	domainPersistence "github.com/crossforge/xcodemcp/domains/persistence"
)

type PersistenceHandler struct {
	persistenceService domainPersistence.IPersistenceUsecase
}

func InitMcpPersistence(persistenceService domainPersistence.IPersistenceUsecase) *PersistenceHandler {
	return &PersistenceHandler{persistenceService: persistenceService}
}

func (h *PersistenceHandler) AddPersistenceTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(h.toolPersistenceManage(), h.handlePersistenceManage)
}

func (h *PersistenceHandler) toolPersistenceManage() mcp.Tool {
	return mcp.NewTool(
		"persistence_manage",
		mcp.WithDescription("Control disk persistence of the caches: enable, disable or status."),
		mcp.WithTitleAnnotation("Manage Cache Persistence"),
		mcp.WithString("operation",
			mcp.Description("One of enable, disable, status."),
			mcp.Required(),
		),
		mcp.WithString("cache_dir",
			mcp.Description("Directory for snapshots (enable only; defaults to the configured directory)."),
		),
		mcp.WithBoolean("clear_data",
			mcp.Description("Delete snapshot files when disabling."),
		),
		mcp.WithBoolean("include_storage_info",
			mcp.Description("Include disk usage details in the status (requires a filesystem scan)."),
		),
	)
}

func (h *PersistenceHandler) handlePersistenceManage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	operation, err := request.RequireString("operation")
	if err != nil {
		return nil, err
	}

	switch operation {
	case "enable":
		status, err := h.persistenceService.Enable(ctx, request.GetString("cache_dir", ""))
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultStructured(status, fmt.Sprintf("Persistence enabled, cache dir: %s", status.CacheDir)), nil

	case "disable":
		status, err := h.persistenceService.Disable(ctx, request.GetBool("clear_data", false))
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultStructured(status, "Persistence disabled"), nil

	case "status":
		status, err := h.persistenceService.Status(ctx, request.GetBool("include_storage_info", false))
		if err != nil {
			return nil, err
		}
		fallback := fmt.Sprintf("Persistence enabled: %t", status.Enabled)
		return mcp.NewToolResultStructured(status, fallback), nil

	default:
		return nil, fmt.Errorf("unknown operation %q, expected enable, disable or status", operation)
	}
}
