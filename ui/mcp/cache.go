package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	domainCache "github.com/crossforge/xcodemcp/domains/cache"
)

type CacheHandler struct {
	cacheService domainCache.ICacheUsecase
}

func InitMcpCache(cacheService domainCache.ICacheUsecase) *CacheHandler {
	return &CacheHandler{cacheService: cacheService}
}

func (h *CacheHandler) AddCacheTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(h.toolCacheManage(), h.handleCacheManage)
	mcpServer.AddTool(h.toolResponseList(), h.handleResponseList)
	mcpServer.AddTool(h.toolResponseGet(), h.handleResponseGet)
}

func (h *CacheHandler) toolCacheManage() mcp.Tool {
	return mcp.NewTool(
		"cache_manage",
		mcp.WithDescription("Inspect or change the in-process caches: get-stats, get-config, set-config or clear."),
		mcp.WithTitleAnnotation("Manage Caches"),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("operation",
			mcp.Description("One of get-stats, get-config, set-config, clear."),
			mcp.Required(),
		),
		mcp.WithString("cache_type",
			mcp.Description("Which cache to address: simulator, project, response or all. Defaults to all."),
		),
		mcp.WithNumber("duration_ms",
			mcp.Description("New max age in milliseconds (set-config only; supply exactly one duration field)."),
		),
		mcp.WithNumber("duration_minutes",
			mcp.Description("New max age in minutes (set-config only)."),
		),
		mcp.WithNumber("duration_hours",
			mcp.Description("New max age in hours (set-config only)."),
		),
	)
}

func (h *CacheHandler) handleCacheManage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	operation, err := request.RequireString("operation")
	if err != nil {
		return nil, err
	}

	cacheType := request.GetString("cache_type", string(domainCache.TypeAll))

	switch operation {
	case "get-stats":
		stats, err := h.cacheService.GetStats(ctx, cacheType)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultStructured(stats, "Cache statistics retrieved"), nil

	case "get-config":
		config, err := h.cacheService.GetConfig(ctx)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultStructured(config, "Cache configuration retrieved"), nil

	case "set-config":
		setRequest := domainCache.SetConfigRequest{CacheType: cacheType}
		if v := request.GetFloat("duration_ms", 0); v != 0 {
			ms := int64(v)
			setRequest.DurationMs = &ms
		}
		if v := request.GetFloat("duration_minutes", 0); v != 0 {
			minutes := int64(v)
			setRequest.DurationMinutes = &minutes
		}
		if v := request.GetFloat("duration_hours", 0); v != 0 {
			hours := int64(v)
			setRequest.DurationHours = &hours
		}
		config, err := h.cacheService.SetConfig(ctx, setRequest)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultStructured(config, "Cache configuration updated"), nil

	case "clear":
		result, err := h.cacheService.Clear(ctx, cacheType)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultStructured(result, fmt.Sprintf("Cleared caches: %v", result.Cleared)), nil

	default:
		return nil, fmt.Errorf("unknown operation %q, expected get-stats, get-config, set-config or clear", operation)
	}
}

func (h *CacheHandler) toolResponseList() mcp.Tool {
	return mcp.NewTool(
		"response_list",
		mcp.WithDescription("List stored command responses, newest first, optionally filtered by producing tool."),
		mcp.WithTitleAnnotation("List Stored Responses"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithString("tool",
			mcp.Description("Exact tool name to filter by, e.g. xcodebuild-build."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of entries to return."),
		),
	)
}

func (h *CacheHandler) handleResponseList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	listRequest := domainCache.ListResponsesRequest{
		Tool:  request.GetString("tool", ""),
		Limit: int(request.GetFloat("limit", 0)),
	}

	response, err := h.cacheService.ListResponses(ctx, listRequest)
	if err != nil {
		return nil, err
	}

	fallback := fmt.Sprintf("Found %d stored responses", response.TotalEntries)
	return mcp.NewToolResultStructured(response, fallback), nil
}

func (h *CacheHandler) toolResponseGet() mcp.Tool {
	return mcp.NewTool(
		"response_get",
		mcp.WithDescription("Fetch a stored command response by id, optionally only the last N lines of output."),
		mcp.WithTitleAnnotation("Get Stored Response"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("response_id",
			mcp.Description("The id returned when the response was stored."),
			mcp.Required(),
		),
		mcp.WithNumber("tail_lines",
			mcp.Description("Return only the last N lines of the full output."),
		),
	)
}

func (h *CacheHandler) handleResponseGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	responseID, err := request.RequireString("response_id")
	if err != nil {
		return nil, err
	}

	detail, err := h.cacheService.GetResponse(ctx, responseID, int(request.GetFloat("tail_lines", 0)))
	if err != nil {
		return nil, err
	}

	fallback := fmt.Sprintf("Response %s from %s (%d bytes)", detail.ID, detail.Tool, detail.SizeBytes)
	return mcp.NewToolResultStructured(detail, fallback), nil
}
