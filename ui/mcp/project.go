package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	domainProject "github.com/crossforge/xcodemcp/domains/project"
)

type ProjectHandler struct {
	projectService domainProject.IProjectUsecase
}

func InitMcpProject(projectService domainProject.IProjectUsecase) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

func (h *ProjectHandler) AddProjectTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(h.toolProjectDescribe(), h.handleProjectDescribe)
	mcpServer.AddTool(h.toolProjectBuild(), h.handleProjectBuild)
	mcpServer.AddTool(h.toolBuildLog(), h.handleBuildLog)
}

func (h *ProjectHandler) toolProjectDescribe() mcp.Tool {
	return mcp.NewTool(
		"project_describe",
		mcp.WithDescription("List schemes, targets and configurations of a project or workspace. Served from cache when fresh."),
		mcp.WithTitleAnnotation("Describe Project"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithString("project_path",
			mcp.Description("Path to the .xcodeproj or .xcworkspace."),
			mcp.Required(),
		),
		mcp.WithBoolean("force_refresh",
			mcp.Description("Bypass the cache and re-query xcodebuild."),
		),
	)
}

func (h *ProjectHandler) handleProjectDescribe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectPath, err := request.RequireString("project_path")
	if err != nil {
		return nil, err
	}

	result, err := h.projectService.Describe(ctx, projectPath, request.GetBool("force_refresh", false))
	if err != nil {
		return nil, err
	}

	fallback := fmt.Sprintf("Project %s has %d schemes", result.Info.Name, len(result.Info.Schemes))
	return mcp.NewToolResultStructured(result, fallback), nil
}

func (h *ProjectHandler) toolProjectBuild() mcp.Tool {
	return mcp.NewTool(
		"project_build",
		mcp.WithDescription("Build a scheme. Returns a response id for the full build log instead of the log itself."),
		mcp.WithTitleAnnotation("Build Project"),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithString("project_path",
			mcp.Description("Path to the .xcodeproj or .xcworkspace."),
			mcp.Required(),
		),
		mcp.WithString("scheme",
			mcp.Description("The scheme to build."),
			mcp.Required(),
		),
		mcp.WithString("configuration",
			mcp.Description("Build configuration, e.g. Debug or Release."),
		),
		mcp.WithString("destination",
			mcp.Description("xcodebuild destination specifier."),
		),
	)
}

func (h *ProjectHandler) handleProjectBuild(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectPath, err := request.RequireString("project_path")
	if err != nil {
		return nil, err
	}
	scheme, err := request.RequireString("scheme")
	if err != nil {
		return nil, err
	}

	result, err := h.projectService.Build(ctx, domainProject.BuildRequest{
		ProjectPath:   projectPath,
		Scheme:        scheme,
		Configuration: request.GetString("configuration", ""),
		Destination:   request.GetString("destination", ""),
	})
	if err != nil {
		return nil, err
	}

	outcome := "succeeded"
	if !result.Success {
		outcome = fmt.Sprintf("failed with exit code %d", result.ExitCode)
	}
	fallback := fmt.Sprintf("Build %s, full log available as response %s", outcome, result.ResponseID)
	return mcp.NewToolResultStructured(result, fallback), nil
}

func (h *ProjectHandler) toolBuildLog() mcp.Tool {
	return mcp.NewTool(
		"build_log",
		mcp.WithDescription("Fetch a stored build log by response id, optionally only the last N lines."),
		mcp.WithTitleAnnotation("Get Build Log"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("response_id",
			mcp.Description("The response id returned by project_build."),
			mcp.Required(),
		),
		mcp.WithNumber("tail_lines",
			mcp.Description("Return only the last N lines of the log."),
		),
	)
}

func (h *ProjectHandler) handleBuildLog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	responseID, err := request.RequireString("response_id")
	if err != nil {
		return nil, err
	}

	log, err := h.projectService.BuildLog(ctx, responseID, int(request.GetFloat("tail_lines", 0)))
	if err != nil {
		return nil, err
	}

	fallback := fmt.Sprintf("Build log %s, %d lines total", log.ResponseID, log.TotalLines)
	return mcp.NewToolResultStructured(log, fallback), nil
}
