package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	domainProject "github.com/crossforge/xcodemcp/domains/project"
	"github.com/crossforge/xcodemcp/infrastructure/cachestore"
	"github.com/crossforge/xcodemcp/infrastructure/xcrun"
	pkgError "github.com/crossforge/xcodemcp/pkg/error"
	"github.com/crossforge/xcodemcp/validations"
)

type projectService struct {
	runner    xcrun.Runner
	projects  *cachestore.EntityCache[string, domainProject.Info]
	responses *cachestore.BlobStore
}

func NewProjectService(
	runner xcrun.Runner,
	projects *cachestore.EntityCache[string, domainProject.Info],
	responses *cachestore.BlobStore,
) domainProject.IProjectUsecase {
	return &projectService{runner: runner, projects: projects, responses: responses}
}

// Describe memoizes `xcodebuild -list` per project path.
func (s *projectService) Describe(ctx context.Context, projectPath string, forceRefresh bool) (domainProject.DescribeResult, error) {
	if projectPath == "" {
		return domainProject.DescribeResult{}, pkgError.ValidationError("project_path is required")
	}

	if !forceRefresh {
		if info, ok := s.projects.GetFresh(projectPath); ok {
			return domainProject.DescribeResult{Info: info, FromCache: true}, nil
		}
	}

	result, err := s.runner.XcodebuildList(ctx, projectPath)
	if err != nil {
		return domainProject.DescribeResult{}, pkgError.InternalServerError(
			fmt.Sprintf("failed to run xcodebuild: %v", err))
	}

	responseID := s.responses.Store("xcodebuild-list", result.Stdout, result.Stderr,
		result.ExitCode, result.Command, map[string]any{"project_path": projectPath})

	if result.ExitCode != 0 {
		return domainProject.DescribeResult{ResponseID: responseID}, pkgError.InternalServerError(
			fmt.Sprintf("xcodebuild list failed with exit code %d, see response %s", result.ExitCode, responseID))
	}

	info, err := xcrun.ParseXcodebuildList(result.Stdout, projectPath)
	if err != nil {
		return domainProject.DescribeResult{ResponseID: responseID}, pkgError.InternalServerError(err.Error())
	}

	s.projects.UpsertOne(projectPath, info)
	logrus.Debugf("[PROJECT] Refreshed metadata for %s", projectPath)

	return domainProject.DescribeResult{Info: info, ResponseID: responseID}, nil
}

// Build always runs the native tool; build output is never memoized. The
// full log goes into the response cache and callers get the id plus a small
// summary instead of the payload.
func (s *projectService) Build(ctx context.Context, request domainProject.BuildRequest) (domainProject.BuildResult, error) {
	if err := validations.ValidateBuildRequest(ctx, request); err != nil {
		return domainProject.BuildResult{}, err
	}

	result, err := s.runner.XcodebuildBuild(ctx, xcrun.BuildArgs{
		ProjectPath:   request.ProjectPath,
		Scheme:        request.Scheme,
		Configuration: request.Configuration,
		Destination:   request.Destination,
	})
	if err != nil {
		return domainProject.BuildResult{}, pkgError.InternalServerError(
			fmt.Sprintf("failed to run xcodebuild: %v", err))
	}

	metadata := map[string]any{
		"project_path": request.ProjectPath,
		"scheme":       request.Scheme,
	}
	if request.Configuration != "" {
		metadata["configuration"] = request.Configuration
	}

	responseID := s.responses.Store("xcodebuild-build", result.Stdout, result.Stderr,
		result.ExitCode, result.Command, metadata)

	logrus.Infof("[PROJECT] Build finished for %s scheme %s, exit code %d",
		request.ProjectPath, request.Scheme, result.ExitCode)

	return domainProject.BuildResult{
		ResponseID:   responseID,
		ExitCode:     result.ExitCode,
		Success:      result.ExitCode == 0,
		LogSizeBytes: int64(len(result.Stdout) + len(result.Stderr)),
	}, nil
}

// BuildLog fetches a stored build log, optionally only its last lines.
func (s *projectService) BuildLog(ctx context.Context, responseID string, tailLines int) (domainProject.BuildLog, error) {
	entry, err := s.responses.Get(responseID)
	if err != nil {
		return domainProject.BuildLog{}, err
	}

	log := entry.FullOutput
	totalLines := strings.Count(log, "\n") + 1
	truncated := false
	if tailLines > 0 {
		log, truncated = tailText(log, tailLines)
	}

	return domainProject.BuildLog{
		ResponseID: responseID,
		ExitCode:   entry.ExitCode,
		Log:        log,
		Truncated:  truncated,
		TotalLines: totalLines,
	}, nil
}

func tailText(text string, n int) (string, bool) {
	lines := strings.Split(text, "\n")
	if len(lines) <= n {
		return text, false
	}
	return strings.Join(lines[len(lines)-n:], "\n"), true
}
