package project

import "context"

// Info is the metadata `xcodebuild -list -json` reports for one project
// or workspace path.
type Info struct {
	Path           string   `json:"path"`
	Name           string   `json:"name"`
	Schemes        []string `json:"schemes"`
	Targets        []string `json:"targets,omitempty"`
	Configurations []string `json:"configurations,omitempty"`
}

type DescribeResult struct {
	Info       Info   `json:"info"`
	FromCache  bool   `json:"from_cache"`
	ResponseID string `json:"response_id,omitempty"`
}

type BuildRequest struct {
	ProjectPath   string `json:"project_path"`
	Scheme        string `json:"scheme"`
	Configuration string `json:"configuration,omitempty"`
	Destination   string `json:"destination,omitempty"`
}

// BuildResult hands back an id instead of the raw log; callers fetch slices
// of the log through BuildLog.
type BuildResult struct {
	ResponseID   string `json:"response_id"`
	ExitCode     int    `json:"exit_code"`
	Success      bool   `json:"success"`
	LogSizeBytes int64  `json:"log_size_bytes"`
}

type BuildLog struct {
	ResponseID string `json:"response_id"`
	ExitCode   int    `json:"exit_code"`
	Log        string `json:"log"`
	Truncated  bool   `json:"truncated"`
	TotalLines int    `json:"total_lines"`
}

type IProjectUsecase interface {
	Describe(ctx context.Context, projectPath string, forceRefresh bool) (DescribeResult, error)
	Build(ctx context.Context, request BuildRequest) (BuildResult, error)
	BuildLog(ctx context.Context, responseID string, tailLines int) (BuildLog, error)
}
