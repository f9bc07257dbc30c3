package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainProject "github.com/crossforge/xcodemcp/domains/project"
	"github.com/crossforge/xcodemcp/infrastructure/cachestore"
	"github.com/crossforge/xcodemcp/infrastructure/xcrun"
	pkgError "github.com/crossforge/xcodemcp/pkg/error"
)

const xcodebuildListOutput = `{
	"project": {
		"name": "App",
		"schemes": ["App"],
		"targets": ["App"],
		"configurations": ["Debug", "Release"]
	}
}`

func newProjectFixture(t *testing.T) (*fakeRunner, domainProject.IProjectUsecase) {
	t.Helper()
	runner := &fakeRunner{
		list:  xcrun.Result{Stdout: xcodebuildListOutput, Command: "xcodebuild -project /tmp/App.xcodeproj -list -json"},
		build: xcrun.Result{Stdout: "line1\nline2\nBUILD SUCCEEDED", Command: "xcodebuild build"},
	}
	projects := cachestore.NewEntityCache[string, domainProject.Info]("project", 5*time.Minute)
	responses := cachestore.NewBlobStore(30 * time.Minute)
	return runner, NewProjectService(runner, projects, responses)
}

func TestProjectDescribeMemoizes(t *testing.T) {
	runner, service := newProjectFixture(t)
	ctx := context.Background()

	first, err := service.Describe(ctx, "/tmp/App.xcodeproj", false)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, "App", first.Info.Name)
	assert.Equal(t, []string{"Debug", "Release"}, first.Info.Configurations)

	second, err := service.Describe(ctx, "/tmp/App.xcodeproj", false)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, 1, runner.listCalls)

	third, err := service.Describe(ctx, "/tmp/App.xcodeproj", true)
	require.NoError(t, err)
	assert.False(t, third.FromCache)
	assert.Equal(t, 2, runner.listCalls)
}

func TestProjectBuildStoresLogAndReturnsID(t *testing.T) {
	runner, service := newProjectFixture(t)
	ctx := context.Background()

	result, err := service.Build(ctx, domainProject.BuildRequest{
		ProjectPath: "/tmp/App.xcodeproj",
		Scheme:      "App",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, runner.buildCalls)
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.ResponseID)
	assert.Equal(t, int64(len("line1\nline2\nBUILD SUCCEEDED")), result.LogSizeBytes)

	log, err := service.BuildLog(ctx, result.ResponseID, 0)
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2\nBUILD SUCCEEDED", log.Log)
	assert.False(t, log.Truncated)
	assert.Equal(t, 3, log.TotalLines)

	tailed, err := service.BuildLog(ctx, result.ResponseID, 1)
	require.NoError(t, err)
	assert.Equal(t, "BUILD SUCCEEDED", tailed.Log)
	assert.True(t, tailed.Truncated)
}

func TestProjectBuildFailureStillStoresLog(t *testing.T) {
	runner, service := newProjectFixture(t)
	runner.build = xcrun.Result{Stdout: "error: no such scheme", ExitCode: 65, Command: "xcodebuild build"}
	ctx := context.Background()

	result, err := service.Build(ctx, domainProject.BuildRequest{
		ProjectPath: "/tmp/App.xcodeproj",
		Scheme:      "Nope",
	})
	require.NoError(t, err, "a failing build is a result, not an error")
	assert.False(t, result.Success)
	assert.Equal(t, 65, result.ExitCode)

	log, err := service.BuildLog(ctx, result.ResponseID, 0)
	require.NoError(t, err)
	assert.Equal(t, 65, log.ExitCode)
	assert.Contains(t, log.Log, "no such scheme")
}

func TestProjectBuildValidatesRequest(t *testing.T) {
	_, service := newProjectFixture(t)

	_, err := service.Build(context.Background(), domainProject.BuildRequest{ProjectPath: "/tmp/App.xcodeproj"})
	require.Error(t, err)
	assert.IsType(t, pkgError.ValidationError(""), err)
}

func TestProjectBuildLogUnknownID(t *testing.T) {
	_, service := newProjectFixture(t)

	_, err := service.BuildLog(context.Background(), "unknown", 0)
	require.Error(t, err)
	assert.IsType(t, pkgError.NotFoundOrExpiredError(""), err)
}
