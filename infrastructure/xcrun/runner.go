package xcrun

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Result is the raw capture of one native tool invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Command  string
}

type BuildArgs struct {
	ProjectPath   string
	Scheme        string
	Configuration string
	Destination   string
}

// Runner abstracts the slow native command-line tools so usecases can be
// tested without a macOS toolchain.
type Runner interface {
	SimctlListDevices(ctx context.Context) (Result, error)
	SimctlBoot(ctx context.Context, udid string) (Result, error)
	XcodebuildList(ctx context.Context, projectPath string) (Result, error)
	XcodebuildBuild(ctx context.Context, args BuildArgs) (Result, error)
}

// ExecRunner shells out via os/exec.
type ExecRunner struct {
	XcrunPath      string
	XcodebuildPath string
}

func NewExecRunner(xcrunPath, xcodebuildPath string) *ExecRunner {
	return &ExecRunner{XcrunPath: xcrunPath, XcodebuildPath: xcodebuildPath}
}

func (r *ExecRunner) SimctlListDevices(ctx context.Context) (Result, error) {
	return r.run(ctx, r.XcrunPath, "simctl", "list", "devices", "-j")
}

func (r *ExecRunner) SimctlBoot(ctx context.Context, udid string) (Result, error) {
	return r.run(ctx, r.XcrunPath, "simctl", "boot", udid)
}

func (r *ExecRunner) XcodebuildList(ctx context.Context, projectPath string) (Result, error) {
	return r.run(ctx, r.XcodebuildPath, containerFlag(projectPath), projectPath, "-list", "-json")
}

func (r *ExecRunner) XcodebuildBuild(ctx context.Context, args BuildArgs) (Result, error) {
	cmdArgs := []string{containerFlag(args.ProjectPath), args.ProjectPath, "-scheme", args.Scheme}
	if args.Configuration != "" {
		cmdArgs = append(cmdArgs, "-configuration", args.Configuration)
	}
	if args.Destination != "" {
		cmdArgs = append(cmdArgs, "-destination", args.Destination)
	}
	cmdArgs = append(cmdArgs, "build")
	return r.run(ctx, r.XcodebuildPath, cmdArgs...)
}

// containerFlag picks -workspace or -project based on the path extension.
func containerFlag(path string) string {
	if strings.HasSuffix(path, ".xcworkspace") {
		return "-workspace"
	}
	return "-project"
}

func (r *ExecRunner) run(ctx context.Context, name string, args ...string) (Result, error) {
	command := name + " " + strings.Join(args, " ")
	logrus.Debugf("[XCRUN] Running: %s", command)

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
		Command: command,
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		// Tool missing, context cancelled, and the like.
		return result, err
	}
	return result, nil
}
