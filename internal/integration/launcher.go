// Package integration connects AutoSpark to the operating system: it starts
// compiled scripts in their own console.
package integration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// ErrScriptNotFound is returned when the script to launch does not exist.
var ErrScriptNotFound = errors.New("script not found")

// LaunchResult describes a started script. The process is not awaited.
type LaunchResult struct {
	PID     int
	Command []string
}

// StartFunc starts cmd without waiting for it and returns its process ID.
type StartFunc func(cmd *exec.Cmd) (int, error)

// ScriptLauncher starts compiled scripts as detached processes.
type ScriptLauncher interface {
	// Launch runs the configured command with scriptPath appended. It
	// returns as soon as the process has started.
	Launch(ctx context.Context, scriptPath string) (*LaunchResult, error)
	// BuildEnv returns base plus the AUTOSPARK_* variables for scriptPath.
	BuildEnv(base []string, scriptPath string) []string
}

// scriptLauncher implements ScriptLauncher.
type scriptLauncher struct {
	command string
	args    []string
	start   StartFunc
}

// NewScriptLauncher creates a ScriptLauncher that runs
// "<command> <args...> <script>", e.g. "cmd /c C:\tasks\morning.bat".
func NewScriptLauncher(command string, args []string) ScriptLauncher {
	return NewScriptLauncherWithStart(command, args, startDetached)
}

// NewScriptLauncherWithStart is NewScriptLauncher with a custom start
// function. A nil start uses the default, which releases the process handle.
func NewScriptLauncherWithStart(command string, args []string, start StartFunc) ScriptLauncher {
	if start == nil {
		start = startDetached
	}
	return &scriptLauncher{
		command: command,
		args:    append([]string(nil), args...),
		start:   start,
	}
}

// BuildEnv appends AUTOSPARK_SCRIPT to the base environment.
func (l *scriptLauncher) BuildEnv(base []string, scriptPath string) []string {
	env := make([]string, len(base), len(base)+1)
	copy(env, base)
	return append(env, "AUTOSPARK_SCRIPT="+scriptPath)
}

func (l *scriptLauncher) Launch(ctx context.Context, scriptPath string) (*LaunchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(scriptPath)
	if err != nil {
		return nil, fmt.Errorf("resolving script path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrScriptNotFound, abs)
		}
		return nil, fmt.Errorf("checking script %s: %w", abs, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrScriptNotFound, abs)
	}

	argv := make([]string, 0, len(l.args)+1)
	argv = append(argv, l.args...)
	argv = append(argv, abs)

	// Not CommandContext: the script must outlive the caller's context.
	cmd := exec.Command(l.command, argv...)
	cmd.Dir = filepath.Dir(abs)
	cmd.Env = l.BuildEnv(os.Environ(), abs)
	detach(cmd)

	pid, err := l.start(cmd)
	if err != nil {
		return nil, fmt.Errorf("starting %s: %w", l.command, err)
	}

	return &LaunchResult{
		PID:     pid,
		Command: append([]string{l.command}, argv...),
	}, nil
}

// startDetached starts cmd and releases it so no zombie handle is kept.
func startDetached(cmd *exec.Cmd) (int, error) {
	if err := cmd.Start(); err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("releasing process %d: %w", pid, err)
	}
	return pid, nil
}
