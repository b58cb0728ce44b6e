// Package executor runs host commands and captures their output.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ExecCommandFunc creates the exec.Cmd for an invocation. Tests inject a
// fake to avoid touching the host.
type ExecCommandFunc func(ctx context.Context, command string, args ...string) *exec.Cmd

type Executor struct {
	execCommand ExecCommandFunc
}

// ExitError carries the exit code and stderr of a failed command.
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command %q exited with code %d: %s", e.Command, e.ExitCode, strings.TrimSpace(e.Stderr))
}

// Execute runs the command and returns its standard output.
func (e *Executor) Execute(ctx context.Context, command string, args ...string) (string, error) {
	cmd := e.execCommand(ctx, command, args...)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.String(), &ExitError{
				Command:  command + " " + strings.Join(args, " "),
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
			}
		}

		return "", fmt.Errorf("failed to run cmd: %w", err)
	}

	return stdout.String(), nil
}

func New() *Executor {
	return &Executor{execCommand: exec.CommandContext}
}

func NewWithCommand(execCommand ExecCommandFunc) *Executor {
	return &Executor{execCommand: execCommand}
}
