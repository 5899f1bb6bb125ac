// Package process launches external test-generation processes with os/exec.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"vertextester/internal/application/common/slogger"
	"vertextester/internal/port/outbound"
)

// ExecLauncher starts invocations as child processes of the current process.
// Children are not bound to a context: once started they run to completion.
type ExecLauncher struct {
	// Dir is the working directory of children; empty means the current one.
	Dir string
	// Env, when non-nil, replaces the inherited environment.
	Env []string
}

// NewExecLauncher returns a launcher that inherits the caller's environment.
func NewExecLauncher() *ExecLauncher {
	return &ExecLauncher{}
}

// Launch implements outbound.ProcessLauncher.
func (l *ExecLauncher) Launch(inv outbound.Invocation) (outbound.ProcessHandle, error) {
	if len(inv.Script) == 0 || inv.Script[0] == "" {
		return nil, errors.New("script command is empty")
	}

	cmd := exec.Command(inv.Script[0], inv.Args()...) //nolint:gosec // the script is operator-configured
	cmd.Dir = l.Dir
	if l.Env != nil {
		cmd.Env = l.Env
	}

	h := &execHandle{cmd: cmd}
	cmd.Stdout = &h.stdout
	cmd.Stderr = &h.stderr

	h.started = time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", inv.Script[0], err)
	}

	slogger.Debug(context.Background(), "Started test generation process", slogger.Fields{
		"pid":  cmd.Process.Pid,
		"file": inv.FilePath,
	})

	return h, nil
}

type execHandle struct {
	cmd     *exec.Cmd
	stdout  bytes.Buffer
	stderr  bytes.Buffer
	started time.Time

	once   sync.Once
	result *outbound.InvocationResult
	err    error
}

// Wait implements outbound.ProcessHandle. It may be called more than once.
func (h *execHandle) Wait() (*outbound.InvocationResult, error) {
	h.once.Do(func() {
		waitErr := h.cmd.Wait()

		exitCode := -1
		if h.cmd.ProcessState != nil {
			exitCode = h.cmd.ProcessState.ExitCode()
		}
		h.result = &outbound.InvocationResult{
			ExitCode: exitCode,
			Stdout:   h.stdout.String(),
			Stderr:   h.stderr.String(),
			Duration: time.Since(h.started),
		}

		if waitErr != nil {
			var exitErr *exec.ExitError
			if errors.As(waitErr, &exitErr) {
				h.err = fmt.Errorf("%w%s", waitErr, stderrSuffix(h.result.Stderr))
			} else {
				h.err = waitErr
			}
		}
	})
	return h.result, h.err
}

// stderrSuffix appends the last stderr line so notifications carry the
// collaborator's own message.
func stderrSuffix(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if last == "" {
		return ""
	}
	return ": " + last
}
