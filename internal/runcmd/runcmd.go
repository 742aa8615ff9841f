// Package runcmd executes external toolchain commands with context
// cancellation, process-group cleanup, and bounded output capture.
//
// The Runner interface exists so pipeline code can be tested without
// spawning real subprocesses; ExecRunner is the production implementation.
package runcmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Sentinel errors for command execution.
var (
	ErrEmptyCommand    = errors.New("command cannot be empty")
	ErrCommandNotFound = errors.New("command not found")
	ErrNonZeroExit     = errors.New("command exited with non-zero status")
)

// DefaultMaxOutputBytes caps captured output per stream. TeX engines write
// megabytes of page digits; only the tail matters for error display.
const DefaultMaxOutputBytes = 64 << 10

// waitDelay bounds how long Wait blocks on I/O after the process is killed.
const waitDelay = 5 * time.Second

// Spec describes a single command invocation.
type Spec struct {
	Command string   // binary name or absolute path
	Args    []string // arguments, exec-style (no shell)
	Dir     string   // working directory (empty = inherit)
	Env     []string // extra KEY=VALUE entries appended to the inherited environment
}

// Result captures the observable outcome of a command.
type Result struct {
	ExitCode int
	Seconds  float64 // wall-clock duration
	Stdout   string  // tail, capped at MaxOutputBytes
	Stderr   string  // tail, capped at MaxOutputBytes
}

// Runner abstracts command execution to enable testing without real subprocesses.
type Runner interface {
	Run(ctx context.Context, spec Spec) (Result, error)
}

// ExecRunner implements Runner using os/exec.
type ExecRunner struct {
	// MaxOutputBytes overrides the per-stream capture cap when > 0.
	MaxOutputBytes int
}

var _ Runner = (*ExecRunner)(nil)

func (r *ExecRunner) Run(ctx context.Context, spec Spec) (Result, error) {
	if spec.Command == "" {
		return Result{}, ErrEmptyCommand
	}
	if ctx == nil {
		ctx = context.Background()
	}

	limit := r.MaxOutputBytes
	if limit <= 0 {
		limit = DefaultMaxOutputBytes
	}
	stdout := newTailWriter(limit)
	stderr := newTailWriter(limit)

	cmd := exec.CommandContext(ctx, spec.Command, spec.Args...) // #nosec G204 -- command comes from the manifest
	cmd.Dir = spec.Dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), spec.Env...)
	}
	setProcessGroup(cmd)
	cmd.WaitDelay = waitDelay
	// TeX engines fork helper processes; kill the whole group so
	// cancellation never leaves orphans holding the build directory.
	// Cancel only fires after a successful Start, so Process is non-nil.
	cmd.Cancel = func() error {
		killProcessGroup(cmd.Process.Pid)
		return cmd.Process.Kill()
	}

	start := time.Now()
	err := cmd.Run()
	result := Result{
		ExitCode: -1, // ProcessState is nil when the binary never started
		Seconds:  time.Since(start).Seconds(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err == nil {
		return result, nil
	}

	// Context errors take priority: a killed process also reports a bogus
	// exit status, and callers dispatch on timeout vs failure.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("running %s: %w", spec.Command, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, fmt.Errorf("%w: %s exited %d", ErrNonZeroExit, spec.Command, result.ExitCode)
	}

	if errors.Is(err, exec.ErrNotFound) {
		return result, fmt.Errorf("%w: %s", ErrCommandNotFound, spec.Command)
	}

	return result, fmt.Errorf("running %s: %w", spec.Command, err)
}

// LookPath resolves name the way Run would, for preflight diagnostics.
func LookPath(name string) (string, error) {
	if name == "" {
		return "", ErrEmptyCommand
	}
	path, err := exec.LookPath(name)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrCommandNotFound, name)
		}
		return "", fmt.Errorf("resolving %s: %w", name, err)
	}
	return path, nil
}

// tailWriter keeps the last limit bytes written to it.
type tailWriter struct {
	limit     int
	buf       []byte
	truncated bool
}

func newTailWriter(limit int) *tailWriter {
	return &tailWriter{limit: limit}
}

func (w *tailWriter) Write(p []byte) (int, error) {
	n := len(p)
	if n >= w.limit {
		if n > w.limit || len(w.buf) > 0 {
			w.truncated = true
		}
		w.buf = append(w.buf[:0], p[n-w.limit:]...)
		return n, nil
	}
	if overflow := len(w.buf) + n - w.limit; overflow > 0 {
		w.buf = w.buf[overflow:]
		w.truncated = true
	}
	w.buf = append(w.buf, p...)
	return n, nil
}

func (w *tailWriter) String() string {
	if w.truncated {
		return "[...truncated...]" + string(w.buf)
	}
	return string(w.buf)
}
