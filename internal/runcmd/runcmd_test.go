package runcmd

// Notes:
// - Real subprocess tests use sh and are skipped on Windows; the CI matrix
//   covers the taskkill path via the integration suite.
// - killProcessGroup: only tested with an invalid PID to verify the function
//   doesn't panic. We cannot safely kill real process groups in unit tests.

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test requires sh")
	}
}

// ---------------------------------------------------------------------------
// TestExecRunner_Run - Real subprocess execution
// ---------------------------------------------------------------------------

func TestExecRunner_Run(t *testing.T) {
	t.Parallel()

	t.Run("captures stdout and stderr", func(t *testing.T) {
		t.Parallel()
		skipOnWindows(t)

		r := &ExecRunner{}
		result, err := r.Run(context.Background(), Spec{
			Command: "sh",
			Args:    []string{"-c", "echo out; echo err 1>&2"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := strings.TrimSpace(result.Stdout); got != "out" {
			t.Errorf("Stdout = %q, want %q", got, "out")
		}
		if got := strings.TrimSpace(result.Stderr); got != "err" {
			t.Errorf("Stderr = %q, want %q", got, "err")
		}
		if result.ExitCode != 0 {
			t.Errorf("ExitCode = %d, want 0", result.ExitCode)
		}
		if result.Seconds <= 0 {
			t.Errorf("Seconds = %f, want > 0", result.Seconds)
		}
	})

	t.Run("non-zero exit", func(t *testing.T) {
		t.Parallel()
		skipOnWindows(t)

		r := &ExecRunner{}
		result, err := r.Run(context.Background(), Spec{
			Command: "sh",
			Args:    []string{"-c", "exit 3"},
		})
		if !errors.Is(err, ErrNonZeroExit) {
			t.Fatalf("errors.Is(err, ErrNonZeroExit) = false, got: %v", err)
		}
		if result.ExitCode != 3 {
			t.Errorf("ExitCode = %d, want 3", result.ExitCode)
		}
	})

	t.Run("missing binary", func(t *testing.T) {
		t.Parallel()

		r := &ExecRunner{}
		_, err := r.Run(context.Background(), Spec{
			Command: "texshelf-no-such-binary-42",
		})
		if !errors.Is(err, ErrCommandNotFound) {
			t.Errorf("errors.Is(err, ErrCommandNotFound) = false, got: %v", err)
		}
	})

	t.Run("empty command", func(t *testing.T) {
		t.Parallel()

		r := &ExecRunner{}
		_, err := r.Run(context.Background(), Spec{})
		if !errors.Is(err, ErrEmptyCommand) {
			t.Errorf("errors.Is(err, ErrEmptyCommand) = false, got: %v", err)
		}
	})

	t.Run("context timeout kills process", func(t *testing.T) {
		t.Parallel()
		skipOnWindows(t)

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		r := &ExecRunner{}
		start := time.Now()
		_, err := r.Run(ctx, Spec{
			Command: "sh",
			Args:    []string{"-c", "sleep 30"},
		})
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("errors.Is(err, DeadlineExceeded) = false, got: %v", err)
		}
		if elapsed := time.Since(start); elapsed > 10*time.Second {
			t.Errorf("process not killed promptly, took %s", elapsed)
		}
	})

	t.Run("runs in working directory", func(t *testing.T) {
		t.Parallel()
		skipOnWindows(t)

		dir := t.TempDir()
		r := &ExecRunner{}
		result, err := r.Run(context.Background(), Spec{
			Command: "sh",
			Args:    []string{"-c", "pwd"},
			Dir:     dir,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// Compare suffix: macOS tempdirs resolve through /private.
		if got := strings.TrimSpace(result.Stdout); !strings.HasSuffix(got, dir) && !strings.HasSuffix(dir, got) {
			t.Errorf("pwd = %q, want %q", got, dir)
		}
	})

	t.Run("extra environment entries", func(t *testing.T) {
		t.Parallel()
		skipOnWindows(t)

		r := &ExecRunner{}
		result, err := r.Run(context.Background(), Spec{
			Command: "sh",
			Args:    []string{"-c", "printf %s \"$TEXSHELF_TEST_MARK\""},
			Env:     []string{"TEXSHELF_TEST_MARK=mark-1"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Stdout != "mark-1" {
			t.Errorf("Stdout = %q, want %q", result.Stdout, "mark-1")
		}
	})
}

// ---------------------------------------------------------------------------
// TestTailWriter - Bounded output capture
// ---------------------------------------------------------------------------

func TestTailWriter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		limit  int
		writes []string
		want   string
	}{
		{
			name:   "under limit",
			limit:  10,
			writes: []string{"abc", "def"},
			want:   "abcdef",
		},
		{
			name:   "exact limit single write",
			limit:  5,
			writes: []string{"abcde"},
			want:   "abcde",
		},
		{
			name:   "single write over limit keeps tail",
			limit:  5,
			writes: []string{"0123456789"},
			want:   "[...truncated...]56789",
		},
		{
			name:   "accumulated overflow keeps tail",
			limit:  5,
			writes: []string{"abc", "def"},
			want:   "[...truncated...]bcdef",
		},
		{
			name:   "many small writes",
			limit:  4,
			writes: []string{"a", "b", "c", "d", "e", "f"},
			want:   "[...truncated...]cdef",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := newTailWriter(tt.limit)
			for _, s := range tt.writes {
				n, err := w.Write([]byte(s))
				if err != nil {
					t.Fatalf("Write failed: %v", err)
				}
				if n != len(s) {
					t.Fatalf("Write returned %d, want %d", n, len(s))
				}
			}
			if got := w.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestKillProcessGroup - Invalid PID Handling
// ---------------------------------------------------------------------------

func TestKillProcessGroup_InvalidPID(t *testing.T) {
	t.Parallel()

	// Verify function handles non-existent PID without panicking.
	//
	// Note: Cannot safely test with:
	// - PID 0: syscall.Kill(-0, SIGKILL) kills the current process group
	// - Real PIDs: would target live processes
	killProcessGroup(999999999)
}
