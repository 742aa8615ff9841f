package texshelf

import (
	"context"
	"errors"
	"testing"

	"github.com/zizai/go-texshelf/internal/runcmd"
)

// ----------------------------------------------------------------------------
// TestGitRevision - best-effort provenance lookup
// ----------------------------------------------------------------------------

func TestGitRevision_Trimmed(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{
		results: map[string]runcmd.Result{
			"git rev-parse --short HEAD": {Stdout: "deadbee\n"},
		},
	}

	if got := gitRevision(context.Background(), runner, t.TempDir()); got != "deadbee" {
		t.Errorf("gitRevision() = %q, want deadbee", got)
	}
}

func TestGitRevision_ErrorYieldsEmpty(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{
		errs: map[string]error{
			"git rev-parse --short HEAD": errors.New("fatal: not a git repository"),
		},
	}

	if got := gitRevision(context.Background(), runner, t.TempDir()); got != "" {
		t.Errorf("gitRevision() = %q, want empty", got)
	}
}

func TestGitRevision_OutsideRepository(t *testing.T) {
	t.Parallel()

	// Real git (when installed) exits non-zero in a plain temp dir; a
	// machine without git hits the not-found path. Both yield "".
	if got := GitRevision(context.Background(), t.TempDir()); got != "" {
		t.Errorf("GitRevision() = %q, want empty", got)
	}
}
