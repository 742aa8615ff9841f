package texshelf

import (
	"context"
	"strings"

	"github.com/zizai/go-texshelf/internal/runcmd"
)

// GitRevision returns the short commit hash of the repository containing
// dir. Best effort: a missing git binary or a non-repository directory
// yields "".
func GitRevision(ctx context.Context, dir string) string {
	return gitRevision(ctx, &runcmd.ExecRunner{}, dir)
}

func gitRevision(ctx context.Context, runner runcmd.Runner, dir string) string {
	result, err := runner.Run(ctx, runcmd.Spec{
		Command: "git",
		Args:    []string{"rev-parse", "--short", "HEAD"},
		Dir:     dir,
	})
	if err != nil {
		return ""
	}
	return strings.TrimSpace(result.Stdout)
}
