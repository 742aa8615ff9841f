package main

import (
	"context"
	"errors"
	"fmt"

	texshelf "github.com/zizai/go-texshelf"
	"github.com/zizai/go-texshelf/internal/watch"
)

// runWatch builds once, then rebuilds on every source change until the
// context is cancelled. A failed rebuild is reported and watching continues;
// the next save gets another chance.
func runWatch(ctx context.Context, args []string, env *Environment) error {
	flags, positionals, err := parseWatchFlags(args)
	if err != nil {
		return err
	}
	if len(positionals) > 0 {
		return fmt.Errorf("%w: watch takes no arguments, got %q", ErrUsage, positionals[0])
	}
	configureLogging(flags.common)

	envCfg := loadEnvConfig()
	m, err := loadManifest(flags.common.manifest, envCfg)
	if err != nil {
		return err
	}

	timeout, err := resolveTimeoutWithEnv(flags.timeout, envCfg.Timeout, m.Timeout)
	if err != nil {
		return err
	}
	var opts []texshelf.Option
	if timeout > 0 {
		opts = append(opts, texshelf.WithTimeout(timeout))
	}
	svc, err := texshelf.New(m, opts...)
	if err != nil {
		return err
	}

	rebuild := func(ctx context.Context, skipBootstrap bool) {
		report, err := svc.Build(ctx, texshelf.Input{SkipBootstrap: skipBootstrap})
		switch {
		case err == nil:
			if !flags.common.quiet {
				fmt.Fprintf(env.Stdout, "Built %s (%d passes, %.1fs)\n",
					report.Artifact, len(report.PassSeconds), report.TotalSeconds())
			}
		case errors.Is(err, context.Canceled):
			// Shutdown path; the watcher is already stopping.
		default:
			fmt.Fprintln(env.Stderr, withHint(err, buildHint(err, m)))
		}
	}

	rebuild(ctx, flags.skipBootstrap)

	w, err := watch.New(watch.Options{
		Roots:   []string{m.SourcePath()},
		Exclude: []string{m.BuildPath(), m.ShelfPath()},
	}, func(ctx context.Context, paths []string) {
		if !flags.common.quiet {
			fmt.Fprintf(env.Stdout, "Change in %d file(s), rebuilding...\n", len(paths))
		}
		rebuild(ctx, true)
	})
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Watching %s (Ctrl-C to stop)\n", m.SourcePath())
	}
	<-w.Done()
	return nil
}
