package main

import (
	"context"
	"fmt"
	"io"

	texshelf "github.com/zizai/go-texshelf"
	"github.com/zizai/go-texshelf/internal/config"
	"github.com/zizai/go-texshelf/internal/hints"
	"github.com/zizai/go-texshelf/internal/shelf"
)

// runBuild executes the full pipeline and optionally shelves the result.
func runBuild(ctx context.Context, args []string, env *Environment) error {
	flags, positionals, err := parseBuildFlags(args)
	if err != nil {
		return err
	}
	if len(positionals) > 0 {
		return fmt.Errorf("%w: build takes no arguments, got %q", ErrUsage, positionals[0])
	}
	configureLogging(flags.common)

	envCfg := loadEnvConfig()
	m, err := loadManifest(flags.common.manifest, envCfg)
	if err != nil {
		return err
	}
	if err := applyMaxPasses(m, flags.maxPasses); err != nil {
		return err
	}

	timeout, err := resolveTimeoutWithEnv(flags.timeout, envCfg.Timeout, m.Timeout)
	if err != nil {
		return err
	}

	label := flags.versionLabel
	if label == "" {
		label = m.Shelf.DevelopmentLabel
	}

	// Open the shelf before the build when publishing: an invalid version
	// label must fail fast, not after minutes of compilation.
	var sh *shelf.Shelf
	if flags.publish {
		sh, err = shelf.New(m.ShelfPath(), m.Project, m.Shelf.DevelopmentLabel)
		if err != nil {
			return err
		}
		if err := sh.ValidateVersion(label); err != nil {
			return err
		}
	}

	var opts []texshelf.Option
	if timeout > 0 {
		opts = append(opts, texshelf.WithTimeout(timeout))
	}
	svc, err := texshelf.New(m, opts...)
	if err != nil {
		return err
	}

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Building %s (%s)...\n", m.Project, label)
	}

	report, err := svc.Build(ctx, texshelf.Input{
		Version:       label,
		SkipBootstrap: flags.skipBootstrap,
	})
	if err != nil {
		return withHint(err, buildHint(err, m))
	}

	if flags.common.verbose {
		printTimings(env.Stderr, report)
	}
	if !report.Stable {
		fmt.Fprintln(env.Stderr,
			"warning: cross-references did not stabilize"+hints.ForUnresolvedReferences(m.Engine.MaxPasses))
	}
	if !flags.common.quiet {
		fmt.Fprintln(env.Stdout, report)
	}

	if flags.report != "" {
		if err := report.WriteFile(flags.report); err != nil {
			return err
		}
	}

	if flags.publish {
		artifact, err := sh.Put(ctx, report.Artifact, shelf.PutMeta{
			Version: report.Version,
			Source:  report.Source,
			BuiltAt: report.EndedAt,
		})
		if err != nil {
			return err
		}
		if !flags.common.quiet {
			fmt.Fprintf(env.Stdout, "Published %s (%s, %s)\n",
				artifact.File, artifact.Version, humanSize(artifact.Size))
		}
	}

	return nil
}

// applyMaxPasses overrides the manifest pass budget from the flag.
func applyMaxPasses(m *config.Manifest, maxPasses int) error {
	if maxPasses == 0 {
		return nil
	}
	if maxPasses < config.MinPasses || maxPasses > config.MaxPasses {
		return fmt.Errorf("%w: --max-passes must be between %d and %d, got %d",
			ErrUsage, config.MinPasses, config.MaxPasses, maxPasses)
	}
	m.Engine.MaxPasses = maxPasses
	return nil
}

// printTimings writes per-step and per-pass wall-clock times.
func printTimings(w io.Writer, report *texshelf.Report) {
	for _, step := range report.Steps {
		fmt.Fprintf(w, "  %-10s %7.2fs", step.Name, step.Seconds)
		if step.Command != "" {
			fmt.Fprintf(w, "  (%s)", step.Command)
		}
		fmt.Fprintln(w)
	}
	for i, seconds := range report.PassSeconds {
		fmt.Fprintf(w, "  pass %-5d %7.2fs\n", i+1, seconds)
	}
	fmt.Fprintf(w, "  total      %7.2fs\n", report.TotalSeconds())
}
