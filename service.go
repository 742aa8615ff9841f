package texshelf

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/zizai/go-texshelf/internal/config"
	"github.com/zizai/go-texshelf/internal/fileutil"
	"github.com/zizai/go-texshelf/internal/latex"
	"github.com/zizai/go-texshelf/internal/log"
	"github.com/zizai/go-texshelf/internal/runcmd"
)

// compiler abstracts the engine loop so builds can be tested without a
// TeX distribution.
type compiler interface {
	Compile(ctx context.Context, buildDir, master string) (*latex.RunReport, error)
}

// Compile-time interface implementation check.
var _ compiler = (*latex.Compiler)(nil)

// Service orchestrates the documentation build pipeline described by a
// manifest. Create with New, run builds with Build.
type Service struct {
	manifest *config.Manifest
	cfg      serviceConfig
	runner   runcmd.Runner
	compiler compiler
	now      func() time.Time
}

// New creates a Service for the given manifest. The manifest is validated
// here so an invalid one never reaches the pipeline. Use options to
// customize behavior (e.g. WithTimeout).
func New(manifest *config.Manifest, opts ...Option) (*Service, error) {
	if manifest == nil {
		return nil, ErrNilManifest
	}
	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	timeout, err := manifest.ParseTimeout()
	if err != nil {
		return nil, err
	}

	s := &Service{
		manifest: manifest,
		cfg:      serviceConfig{timeout: timeout},
		runner:   &runcmd.ExecRunner{},
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Create the engine compiler if not injected (e.g., by tests).
	if s.compiler == nil {
		s.compiler = latex.New(latex.Options{
			Engine:    manifest.Engine.Command,
			Args:      manifest.Engine.Args,
			MaxPasses: manifest.Engine.MaxPasses,
			Runner:    s.runner,
		})
	}

	return s, nil
}

// Build runs the pipeline: bootstrap, generate, stage assets, compile,
// verify. Stages run in order and the first failure aborts the build;
// the external toolchain either succeeded or it didn't, so there is
// nothing to recover. On success the returned Report records every stage.
func (s *Service) Build(ctx context.Context, input Input) (*Report, error) {
	version := strings.TrimSpace(input.Version)
	if version == "" {
		version = s.manifest.Shelf.DevelopmentLabel
	}

	if s.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.timeout)
		defer cancel()
	}

	started := s.now()
	ctx = log.ContextWithBuildID(ctx, started.UTC().Format("20060102-150405"))
	logger := log.WithComponentFromContext(ctx, "pipeline")

	report := &Report{
		Project:   s.manifest.Project,
		Version:   version,
		StartedAt: started,
	}

	logger.Info().
		Str("event", "build.start").
		Str("project", report.Project).
		Str("version", version).
		Msg("build started")

	if len(s.manifest.Bootstrap) > 0 && !input.SkipBootstrap {
		if err := s.runStep(ctx, logger, report, "bootstrap", s.manifest.Bootstrap); err != nil {
			return nil, err
		}
	}

	if err := s.runStep(ctx, logger, report, "generate", s.manifest.Generate); err != nil {
		return nil, err
	}

	masterPath := filepath.Join(s.manifest.BuildPath(), s.manifest.Master)
	if !fileutil.FileExists(masterPath) {
		return nil, fmt.Errorf("%w: expected %s", ErrMasterNotFound, masterPath)
	}

	if err := s.stageAssets(ctx, logger, report); err != nil {
		return nil, err
	}

	if err := s.compile(ctx, logger, report); err != nil {
		return nil, err
	}

	if !fileutil.FileExists(report.Artifact) {
		return nil, fmt.Errorf("%w: expected %s", latex.ErrNoPDFProduced, report.Artifact)
	}

	report.Source = gitRevision(ctx, s.runner, s.manifest.BaseDir)
	report.EndedAt = s.now()

	logger.Info().
		Str("event", "build.done").
		Str("artifact", report.Artifact).
		Int("passes", len(report.PassSeconds)).
		Float64("seconds", report.TotalSeconds()).
		Msg("build finished")

	return report, nil
}

// runStep executes one external command stage from the manifest directory.
func (s *Service) runStep(ctx context.Context, logger zerolog.Logger, report *Report, name string, argv []string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	command := strings.Join(argv, " ")
	logger.Info().
		Str("event", "build.step").
		Str("step", name).
		Str("command", command).
		Msg("step started")

	result, err := s.runner.Run(ctx, runcmd.Spec{
		Command: argv[0],
		Args:    argv[1:],
		Dir:     s.manifest.BaseDir,
	})
	if err != nil {
		if tail := lastLine(result.Stderr); tail != "" {
			return fmt.Errorf("%s: %w: %s", name, err, tail)
		}
		return fmt.Errorf("%s: %w", name, err)
	}

	report.Steps = append(report.Steps, StepResult{
		Name:    name,
		Command: command,
		Seconds: result.Seconds,
	})

	logger.Info().
		Str("event", "build.step_done").
		Str("step", name).
		Float64("seconds", result.Seconds).
		Msg("step finished")

	return nil
}

// stageAssets copies the manifest's auxiliary files into the build
// directory so the master document can include them.
func (s *Service) stageAssets(ctx context.Context, logger zerolog.Logger, report *Report) error {
	if len(s.manifest.Assets) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("assets: %w", err)
	}

	start := time.Now()
	for _, asset := range s.manifest.Assets {
		src := s.manifest.AssetPath(asset)
		if !fileutil.FileExists(src) {
			return fmt.Errorf("%w: %s", ErrAssetMissing, src)
		}
		dst := filepath.Join(s.manifest.BuildPath(), filepath.Base(asset))
		if err := fileutil.CopyFile(src, dst); err != nil {
			return fmt.Errorf("staging %s: %w", asset, err)
		}
	}

	report.Steps = append(report.Steps, StepResult{
		Name:    "assets",
		Seconds: time.Since(start).Seconds(),
	})

	logger.Info().
		Str("event", "build.assets").
		Int("count", len(s.manifest.Assets)).
		Msg("assets staged")

	return nil
}

// compile drives the engine loop and folds its passes into the report.
func (s *Service) compile(ctx context.Context, logger zerolog.Logger, report *Report) error {
	run, err := s.compiler.Compile(ctx, s.manifest.BuildPath(), s.manifest.Master)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}

	report.PassSeconds = make([]float64, 0, len(run.Passes))
	for _, pass := range run.Passes {
		report.PassSeconds = append(report.PassSeconds, pass.Seconds)
	}
	report.Stable = run.Stable
	report.Artifact = run.PDF
	report.Steps = append(report.Steps, StepResult{
		Name:    "compile",
		Command: s.manifest.Engine.Command,
		Seconds: run.TotalSeconds(),
	})

	if !run.Stable {
		logger.Warn().
			Str("event", "build.unstable").
			Int("passes", len(run.Passes)).
			Msg("cross-references did not stabilize within the pass budget")
	}

	return nil
}

// lastLine returns the last non-empty line of s.
func lastLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
