package main

import (
	"context"
	"fmt"

	texshelf "github.com/zizai/go-texshelf"
	"github.com/zizai/go-texshelf/internal/shelf"
)

// runPublish shelves an already-built PDF.
func runPublish(ctx context.Context, args []string, env *Environment) error {
	flags, positionals, err := parsePublishFlags(args)
	if err != nil {
		return err
	}
	if len(positionals) != 1 {
		return fmt.Errorf("%w: publish takes exactly one PDF path", ErrUsage)
	}
	pdfPath := positionals[0]
	configureLogging(flags.common)

	envCfg := loadEnvConfig()
	m, err := loadManifest(flags.common.manifest, envCfg)
	if err != nil {
		return err
	}

	sh, err := shelf.New(m.ShelfPath(), m.Project, m.Shelf.DevelopmentLabel)
	if err != nil {
		return err
	}

	label := flags.versionLabel
	if label == "" {
		label = m.Shelf.DevelopmentLabel
	}

	source := flags.source
	if source == "" {
		source = texshelf.GitRevision(ctx, m.BaseDir)
	}

	artifact, err := sh.Put(ctx, pdfPath, shelf.PutMeta{
		Version: label,
		Source:  source,
		BuiltAt: env.Now(),
	})
	if err != nil {
		return err
	}

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Published %s (%s, %s)\n",
			artifact.File, artifact.Version, humanSize(artifact.Size))
	}
	return nil
}
