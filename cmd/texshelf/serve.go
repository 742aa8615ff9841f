package main

import (
	"context"
	"fmt"

	"github.com/zizai/go-texshelf/internal/server"
	"github.com/zizai/go-texshelf/internal/shelf"
	"github.com/zizai/go-texshelf/internal/watch"
)

// runServe serves the shelf over HTTP until the context is cancelled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, positionals, err := parseServeFlags(args)
	if err != nil {
		return err
	}
	if len(positionals) > 0 {
		return fmt.Errorf("%w: serve takes no arguments, got %q", ErrUsage, positionals[0])
	}
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

	addr := firstNonEmpty(flags.addr, envCfg.Addr, server.DefaultAddr)
	srv, err := server.New(server.Options{Addr: addr, Shelf: sh})
	if err != nil {
		return err
	}

	// Live reload: a publish rewrites the shelf, the watcher sees it, and
	// every open index page refreshes.
	if flags.live {
		w, err := watch.New(watch.Options{
			Roots: []string{sh.Dir()},
		}, func(context.Context, []string) {
			srv.NotifyReload()
		})
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
	}

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Serving %s shelf on http://%s (Ctrl-C to stop)\n", m.Project, addr)
	}
	return srv.Run(ctx)
}
