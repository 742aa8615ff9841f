package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zizai/go-texshelf/internal/fileutil"
)

// runClean removes the build directory. The shelf is never touched; shelved
// artifacts outlive their build trees.
func runClean(args []string, env *Environment) error {
	flags, positionals, err := parseCommonOnly("clean", printCleanUsage, args)
	if err != nil {
		return err
	}
	if len(positionals) > 0 {
		return fmt.Errorf("%w: clean takes no arguments, got %q", ErrUsage, positionals[0])
	}
	configureLogging(*flags)

	m, err := loadManifest(flags.manifest, loadEnvConfig())
	if err != nil {
		return err
	}

	buildPath := m.BuildPath()
	if filepath.Clean(buildPath) == filepath.Clean(m.BaseDir) {
		return fmt.Errorf("build directory is the project directory; refusing to remove %s", buildPath)
	}
	if !fileutil.DirExists(buildPath) {
		if !flags.quiet {
			fmt.Fprintf(env.Stdout, "Nothing to clean: %s\n", buildPath)
		}
		return nil
	}

	if err := os.RemoveAll(buildPath); err != nil {
		return fmt.Errorf("removing build directory: %w", err)
	}
	if !flags.quiet {
		fmt.Fprintf(env.Stdout, "Removed %s\n", buildPath)
	}
	return nil
}
