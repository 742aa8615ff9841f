package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/zizai/go-texshelf/internal/shelf"
)

// ErrShelfDamaged is returned when verify finds integrity problems.
var ErrShelfDamaged = errors.New("shelf verification failed")

// openShelf loads the manifest and opens its shelf.
func openShelf(flags commonFlags) (*shelf.Shelf, error) {
	configureLogging(flags)
	m, err := loadManifest(flags.manifest, loadEnvConfig())
	if err != nil {
		return nil, err
	}
	return shelf.New(m.ShelfPath(), m.Project, m.Shelf.DevelopmentLabel)
}

// runList prints the shelf contents, development build first.
func runList(args []string, env *Environment) error {
	flags, positionals, err := parseShelfFlags("list", printListUsage, args)
	if err != nil {
		return err
	}
	if len(positionals) > 0 {
		return fmt.Errorf("%w: list takes no arguments, got %q", ErrUsage, positionals[0])
	}

	sh, err := openShelf(flags.common)
	if err != nil {
		return err
	}
	artifacts, err := sh.List()
	if err != nil {
		return err
	}

	if flags.jsonOut {
		return writeJSON(env.Stdout, struct {
			Project   string           `json:"project"`
			Artifacts []shelf.Artifact `json:"artifacts"`
		}{Project: sh.Project(), Artifacts: artifacts})
	}

	if len(artifacts) == 0 {
		fmt.Fprintf(env.Stdout, "Shelf %s is empty. Run 'texshelf build --publish' to add a build.\n", sh.Dir())
		return nil
	}

	fmt.Fprintf(env.Stdout, "%-14s %-10s %-17s %-9s %s\n", "VERSION", "SIZE", "BUILT", "SOURCE", "FILE")
	for _, a := range artifacts {
		fmt.Fprintf(env.Stdout, "%-14s %-10s %-17s %-9s %s\n",
			a.Version,
			humanSize(a.Size),
			a.BuiltAt.Format("2006-01-02 15:04"),
			valueOrDash(a.Source),
			a.File)
	}
	return nil
}

// runShow prints one artifact's metadata.
func runShow(args []string, env *Environment) error {
	flags, positionals, err := parseShelfFlags("show", printShowUsage, args)
	if err != nil {
		return err
	}
	if len(positionals) != 1 {
		return fmt.Errorf("%w: show takes exactly one version label", ErrUsage)
	}

	sh, err := openShelf(flags.common)
	if err != nil {
		return err
	}
	artifact, err := sh.Get(positionals[0])
	if err != nil {
		return err
	}

	if flags.jsonOut {
		return writeJSON(env.Stdout, artifact)
	}

	fmt.Fprintf(env.Stdout, "Version:  %s\n", artifact.Version)
	fmt.Fprintf(env.Stdout, "File:     %s\n", artifact.File)
	fmt.Fprintf(env.Stdout, "Size:     %s (%d bytes)\n", humanSize(artifact.Size), artifact.Size)
	fmt.Fprintf(env.Stdout, "SHA-256:  %s\n", artifact.SHA256)
	fmt.Fprintf(env.Stdout, "Built:    %s\n", artifact.BuiltAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(env.Stdout, "Source:   %s\n", valueOrDash(artifact.Source))
	return nil
}

// runVerify re-hashes the shelf and reports drift. Problems are findings,
// not infrastructure failures: they print to stdout and fail the command.
func runVerify(ctx context.Context, args []string, env *Environment) error {
	flags, positionals, err := parseShelfFlags("verify", printVerifyUsage, args)
	if err != nil {
		return err
	}
	if len(positionals) > 0 {
		return fmt.Errorf("%w: verify takes no arguments, got %q", ErrUsage, positionals[0])
	}

	sh, err := openShelf(flags.common)
	if err != nil {
		return err
	}
	report, err := sh.Verify(ctx)
	if err != nil {
		return err
	}

	if flags.jsonOut {
		if err := writeJSON(env.Stdout, report); err != nil {
			return err
		}
	} else {
		for _, p := range report.Problems {
			if p.Version != "" {
				fmt.Fprintf(env.Stdout, "  [ERROR] %s: %s (%s)\n", p.Version, p.Kind, p.Detail)
			} else {
				fmt.Fprintf(env.Stdout, "  [ERROR] %s: %s\n", p.File, p.Kind)
			}
		}
		if report.OK() {
			fmt.Fprintf(env.Stdout, "Verified %d artifact(s): shelf matches the index.\n", report.Checked)
		}
	}

	if !report.OK() {
		return fmt.Errorf("%w: %d problem(s) in %d artifact(s)",
			ErrShelfDamaged, len(report.Problems), report.Checked)
	}
	return nil
}

// runRemove deletes one artifact from the shelf.
func runRemove(args []string, env *Environment) error {
	flags, positionals, err := parseCommonOnly("remove", printRemoveUsage, args)
	if err != nil {
		return err
	}
	if len(positionals) != 1 {
		return fmt.Errorf("%w: remove takes exactly one version label", ErrUsage)
	}
	version := positionals[0]

	sh, err := openShelf(*flags)
	if err != nil {
		return err
	}
	if err := sh.Remove(version); err != nil {
		return err
	}

	if !flags.quiet {
		fmt.Fprintf(env.Stdout, "Removed %s\n", version)
	}
	return nil
}

// writeJSON writes indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// humanSize renders a byte count for humans, binary units.
func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
