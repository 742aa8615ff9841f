package main

// Notes:
// - parse*Flags: defaults, explicit values, positional passthrough, and the
//   ErrUsage wrapping for unknown flags. pflag writes its own parse errors
//   and usage to os.Stderr; that output is not asserted here.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"testing"

	flag "github.com/spf13/pflag"
)

// ---------------------------------------------------------------------------
// TestParseBuildFlags - Build command flags
// ---------------------------------------------------------------------------

func TestParseBuildFlags(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		f, positionals, err := parseBuildFlags(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(positionals) != 0 {
			t.Errorf("positionals = %v, want none", positionals)
		}
		if f.publish || f.skipBootstrap || f.common.quiet || f.common.verbose {
			t.Error("bool flags should default to false")
		}
		if f.versionLabel != "" || f.report != "" || f.timeout != "" || f.common.manifest != "" {
			t.Errorf("string flags should default to empty, got %+v", f)
		}
		if f.maxPasses != 0 {
			t.Errorf("maxPasses = %d, want 0 (manifest value)", f.maxPasses)
		}
	})

	t.Run("all flags set via short forms", func(t *testing.T) {
		t.Parallel()

		args := []string{
			"-p", "--skip-bootstrap",
			"-l", "v1.2.3",
			"-t", "2m",
			"-r", "report.json",
			"--max-passes", "7",
			"-m", "thesis",
			"-q", "-v",
		}
		f, positionals, err := parseBuildFlags(args)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(positionals) != 0 {
			t.Errorf("positionals = %v, want none", positionals)
		}
		if !f.publish {
			t.Error("publish should be set")
		}
		if !f.skipBootstrap {
			t.Error("skipBootstrap should be set")
		}
		if f.versionLabel != "v1.2.3" {
			t.Errorf("versionLabel = %q, want %q", f.versionLabel, "v1.2.3")
		}
		if f.timeout != "2m" {
			t.Errorf("timeout = %q, want %q", f.timeout, "2m")
		}
		if f.report != "report.json" {
			t.Errorf("report = %q, want %q", f.report, "report.json")
		}
		if f.maxPasses != 7 {
			t.Errorf("maxPasses = %d, want 7", f.maxPasses)
		}
		if f.common.manifest != "thesis" {
			t.Errorf("manifest = %q, want %q", f.common.manifest, "thesis")
		}
		if !f.common.quiet || !f.common.verbose {
			t.Error("quiet and verbose should both be set")
		}
	})

	t.Run("unknown flag wraps ErrUsage", func(t *testing.T) {
		t.Parallel()

		_, _, err := parseBuildFlags([]string{"--bogus"})
		if !errors.Is(err, ErrUsage) {
			t.Errorf("expected ErrUsage, got %v", err)
		}
	})

	t.Run("help passes through unwrapped", func(t *testing.T) {
		t.Parallel()

		_, _, err := parseBuildFlags([]string{"--help"})
		if !errors.Is(err, flag.ErrHelp) {
			t.Errorf("expected flag.ErrHelp, got %v", err)
		}
		if errors.Is(err, ErrUsage) {
			t.Error("--help must not be reported as a usage error")
		}
	})
}

// ---------------------------------------------------------------------------
// TestParsePublishFlags - Publish command flags
// ---------------------------------------------------------------------------

func TestParsePublishFlags(t *testing.T) {
	t.Parallel()

	t.Run("positionals survive interspersed flags", func(t *testing.T) {
		t.Parallel()

		f, positionals, err := parsePublishFlags([]string{"out/thesis.pdf", "-l", "v2.0.0", "-s", "abc1234"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(positionals) != 1 || positionals[0] != "out/thesis.pdf" {
			t.Errorf("positionals = %v, want [out/thesis.pdf]", positionals)
		}
		if f.versionLabel != "v2.0.0" {
			t.Errorf("versionLabel = %q, want %q", f.versionLabel, "v2.0.0")
		}
		if f.source != "abc1234" {
			t.Errorf("source = %q, want %q", f.source, "abc1234")
		}
	})

	t.Run("unknown flag wraps ErrUsage", func(t *testing.T) {
		t.Parallel()

		_, _, err := parsePublishFlags([]string{"--force"})
		if !errors.Is(err, ErrUsage) {
			t.Errorf("expected ErrUsage, got %v", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestParseShelfFlags - Shared list/show/verify flags
// ---------------------------------------------------------------------------

func TestParseShelfFlags(t *testing.T) {
	t.Parallel()

	t.Run("json flag", func(t *testing.T) {
		t.Parallel()

		f, _, err := parseShelfFlags("list", printListUsage, []string{"--json"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !f.jsonOut {
			t.Error("jsonOut should be set")
		}
	})

	t.Run("version positional survives", func(t *testing.T) {
		t.Parallel()

		_, positionals, err := parseShelfFlags("show", printShowUsage, []string{"v1.0.0", "--json"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(positionals) != 1 || positionals[0] != "v1.0.0" {
			t.Errorf("positionals = %v, want [v1.0.0]", positionals)
		}
	})

	t.Run("unknown flag wraps ErrUsage", func(t *testing.T) {
		t.Parallel()

		_, _, err := parseShelfFlags("verify", printVerifyUsage, []string{"--fix"})
		if !errors.Is(err, ErrUsage) {
			t.Errorf("expected ErrUsage, got %v", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestParseCommonOnly - Commands with only the shared flags
// ---------------------------------------------------------------------------

func TestParseCommonOnly(t *testing.T) {
	t.Parallel()

	t.Run("manifest quiet verbose", func(t *testing.T) {
		t.Parallel()

		f, positionals, err := parseCommonOnly("clean", printCleanUsage, []string{"-m", "thesis", "-q", "-v"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(positionals) != 0 {
			t.Errorf("positionals = %v, want none", positionals)
		}
		if f.manifest != "thesis" || !f.quiet || !f.verbose {
			t.Errorf("flags = %+v, want manifest=thesis quiet verbose", f)
		}
	})

	t.Run("unknown flag wraps ErrUsage", func(t *testing.T) {
		t.Parallel()

		_, _, err := parseCommonOnly("remove", printRemoveUsage, []string{"--all"})
		if !errors.Is(err, ErrUsage) {
			t.Errorf("expected ErrUsage, got %v", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestParseWatchFlags - Watch command flags
// ---------------------------------------------------------------------------

func TestParseWatchFlags(t *testing.T) {
	t.Parallel()

	f, _, err := parseWatchFlags([]string{"-t", "90s", "--skip-bootstrap"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.timeout != "90s" {
		t.Errorf("timeout = %q, want %q", f.timeout, "90s")
	}
	if !f.skipBootstrap {
		t.Error("skipBootstrap should be set")
	}
}

// ---------------------------------------------------------------------------
// TestParseServeFlags - Serve command flags
// ---------------------------------------------------------------------------

func TestParseServeFlags(t *testing.T) {
	t.Parallel()

	f, _, err := parseServeFlags([]string{"-a", "0.0.0.0:9000", "--live"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.addr != "0.0.0.0:9000" {
		t.Errorf("addr = %q, want %q", f.addr, "0.0.0.0:9000")
	}
	if !f.live {
		t.Error("live should be set")
	}
}

// ---------------------------------------------------------------------------
// TestParseDoctorFlags - Doctor command flags
// ---------------------------------------------------------------------------

func TestParseDoctorFlags(t *testing.T) {
	t.Parallel()

	f, _, err := parseDoctorFlags([]string{"--json"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.jsonOut {
		t.Error("jsonOut should be set")
	}
}
