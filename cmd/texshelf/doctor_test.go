package main

// Notes:
// - The prober resolves binaries on the real PATH, so these tests never pin
//   the report status: a machine with a TeX distribution reports ready, a
//   bare one reports errors. What we assert is structure and that the exit
//   code agrees with the status, which holds either way.
// - Version probes go through the injected Runner, so no subprocess spawns.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zizai/go-texshelf/internal/runcmd"
)

// fakeRunner satisfies runcmd.Runner without spawning anything.
type fakeRunner struct {
	result runcmd.Result
	err    error
}

func (r *fakeRunner) Run(_ context.Context, _ runcmd.Spec) (runcmd.Result, error) {
	return r.result, r.err
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd_JSON - Machine-readable report
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_JSON(t *testing.T) {
	t.Parallel()

	_, manifest := writeShelfTestManifest(t)

	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    time.Now,
		Stdout: &stdout,
		Stderr: &stderr,
		Runner: &fakeRunner{result: runcmd.Result{
			Stdout: "This is LuaHBTeX, Version 1.18.0 (TeX Live 2025)\nmore lines\n",
		}},
	}

	code := runMain([]string{"texshelf", "doctor", "--json", "-m", manifest}, env)

	var report struct {
		Status string `json:"status"`
		Engine struct {
			Command string `json:"command"`
		} `json:"engine"`
		System struct {
			TempWritable bool `json:"temp_writable"`
		} `json:"system"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &report); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout.String())
	}

	switch report.Status {
	case "ready", "warnings", "errors":
	default:
		t.Errorf("status = %q, want ready, warnings, or errors", report.Status)
	}

	wantCode := ExitSuccess
	if report.Status == "errors" {
		wantCode = ExitGeneral
	}
	if code != wantCode {
		t.Errorf("exit code = %d, want %d for status %q", code, wantCode, report.Status)
	}

	if report.Engine.Command != "lualatex" {
		t.Errorf("engine command = %q, want the manifest default %q", report.Engine.Command, "lualatex")
	}
	if !report.System.TempWritable {
		t.Error("temp directory should be writable in tests")
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd_Human - Readable report sections
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_Human(t *testing.T) {
	t.Parallel()

	_, manifest := writeShelfTestManifest(t)

	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    time.Now,
		Stdout: &stdout,
		Stderr: &stderr,
		Runner: &fakeRunner{result: runcmd.Result{Stdout: "kpsewhich version 6.4.0\n"}},
	}

	code := runDoctorCmd(context.Background(), []string{"-m", manifest}, env)
	if code != ExitSuccess && code != ExitGeneral {
		t.Errorf("doctor = %d, want 0 or 1", code)
	}

	out := stdout.String()
	for _, want := range []string{
		"texshelf doctor",
		"LaTeX engine",
		"Fonts",
		"Tools",
		"Environment",
		"System",
		"Status:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report should contain %q, got:\n%s", want, out)
		}
	}
}

// ---------------------------------------------------------------------------
// TestDoctorOptions - Manifest narrows the probe; absence falls back
// ---------------------------------------------------------------------------

func TestDoctorOptions(t *testing.T) {
	t.Parallel()

	t.Run("manifest supplies engine, build dir, and commands", func(t *testing.T) {
		t.Parallel()

		_, manifest := writeShelfTestManifest(t)

		opts := doctorOptions(manifest, &envConfig{})

		if opts.Engine != "lualatex" {
			t.Errorf("Engine = %q, want %q", opts.Engine, "lualatex")
		}
		if !strings.HasSuffix(opts.BuildDir, filepath.Join("_build", "latex")) {
			t.Errorf("BuildDir = %q, want the manifest build path", opts.BuildDir)
		}
		if len(opts.Commands) != 1 || opts.Commands[0] != "true" {
			t.Errorf("Commands = %v, want the generate command", opts.Commands)
		}
	})

	t.Run("unreadable manifest falls back to the env engine", func(t *testing.T) {
		t.Parallel()

		opts := doctorOptions("definitely-missing-zz", &envConfig{Engine: "xelatex"})

		if opts.Engine != "xelatex" {
			t.Errorf("Engine = %q, want %q", opts.Engine, "xelatex")
		}
		if opts.BuildDir != "" {
			t.Errorf("BuildDir = %q, want empty without a manifest", opts.BuildDir)
		}
		if len(opts.Commands) != 0 {
			t.Errorf("Commands = %v, want none", opts.Commands)
		}
	})
}
