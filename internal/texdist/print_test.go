package texdist

import (
	"strings"
	"testing"
)

// ----------------------------------------------------------------------------
// TestFprint - human-readable report rendering
// ----------------------------------------------------------------------------

func TestFprint_Ready(t *testing.T) {
	writable := true
	report := &Report{
		Status: StatusReady,
		Engine: EngineInfo{
			Found:        true,
			Command:      "lualatex",
			Path:         "/usr/bin/lualatex",
			Version:      "This is LuaHBTeX, Version 1.17.0 (TeX Live 2023)",
			Distribution: "TeX Live",
		},
		Fonts: FontInfo{DejaVuFound: true, Via: "fc-list"},
		Tools: ToolsInfo{Kpsewhich: true, KpsewhichVersion: "kpathsea version 6.3.5"},
		Env:   EnvInfo{OS: "linux", Arch: "amd64"},
		System: SystemInfo{
			TempWritable:     true,
			BuildDirWritable: &writable,
			BuildDir:         "/work/_build/latex",
		},
	}

	var b strings.Builder
	Fprint(&b, report)
	out := b.String()

	for _, want := range []string{
		"texshelf doctor",
		"[OK] lualatex found at /usr/bin/lualatex",
		"[OK] Distribution: TeX Live",
		"[OK] DejaVu family: found via fc-list",
		"[OK] kpsewhich: kpathsea version 6.3.5",
		"[OK] Platform: linux/amd64",
		"[OK] Temp directory: writable",
		"[OK] Build directory: writable (/work/_build/latex)",
		"Status: Ready to build",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "[WARN]") || strings.Contains(out, "[ERROR]") {
		t.Errorf("ready report should have no warnings or errors:\n%s", out)
	}
}

func TestFprint_Errors(t *testing.T) {
	report := &Report{
		Status: StatusErrors,
		Engine: EngineInfo{Command: "lualatex"},
		Env:    EnvInfo{OS: "linux", Arch: "amd64", Container: true, ContainerHint: "/.dockerenv", CI: true},
		System: SystemInfo{TempWritable: true},
		Errors: []string{`LaTeX engine "lualatex" not found. Install a TeX distribution or set TEXSHELF_ENGINE`},
		Warnings: []string{
			"DejaVu fonts not found; fontspec will fail to load them. Install the DejaVu font family",
		},
	}

	var b strings.Builder
	Fprint(&b, report)
	out := b.String()

	for _, want := range []string{
		"[ERROR] lualatex not found",
		"[WARN] DejaVu family: not found",
		"[OK] Container: detected (/.dockerenv)",
		"[OK] CI: detected",
		"Warnings:",
		"Errors:",
		"Status: Not ready (see errors above)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFprint_WarningsStatus(t *testing.T) {
	report := &Report{
		Status:   StatusWarnings,
		Engine:   EngineInfo{Found: true, Command: "lualatex", Path: "/usr/bin/lualatex"},
		Tools:    ToolsInfo{MissingCommands: []string{"tox"}},
		Env:      EnvInfo{OS: "darwin", Arch: "arm64", EngineOverride: "xelatex"},
		System:   SystemInfo{TempWritable: true},
		Warnings: []string{`pipeline command "tox" not on PATH`},
	}

	var b strings.Builder
	Fprint(&b, report)
	out := b.String()

	for _, want := range []string{
		`[WARN] pipeline command "tox": not on PATH`,
		"[OK] TEXSHELF_ENGINE: xelatex",
		"Status: Ready with warnings",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
