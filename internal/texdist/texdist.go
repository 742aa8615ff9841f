// Package texdist probes the machine for a working LaTeX toolchain: the
// engine binary, the kpathsea tools, the DejaVu fonts the documents require,
// and the commands the manifest pipeline shells out to.
package texdist

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/zizai/go-texshelf/internal/runcmd"
)

// versionProbeTimeout bounds each `--version` subprocess.
const versionProbeTimeout = 10 * time.Second

// Report statuses.
const (
	StatusReady    = "ready"
	StatusWarnings = "warnings"
	StatusErrors   = "errors"
)

// Report holds all diagnostic information.
type Report struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Engine   EngineInfo `json:"engine"`
	Fonts    FontInfo   `json:"fonts"`
	Tools    ToolsInfo  `json:"tools"`
	Env      EnvInfo    `json:"environment"`
	System   SystemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// EngineInfo holds LaTeX engine detection results.
type EngineInfo struct {
	Found        bool   `json:"found"`
	Command      string `json:"command"`
	Path         string `json:"path,omitempty"`
	Version      string `json:"version,omitempty"`
	Distribution string `json:"distribution,omitempty"` // "TeX Live", "MiKTeX"
}

// FontInfo holds DejaVu font detection results.
type FontInfo struct {
	DejaVuFound bool   `json:"dejavu_found"`
	Via         string `json:"via,omitempty"` // "fc-list", "kpsewhich", "font directory"
}

// ToolsInfo holds results for the supporting tools.
type ToolsInfo struct {
	Kpsewhich        bool     `json:"kpsewhich"`
	KpsewhichVersion string   `json:"kpsewhich_version,omitempty"`
	MissingCommands  []string `json:"missing_commands,omitempty"` // manifest pipeline commands not on PATH
}

// EnvInfo holds environment detection results.
type EnvInfo struct {
	OS             string `json:"os"`
	Arch           string `json:"arch"`
	Container      bool   `json:"container"`
	ContainerHint  string `json:"container_hint,omitempty"`
	CI             bool   `json:"ci"`
	EngineOverride string `json:"texshelf_engine,omitempty"`
}

// SystemInfo holds system check results.
type SystemInfo struct {
	TempWritable     bool   `json:"temp_writable"`
	BuildDirWritable *bool  `json:"build_dir_writable,omitempty"` // nil when no build dir was given
	BuildDir         string `json:"build_dir,omitempty"`
}

// Options selects what Diagnose probes beyond the defaults.
type Options struct {
	Engine   string   // engine command, default "lualatex"
	Commands []string // manifest pipeline argv[0]s to look up (bootstrap, generate)
	BuildDir string   // build directory to probe for writability; empty skips
}

// Prober runs the diagnostics. The exec seams are fields so tests can
// substitute fakes.
type Prober struct {
	runner   runcmd.Runner
	lookPath func(string) (string, error)
	fontDirs []string
}

// New returns a Prober backed by the real toolchain.
func New(runner runcmd.Runner) *Prober {
	if runner == nil {
		runner = &runcmd.ExecRunner{}
	}
	return &Prober{
		runner:   runner,
		lookPath: runcmd.LookPath,
		fontDirs: defaultFontDirs(),
	}
}

// Diagnose performs all checks and classifies the result.
func (p *Prober) Diagnose(ctx context.Context, opts Options) *Report {
	engine := opts.Engine
	if engine == "" {
		engine = "lualatex"
	}

	report := &Report{
		Status: StatusReady,
		Engine: EngineInfo{Command: engine},
		Env: EnvInfo{
			OS:             runtime.GOOS,
			Arch:           runtime.GOARCH,
			EngineOverride: os.Getenv("TEXSHELF_ENGINE"),
		},
	}

	p.checkEngine(ctx, report)
	p.checkTools(ctx, report, opts.Commands)
	p.checkFonts(ctx, report)
	checkEnvironment(report)
	checkSystem(report, opts.BuildDir)

	if len(report.Errors) > 0 {
		report.Status = StatusErrors
	} else if len(report.Warnings) > 0 {
		report.Status = StatusWarnings
	}
	return report
}

// checkEngine locates the LaTeX engine and asks it for a version line.
func (p *Prober) checkEngine(ctx context.Context, report *Report) {
	path, err := p.lookPath(report.Engine.Command)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf(
			"LaTeX engine %q not found. Install a TeX distribution or set TEXSHELF_ENGINE",
			report.Engine.Command))
		return
	}
	report.Engine.Found = true
	report.Engine.Path = path

	version, err := p.probeVersion(ctx, report.Engine.Command)
	if err != nil {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("Could not get engine version: %v", err))
		return
	}
	report.Engine.Version = version
	report.Engine.Distribution = classifyDistribution(version)
}

// checkTools probes kpsewhich and the manifest pipeline commands.
func (p *Prober) checkTools(ctx context.Context, report *Report, commands []string) {
	if _, err := p.lookPath("kpsewhich"); err == nil {
		report.Tools.Kpsewhich = true
		if version, err := p.probeVersion(ctx, "kpsewhich"); err == nil {
			report.Tools.KpsewhichVersion = version
			if report.Engine.Distribution == "" {
				report.Engine.Distribution = classifyDistribution(version)
			}
		}
	} else {
		report.Warnings = append(report.Warnings,
			"kpsewhich not found; cannot query the TeX search path")
	}

	for _, command := range commands {
		if command == "" {
			continue
		}
		if _, err := p.lookPath(command); err != nil {
			report.Tools.MissingCommands = append(report.Tools.MissingCommands, command)
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"pipeline command %q not on PATH", command))
		}
	}
}

// checkFonts looks for the DejaVu family three ways: fontconfig, the TeX
// search path, then a direct scan of the usual font directories.
func (p *Prober) checkFonts(ctx context.Context, report *Report) {
	if p.fcListHasDejaVu(ctx) {
		report.Fonts.DejaVuFound = true
		report.Fonts.Via = "fc-list"
		return
	}
	if report.Tools.Kpsewhich && p.kpsewhichHasDejaVu(ctx) {
		report.Fonts.DejaVuFound = true
		report.Fonts.Via = "kpsewhich"
		return
	}
	if dir, ok := scanFontDirs(p.fontDirs); ok {
		report.Fonts.DejaVuFound = true
		report.Fonts.Via = "font directory (" + dir + ")"
		return
	}
	report.Warnings = append(report.Warnings,
		"DejaVu fonts not found; fontspec will fail to load them. Install the DejaVu font family")
}

func (p *Prober) fcListHasDejaVu(ctx context.Context) bool {
	if _, err := p.lookPath("fc-list"); err != nil {
		return false
	}
	result, err := p.run(ctx, "fc-list", ":", "family")
	if err != nil {
		return false
	}
	return strings.Contains(result.Stdout, "DejaVu Sans")
}

func (p *Prober) kpsewhichHasDejaVu(ctx context.Context) bool {
	result, err := p.run(ctx, "kpsewhich", "DejaVuSans.ttf")
	if err != nil {
		return false
	}
	return strings.TrimSpace(result.Stdout) != ""
}

// probeVersion runs `<name> --version` and returns the first output line.
func (p *Prober) probeVersion(ctx context.Context, name string) (string, error) {
	result, err := p.run(ctx, name, "--version")
	if err != nil {
		return "", err
	}
	return firstLine(result.Stdout), nil
}

func (p *Prober) run(ctx context.Context, name string, args ...string) (runcmd.Result, error) {
	probeCtx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()
	return p.runner.Run(probeCtx, runcmd.Spec{Command: name, Args: args})
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(report *Report) {
	report.Env.Container, report.Env.ContainerHint = isContainer()

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			report.Env.CI = true
			break
		}
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint names the signal that fired.
func isContainer() (bool, string) {
	if os.Getenv("TEXSHELF_CONTAINER") == "1" {
		return true, "TEXSHELF_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory and, when given, the build
// directory are writable.
func checkSystem(report *Report, buildDir string) {
	report.System.TempWritable = dirWritable(os.TempDir())
	if !report.System.TempWritable {
		report.Errors = append(report.Errors,
			fmt.Sprintf("Temp directory not writable: %s", os.TempDir()))
	}

	if buildDir == "" {
		return
	}
	report.System.BuildDir = buildDir
	writable := dirWritable(buildDir)
	report.System.BuildDirWritable = &writable
	if !writable {
		report.Errors = append(report.Errors,
			fmt.Sprintf("Build directory not writable: %s", buildDir))
	}
}

// dirWritable proves writability by creating and removing a probe file.
// The directory is created first if absent.
func dirWritable(dir string) bool {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return false
	}
	probe := filepath.Join(dir, ".texshelf-doctor-probe")
	if err := os.WriteFile(probe, []byte("probe"), 0o600); err != nil {
		return false
	}
	_ = os.Remove(probe)
	return true
}

// scanFontDirs walks the candidate directories for a DejaVuSans font file.
func scanFontDirs(dirs []string) (string, bool) {
	for _, dir := range dirs {
		found := false
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				// Unreadable subtrees are skipped, not fatal.
				return nil
			}
			name := strings.ToLower(d.Name())
			if strings.HasPrefix(name, "dejavusans") &&
				(strings.HasSuffix(name, ".ttf") || strings.HasSuffix(name, ".otf")) {
				found = true
				return fs.SkipAll
			}
			return nil
		})
		if found {
			return dir, true
		}
	}
	return "", false
}

// defaultFontDirs lists the usual system font locations per platform.
func defaultFontDirs() []string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return []string{"/Library/Fonts", "/System/Library/Fonts", filepath.Join(home, "Library", "Fonts")}
	case "windows":
		return []string{filepath.Join(os.Getenv("WINDIR"), "Fonts")}
	default:
		return []string{"/usr/share/fonts", "/usr/local/share/fonts", filepath.Join(home, ".fonts"),
			filepath.Join(home, ".local", "share", "fonts")}
	}
}

// classifyDistribution extracts the TeX distribution from a version line.
func classifyDistribution(version string) string {
	switch {
	case strings.Contains(version, "TeX Live"):
		return "TeX Live"
	case strings.Contains(version, "MiKTeX"):
		return "MiKTeX"
	default:
		return ""
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
