// Package latex drives a TeX engine over a master file until the document
// stabilizes. The engine itself is always an external binary; this package
// only decides how often to run it and how to interpret its output.
package latex

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zizai/go-texshelf/internal/log"
	"github.com/zizai/go-texshelf/internal/runcmd"
)

// Sentinel errors for compilation failures.
var (
	ErrEngineNotFound = errors.New("latex engine not found")
	ErrCompileFailed  = errors.New("latex compilation failed")
	ErrMissingFont    = errors.New("required font not found")
	ErrNoPDFProduced  = errors.New("engine produced no PDF")
)

// interactionFlag keeps the engine from stopping at a prompt; errors still
// produce a non-zero exit.
const interactionFlag = "-interaction=nonstopmode"

// DefaultMaxPasses is the rerun budget when none is configured.
const DefaultMaxPasses = 5

// rerunMarkers are the engine log lines that request another pass.
// LaTeX emits variations ("cross-references right", "outlines right"),
// all sharing these prefixes.
var rerunMarkers = []string{
	"Rerun to get",
	"There were undefined references",
	"Please rerun",
}

// fontMarkers identify failures caused by missing system fonts rather than
// broken sources. Matched case-insensitively; each phrase is specific enough
// that an ordinary source error cannot trip it.
var fontMarkers = []string{
	"fontspec error",   // ! Package fontspec Error: The font "X" cannot be found.
	"invalid fontname", // LuaTeX: Invalid fontname `X'
	"font not found",   // luaotfload resolver
	"cannot find font", // LuaTeX fatal
}

// Pass records one engine invocation.
type Pass struct {
	Number  int     `json:"number"`
	Seconds float64 `json:"seconds"`
	Rerun   bool    `json:"rerun"` // another pass was scheduled after this one
}

// RunReport is the outcome of a Compile call.
type RunReport struct {
	Passes []Pass `json:"passes"`
	Stable bool   `json:"stable"` // cross-references stabilized within the pass budget
	PDF    string `json:"pdf"`    // path of the produced PDF
}

// TotalSeconds sums the wall-clock time of all passes.
func (r *RunReport) TotalSeconds() float64 {
	var total float64
	for _, p := range r.Passes {
		total += p.Seconds
	}
	return total
}

// Options configures a Compiler.
type Options struct {
	Engine    string        // binary name or path (default "lualatex")
	Args      []string      // extra args inserted before the master file
	MaxPasses int           // rerun budget (default DefaultMaxPasses)
	Runner    runcmd.Runner // command runner (default ExecRunner)
}

// Compiler runs a TeX engine until the document stabilizes or the pass
// budget is exhausted.
type Compiler struct {
	engine    string
	args      []string
	maxPasses int
	runner    runcmd.Runner
}

// New creates a Compiler, applying defaults for unset options.
func New(opts Options) *Compiler {
	c := &Compiler{
		engine:    opts.Engine,
		args:      opts.Args,
		maxPasses: opts.MaxPasses,
		runner:    opts.Runner,
	}
	if c.engine == "" {
		c.engine = "lualatex"
	}
	if c.maxPasses <= 0 {
		c.maxPasses = DefaultMaxPasses
	}
	if c.runner == nil {
		c.runner = &runcmd.ExecRunner{}
	}
	return c
}

// Compile runs the engine over master inside buildDir. It reruns while the
// .aux checksum changes or the engine log requests another pass, up to the
// configured budget. A document that never stabilizes is not an error; the
// report says Stable=false and the caller decides what to tell the user.
func (c *Compiler) Compile(ctx context.Context, buildDir, master string) (*RunReport, error) {
	logger := log.WithComponentFromContext(ctx, "latex")

	jobname := strings.TrimSuffix(master, filepath.Ext(master))
	auxPath := filepath.Join(buildDir, jobname+".aux")
	logPath := filepath.Join(buildDir, jobname+".log")
	pdfPath := filepath.Join(buildDir, jobname+".pdf")

	args := make([]string, 0, len(c.args)+2)
	args = append(args, interactionFlag)
	args = append(args, c.args...)
	args = append(args, master)

	report := &RunReport{PDF: pdfPath}

	for pass := 1; pass <= c.maxPasses; pass++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("compile cancelled before pass %d: %w", pass, err)
		}

		prevAux := fileChecksum(auxPath)

		result, err := c.runner.Run(ctx, runcmd.Spec{
			Command: c.engine,
			Args:    args,
			Dir:     buildDir,
		})
		if err != nil {
			return nil, c.classifyRunError(err, result, logPath)
		}

		engineLog := readEngineLog(logPath)
		rerun := fileChecksum(auxPath) != prevAux || containsAny(engineLog, rerunMarkers)

		report.Passes = append(report.Passes, Pass{
			Number:  pass,
			Seconds: result.Seconds,
			Rerun:   rerun,
		})

		logger.Debug().
			Str("event", "latex.pass").
			Int("pass", pass).
			Float64("seconds", result.Seconds).
			Bool("rerun", rerun).
			Msg("engine pass complete")

		if !rerun {
			report.Stable = true
			break
		}
	}

	if !fileExists(pdfPath) {
		return nil, fmt.Errorf("%w: expected %s", ErrNoPDFProduced, pdfPath)
	}

	return report, nil
}

// classifyRunError maps a runner failure onto compilation sentinels so the
// CLI can pick exit codes and hints without string-matching.
func (c *Compiler) classifyRunError(err error, result runcmd.Result, logPath string) error {
	if errors.Is(err, runcmd.ErrCommandNotFound) {
		return fmt.Errorf("%w: %s", ErrEngineNotFound, c.engine)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, runcmd.ErrNonZeroExit) {
		combined := result.Stdout + "\n" + result.Stderr + "\n" + readEngineLog(logPath)
		detail := errorLine(combined)
		if isFontFailure(combined) {
			return fmt.Errorf("%w: %s", ErrMissingFont, detail)
		}
		return fmt.Errorf("%w (exit %d): %s", ErrCompileFailed, result.ExitCode, detail)
	}
	return fmt.Errorf("%w: %v", ErrCompileFailed, err)
}

// errorLine extracts the first TeX error line ("! ...") from engine output,
// falling back to the last non-empty line.
func errorLine(output string) string {
	lines := strings.Split(output, "\n")
	for _, line := range lines {
		if strings.HasPrefix(line, "! ") {
			return strings.TrimSpace(line)
		}
	}
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return "no engine output"
}

func isFontFailure(output string) bool {
	lower := strings.ToLower(output)
	for _, marker := range fontMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func containsAny(s string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// readEngineLog reads the engine log file; a missing log is simply empty.
func readEngineLog(path string) string {
	data, err := os.ReadFile(path) // #nosec G304 -- path derived from the master file name
	if err != nil {
		return ""
	}
	return string(data)
}

// fileChecksum returns the SHA-256 of the file, or "" when unreadable.
// Used to detect .aux changes between passes.
func fileChecksum(path string) string {
	data, err := os.ReadFile(path) // #nosec G304 -- path derived from the master file name
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
