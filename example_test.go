package texshelf_test

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zizai/go-texshelf"
	"github.com/zizai/go-texshelf/internal/config"
)

// Example demonstrates creating a build service from a manifest.
// Running a build requires a TeX distribution; see Service.Build.
func Example() {
	m := config.Default()
	m.Project = "manual"
	m.Master = "manual.tex"
	m.Generate = []string{"make", "latex"}

	svc, err := texshelf.New(m)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	if svc != nil {
		fmt.Println("service configured for", m.Project)
	}
	// Output: service configured for manual
}

// ExampleNew_invalidManifest demonstrates manifest validation at
// construction time. An invalid manifest never reaches the pipeline.
func ExampleNew_invalidManifest() {
	m := config.Default()
	m.Project = "manual"
	m.Master = "manual.tex"
	// Generate left empty: nothing would produce the LaTeX sources.

	_, err := texshelf.New(m)
	fmt.Println(err)
	// Output: invalid manifest: generate: command required
}

// ExampleWithTimeout demonstrates capping build wall-clock time.
func ExampleWithTimeout() {
	m := config.Default()
	m.Project = "manual"
	m.Master = "manual.tex"
	m.Generate = []string{"make", "latex"}

	svc, err := texshelf.New(m, texshelf.WithTimeout(10*time.Minute))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	if svc != nil {
		fmt.Println("timeout configured")
	}
	// Output: timeout configured
}

// ExampleReport_String demonstrates the human-readable build summary.
func ExampleReport_String() {
	report := &texshelf.Report{
		Project: "manual",
		Version: "v1.2.0",
		Steps: []texshelf.StepResult{
			{Name: "generate", Command: "make latex", Seconds: 4.2},
			{Name: "assets", Seconds: 0.1},
			{Name: "compile", Command: "lualatex", Seconds: 12.3},
		},
		PassSeconds: []float64{6.2, 6.1},
		Stable:      true,
		Artifact:    "_build/latex/manual.pdf",
		StartedAt:   time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC),
		EndedAt:     time.Date(2026, 1, 15, 9, 31, 2, 0, time.UTC),
	}

	fmt.Println(report)
	// Output:
	// Build Report
	// ------------
	// - Started at 2026-01-15 09:30:00
	// - Project: manual
	// - Version: v1.2.0
	// - Steps: 3
	// - Engine passes: 2
	// - Artifact: _build/latex/manual.pdf
	// - Ended at 2026-01-15 09:31:02
}

// ExampleReport_TotalSeconds demonstrates summing step durations.
func ExampleReport_TotalSeconds() {
	report := &texshelf.Report{
		Steps: []texshelf.StepResult{
			{Name: "generate", Command: "make latex", Seconds: 4.2},
			{Name: "compile", Command: "lualatex", Seconds: 12.3},
		},
	}

	fmt.Printf("%.1fs\n", report.TotalSeconds())
	// Output: 16.5s
}

// ExampleReport_WriteFile demonstrates persisting a report as JSON and
// reading it back.
func ExampleReport_WriteFile() {
	dir, err := os.MkdirTemp("", "texshelf-example")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer os.RemoveAll(dir)

	report := &texshelf.Report{Project: "manual", Version: "v1.2.0", Stable: true}
	path := filepath.Join(dir, "build-report.json")
	if err := report.WriteFile(path); err != nil {
		fmt.Println("error:", err)
		return
	}

	loaded, err := texshelf.LoadReport(path)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(loaded.Project, loaded.Version)
	// Output: manual v1.2.0
}
