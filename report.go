package texshelf

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// reportTimeFormat is the timestamp layout used in human-readable output.
const reportTimeFormat = "2006-01-02 15:04:05"

// reportPermissions is rw-r--r--: owner read+write, others read.
const reportPermissions = 0o644

// StepResult records one pipeline stage.
type StepResult struct {
	Name    string  `json:"name"`
	Command string  `json:"command,omitempty"`
	Seconds float64 `json:"seconds"`
}

// Report is the record of one documentation build.
type Report struct {
	Project     string       `json:"project"`
	Version     string       `json:"version"`
	Source      string       `json:"source,omitempty"` // VCS revision, when available
	Steps       []StepResult `json:"steps"`
	PassSeconds []float64    `json:"passSeconds,omitempty"` // wall-clock seconds per engine pass
	Stable      bool         `json:"stable"`
	Artifact    string       `json:"artifact,omitempty"` // produced PDF path
	StartedAt   time.Time    `json:"startedAt"`
	EndedAt     time.Time    `json:"endedAt"`
}

// TotalSeconds sums the wall-clock time of all recorded steps.
func (r *Report) TotalSeconds() float64 {
	var total float64
	for _, s := range r.Steps {
		total += s.Seconds
	}
	return total
}

// StartedAtString formats StartedAt, or "n/a" when the build never started.
func (r *Report) StartedAtString() string { return formatStamp(r.StartedAt) }

// EndedAtString formats EndedAt, or "n/a" when the build never finished.
func (r *Report) EndedAtString() string { return formatStamp(r.EndedAt) }

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return "n/a"
	}
	return t.Format(reportTimeFormat)
}

// String renders a short summary block.
func (r *Report) String() string {
	artifact := r.Artifact
	if artifact == "" {
		artifact = "n/a"
	}
	return strings.TrimSpace(fmt.Sprintf(`
Build Report
------------
- Started at %s
- Project: %s
- Version: %s
- Steps: %d
- Engine passes: %d
- Artifact: %s
- Ended at %s
`, r.StartedAtString(), r.Project, r.Version, len(r.Steps), len(r.PassSeconds), artifact, r.EndedAtString()))
}

// WriteFile writes the report as indented JSON.
func (r *Report) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, reportPermissions); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// LoadReport reads a report previously written by WriteFile.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided report path
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing report %s: %w", path, err)
	}
	return &r, nil
}
