package shelf

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// verifyConcurrency bounds parallel hashing; artifacts are large and
// hashing is I/O bound, more workers mostly thrash the disk.
const verifyConcurrency = 4

// Problem kinds reported by Verify.
const (
	ProblemMissing  = "missing"  // indexed file absent on disk
	ProblemSize     = "size"     // file size differs from the index
	ProblemChecksum = "checksum" // content hash differs from the index
	ProblemStray    = "stray"    // PDF on disk that the index does not know
)

// Problem is one integrity finding.
type Problem struct {
	Version string `json:"version,omitempty"`
	File    string `json:"file"`
	Kind    string `json:"kind"`
	Detail  string `json:"detail,omitempty"`
}

// VerifyReport summarizes an integrity pass over the shelf.
type VerifyReport struct {
	Checked  int       `json:"checked"`
	Problems []Problem `json:"problems,omitempty"`
}

// OK reports whether the shelf matched its index exactly.
func (r *VerifyReport) OK() bool { return len(r.Problems) == 0 }

// Verify re-hashes every indexed artifact and scans for stray PDFs.
// Findings land in the report; the returned error covers only
// infrastructure failures (unreadable index or directory).
func (s *Shelf) Verify(ctx context.Context) (*VerifyReport, error) {
	s.mu.Lock()
	idx, err := s.loadIndex()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	report := &VerifyReport{Checked: len(idx.Artifacts)}

	var (
		problemsMu sync.Mutex
		problems   []Problem
	)
	record := func(p Problem) {
		problemsMu.Lock()
		problems = append(problems, p)
		problemsMu.Unlock()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(verifyConcurrency)

	for _, artifact := range idx.Artifacts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if p, ok := s.checkArtifact(artifact); ok {
				record(p)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	strays, err := s.findStrays(idx)
	if err != nil {
		return nil, err
	}
	problems = append(problems, strays...)

	sort.Slice(problems, func(i, j int) bool {
		if problems[i].File != problems[j].File {
			return problems[i].File < problems[j].File
		}
		return problems[i].Kind < problems[j].Kind
	})
	report.Problems = problems

	s.logger.Info().
		Str("event", "shelf.verify").
		Int("checked", report.Checked).
		Int("problems", len(report.Problems)).
		Msg("shelf verified")

	return report, nil
}

// checkArtifact compares one indexed artifact against the file on disk.
func (s *Shelf) checkArtifact(artifact Artifact) (Problem, bool) {
	path := filepath.Join(s.dir, artifact.File)

	info, err := os.Stat(path)
	if err != nil {
		return Problem{
			Version: artifact.Version,
			File:    artifact.File,
			Kind:    ProblemMissing,
			Detail:  "file listed in the index does not exist",
		}, true
	}
	if info.Size() != artifact.Size {
		return Problem{
			Version: artifact.Version,
			File:    artifact.File,
			Kind:    ProblemSize,
			Detail:  fmt.Sprintf("index records %d bytes, file has %d", artifact.Size, info.Size()),
		}, true
	}

	sum, err := hashFile(path)
	if err != nil {
		return Problem{
			Version: artifact.Version,
			File:    artifact.File,
			Kind:    ProblemChecksum,
			Detail:  fmt.Sprintf("hashing failed: %v", err),
		}, true
	}
	if sum != artifact.SHA256 {
		return Problem{
			Version: artifact.Version,
			File:    artifact.File,
			Kind:    ProblemChecksum,
			Detail:  "content does not match the recorded SHA-256",
		}, true
	}
	return Problem{}, false
}

// findStrays lists PDFs in the shelf directory that the index does not
// reference.
func (s *Shelf) findStrays(idx *Index) ([]Problem, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("scanning shelf directory: %w", err)
	}

	known := make(map[string]struct{}, len(idx.Artifacts))
	for _, a := range idx.Artifacts {
		known[a.File] = struct{}{}
	}

	var problems []Problem
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(name), ".pdf") {
			continue
		}
		if _, ok := known[name]; ok {
			continue
		}
		problems = append(problems, Problem{
			File:   name,
			Kind:   ProblemStray,
			Detail: "PDF present on disk but not in the index",
		})
	}
	return problems, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path) // #nosec G304 -- path rooted in the shelf directory
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
