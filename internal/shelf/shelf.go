// Package shelf manages the versioned PDF artifact store: one immutable
// file per release identifier, an index.yaml describing them, and a
// generated README.md. Artifacts are replaced, never mutated; every write
// is atomic and durable.
package shelf

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
	"golang.org/x/mod/semver"

	"github.com/zizai/go-texshelf/internal/log"
)

// Sentinel errors for shelf operations.
var (
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrInvalidVersion   = errors.New("invalid version label")
	ErrIndexCorrupt     = errors.New("shelf index is corrupt")
	ErrNotPDF           = errors.New("artifact is not a PDF file")
)

const (
	indexFile  = "index.yaml"
	readmeFile = "README.md"
)

// pdfMagic is the header every stored artifact must carry.
const pdfMagic = "%PDF-"

// Artifact describes one shelved PDF.
type Artifact struct {
	Version string    `yaml:"version" json:"version"`
	File    string    `yaml:"file" json:"file"`
	Size    int64     `yaml:"size" json:"size"`
	SHA256  string    `yaml:"sha256" json:"sha256"`
	BuiltAt time.Time `yaml:"builtAt" json:"builtAt"`
	Source  string    `yaml:"source,omitempty" json:"source,omitempty"` // e.g. VCS revision
}

// Index is the persisted shelf state.
type Index struct {
	Project   string     `yaml:"project" json:"project"`
	UpdatedAt time.Time  `yaml:"updatedAt" json:"updatedAt"`
	Artifacts []Artifact `yaml:"artifacts" json:"artifacts"`
}

// PutMeta carries the metadata recorded alongside a stored PDF.
type PutMeta struct {
	Version string    // development label or canonical semver (vX.Y.Z)
	Source  string    // optional provenance, e.g. git commit
	BuiltAt time.Time // zero = now
}

// Shelf is the artifact store rooted at a single directory.
type Shelf struct {
	dir      string
	project  string
	devLabel string
	now      func() time.Time
	logger   zerolog.Logger

	mu sync.Mutex // serializes index read-modify-write cycles
}

// New opens (creating if needed) the shelf directory.
func New(dir, project, devLabel string) (*Shelf, error) {
	if dir == "" {
		return nil, errors.New("shelf directory cannot be empty")
	}
	if project == "" {
		return nil, errors.New("project name cannot be empty")
	}
	if devLabel == "" {
		devLabel = "development"
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating shelf directory: %w", err)
	}
	return &Shelf{
		dir:      dir,
		project:  project,
		devLabel: devLabel,
		now:      time.Now,
		logger:   log.WithComponent("shelf"),
	}, nil
}

// Dir returns the shelf directory.
func (s *Shelf) Dir() string { return s.dir }

// Project returns the project name artifacts are filed under.
func (s *Shelf) Project() string { return s.project }

// DevelopmentLabel returns the label used for non-release builds.
func (s *Shelf) DevelopmentLabel() string { return s.devLabel }

// FileName returns the artifact file name convention for a version:
// <project>-<version>.pdf, or <project>.pdf for the development build.
func (s *Shelf) FileName(version string) string {
	if version == s.devLabel {
		return s.project + ".pdf"
	}
	return s.project + "-" + version + ".pdf"
}

// ValidateVersion accepts the development label or a canonical semver
// release label (vMAJOR.MINOR.PATCH, optional pre-release).
func (s *Shelf) ValidateVersion(label string) error {
	if label == "" {
		return fmt.Errorf("%w: empty label", ErrInvalidVersion)
	}
	if strings.ContainsAny(label, "/\\\x00") {
		return fmt.Errorf("%w: %q contains path separators", ErrInvalidVersion, label)
	}
	if label == s.devLabel {
		return nil
	}
	if !semver.IsValid(label) || semver.Canonical(label) != label {
		return fmt.Errorf("%w: %q (want %q or canonical semver like v1.2.3)",
			ErrInvalidVersion, label, s.devLabel)
	}
	return nil
}

// Put stores the PDF at pdfPath under meta.Version, replacing any existing
// artifact for that version. The file lands atomically and durably (temp
// file + fsync + rename), then the index and README are rewritten.
func (s *Shelf) Put(ctx context.Context, pdfPath string, meta PutMeta) (Artifact, error) {
	if err := s.ValidateVersion(meta.Version); err != nil {
		return Artifact{}, err
	}
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}

	builtAt := meta.BuiltAt
	if builtAt.IsZero() {
		builtAt = s.now()
	}

	fileName := s.FileName(meta.Version)
	size, sum, err := s.copyArtifact(pdfPath, filepath.Join(s.dir, fileName))
	if err != nil {
		return Artifact{}, err
	}

	artifact := Artifact{
		Version: meta.Version,
		File:    fileName,
		Size:    size,
		SHA256:  sum,
		BuiltAt: builtAt,
		Source:  meta.Source,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.loadIndex()
	if err != nil {
		return Artifact{}, err
	}
	idx.upsert(artifact)
	s.sortArtifacts(idx.Artifacts)
	idx.UpdatedAt = s.now()

	if err := s.saveIndex(idx); err != nil {
		return Artifact{}, err
	}
	if err := s.writeReadme(idx); err != nil {
		return Artifact{}, err
	}

	s.logger.Info().
		Str("event", "shelf.put").
		Str("version", artifact.Version).
		Str("file", artifact.File).
		Int64("size", artifact.Size).
		Msg("artifact shelved")

	return artifact, nil
}

// copyArtifact streams the source PDF into an atomically-replaced
// destination, hashing as it goes. The source must start with the PDF magic.
func (s *Shelf) copyArtifact(src, dst string) (int64, string, error) {
	in, err := os.Open(src) // #nosec G304 -- path produced by the build pipeline
	if err != nil {
		return 0, "", fmt.Errorf("opening artifact: %w", err)
	}
	defer func() { _ = in.Close() }()

	header := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(in, header); err != nil || string(header) != pdfMagic {
		return 0, "", fmt.Errorf("%w: %s", ErrNotPDF, src)
	}
	if _, err := in.Seek(0, io.SeekStart); err != nil {
		return 0, "", fmt.Errorf("rewinding artifact: %w", err)
	}

	pending, err := renameio.NewPendingFile(dst, renameio.WithPermissions(0o644))
	if err != nil {
		return 0, "", fmt.Errorf("creating pending artifact file: %w", err)
	}
	defer func() {
		// Cleanup is a no-op after a successful replace.
		if err := pending.Cleanup(); err != nil {
			s.logger.Debug().Err(err).Msg("cleanup pending artifact file")
		}
	}()

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(pending, hasher), in)
	if err != nil {
		return 0, "", fmt.Errorf("copying artifact: %w", err)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return 0, "", fmt.Errorf("replacing artifact: %w", err)
	}

	return size, hex.EncodeToString(hasher.Sum(nil)), nil
}

// Get returns the artifact stored under the given version label.
func (s *Shelf) Get(version string) (Artifact, error) {
	if err := s.ValidateVersion(version); err != nil {
		return Artifact{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.loadIndex()
	if err != nil {
		return Artifact{}, err
	}
	for _, a := range idx.Artifacts {
		if a.Version == version {
			return a, nil
		}
	}
	return Artifact{}, fmt.Errorf("%w: %s", ErrArtifactNotFound, version)
}

// List returns all artifacts: the development build first, then releases
// newest to oldest.
func (s *Shelf) List() ([]Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	artifacts := make([]Artifact, len(idx.Artifacts))
	copy(artifacts, idx.Artifacts)
	s.sortArtifacts(artifacts)
	return artifacts, nil
}

// Latest returns the newest release artifact (the development build is
// not a release).
func (s *Shelf) Latest() (Artifact, error) {
	artifacts, err := s.List()
	if err != nil {
		return Artifact{}, err
	}
	for _, a := range artifacts {
		if a.Version != s.devLabel {
			return a, nil
		}
	}
	return Artifact{}, fmt.Errorf("%w: no release artifacts", ErrArtifactNotFound)
}

// Remove deletes the artifact file and its index entry, then rewrites the
// README. A missing file is not an error; the index entry must exist.
func (s *Shelf) Remove(version string) error {
	if err := s.ValidateVersion(version); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.loadIndex()
	if err != nil {
		return err
	}

	kept := idx.Artifacts[:0]
	var removed *Artifact
	for i := range idx.Artifacts {
		if idx.Artifacts[i].Version == version {
			a := idx.Artifacts[i]
			removed = &a
			continue
		}
		kept = append(kept, idx.Artifacts[i])
	}
	if removed == nil {
		return fmt.Errorf("%w: %s", ErrArtifactNotFound, version)
	}
	idx.Artifacts = kept
	idx.UpdatedAt = s.now()

	if err := os.Remove(filepath.Join(s.dir, removed.File)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing artifact file: %w", err)
	}
	if err := s.saveIndex(idx); err != nil {
		return err
	}
	if err := s.writeReadme(idx); err != nil {
		return err
	}

	s.logger.Info().
		Str("event", "shelf.remove").
		Str("version", version).
		Str("file", removed.File).
		Msg("artifact removed")

	return nil
}

// upsert replaces the entry with the same version or appends a new one.
func (idx *Index) upsert(artifact Artifact) {
	for i := range idx.Artifacts {
		if idx.Artifacts[i].Version == artifact.Version {
			idx.Artifacts[i] = artifact
			return
		}
	}
	idx.Artifacts = append(idx.Artifacts, artifact)
}

// sortArtifacts orders the development build first, then releases newest
// to oldest by semver.
func (s *Shelf) sortArtifacts(artifacts []Artifact) {
	sort.SliceStable(artifacts, func(i, j int) bool {
		a, b := artifacts[i], artifacts[j]
		aDev, bDev := a.Version == s.devLabel, b.Version == s.devLabel
		if aDev != bDev {
			return aDev
		}
		if c := semver.Compare(a.Version, b.Version); c != 0 {
			return c > 0
		}
		return a.Version < b.Version
	})
}
