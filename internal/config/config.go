// Package config loads and validates the project manifest.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zizai/go-texshelf/internal/yamlutil"
)

// Sentinel errors for manifest operations.
var (
	ErrManifestNotFound  = errors.New("manifest file not found")
	ErrEmptyManifestName = errors.New("manifest name cannot be empty")
	ErrManifestParse     = errors.New("failed to parse manifest")
	ErrFieldTooLong      = errors.New("field exceeds maximum length")
)

// Field length limits; manifests are hand-written, anything longer is a mistake.
const (
	MaxProjectLength = 100  // project name, used in artifact file names
	MaxMasterLength  = 255  // master .tex file name
	MaxPathLength    = 1024 // directories and asset paths
	MaxLabelLength   = 50   // development label, also version labels
)

// Engine pass budget bounds. One pass can never resolve forward references;
// ten means the document will never stabilize.
const (
	MinPasses = 1
	MaxPasses = 10
)

// MaxTimeout caps the build timeout; a manual that compiles longer than a
// day is a broken manifest, not a slow machine.
const MaxTimeout = 24 * time.Hour

// DefaultManifestName is searched when no --manifest flag is given.
const DefaultManifestName = "texshelf"

// Manifest describes one documentation project: where its sources live,
// how LaTeX is produced from them, and where finished PDFs are shelved.
type Manifest struct {
	Project   string       `yaml:"project"`   // short name, used in artifact file names
	SourceDir string       `yaml:"source"`    // documentation sources (watched for changes)
	BuildDir  string       `yaml:"build"`     // directory the generator writes LaTeX into
	Master    string       `yaml:"master"`    // master .tex file inside build dir (default <project>.tex)
	Bootstrap []string     `yaml:"bootstrap"` // optional environment bootstrap command
	Generate  []string     `yaml:"generate"`  // docs-to-LaTeX command
	Assets    []string     `yaml:"assets"`    // auxiliary files staged into build dir
	Engine    EngineConfig `yaml:"engine"`
	Shelf     ShelfConfig  `yaml:"shelf"`
	Timeout   string       `yaml:"timeout"` // Go duration string (default "30m")

	// BaseDir is the directory of the manifest file. Relative paths in the
	// manifest resolve against it. Not serialized.
	BaseDir string `yaml:"-"`
}

// EngineConfig defines the LaTeX engine invocation.
type EngineConfig struct {
	Command   string   `yaml:"command"`   // binary name or path (default "lualatex")
	Args      []string `yaml:"args"`      // extra args; -interaction=nonstopmode is always added
	MaxPasses int      `yaml:"maxPasses"` // rerun budget, 1-10 (default 5)
}

// ShelfConfig defines where finished artifacts are stored.
type ShelfConfig struct {
	Dir              string `yaml:"dir"`              // shelf directory (default "pdf")
	DevelopmentLabel string `yaml:"developmentLabel"` // label for non-release builds (default "development")
}

// Default returns a manifest with every optional field filled in.
// Project and Generate have no defaults; a manifest must supply them.
func Default() *Manifest {
	return &Manifest{
		SourceDir: "docs",
		BuildDir:  "_build/latex",
		Engine: EngineConfig{
			Command:   "lualatex",
			MaxPasses: 5,
		},
		Shelf: ShelfConfig{
			Dir:              "pdf",
			DevelopmentLabel: "development",
		},
		Timeout: "30m",
	}
}

// Load loads a manifest from a file path or manifest name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a name and searched in standard locations.
// File values are merged over Default(); the result is always validated.
func Load(nameOrPath string) (*Manifest, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyManifestName
	}

	var manifestPath string
	var err error

	if isFilePath(nameOrPath) {
		manifestPath = nameOrPath
	} else {
		manifestPath, err = resolveManifestPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(manifestPath) // #nosec G304 -- manifest path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, manifestPath)
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	m := Default()
	if err := yamlutil.UnmarshalStrict(data, m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestParse, err)
	}

	abs, err := filepath.Abs(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("resolving manifest path: %w", err)
	}
	m.BaseDir = filepath.Dir(abs)

	if m.Master == "" && m.Project != "" {
		m.Master = m.Project + ".tex"
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// Validate checks required fields, length limits, and path safety.
// Called automatically by Load, but available for consumers who construct
// a Manifest manually (e.g. library users, tests).
func (m *Manifest) Validate() error {
	if m.Project == "" {
		return fmt.Errorf("project: required")
	}
	if err := validateFieldLength("project", m.Project, MaxProjectLength); err != nil {
		return err
	}
	if strings.ContainsAny(m.Project, "/\\\x00") {
		return fmt.Errorf("project: must not contain path separators, got %q", m.Project)
	}

	if m.SourceDir == "" {
		return fmt.Errorf("source: required")
	}
	if err := validateFieldLength("source", m.SourceDir, MaxPathLength); err != nil {
		return err
	}
	if m.BuildDir == "" {
		return fmt.Errorf("build: required")
	}
	if err := validateFieldLength("build", m.BuildDir, MaxPathLength); err != nil {
		return err
	}

	if m.Master == "" {
		return fmt.Errorf("master: required (or set project to derive it)")
	}
	if err := validateFieldLength("master", m.Master, MaxMasterLength); err != nil {
		return err
	}
	if !strings.HasSuffix(m.Master, ".tex") {
		return fmt.Errorf("master: must end in .tex, got %q", m.Master)
	}
	if err := validateRelativePath("master", m.Master); err != nil {
		return err
	}

	if len(m.Generate) == 0 || m.Generate[0] == "" {
		return fmt.Errorf("generate: command required")
	}
	if len(m.Bootstrap) > 0 && m.Bootstrap[0] == "" {
		return fmt.Errorf("bootstrap: command must not be empty when present")
	}

	for i, asset := range m.Assets {
		if asset == "" {
			return fmt.Errorf("assets[%d]: path must not be empty", i)
		}
		if err := validateFieldLength(fmt.Sprintf("assets[%d]", i), asset, MaxPathLength); err != nil {
			return err
		}
		if err := validateRelativePath(fmt.Sprintf("assets[%d]", i), asset); err != nil {
			return err
		}
	}

	if m.Engine.Command == "" {
		return fmt.Errorf("engine.command: required")
	}
	if m.Engine.MaxPasses < MinPasses || m.Engine.MaxPasses > MaxPasses {
		return fmt.Errorf("engine.maxPasses: must be between %d and %d, got %d",
			MinPasses, MaxPasses, m.Engine.MaxPasses)
	}

	if m.Shelf.Dir == "" {
		return fmt.Errorf("shelf.dir: required")
	}
	if err := validateFieldLength("shelf.dir", m.Shelf.Dir, MaxPathLength); err != nil {
		return err
	}
	if m.Shelf.DevelopmentLabel == "" {
		return fmt.Errorf("shelf.developmentLabel: required")
	}
	if err := validateFieldLength("shelf.developmentLabel", m.Shelf.DevelopmentLabel, MaxLabelLength); err != nil {
		return err
	}
	if strings.ContainsAny(m.Shelf.DevelopmentLabel, "/\\\x00") {
		return fmt.Errorf("shelf.developmentLabel: must not contain path separators, got %q", m.Shelf.DevelopmentLabel)
	}

	if _, err := m.ParseTimeout(); err != nil {
		return err
	}

	return nil
}

// ParseTimeout returns the build timeout as a duration.
func (m *Manifest) ParseTimeout() (time.Duration, error) {
	if m.Timeout == "" {
		return 0, fmt.Errorf("timeout: required")
	}
	d, err := time.ParseDuration(m.Timeout)
	if err != nil {
		return 0, fmt.Errorf("timeout: invalid duration %q: %v", m.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout: must be positive, got %s", d)
	}
	if d > MaxTimeout {
		return 0, fmt.Errorf("timeout: must not exceed %s, got %s", MaxTimeout, d)
	}
	return d, nil
}

// SourcePath returns SourceDir resolved against the manifest directory.
func (m *Manifest) SourcePath() string { return m.resolve(m.SourceDir) }

// BuildPath returns BuildDir resolved against the manifest directory.
func (m *Manifest) BuildPath() string { return m.resolve(m.BuildDir) }

// ShelfPath returns Shelf.Dir resolved against the manifest directory.
func (m *Manifest) ShelfPath() string { return m.resolve(m.Shelf.Dir) }

// AssetPath returns the given asset resolved against the manifest directory.
func (m *Manifest) AssetPath(asset string) string { return m.resolve(asset) }

func (m *Manifest) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || m.BaseDir == "" {
		return p
	}
	return filepath.Join(m.BaseDir, p)
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateRelativePath rejects absolute paths and traversal outside the
// manifest directory.
func validateRelativePath(fieldName, p string) error {
	if strings.ContainsRune(p, '\x00') {
		return fmt.Errorf("%s: contains null byte", fieldName)
	}
	if filepath.IsAbs(p) {
		return fmt.Errorf("%s: must be relative, got %q", fieldName, p)
	}
	cleaned := filepath.ToSlash(filepath.Clean(p))
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("%s: must not escape the project directory, got %q", fieldName, p)
	}
	return nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveManifestPath searches for a manifest file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/texshelf/
func resolveManifestPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "texshelf", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrManifestNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
