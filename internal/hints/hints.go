// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/zizai/go-texshelf/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForEngineNotFound returns hints for a missing TeX engine binary.
// Detects CI/Docker environment and suggests the distribution package.
func ForEngineNotFound(engine string) string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if inCI || IsInContainer() {
		hints = append(hints, "install texlive-luatex in the CI image")
	} else {
		hints = append(hints, "install a TeX distribution (TeX Live or MiKTeX)")
	}

	if engine != "" && os.Getenv("TEXSHELF_ENGINE") == "" {
		hints = append(hints, "or set TEXSHELF_ENGINE to the "+engine+" path")
	}

	return formatHints(hints)
}

// ForMissingFonts returns hints for DejaVu font lookup failures.
func ForMissingFonts() string {
	return format("install the DejaVu fonts (fonts-dejavu package) and refresh the font cache")
}

// ForTimeout returns a hint about increasing timeout for slow compilations.
func ForTimeout() string {
	return format("for large manuals, use --timeout flag")
}

// ForManifestNotFound returns hints for manifest file not found errors.
// Suggests --manifest flag and creating a manifest in ~/.config/texshelf/.
func ForManifestNotFound(searchedPaths []string) string {
	hint := "use --manifest /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/texshelf") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForBuildDirectory returns hints for build directory creation errors.
func ForBuildDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForUnresolvedReferences returns hints when the compiler never stabilizes.
func ForUnresolvedReferences(maxPasses int) string {
	if maxPasses <= 0 {
		return format("check the log for undefined \\ref or \\cite targets")
	}
	return format("document did not stabilize; raise --max-passes or fix undefined \\ref targets")
}

// ForMissingAsset returns hints for a missing auxiliary asset file.
func ForMissingAsset() string {
	return format("asset paths are relative to the manifest directory")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
