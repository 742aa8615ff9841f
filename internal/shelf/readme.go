package shelf

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
)

// shortChecksumLen keeps the README table readable; the full digest lives
// in index.yaml.
const shortChecksumLen = 12

// writeReadme regenerates README.md from the index. The file is fully
// derived state: every mutation rewrites it, manual edits are lost.
// Callers hold s.mu.
func (s *Shelf) writeReadme(idx *Index) error {
	path := filepath.Join(s.dir, readmeFile)
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("creating pending README file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			s.logger.Debug().Err(err).Msg("cleanup pending README file")
		}
	}()

	if _, err := pending.Write([]byte(renderReadme(idx, s.devLabel))); err != nil {
		return fmt.Errorf("writing README: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replacing README: %w", err)
	}
	return nil
}

// renderReadme produces the Markdown document. Output is deterministic for
// a given index so repeated rebuilds do not churn version control.
func renderReadme(idx *Index, devLabel string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# PDF shelf for %s\n\n", idx.Project)
	fmt.Fprintf(&b, "One PDF per released version of the `%s` manual, plus the current\n", idx.Project)
	b.WriteString("development build. This file and `index.yaml` are generated; do not\n")
	b.WriteString("edit them by hand.\n\n")

	b.WriteString("## Artifacts\n\n")
	if len(idx.Artifacts) == 0 {
		b.WriteString("The shelf is empty. Run `texshelf build --publish` to add the first\n")
		b.WriteString("development build.\n\n")
	} else {
		b.WriteString("| Version | File | Built | Size | SHA-256 |\n")
		b.WriteString("|---------|------|-------|------|---------|\n")
		for _, a := range idx.Artifacts {
			version := a.Version
			if version == devLabel {
				version = "_" + version + "_"
			}
			fmt.Fprintf(&b, "| %s | [%s](%s) | %s | %s | `%s` |\n",
				version, a.File, a.File,
				a.BuiltAt.Format("2006-01-02"),
				formatSize(a.Size),
				shortChecksum(a.SHA256))
		}
		b.WriteString("\n")
		b.WriteString("Full checksums are recorded in `index.yaml`; verify the shelf with\n")
		b.WriteString("`texshelf verify`.\n\n")
	}

	b.WriteString("## Rebuilding\n\n")
	b.WriteString("PDFs are produced by the `texshelf` pipeline:\n\n")
	fmt.Fprintf(&b, "    texshelf build                 # development build (%s)\n", devLabel)
	b.WriteString("    texshelf build --publish       # build and shelve it\n")
	b.WriteString("    texshelf publish --version-label v1.2.3 <pdf>\n\n")
	b.WriteString("The pipeline bootstraps the source tree, generates the LaTeX sources,\n")
	b.WriteString("stages auxiliary PDF assets next to them, and compiles with LuaLaTeX\n")
	b.WriteString("until cross-references settle.\n\n")

	b.WriteString("### Prerequisites\n\n")
	b.WriteString("* A TeX distribution with LuaLaTeX (TeX Live with `texlive-luatex`,\n")
	b.WriteString("  or MiKTeX on Windows)\n")
	b.WriteString("* The DejaVu font family, resolvable by `fontspec`\n")
	b.WriteString("* `texshelf doctor` checks both and reports what is missing\n")

	return b.String()
}

func shortChecksum(sum string) string {
	if len(sum) <= shortChecksumLen {
		return sum
	}
	return sum[:shortChecksumLen]
}

// formatSize renders a byte count for humans, binary units.
func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
