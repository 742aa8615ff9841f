package texdist

import (
	"fmt"
	"io"
)

// Fprint writes the human-readable diagnostic report.
func Fprint(w io.Writer, r *Report) {
	fmt.Fprintln(w, "texshelf doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "LaTeX engine")
	if r.Engine.Found {
		fmt.Fprintf(w, "  [OK] %s found at %s\n", r.Engine.Command, r.Engine.Path)
		if r.Engine.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Engine.Version)
		}
		if r.Engine.Distribution != "" {
			fmt.Fprintf(w, "  [OK] Distribution: %s\n", r.Engine.Distribution)
		}
	} else {
		fmt.Fprintf(w, "  [ERROR] %s not found\n", r.Engine.Command)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Fonts")
	if r.Fonts.DejaVuFound {
		fmt.Fprintf(w, "  [OK] DejaVu family: found via %s\n", r.Fonts.Via)
	} else {
		fmt.Fprintln(w, "  [WARN] DejaVu family: not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Tools")
	if r.Tools.Kpsewhich {
		if r.Tools.KpsewhichVersion != "" {
			fmt.Fprintf(w, "  [OK] kpsewhich: %s\n", r.Tools.KpsewhichVersion)
		} else {
			fmt.Fprintln(w, "  [OK] kpsewhich: found")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] kpsewhich: not found")
	}
	for _, command := range r.Tools.MissingCommands {
		fmt.Fprintf(w, "  [WARN] pipeline command %q: not on PATH\n", command)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	if r.Env.EngineOverride != "" {
		fmt.Fprintf(w, "  [OK] TEXSHELF_ENGINE: %s\n", r.Env.EngineOverride)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	if r.System.BuildDirWritable != nil {
		if *r.System.BuildDirWritable {
			fmt.Fprintf(w, "  [OK] Build directory: writable (%s)\n", r.System.BuildDir)
		} else {
			fmt.Fprintf(w, "  [ERROR] Build directory: not writable (%s)\n", r.System.BuildDir)
		}
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case StatusReady:
		fmt.Fprintln(w, "Status: Ready to build")
	case StatusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case StatusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
