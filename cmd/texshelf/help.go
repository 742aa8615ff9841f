package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: texshelf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build commands:")
	fmt.Fprintln(w, "  build       Run the documentation pipeline and compile the PDF")
	fmt.Fprintln(w, "  watch       Rebuild whenever the documentation sources change")
	fmt.Fprintln(w, "  clean       Remove the build directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Shelf commands:")
	fmt.Fprintln(w, "  publish     Store an already-built PDF on the shelf")
	fmt.Fprintln(w, "  list        List shelved artifacts")
	fmt.Fprintln(w, "  show        Show one artifact's metadata")
	fmt.Fprintln(w, "  verify      Check shelved artifacts against the index")
	fmt.Fprintln(w, "  remove      Delete an artifact from the shelf")
	fmt.Fprintln(w, "  serve       Browse the shelf over HTTP")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Other commands:")
	fmt.Fprintln(w, "  doctor      Check the LaTeX toolchain")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'texshelf help <command>' for details on a specific command.")
}

// printBuildUsage prints usage for the build command.
func printBuildUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: texshelf build [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the pipeline: bootstrap, generate LaTeX sources, stage assets,")
	fmt.Fprintln(w, "compile with the configured engine until cross-references settle.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build:")
	fmt.Fprintln(w, "  -l, --version-label <s>   Artifact version: development label or vX.Y.Z")
	fmt.Fprintln(w, "  -t, --timeout <d>         Build timeout (e.g. 30s, 10m)")
	fmt.Fprintln(w, "      --max-passes <n>      Engine pass budget (1-10, 0 = manifest value)")
	fmt.Fprintln(w, "      --skip-bootstrap      Skip the bootstrap command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -p, --publish             Shelve the PDF after a successful build")
	fmt.Fprintln(w, "  -r, --report <path>       Write the build report as JSON")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printPublishUsage prints usage for the publish command.
func printPublishUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: texshelf publish <pdf> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Store an already-built PDF on the shelf under a version label.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  pdf    Path to the PDF to shelve")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Publish:")
	fmt.Fprintln(w, "  -l, --version-label <s>   Artifact version: development label or vX.Y.Z")
	fmt.Fprintln(w, "  -s, --source <s>          Provenance recorded with the artifact")
	fmt.Fprintln(w, "                            (default: current git revision)")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printListUsage prints usage for the list command.
func printListUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: texshelf list [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List shelved artifacts: development build first, then releases")
	fmt.Fprintln(w, "newest to oldest.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Machine-readable JSON output")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printShowUsage prints usage for the show command.
func printShowUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: texshelf show <version> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Show one artifact's metadata: file, size, checksum, build time.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Machine-readable JSON output")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printVerifyUsage prints usage for the verify command.
func printVerifyUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: texshelf verify [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Re-hash every shelved artifact and compare against the index.")
	fmt.Fprintln(w, "Reports missing files, size or checksum drift, and stray PDFs.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Machine-readable JSON output")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printRemoveUsage prints usage for the remove command.
func printRemoveUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: texshelf remove <version> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Delete an artifact and its index entry from the shelf.")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printCleanUsage prints usage for the clean command.
func printCleanUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: texshelf clean [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Remove the build directory. The shelf is never touched.")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: texshelf doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the LaTeX toolchain: engine binary, TeX distribution, DejaVu")
	fmt.Fprintln(w, "fonts, pipeline commands, and directory writability. Reports only;")
	fmt.Fprintln(w, "never installs or fixes anything.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Machine-readable JSON output")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printWatchUsage prints usage for the watch command.
func printWatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: texshelf watch [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build once, then rebuild whenever files under the source directory")
	fmt.Fprintln(w, "change. Rebuilds always skip bootstrap. Stop with Ctrl-C.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-build timeout (e.g. 30s, 10m)")
	fmt.Fprintln(w, "      --skip-bootstrap      Skip the bootstrap command on the first build too")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: texshelf serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve the shelf over HTTP: the README as an index page, artifact")
	fmt.Fprintln(w, "downloads, and a JSON API. Stop with Ctrl-C.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -a, --addr <host:port>    Listen address (default 127.0.0.1:8787)")
	fmt.Fprintln(w, "      --live                Reload open pages when the shelf changes")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printCommonUsage prints the flags every command accepts.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -m, --manifest <name>     Manifest file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed timing and pipeline events")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "build":
		printBuildUsage(env.Stdout)
	case "publish":
		printPublishUsage(env.Stdout)
	case "list":
		printListUsage(env.Stdout)
	case "show":
		printShowUsage(env.Stdout)
	case "verify":
		printVerifyUsage(env.Stdout)
	case "remove":
		printRemoveUsage(env.Stdout)
	case "clean":
		printCleanUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "watch":
		printWatchUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: texshelf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: texshelf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
