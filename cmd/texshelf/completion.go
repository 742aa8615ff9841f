package main

import (
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = fmt.Errorf("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagFile // file with glob pattern
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --manifest
	Short    string   // -m (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	FileGlob string   // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	TakesFiles  bool     // accepts file arguments
	FilePattern string   // glob for file arguments (e.g., "*.pdf")
	ArgValues   []string // fixed argument values (e.g., shell names)
}

// completionMeta holds completion-specific metadata for flags.
// This is the ONLY place where completion hints are defined.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	FileGlob string // file glob pattern
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	"manifest": {FileGlob: "*.yaml,*.yml"},
	"report":   {FileGlob: "*.json"},
}

// commandFlagSet creates a FlagSet with the given command's flags.
// This reuses the same flag registration as the parse functions.
func commandFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	switch name {
	case "build":
		addBuildFlags(fs, &buildFlags{})
	case "publish":
		addPublishFlags(fs, &publishFlags{})
	case "list", "show", "verify":
		addShelfFlags(fs, &shelfFlags{})
	case "remove", "clean":
		addCommonFlags(fs, &commonFlags{})
	case "doctor":
		addDoctorFlags(fs, &doctorFlags{})
	case "watch":
		addWatchFlags(fs, &watchFlags{})
	case "serve":
		addServeFlags(fs, &serveFlags{})
	}

	return fs
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		// Determine base type from pflag type
		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
			fd.Type = flagInt
		default:
			fd.Type = flagString
		}

		// Override type based on completion metadata
		if meta, ok := flagCompletionMeta[f.Name]; ok && meta.FileGlob != "" {
			fd.Type = flagFile
			fd.FileGlob = meta.FileGlob
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Flags are extracted from the actual FlagSets - single source of truth.
func getCommands() []commandDef {
	commands := []commandDef{
		{
			Name:  "build",
			Desc:  "Run the documentation pipeline and compile the PDF",
			Flags: extractFlagsFromFlagSet(commandFlagSet("build")),
		},
		{
			Name:  "watch",
			Desc:  "Rebuild whenever the documentation sources change",
			Flags: extractFlagsFromFlagSet(commandFlagSet("watch")),
		},
		{
			Name:  "clean",
			Desc:  "Remove the build directory",
			Flags: extractFlagsFromFlagSet(commandFlagSet("clean")),
		},
		{
			Name:        "publish",
			Desc:        "Store an already-built PDF on the shelf",
			Flags:       extractFlagsFromFlagSet(commandFlagSet("publish")),
			TakesFiles:  true,
			FilePattern: "*.pdf",
		},
		{
			Name:  "list",
			Desc:  "List shelved artifacts",
			Flags: extractFlagsFromFlagSet(commandFlagSet("list")),
		},
		{
			Name:  "show",
			Desc:  "Show metadata for one shelved artifact",
			Flags: extractFlagsFromFlagSet(commandFlagSet("show")),
		},
		{
			Name:  "verify",
			Desc:  "Check shelved artifacts against the index",
			Flags: extractFlagsFromFlagSet(commandFlagSet("verify")),
		},
		{
			Name:  "remove",
			Desc:  "Delete an artifact from the shelf",
			Flags: extractFlagsFromFlagSet(commandFlagSet("remove")),
		},
		{
			Name:  "serve",
			Desc:  "Browse the shelf over HTTP",
			Flags: extractFlagsFromFlagSet(commandFlagSet("serve")),
		},
		{
			Name:  "doctor",
			Desc:  "Check the LaTeX toolchain",
			Flags: extractFlagsFromFlagSet(commandFlagSet("doctor")),
		},
		{
			Name: "version",
			Desc: "Show version information",
		},
		{
			Name: "help",
			Desc: "Show help for a command",
		},
		{
			Name:      "completion",
			Desc:      "Generate shell completion script",
			ArgValues: []string{"bash", "zsh", "fish", "powershell"},
		},
	}

	// help completes command names; fill them in once the list is built.
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.Name
	}
	for i := range commands {
		if commands[i].Name == "help" {
			commands[i].ArgValues = names
		}
	}

	return commands
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w)
	case ShellZsh:
		return generateZsh(w)
	case ShellFish:
		return generateFish(w)
	case ShellPowerShell:
		return generatePowerShell(w)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish, powershell)", ErrUnsupportedShell, shell)
	}
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}

	shell := Shell(args[0])
	return GenerateCompletion(env.Stdout, shell)
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: texshelf completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(texshelf completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (before compinit):")
	fmt.Fprintln(w, "    eval \"$(texshelf completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    texshelf completion fish > ~/.config/fish/completions/texshelf.fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PowerShell:")
	fmt.Fprintln(w, "    # Add to $PROFILE:")
	fmt.Fprintln(w, "    texshelf completion powershell | Out-String | Invoke-Expression")
}
