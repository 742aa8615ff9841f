package main

// Notes:
// - GenerateCompletion: we assert structural markers per shell, not full
//   script text; the scripts are rendered from getCommands so the command
//   and flag coverage tests carry most of the weight.
// - Scripts are not executed against real shells here.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestGenerateCompletion_SupportedShells - Structural markers per shell
// ---------------------------------------------------------------------------

func TestGenerateCompletion_SupportedShells(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		shell   Shell
		markers []string
	}{
		{
			name:  "bash",
			shell: ShellBash,
			markers: []string{
				"# bash completion for texshelf",
				"shopt -s extglob",
				"_texshelf_completions",
				"compgen -W",
				"--manifest|-m",
				"complete -F _texshelf_completions texshelf",
			},
		},
		{
			name:  "zsh",
			shell: ShellZsh,
			markers: []string{
				"#compdef texshelf",
				"_texshelf()",
				"_arguments -C",
				"_describe 'command' commands",
				"{-m,--manifest}",
				"_texshelf \"$@\"",
			},
		},
		{
			name:  "fish",
			shell: ShellFish,
			markers: []string{
				"# fish completion for texshelf",
				"__fish_texshelf_needs_command",
				"__fish_texshelf_using_command",
				"complete -c texshelf",
				"-l manifest",
			},
		},
		{
			name:  "powershell",
			shell: ShellPowerShell,
			markers: []string{
				"Register-ArgumentCompleter -Native -CommandName texshelf",
				"$wordToComplete",
				"System.Management.Automation.CompletionResult",
				"'--manifest'",
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := GenerateCompletion(&buf, tt.shell); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			out := buf.String()
			for _, marker := range tt.markers {
				if !strings.Contains(out, marker) {
					t.Errorf("%s script should contain %q", tt.name, marker)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestGenerateCompletion_AllCommandsListed - Every command in every shell
// ---------------------------------------------------------------------------

func TestGenerateCompletion_AllCommandsListed(t *testing.T) {
	t.Parallel()

	shells := []Shell{ShellBash, ShellZsh, ShellFish, ShellPowerShell}

	for _, shell := range shells {
		shell := shell
		t.Run(string(shell), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := GenerateCompletion(&buf, shell); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			out := buf.String()
			for _, c := range getCommands() {
				if !strings.Contains(out, c.Name) {
					t.Errorf("%s script should offer the %s command", shell, c.Name)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestGenerateCompletion_FileGlobs - File flags carry their glob patterns
// ---------------------------------------------------------------------------

func TestGenerateCompletion_FileGlobs(t *testing.T) {
	t.Parallel()

	t.Run("bash extglob filters", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := GenerateCompletion(&buf, ShellBash); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{"!*.@(yaml|yml)", "!*.@(json)", "!*.@(pdf)"} {
			if !strings.Contains(out, want) {
				t.Errorf("bash script should filter with %q", want)
			}
		}
	})

	t.Run("zsh _files globs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := GenerateCompletion(&buf, ShellZsh); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{`_files -g "*.(yaml|yml)"`, `_files -g "*.(json)"`, `_files -g "*.(pdf)"`} {
			if !strings.Contains(out, want) {
				t.Errorf("zsh script should complete files with %q", want)
			}
		}
	})
}

// ---------------------------------------------------------------------------
// TestGenerateCompletion_UnsupportedShell - Error path
// ---------------------------------------------------------------------------

func TestGenerateCompletion_UnsupportedShell(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		shell Shell
	}{
		{"empty", Shell("")},
		{"unknown", Shell("unknown")},
		{"sh", Shell("sh")},
		{"ksh", Shell("ksh")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			err := GenerateCompletion(&buf, tt.shell)

			if !errors.Is(err, ErrUnsupportedShell) {
				t.Fatalf("expected ErrUnsupportedShell, got %v", err)
			}
			if tt.shell != "" && !strings.Contains(err.Error(), string(tt.shell)) {
				t.Errorf("error should name the shell, got %q", err)
			}
			if !strings.Contains(err.Error(), "bash, zsh, fish, powershell") {
				t.Errorf("error should list the supported shells, got %q", err)
			}
			if buf.Len() != 0 {
				t.Errorf("nothing should be written on error, got %q", buf.String())
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunCompletion - Command wiring
// ---------------------------------------------------------------------------

func TestRunCompletion(t *testing.T) {
	t.Parallel()

	t.Run("no arguments prints usage and succeeds", func(t *testing.T) {
		t.Parallel()

		var stdout bytes.Buffer
		env := &Environment{Now: time.Now, Stdout: &stdout, Stderr: &bytes.Buffer{}}

		if err := runCompletion(nil, env); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := stdout.String()
		for _, want := range []string{"Usage: texshelf completion <shell>", "bash", "zsh", "fish", "powershell"} {
			if !strings.Contains(out, want) {
				t.Errorf("usage should contain %q", want)
			}
		}
	})

	t.Run("valid shell writes a script", func(t *testing.T) {
		t.Parallel()

		var stdout bytes.Buffer
		env := &Environment{Now: time.Now, Stdout: &stdout, Stderr: &bytes.Buffer{}}

		if err := runCompletion([]string{"fish"}, env); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout.String(), "complete -c texshelf") {
			t.Errorf("expected a fish script, got %q", stdout.String())
		}
	})

	t.Run("invalid shell returns the sentinel", func(t *testing.T) {
		t.Parallel()

		var stdout bytes.Buffer
		env := &Environment{Now: time.Now, Stdout: &stdout, Stderr: &bytes.Buffer{}}

		err := runCompletion([]string{"tcsh"}, env)
		if !errors.Is(err, ErrUnsupportedShell) {
			t.Errorf("expected ErrUnsupportedShell, got %v", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestGetCommands - Registry completeness
// ---------------------------------------------------------------------------

func TestGetCommands(t *testing.T) {
	t.Parallel()

	commands := getCommands()

	byName := make(map[string]commandDef, len(commands))
	for _, c := range commands {
		byName[c.Name] = c
	}

	expected := []string{
		"build", "watch", "clean",
		"publish", "list", "show", "verify", "remove", "serve",
		"doctor", "version", "help", "completion",
	}
	for _, name := range expected {
		if _, ok := byName[name]; !ok {
			t.Errorf("getCommands should include %s", name)
		}
	}
	if len(commands) != len(expected) {
		t.Errorf("getCommands returned %d commands, want %d; update this test when adding commands",
			len(commands), len(expected))
	}

	t.Run("publish completes PDF paths", func(t *testing.T) {
		t.Parallel()

		publish := byName["publish"]
		if !publish.TakesFiles {
			t.Error("publish should take file arguments")
		}
		if publish.FilePattern != "*.pdf" {
			t.Errorf("publish FilePattern = %q, want %q", publish.FilePattern, "*.pdf")
		}
	})

	t.Run("completion completes shell names", func(t *testing.T) {
		t.Parallel()

		got := byName["completion"].ArgValues
		want := []string{"bash", "zsh", "fish", "powershell"}
		if len(got) != len(want) {
			t.Fatalf("completion ArgValues = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("completion ArgValues[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("help completes every command name", func(t *testing.T) {
		t.Parallel()

		values := make(map[string]bool)
		for _, v := range byName["help"].ArgValues {
			values[v] = true
		}
		for _, name := range expected {
			if !values[name] {
				t.Errorf("help should complete %s", name)
			}
		}
	})

	t.Run("flagged commands carry the common flags", func(t *testing.T) {
		t.Parallel()

		for _, c := range commands {
			if c.Name == "version" || c.Name == "help" || c.Name == "completion" {
				if len(c.Flags) != 0 {
					t.Errorf("%s should have no flags, got %d", c.Name, len(c.Flags))
				}
				continue
			}
			for _, long := range []string{"manifest", "quiet", "verbose"} {
				if findFlag(c.Flags, long) == nil {
					t.Errorf("%s should carry the %s flag", c.Name, long)
				}
			}
		}
	})
}

// ---------------------------------------------------------------------------
// TestGetCommands_FlagMetadata - Types and globs from the FlagSets
// ---------------------------------------------------------------------------

func TestGetCommands_FlagMetadata(t *testing.T) {
	t.Parallel()

	var build commandDef
	for _, c := range getCommands() {
		if c.Name == "build" {
			build = c
			break
		}
	}
	if build.Name == "" {
		t.Fatal("build command missing from registry")
	}

	tests := []struct {
		long     string
		short    string
		wantType flagType
		wantGlob string
	}{
		{"manifest", "m", flagFile, "*.yaml,*.yml"},
		{"report", "r", flagFile, "*.json"},
		{"version-label", "l", flagString, ""},
		{"timeout", "t", flagString, ""},
		{"max-passes", "", flagInt, ""},
		{"publish", "p", flagBool, ""},
		{"skip-bootstrap", "", flagBool, ""},
		{"quiet", "q", flagBool, ""},
		{"verbose", "v", flagBool, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.long, func(t *testing.T) {
			t.Parallel()

			f := findFlag(build.Flags, tt.long)
			if f == nil {
				t.Fatalf("build should have a --%s flag", tt.long)
			}
			if f.Short != tt.short {
				t.Errorf("short = %q, want %q", f.Short, tt.short)
			}
			if f.Type != tt.wantType {
				t.Errorf("type = %d, want %d", f.Type, tt.wantType)
			}
			if f.FileGlob != tt.wantGlob {
				t.Errorf("glob = %q, want %q", f.FileGlob, tt.wantGlob)
			}
			if f.Desc == "" {
				t.Errorf("--%s should carry its usage string", tt.long)
			}
		})
	}
}

// findFlag returns the flag with the given long name, or nil.
func findFlag(flags []flagDef, long string) *flagDef {
	for i := range flags {
		if flags[i].Long == long {
			return &flags[i]
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// TestShellConstants - Wire values
// ---------------------------------------------------------------------------

func TestShellConstants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		shell Shell
		want  string
	}{
		{ShellBash, "bash"},
		{ShellZsh, "zsh"},
		{ShellFish, "fish"},
		{ShellPowerShell, "powershell"},
	}

	for _, tt := range tests {
		if string(tt.shell) != tt.want {
			t.Errorf("shell constant = %q, want %q", tt.shell, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestPrintCompletionUsage - Installation instructions
// ---------------------------------------------------------------------------

func TestPrintCompletionUsage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printCompletionUsage(&buf)
	out := buf.String()

	required := []string{
		"Usage: texshelf completion <shell>",
		"bash", "zsh", "fish", "powershell",
		"Installation:",
		`eval "$(texshelf completion bash)"`,
		"~/.config/fish/completions/texshelf.fish",
		"Out-String | Invoke-Expression",
	}
	for _, want := range required {
		if !strings.Contains(out, want) {
			t.Errorf("completion usage should contain %q", want)
		}
	}
}
