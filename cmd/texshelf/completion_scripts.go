package main

import (
	"fmt"
	"io"
	"strings"
)

// The generators build each script from getCommands, so a new command or
// flag shows up in every shell without touching this file.

// generateBash writes a bash completion script.
func generateBash(w io.Writer) error {
	commands := getCommands()

	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.Name
	}

	var b strings.Builder

	b.WriteString("# bash completion for texshelf\n")
	b.WriteString("# Install: eval \"$(texshelf completion bash)\"\n\n")
	b.WriteString("shopt -s extglob\n\n")
	b.WriteString("_texshelf_completions() {\n")
	b.WriteString("    local cur prev command\n")
	b.WriteString("    COMPREPLY=()\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n\n")
	fmt.Fprintf(&b, "    local commands=\"%s\"\n\n", strings.Join(names, " "))

	b.WriteString("    if [[ $COMP_CWORD -eq 1 ]]; then\n")
	b.WriteString("        COMPREPLY=($(compgen -W \"$commands\" -- \"$cur\"))\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    command=\"${COMP_WORDS[1]}\"\n\n")

	// Flag arguments: file flags get glob-filtered paths, other value
	// flags are free text and get nothing.
	b.WriteString("    case \"$prev\" in\n")
	seenFile := make(map[string]bool)
	for _, c := range commands {
		for _, f := range c.Flags {
			if f.Type != flagFile || seenFile[f.Long] {
				continue
			}
			seenFile[f.Long] = true
			fmt.Fprintf(&b, "        %s)\n", bashFlagPattern(f))
			fmt.Fprintf(&b, "            COMPREPLY=($(compgen -f -X '%s' -- \"$cur\") $(compgen -d -- \"$cur\"))\n", bashGlobFilter(f.FileGlob))
			b.WriteString("            return\n")
			b.WriteString("            ;;\n")
		}
	}
	var valueFlags []string
	seenValue := make(map[string]bool)
	for _, c := range commands {
		for _, f := range c.Flags {
			if f.Type == flagBool || f.Type == flagFile || seenValue[f.Long] {
				continue
			}
			seenValue[f.Long] = true
			valueFlags = append(valueFlags, bashFlagPattern(f))
		}
	}
	if len(valueFlags) > 0 {
		fmt.Fprintf(&b, "        %s)\n", strings.Join(valueFlags, "|"))
		b.WriteString("            return\n")
		b.WriteString("            ;;\n")
	}
	b.WriteString("    esac\n\n")

	b.WriteString("    case \"$command\" in\n")
	for _, c := range commands {
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		if len(c.Flags) > 0 {
			b.WriteString("            if [[ $cur == -* ]]; then\n")
			fmt.Fprintf(&b, "                COMPREPLY=($(compgen -W \"%s\" -- \"$cur\"))\n", strings.Join(flagWords(c.Flags), " "))
			b.WriteString("                return\n")
			b.WriteString("            fi\n")
		}
		switch {
		case len(c.ArgValues) > 0:
			fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W \"%s\" -- \"$cur\"))\n", strings.Join(c.ArgValues, " "))
		case c.TakesFiles:
			fmt.Fprintf(&b, "            COMPREPLY=($(compgen -f -X '%s' -- \"$cur\") $(compgen -d -- \"$cur\"))\n", bashGlobFilter(c.FilePattern))
		}
		b.WriteString("            ;;\n")
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("complete -F _texshelf_completions texshelf\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// generateZsh writes a zsh completion script.
func generateZsh(w io.Writer) error {
	commands := getCommands()

	var b strings.Builder

	b.WriteString("#compdef texshelf\n")
	b.WriteString("# zsh completion for texshelf\n")
	b.WriteString("# Install: eval \"$(texshelf completion zsh)\"\n\n")
	b.WriteString("_texshelf() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range commands {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    _arguments -C \\\n")
	b.WriteString("        '1: :->command' \\\n")
	b.WriteString("        '*:: :->args'\n\n")
	b.WriteString("    case $state in\n")
	b.WriteString("        command)\n")
	b.WriteString("            _describe 'command' commands\n")
	b.WriteString("            ;;\n")
	b.WriteString("        args)\n")
	b.WriteString("            case $words[1] in\n")
	for _, c := range commands {
		specs := zshSpecs(c)
		if len(specs) == 0 {
			continue
		}
		fmt.Fprintf(&b, "                %s)\n", c.Name)
		b.WriteString("                    _arguments \\\n")
		for i, spec := range specs {
			sep := " \\\n"
			if i == len(specs)-1 {
				sep = "\n"
			}
			fmt.Fprintf(&b, "                        %s%s", spec, sep)
		}
		b.WriteString("                    ;;\n")
	}
	b.WriteString("            esac\n")
	b.WriteString("            ;;\n")
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("_texshelf \"$@\"\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// zshSpecs renders a command's _arguments specs: flags first, then the
// positional argument if the command takes one we can complete.
func zshSpecs(c commandDef) []string {
	var specs []string
	for _, f := range c.Flags {
		specs = append(specs, zshFlagSpec(f))
	}
	switch {
	case len(c.ArgValues) > 0:
		specs = append(specs, fmt.Sprintf("'1:argument:(%s)'", strings.Join(c.ArgValues, " ")))
	case c.TakesFiles:
		specs = append(specs, fmt.Sprintf(`'1:file:_files -g "%s"'`, zshGlobPattern(c.FilePattern)))
	}
	return specs
}

// zshFlagSpec renders one flag as an _arguments spec.
func zshFlagSpec(f flagDef) string {
	var action string
	switch f.Type {
	case flagBool:
		action = ""
	case flagFile:
		action = fmt.Sprintf(`:file:_files -g "%s"`, zshGlobPattern(f.FileGlob))
	default:
		action = ":value:"
	}

	desc := zshEscape(f.Desc)
	if f.Short != "" {
		return fmt.Sprintf("'(-%s --%s)'{-%s,--%s}'[%s]%s'", f.Short, f.Long, f.Short, f.Long, desc, action)
	}
	return fmt.Sprintf("'--%s[%s]%s'", f.Long, desc, action)
}

// generateFish writes a fish completion script.
func generateFish(w io.Writer) error {
	commands := getCommands()

	var b strings.Builder

	b.WriteString("# fish completion for texshelf\n")
	b.WriteString("# Install: texshelf completion fish > ~/.config/fish/completions/texshelf.fish\n\n")
	b.WriteString("function __fish_texshelf_needs_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -eq 1\n")
	b.WriteString("end\n\n")
	b.WriteString("function __fish_texshelf_using_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -gt 1; and test \"$argv[1]\" = \"$cmd[2]\"\n")
	b.WriteString("end\n\n")

	b.WriteString("# Commands\n")
	for _, c := range commands {
		fmt.Fprintf(&b, "complete -c texshelf -f -n __fish_texshelf_needs_command -a %s -d '%s'\n", c.Name, fishEscape(c.Desc))
	}

	for _, c := range commands {
		if len(c.Flags) == 0 && len(c.ArgValues) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n# %s\n", c.Name)
		if len(c.ArgValues) > 0 {
			fmt.Fprintf(&b, "complete -c texshelf -f -n '__fish_texshelf_using_command %s' -a '%s'\n", c.Name, strings.Join(c.ArgValues, " "))
		}
		for _, f := range c.Flags {
			b.WriteString("complete -c texshelf -n '__fish_texshelf_using_command " + c.Name + "'")
			if f.Short != "" {
				b.WriteString(" -s " + f.Short)
			}
			b.WriteString(" -l " + f.Long)
			if f.Type != flagBool {
				b.WriteString(" -r")
			}
			b.WriteString(" -d '" + fishEscape(f.Desc) + "'\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// generatePowerShell writes a PowerShell completion script.
func generatePowerShell(w io.Writer) error {
	commands := getCommands()

	var b strings.Builder

	b.WriteString("# powershell completion for texshelf\n")
	b.WriteString("# Install: texshelf completion powershell | Out-String | Invoke-Expression\n\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName texshelf -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")

	b.WriteString("    $commands = [ordered]@{\n")
	for _, c := range commands {
		fmt.Fprintf(&b, "        '%s' = '%s'\n", c.Name, psEscape(c.Desc))
	}
	b.WriteString("    }\n\n")

	b.WriteString("    $flags = @{\n")
	for _, c := range commands {
		if len(c.Flags) == 0 {
			continue
		}
		words := flagWords(c.Flags)
		quoted := make([]string, len(words))
		for i, fw := range words {
			quoted[i] = "'" + fw + "'"
		}
		fmt.Fprintf(&b, "        '%s' = @(%s)\n", c.Name, strings.Join(quoted, ", "))
	}
	b.WriteString("    }\n\n")

	b.WriteString("    $argValues = @{\n")
	for _, c := range commands {
		if len(c.ArgValues) == 0 {
			continue
		}
		quoted := make([]string, len(c.ArgValues))
		for i, v := range c.ArgValues {
			quoted[i] = "'" + v + "'"
		}
		fmt.Fprintf(&b, "        '%s' = @(%s)\n", c.Name, strings.Join(quoted, ", "))
	}
	b.WriteString("    }\n\n")

	b.WriteString("    $words = @($commandAst.CommandElements | Select-Object -Skip 1 | ForEach-Object { $_.ToString() })\n")
	b.WriteString("    if ($wordToComplete -and $words.Count -gt 0) {\n")
	b.WriteString("        $words = @($words | Select-Object -SkipLast 1)\n")
	b.WriteString("    }\n\n")

	b.WriteString("    if ($words.Count -eq 0) {\n")
	b.WriteString("        $commands.Keys | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $commands[$_])\n")
	b.WriteString("        }\n")
	b.WriteString("        return\n")
	b.WriteString("    }\n\n")

	b.WriteString("    $command = $words[0]\n")
	b.WriteString("    if ($wordToComplete.StartsWith('-')) {\n")
	b.WriteString("        if ($flags.ContainsKey($command)) {\n")
	b.WriteString("            $flags[$command] | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("                [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterName', $_)\n")
	b.WriteString("            }\n")
	b.WriteString("        }\n")
	b.WriteString("        return\n")
	b.WriteString("    }\n\n")

	b.WriteString("    if ($argValues.ContainsKey($command)) {\n")
	b.WriteString("        $argValues[$command] | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
	b.WriteString("        }\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// ---------------------------------------------------------------------------
// Shared rendering helpers
// ---------------------------------------------------------------------------

// flagWords lists a command's flags the way shells offer them: long form
// first, then the short alias.
func flagWords(flags []flagDef) []string {
	var words []string
	for _, f := range flags {
		words = append(words, "--"+f.Long)
		if f.Short != "" {
			words = append(words, "-"+f.Short)
		}
	}
	return words
}

// globExtensions splits a comma-separated glob list into bare extensions:
// "*.yaml,*.yml" gives ["yaml", "yml"].
func globExtensions(globs string) []string {
	parts := strings.Split(globs, ",")
	exts := make([]string, 0, len(parts))
	for _, p := range parts {
		exts = append(exts, strings.TrimPrefix(strings.TrimSpace(p), "*."))
	}
	return exts
}

// bashFlagPattern renders a case label matching a flag's long and short forms.
func bashFlagPattern(f flagDef) string {
	if f.Short != "" {
		return fmt.Sprintf("--%s|-%s", f.Long, f.Short)
	}
	return "--" + f.Long
}

// bashGlobFilter converts a glob list into a compgen -X exclusion pattern:
// "*.yaml,*.yml" becomes "!*.@(yaml|yml)".
func bashGlobFilter(globs string) string {
	return "!*.@(" + strings.Join(globExtensions(globs), "|") + ")"
}

// zshGlobPattern converts a glob list into a zsh glob: "*.yaml,*.yml"
// becomes "*.(yaml|yml)".
func zshGlobPattern(globs string) string {
	return "*.(" + strings.Join(globExtensions(globs), "|") + ")"
}

// zshEscape escapes characters that end an _arguments description early.
func zshEscape(s string) string {
	s = strings.ReplaceAll(s, "'", `'\''`)
	return strings.ReplaceAll(s, ":", `\:`)
}

// fishEscape escapes a string for a single-quoted fish argument.
func fishEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", `\'`)
}

// psEscape escapes a string for a single-quoted PowerShell literal.
func psEscape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
