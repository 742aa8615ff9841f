package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	texshelf "github.com/zizai/go-texshelf"
	"github.com/zizai/go-texshelf/internal/config"
	"github.com/zizai/go-texshelf/internal/hints"
	"github.com/zizai/go-texshelf/internal/latex"
	"github.com/zizai/go-texshelf/internal/log"
)

// ErrUsage marks argument errors so exitCodeFor maps them to ExitUsage.
var ErrUsage = errors.New("invalid arguments")

// runMain dispatches to the subcommands and returns the process exit code.
func runMain(args []string, env *Environment) int {
	warnUnknownEnvVars(env.Stderr)

	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	switch cmd := args[1]; cmd {
	case "build":
		return finish(runBuild(ctx, args[2:], env), env)
	case "publish":
		return finish(runPublish(ctx, args[2:], env), env)
	case "list":
		return finish(runList(args[2:], env), env)
	case "show":
		return finish(runShow(args[2:], env), env)
	case "verify":
		return finish(runVerify(ctx, args[2:], env), env)
	case "remove":
		return finish(runRemove(args[2:], env), env)
	case "clean":
		return finish(runClean(args[2:], env), env)
	case "doctor":
		return runDoctorCmd(ctx, args[2:], env)
	case "watch":
		return finish(runWatch(ctx, args[2:], env), env)
	case "serve":
		return finish(runServe(ctx, args[2:], env), env)
	case "version":
		fmt.Fprintf(env.Stdout, "texshelf %s\n", Version)
		return ExitSuccess
	case "help":
		runHelp(args[2:], env)
		return ExitSuccess
	case "completion":
		return finish(runCompletion(args[2:], env), env)
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}
}

// finish prints the error, if any, and maps it to an exit code.
// --help surfaces as flag.ErrHelp after pflag printed the usage text; that
// is a successful exit, not a failure.
func finish(err error, env *Environment) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	fmt.Fprintln(env.Stderr, err)
	return exitCodeFor(err)
}

// configureLogging sets the global log level from flags and environment.
// Priority: --quiet/--verbose > TEXSHELF_LOG_LEVEL > the "warn" default,
// which keeps pipeline events off the terminal unless asked for.
func configureLogging(f commonFlags) {
	level := os.Getenv("TEXSHELF_LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	if f.verbose {
		level = "debug"
	}
	if f.quiet {
		level = "error"
	}
	log.Configure(log.Config{Level: level, Service: "texshelf", Pretty: true})
}

// loadManifest resolves and loads the project manifest.
// Priority: --manifest flag > TEXSHELF_MANIFEST > the default name searched
// in the standard locations. Environment overrides are applied to the result.
func loadManifest(flagValue string, envCfg *envConfig) (*config.Manifest, error) {
	name := firstNonEmpty(flagValue, envCfg.Manifest, config.DefaultManifestName)
	m, err := config.Load(name)
	if err != nil {
		if errors.Is(err, config.ErrManifestNotFound) {
			return nil, withHint(err, hints.ForManifestNotFound(manifestSearchPaths(name)))
		}
		return nil, err
	}
	applyEnvOverrides(envCfg, m)
	return m, nil
}

// manifestSearchPaths reconstructs where a manifest name would be looked up,
// for the not-found hint only.
func manifestSearchPaths(name string) []string {
	paths := []string{name + ".yaml"}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(userConfigDir, "texshelf", name+".yaml"))
	}
	return paths
}

// withHint appends an actionable hint to the error message while keeping
// the original chain intact for errors.Is.
func withHint(err error, hint string) error {
	if err == nil || hint == "" {
		return err
	}
	return fmt.Errorf("%w%s", err, hint)
}

// buildHint picks the hint for a failed build, if one applies.
func buildHint(err error, m *config.Manifest) string {
	switch {
	case errors.Is(err, latex.ErrEngineNotFound):
		return hints.ForEngineNotFound(m.Engine.Command)
	case errors.Is(err, latex.ErrMissingFont):
		return hints.ForMissingFonts()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, texshelf.ErrAssetMissing):
		return hints.ForMissingAsset()
	}
	return ""
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
