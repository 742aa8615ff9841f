package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	manifest string
	quiet    bool
	verbose  bool
}

// buildFlags holds all flags for the build command.
type buildFlags struct {
	common        commonFlags
	versionLabel  string
	publish       bool
	skipBootstrap bool
	report        string
	timeout       string
	maxPasses     int
}

// publishFlags holds flags for the publish command.
type publishFlags struct {
	common       commonFlags
	versionLabel string
	source       string
}

// shelfFlags holds flags for the shelf query commands (list, show, verify).
type shelfFlags struct {
	common  commonFlags
	jsonOut bool
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common  commonFlags
	jsonOut bool
}

// watchFlags holds flags for the watch command.
type watchFlags struct {
	common        commonFlags
	timeout       string
	skipBootstrap bool
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common commonFlags
	addr   string
	live   bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.manifest, "manifest", "m", "", "manifest file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing and pipeline events")
}

// addVersionLabelFlag adds the shared artifact version flag.
func addVersionLabelFlag(fs *flag.FlagSet, label *string) {
	fs.StringVarP(label, "version-label", "l", "", "artifact version: development label or vX.Y.Z")
}

// addBuildFlags adds build command flags to a FlagSet.
func addBuildFlags(fs *flag.FlagSet, f *buildFlags) {
	fs.BoolVarP(&f.publish, "publish", "p", false, "shelve the PDF after a successful build")
	fs.BoolVar(&f.skipBootstrap, "skip-bootstrap", false, "skip the bootstrap command")
	fs.StringVarP(&f.report, "report", "r", "", "write the build report as JSON to this path")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "build timeout (e.g. 30s, 10m)")
	fs.IntVar(&f.maxPasses, "max-passes", 0, "engine pass budget (1-10, 0 = manifest value)")
	addVersionLabelFlag(fs, &f.versionLabel)
	addCommonFlags(fs, &f.common)
}

// addPublishFlags adds publish command flags to a FlagSet.
func addPublishFlags(fs *flag.FlagSet, f *publishFlags) {
	fs.StringVarP(&f.source, "source", "s", "", "provenance recorded with the artifact (default: git revision)")
	addVersionLabelFlag(fs, &f.versionLabel)
	addCommonFlags(fs, &f.common)
}

// addShelfFlags adds shelf query command flags to a FlagSet.
func addShelfFlags(fs *flag.FlagSet, f *shelfFlags) {
	fs.BoolVar(&f.jsonOut, "json", false, "machine-readable JSON output")
	addCommonFlags(fs, &f.common)
}

// addDoctorFlags adds doctor command flags to a FlagSet.
func addDoctorFlags(fs *flag.FlagSet, f *doctorFlags) {
	fs.BoolVar(&f.jsonOut, "json", false, "machine-readable JSON output")
	addCommonFlags(fs, &f.common)
}

// addWatchFlags adds watch command flags to a FlagSet.
func addWatchFlags(fs *flag.FlagSet, f *watchFlags) {
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-build timeout (e.g. 30s, 10m)")
	fs.BoolVar(&f.skipBootstrap, "skip-bootstrap", false, "skip the bootstrap command on the first build too")
	addCommonFlags(fs, &f.common)
}

// addServeFlags adds serve command flags to a FlagSet.
func addServeFlags(fs *flag.FlagSet, f *serveFlags) {
	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default 127.0.0.1:8787)")
	fs.BoolVar(&f.live, "live", false, "reload open pages when the shelf changes")
	addCommonFlags(fs, &f.common)
}

// wrapParseError tags pflag failures as usage errors. --help passes through
// untouched so the dispatcher can exit zero after pflag printed the usage.
func wrapParseError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// parseBuildFlags parses build command flags and returns positional args.
func parseBuildFlags(args []string) (*buildFlags, []string, error) {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	f := &buildFlags{}

	addBuildFlags(fs, f)

	fs.Usage = func() { printBuildUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, wrapParseError(err)
	}
	return f, fs.Args(), nil
}

// parsePublishFlags parses publish command flags and returns positional args.
func parsePublishFlags(args []string) (*publishFlags, []string, error) {
	fs := flag.NewFlagSet("publish", flag.ContinueOnError)
	f := &publishFlags{}

	addPublishFlags(fs, f)

	fs.Usage = func() { printPublishUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, wrapParseError(err)
	}
	return f, fs.Args(), nil
}

// parseShelfFlags parses flags for the shelf query commands.
func parseShelfFlags(name string, usage func(io.Writer), args []string) (*shelfFlags, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	f := &shelfFlags{}

	addShelfFlags(fs, f)

	fs.Usage = func() { usage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, wrapParseError(err)
	}
	return f, fs.Args(), nil
}

// parseCommonOnly parses commands that take only the common flags.
func parseCommonOnly(name string, usage func(io.Writer), args []string) (*commonFlags, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	f := &commonFlags{}

	addCommonFlags(fs, f)

	fs.Usage = func() { usage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, wrapParseError(err)
	}
	return f, fs.Args(), nil
}

// parseDoctorFlags parses doctor command flags.
func parseDoctorFlags(args []string) (*doctorFlags, []string, error) {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	f := &doctorFlags{}

	addDoctorFlags(fs, f)

	fs.Usage = func() { printDoctorUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, wrapParseError(err)
	}
	return f, fs.Args(), nil
}

// parseWatchFlags parses watch command flags.
func parseWatchFlags(args []string) (*watchFlags, []string, error) {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	f := &watchFlags{}

	addWatchFlags(fs, f)

	fs.Usage = func() { printWatchUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, wrapParseError(err)
	}
	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string) (*serveFlags, []string, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	f := &serveFlags{}

	addServeFlags(fs, f)

	fs.Usage = func() { printServeUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, wrapParseError(err)
	}
	return f, fs.Args(), nil
}
