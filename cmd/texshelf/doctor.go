package main

import (
	"context"

	"github.com/zizai/go-texshelf/internal/texdist"
)

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	flags, _, err := parseDoctorFlags(args)
	if err != nil {
		return finish(err, env)
	}
	configureLogging(flags.common)

	envCfg := loadEnvConfig()
	opts := doctorOptions(flags.common.manifest, envCfg)

	report := texdist.New(env.Runner).Diagnose(ctx, opts)

	if flags.jsonOut {
		if err := writeJSON(env.Stdout, report); err != nil {
			return finish(err, env)
		}
	} else {
		texdist.Fprint(env.Stdout, report)
	}

	if report.Status == texdist.StatusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// doctorOptions derives what to probe. A manifest narrows the probe to the
// project's engine, pipeline commands, and build directory, but doctor must
// work in a bare environment, so an unreadable manifest falls back to the
// default toolchain probe instead of failing.
func doctorOptions(manifestFlag string, envCfg *envConfig) texdist.Options {
	opts := texdist.Options{Engine: envCfg.Engine}

	m, err := loadManifest(manifestFlag, envCfg)
	if err != nil {
		return opts
	}

	opts.Engine = m.Engine.Command
	opts.BuildDir = m.BuildPath()
	if len(m.Bootstrap) > 0 {
		opts.Commands = append(opts.Commands, m.Bootstrap[0])
	}
	if len(m.Generate) > 0 {
		opts.Commands = append(opts.Commands, m.Generate[0])
	}
	return opts
}
