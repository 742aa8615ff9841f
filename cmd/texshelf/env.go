package main

import (
	"io"
	"os"
	"time"

	"github.com/zizai/go-texshelf/internal/runcmd"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, and the process runner the doctor probes with.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
	Runner runcmd.Runner
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Runner: &runcmd.ExecRunner{},
	}
}
