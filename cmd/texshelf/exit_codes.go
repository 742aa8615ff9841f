package main

import (
	"context"
	"errors"
	"os"

	texshelf "github.com/zizai/go-texshelf"
	"github.com/zizai/go-texshelf/internal/config"
	"github.com/zizai/go-texshelf/internal/fileutil"
	"github.com/zizai/go-texshelf/internal/latex"
	"github.com/zizai/go-texshelf/internal/runcmd"
	"github.com/zizai/go-texshelf/internal/shelf"
)

// Exit codes for the texshelf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful build or query
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, manifest, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitTeX     = 4 // External toolchain errors (engine, generator, fonts)
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// External toolchain errors (exit 4)
	if errors.Is(err, latex.ErrEngineNotFound) ||
		errors.Is(err, latex.ErrCompileFailed) ||
		errors.Is(err, latex.ErrMissingFont) ||
		errors.Is(err, latex.ErrNoPDFProduced) ||
		errors.Is(err, runcmd.ErrCommandNotFound) ||
		errors.Is(err, runcmd.ErrNonZeroExit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return ExitTeX
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, texshelf.ErrMasterNotFound) ||
		errors.Is(err, texshelf.ErrAssetMissing) ||
		errors.Is(err, shelf.ErrArtifactNotFound) ||
		errors.Is(err, shelf.ErrIndexCorrupt) ||
		errors.Is(err, shelf.ErrNotPDF) ||
		errors.Is(err, fileutil.ErrNotRegularFile) {
		return ExitIO
	}

	// Usage/manifest/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, config.ErrManifestNotFound) ||
		errors.Is(err, config.ErrEmptyManifestName) ||
		errors.Is(err, config.ErrManifestParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, shelf.ErrInvalidVersion) ||
		errors.Is(err, texshelf.ErrNilManifest) {
		return ExitUsage
	}

	return ExitGeneral
}
