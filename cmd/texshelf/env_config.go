package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/zizai/go-texshelf/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without editing the manifest.
type envConfig struct {
	// Tier 1 - Essential
	Manifest string        // TEXSHELF_MANIFEST: manifest name or path
	Timeout  time.Duration // TEXSHELF_TIMEOUT: build timeout

	// Tier 2 - Toolchain and storage
	Engine   string // TEXSHELF_ENGINE: LaTeX engine binary name or path
	ShelfDir string // TEXSHELF_SHELF_DIR: shelf directory override

	// Tier 3 - Serving
	Addr string // TEXSHELF_ADDR: serve listen address
}

// knownEnvVars lists valid TEXSHELF_* environment variables.
// Used to detect typos and warn users about unknown variables.
// TEXSHELF_LOG_LEVEL is consumed by the log package and TEXSHELF_CONTAINER
// by the doctor; both are listed so they do not trip the typo warning.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"TEXSHELF_MANIFEST": true,
	"TEXSHELF_TIMEOUT":  true,
	// Tier 2 - Toolchain and storage
	"TEXSHELF_ENGINE":    true,
	"TEXSHELF_SHELF_DIR": true,
	// Tier 3 - Serving and diagnostics
	"TEXSHELF_ADDR":      true,
	"TEXSHELF_LOG_LEVEL": true,
	"TEXSHELF_CONTAINER": true,
}

// loadEnvConfig reads configuration from environment variables.
// Returns a struct with all recognized TEXSHELF_* values.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		Manifest: os.Getenv("TEXSHELF_MANIFEST"),
		Engine:   os.Getenv("TEXSHELF_ENGINE"),
		ShelfDir: os.Getenv("TEXSHELF_SHELF_DIR"),
		Addr:     os.Getenv("TEXSHELF_ADDR"),
	}

	// Parse duration for timeout; invalid or non-positive values are ignored
	if timeout := os.Getenv("TEXSHELF_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized TEXSHELF_* variables.
// Helps catch typos like TEXSHELF_MANIFSET instead of TEXSHELF_MANIFEST.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "TEXSHELF_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvOverrides applies environment variable values to a loaded manifest.
// Manifest fields always carry defaults, so the env var replaces the manifest
// value when set. CLI flags are resolved later and win over both.
func applyEnvOverrides(env *envConfig, m *config.Manifest) {
	if env.Engine != "" {
		m.Engine.Command = env.Engine
	}
	if env.ShelfDir != "" {
		m.Shelf.Dir = env.ShelfDir
	}
}

// resolveTimeoutWithEnv resolves the build timeout.
// Priority: CLI flag > env var > manifest. The flag and manifest values are
// duration strings; the env value was already parsed by loadEnvConfig.
func resolveTimeoutWithEnv(flagValue string, envValue time.Duration, manifestValue string) (time.Duration, error) {
	pick := manifestValue
	if flagValue != "" {
		pick = flagValue
	} else if envValue > 0 {
		return envValue, nil
	}

	if pick == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(pick)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid timeout %q (use Go durations like 30s, 10m)", ErrUsage, pick)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: timeout must be positive, got %s", ErrUsage, d)
	}
	if d > config.MaxTimeout {
		return 0, fmt.Errorf("%w: timeout must not exceed %s, got %s", ErrUsage, config.MaxTimeout, d)
	}
	return d, nil
}
