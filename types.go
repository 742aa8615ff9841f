package texshelf

import "time"

// Input describes one build request.
type Input struct {
	// Version labels the build: the manifest's development label or a
	// canonical semver release like "v1.2.3". Empty means development.
	Version string

	// SkipBootstrap skips the manifest's bootstrap command, for rebuilds
	// in an environment that is already prepared (watch mode, CI steps
	// that bootstrap once).
	SkipBootstrap bool
}

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	timeout time.Duration
}

// WithTimeout caps the wall-clock time of one Build, overriding the
// manifest timeout. Panics if d <= 0 (programmer error, same contract as
// time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("texshelf: WithTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}
