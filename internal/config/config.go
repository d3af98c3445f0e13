// Package config defines service configuration and its loading order:
// defaults, then an optional YAML file, then ASPECTD_-prefixed environment
// variables.
package config

import "runtime"

// Config holds process configuration.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// AuthEnabled gates the scan endpoint behind a Bearer token.
	AuthEnabled bool `koanf:"auth_enabled"`

	// AuthToken is required when AuthEnabled is true.
	AuthToken string `koanf:"auth_token"`

	// TrustProxy enables X-Forwarded-For / X-Real-IP handling. Only set
	// this behind a trusted reverse proxy.
	TrustProxy bool `koanf:"trust_proxy"`

	// Workers bounds the scan fan-out across (target, body) pairs.
	Workers int `koanf:"workers"`

	// MaxSamplesPerScan caps the total sampled instants of one request
	// (window samples x bodies x targets x aspects). Requests above the cap
	// are rejected before any work is done.
	MaxSamplesPerScan int `koanf:"max_samples_per_scan"`

	// MaxScansPerIP bounds concurrent in-flight scans per client IP.
	MaxScansPerIP int `koanf:"max_scans_per_ip"`

	// DefaultStepHours is the membership sampling step when a request
	// carries none.
	DefaultStepHours float64 `koanf:"default_step_hours"`

	// DefaultOrb is the match tolerance in degrees when a request carries
	// none.
	DefaultOrb float64 `koanf:"default_orb"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Addr:              ":8080",
		LogLevel:          "info",
		Workers:           runtime.NumCPU(),
		MaxSamplesPerScan: 500_000,
		MaxScansPerIP:     4,
		DefaultStepHours:  1,
		DefaultOrb:        0.05,
	}
}
