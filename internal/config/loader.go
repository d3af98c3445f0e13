package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional YAML file, and
// environment variables. Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if ASPECTD_CONFIG is set
//  3. env (prefix ASPECTD_)
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv("ASPECTD_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// ASPECTD_MAX_SCANS_PER_IP -> max_scans_per_ip, matching the koanf tags.
	envProvider := env.Provider("ASPECTD_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "aspectd_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.AuthEnabled && c.AuthToken == "" {
		return errors.New("auth_token is required when auth_enabled is true")
	}
	if c.MaxSamplesPerScan < 1 {
		return errors.New("max_samples_per_scan must be positive")
	}
	if c.DefaultStepHours <= 0 {
		return errors.New("default_step_hours must be positive")
	}
	if c.DefaultOrb <= 0 {
		return errors.New("default_orb must be positive")
	}
	return nil
}
