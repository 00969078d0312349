package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/roomflow/pkg/domain"
	"github.com/aretw0/roomflow/pkg/machine"
)

// Config is the roomflowd configuration file. Tenant schema loading proper is
// the surrounding system's job; the daemon only needs the tenant-to-profile
// mapping and the auto-approval fallback limit table.
type Config struct {
	Listen   string `yaml:"listen"`
	LogLevel string `yaml:"logLevel"`
	Store    string `yaml:"store"`
	Redis    struct {
		Addr   string `yaml:"addr"`
		Prefix string `yaml:"prefix"`
	} `yaml:"redis"`
	SweepInterval duration `yaml:"sweepInterval"`

	// Tenants maps tenant id to behavior profile ("basic" or "full").
	Tenants        map[string]string `yaml:"tenants"`
	DefaultProfile string            `yaml:"defaultProfile"`

	// Limits is the auto-approval fallback hour-limit table keyed by role.
	Limits map[string]domain.HourLimits `yaml:"limits"`
}

// duration accepts Go duration strings ("10m", "1h") in yaml, which plain
// time.Duration does not.
type duration time.Duration

func (d *duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", node.Value, err)
	}
	*d = duration(parsed)
	return nil
}

func (d duration) Std() time.Duration { return time.Duration(d) }

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Listen:         ":8080",
		LogLevel:       "info",
		Store:          "memory",
		SweepInterval:  duration(10 * time.Minute),
		DefaultProfile: string(machine.ProfileBasic),
	}
}

// LoadConfig reads a yaml config file, applying defaults for absent fields.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Store != "memory" && cfg.Store != "redis" {
		return cfg, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
	return cfg, nil
}

// ProfileFor resolves a tenant to its configured profile kind.
func (c Config) ProfileFor(tenant string) machine.ProfileKind {
	if p, ok := c.Tenants[tenant]; ok {
		return machine.ProfileKind(p)
	}
	return machine.ProfileKind(c.DefaultProfile)
}

// FallbackLimits converts the configured limit table to the evaluator's form.
func (c Config) FallbackLimits() map[domain.Role]domain.HourLimits {
	out := make(map[domain.Role]domain.HourLimits, len(c.Limits))
	for role, l := range c.Limits {
		out[domain.Role(role)] = l
	}
	return out
}
