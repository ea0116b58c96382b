package scanner

import (
	"fmt"
	"os"
	"time"
)

// Config holds the sweep cadences and look-ahead windows.
type Config struct {
	DeadlineInterval string `toml:"deadline_interval"`
	DeadlineWindow   string `toml:"deadline_window"`
	ContractInterval string `toml:"contract_interval"`
	ContractWindow   string `toml:"contract_window"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	DeadlineInterval string
	DeadlineWindow   string
	ContractInterval string
	ContractWindow   string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.DeadlineInterval != "" {
		c.DeadlineInterval = overlay.DeadlineInterval
	}
	if overlay.DeadlineWindow != "" {
		c.DeadlineWindow = overlay.DeadlineWindow
	}
	if overlay.ContractInterval != "" {
		c.ContractInterval = overlay.ContractInterval
	}
	if overlay.ContractWindow != "" {
		c.ContractWindow = overlay.ContractWindow
	}
}

// DeadlineIntervalDuration returns DeadlineInterval as a time.Duration.
func (c *Config) DeadlineIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.DeadlineInterval)
	return d
}

// DeadlineWindowDuration returns DeadlineWindow as a time.Duration.
func (c *Config) DeadlineWindowDuration() time.Duration {
	d, _ := time.ParseDuration(c.DeadlineWindow)
	return d
}

// ContractIntervalDuration returns ContractInterval as a time.Duration.
func (c *Config) ContractIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.ContractInterval)
	return d
}

// ContractWindowDuration returns ContractWindow as a time.Duration.
func (c *Config) ContractWindowDuration() time.Duration {
	d, _ := time.ParseDuration(c.ContractWindow)
	return d
}

func (c *Config) loadDefaults() {
	if c.DeadlineInterval == "" {
		c.DeadlineInterval = "1h"
	}
	if c.DeadlineWindow == "" {
		c.DeadlineWindow = "168h"
	}
	if c.ContractInterval == "" {
		c.ContractInterval = "24h"
	}
	if c.ContractWindow == "" {
		c.ContractWindow = "720h"
	}
}

func (c *Config) loadEnv(env *Env) {
	fields := []struct {
		envName string
		dst     *string
	}{
		{env.DeadlineInterval, &c.DeadlineInterval},
		{env.DeadlineWindow, &c.DeadlineWindow},
		{env.ContractInterval, &c.ContractInterval},
		{env.ContractWindow, &c.ContractWindow},
	}
	for _, f := range fields {
		if f.envName == "" {
			continue
		}
		if v := os.Getenv(f.envName); v != "" {
			*f.dst = v
		}
	}
}

func (c *Config) validate() error {
	for name, value := range map[string]string{
		"deadline_interval": c.DeadlineInterval,
		"deadline_window":   c.DeadlineWindow,
		"contract_interval": c.ContractInterval,
		"contract_window":   c.ContractWindow,
	} {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
