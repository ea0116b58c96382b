package queue

import (
	"fmt"
	"os"
	"time"
)

// Config holds NATS JetStream connection and consumer parameters.
type Config struct {
	URL     string `toml:"url"`
	Stream  string `toml:"stream"`
	Subject string `toml:"subject"`
	Durable string `toml:"durable"`
	AckWait string `toml:"ack_wait"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	URL     string
	Stream  string
	Subject string
	Durable string
	AckWait string
}

// AckWaitDuration returns AckWait as a time.Duration.
func (c *Config) AckWaitDuration() time.Duration {
	d, _ := time.ParseDuration(c.AckWait)
	return d
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
	if overlay.URL != "" {
		c.URL = overlay.URL
	}
	if overlay.Stream != "" {
		c.Stream = overlay.Stream
	}
	if overlay.Subject != "" {
		c.Subject = overlay.Subject
	}
	if overlay.Durable != "" {
		c.Durable = overlay.Durable
	}
	if overlay.AckWait != "" {
		c.AckWait = overlay.AckWait
	}
}

func (c *Config) loadDefaults() {
	if c.URL == "" {
		c.URL = "nats://localhost:4222"
	}
	if c.Stream == "" {
		c.Stream = "INGEST"
	}
	if c.Subject == "" {
		c.Subject = "ingest.document"
	}
	if c.Durable == "" {
		c.Durable = "ingest-workers"
	}
	if c.AckWait == "" {
		c.AckWait = "5m"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.URL != "" {
		if v := os.Getenv(env.URL); v != "" {
			c.URL = v
		}
	}
	if env.Stream != "" {
		if v := os.Getenv(env.Stream); v != "" {
			c.Stream = v
		}
	}
	if env.Subject != "" {
		if v := os.Getenv(env.Subject); v != "" {
			c.Subject = v
		}
	}
	if env.Durable != "" {
		if v := os.Getenv(env.Durable); v != "" {
			c.Durable = v
		}
	}
	if env.AckWait != "" {
		if v := os.Getenv(env.AckWait); v != "" {
			c.AckWait = v
		}
	}
}

func (c *Config) validate() error {
	if c.URL == "" {
		return fmt.Errorf("url required")
	}
	if c.Stream == "" {
		return fmt.Errorf("stream required")
	}
	if c.Subject == "" {
		return fmt.Errorf("subject required")
	}
	if _, err := time.ParseDuration(c.AckWait); err != nil {
		return fmt.Errorf("invalid ack_wait: %w", err)
	}
	return nil
}
