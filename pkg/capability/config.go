package capability

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds provider connection parameters for the generative-text and
// embedding capabilities. The dimension is fixed at deployment time;
// changing it invalidates all stored vectors.
type Config struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	Dimension      int    `toml:"dimension"`
	// EmbeddingVersion stamps every stored vector; bump it when the
	// embedding model changes so retrieval skips stale vectors.
	EmbeddingVersion int    `toml:"embedding_version"`
	Timeout          string `toml:"timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	BaseURL          string
	APIKey           string
	Model            string
	EmbeddingModel   string
	Dimension        string
	EmbeddingVersion string
	Timeout          string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
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
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.EmbeddingModel != "" {
		c.EmbeddingModel = overlay.EmbeddingModel
	}
	if overlay.Dimension != 0 {
		c.Dimension = overlay.Dimension
	}
	if overlay.EmbeddingVersion != 0 {
		c.EmbeddingVersion = overlay.EmbeddingVersion
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *Config) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:11434/v1"
	}
	if c.Model == "" {
		c.Model = "llama3.1"
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = "nomic-embed-text"
	}
	if c.Dimension == 0 {
		c.Dimension = 768
	}
	if c.EmbeddingVersion == 0 {
		c.EmbeddingVersion = 1
	}
	if c.Timeout == "" {
		c.Timeout = "2m"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.BaseURL != "" {
		if v := os.Getenv(env.BaseURL); v != "" {
			c.BaseURL = v
		}
	}
	if env.APIKey != "" {
		if v := os.Getenv(env.APIKey); v != "" {
			c.APIKey = v
		}
	}
	if env.Model != "" {
		if v := os.Getenv(env.Model); v != "" {
			c.Model = v
		}
	}
	if env.EmbeddingModel != "" {
		if v := os.Getenv(env.EmbeddingModel); v != "" {
			c.EmbeddingModel = v
		}
	}
	if env.Dimension != "" {
		if v := os.Getenv(env.Dimension); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Dimension = n
			}
		}
	}
	if env.EmbeddingVersion != "" {
		if v := os.Getenv(env.EmbeddingVersion); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.EmbeddingVersion = n
			}
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
}

func (c *Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url required")
	}
	if c.Model == "" {
		return fmt.Errorf("model required")
	}
	if c.Dimension < 1 {
		return fmt.Errorf("dimension must be positive")
	}
	if c.EmbeddingVersion < 1 {
		return fmt.Errorf("embedding_version must be positive")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}

func (c *Config) token() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	// langchaingo requires a token even for keyless local endpoints.
	return "unused"
}
