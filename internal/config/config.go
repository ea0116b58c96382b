// Package config loads the service configuration: an optional TOML base
// file, an environment-specific overlay, and environment variable
// overrides, finalized section by section.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/arboretica/lore/internal/scanner"
	"github.com/arboretica/lore/pkg/capability"
	"github.com/arboretica/lore/pkg/database"
	"github.com/arboretica/lore/pkg/queue"
	"github.com/arboretica/lore/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvLoreEnv             = "LORE_ENV"
	EnvLoreShutdownTimeout = "LORE_SHUTDOWN_TIMEOUT"
	EnvLoreVersion         = "LORE_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "LORE_DB_HOST",
	Port:            "LORE_DB_PORT",
	Name:            "LORE_DB_NAME",
	User:            "LORE_DB_USER",
	Password:        "LORE_DB_PASSWORD",
	SSLMode:         "LORE_DB_SSL_MODE",
	MaxOpenConns:    "LORE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "LORE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "LORE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "LORE_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "LORE_STORAGE_CONTAINER_NAME",
	ConnectionString: "LORE_STORAGE_CONNECTION_STRING",
}

var queueEnv = &queue.Env{
	URL:     "LORE_QUEUE_URL",
	Stream:  "LORE_QUEUE_STREAM",
	Subject: "LORE_QUEUE_SUBJECT",
	Durable: "LORE_QUEUE_DURABLE",
	AckWait: "LORE_QUEUE_ACK_WAIT",
}

var capabilityEnv = &capability.Env{
	BaseURL:          "LORE_CAPABILITY_BASE_URL",
	APIKey:           "LORE_CAPABILITY_API_KEY",
	Model:            "LORE_CAPABILITY_MODEL",
	EmbeddingModel:   "LORE_CAPABILITY_EMBEDDING_MODEL",
	Dimension:        "LORE_CAPABILITY_DIMENSION",
	EmbeddingVersion: "LORE_CAPABILITY_EMBEDDING_VERSION",
	Timeout:          "LORE_CAPABILITY_TIMEOUT",
}

var scannerEnv = &scanner.Env{
	DeadlineInterval: "LORE_SCANNER_DEADLINE_INTERVAL",
	DeadlineWindow:   "LORE_SCANNER_DEADLINE_WINDOW",
	ContractInterval: "LORE_SCANNER_CONTRACT_INTERVAL",
	ContractWindow:   "LORE_SCANNER_CONTRACT_WINDOW",
}

// Config is the root configuration for the Lore service.
type Config struct {
	Server          ServerConfig      `toml:"server"`
	Database        database.Config   `toml:"database"`
	Storage         storage.Config    `toml:"storage"`
	Queue           queue.Config      `toml:"queue"`
	Capability      capability.Config `toml:"capability"`
	Scanner         scanner.Config    `toml:"scanner"`
	API             APIConfig         `toml:"api"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
}

// Env returns the LORE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvLoreEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Queue.Merge(&overlay.Queue)
	c.Capability.Merge(&overlay.Capability)
	c.Scanner.Merge(&overlay.Scanner)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Queue.Finalize(queueEnv); err != nil {
		return fmt.Errorf("queue: %w", err)
	}
	if err := c.Capability.Finalize(capabilityEnv); err != nil {
		return fmt.Errorf("capability: %w", err)
	}
	if err := c.Scanner.Finalize(scannerEnv); err != nil {
		return fmt.Errorf("scanner: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvLoreShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvLoreVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvLoreEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
