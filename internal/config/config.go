package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/typevault/typevault/pkg/database"
	"github.com/typevault/typevault/pkg/events"
	"github.com/typevault/typevault/pkg/genai"
	"github.com/typevault/typevault/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvTypeVaultEnv             = "TYPEVAULT_ENV"
	EnvTypeVaultShutdownTimeout = "TYPEVAULT_SHUTDOWN_TIMEOUT"
	EnvTypeVaultVersion         = "TYPEVAULT_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "TYPEVAULT_DB_HOST",
	Port:            "TYPEVAULT_DB_PORT",
	Name:            "TYPEVAULT_DB_NAME",
	User:            "TYPEVAULT_DB_USER",
	Password:        "TYPEVAULT_DB_PASSWORD",
	SSLMode:         "TYPEVAULT_DB_SSL_MODE",
	MaxOpenConns:    "TYPEVAULT_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "TYPEVAULT_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "TYPEVAULT_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "TYPEVAULT_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "TYPEVAULT_STORAGE_CONTAINER_NAME",
	ConnectionString: "TYPEVAULT_STORAGE_CONNECTION_STRING",
}

// Config is the root configuration for the TypeVault service.
type Config struct {
	Server          ServerConfig      `toml:"server"`
	Database        database.Config   `toml:"database"`
	Storage         storage.Config    `toml:"storage"`
	Model           genai.Config      `toml:"model"`
	Events          events.Config     `toml:"events"`
	API             APIConfig         `toml:"api"`
	Tunables        map[string]string `toml:"tunables"`
	PollInterval    string            `toml:"poll_interval"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
}

// PollIntervalDuration returns PollInterval as a time.Duration.
func (c *Config) PollIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.PollInterval)
	return d
}

// Env returns the TYPEVAULT_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvTypeVaultEnv); env != "" {
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
	if overlay.PollInterval != "" {
		c.PollInterval = overlay.PollInterval
	}
	for k, v := range overlay.Tunables {
		if c.Tunables == nil {
			c.Tunables = make(map[string]string)
		}
		c.Tunables[k] = v
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Model.Merge(&overlay.Model)
	c.Events.Merge(&overlay.Events)
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
	if err := c.Model.Finalize(); err != nil {
		return fmt.Errorf("model: %w", err)
	}
	if err := c.Events.Finalize(); err != nil {
		return fmt.Errorf("events: %w", err)
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
	if c.PollInterval == "" {
		c.PollInterval = "5s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvTypeVaultShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvTypeVaultVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.PollInterval); err != nil {
		return fmt.Errorf("invalid poll_interval: %w", err)
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
	if env := os.Getenv(EnvTypeVaultEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
