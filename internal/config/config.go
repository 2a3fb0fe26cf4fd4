// Package config loads service configuration from config.toml, an optional
// config.<env>.toml overlay, and BRIEFER_ environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/briefer/pkg/database"
	"github.com/JaimeStill/briefer/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvBrieferEnv             = "BRIEFER_ENV"
	EnvBrieferShutdownTimeout = "BRIEFER_SHUTDOWN_TIMEOUT"
	EnvBrieferVersion         = "BRIEFER_VERSION"
)

var databaseEnv = &database.Env{
	URL:             "BRIEFER_DATABASE_URL",
	Host:            "BRIEFER_DB_HOST",
	Port:            "BRIEFER_DB_PORT",
	Name:            "BRIEFER_DB_NAME",
	User:            "BRIEFER_DB_USER",
	Password:        "BRIEFER_DB_PASSWORD",
	SSLMode:         "BRIEFER_DB_SSL_MODE",
	MaxOpenConns:    "BRIEFER_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "BRIEFER_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "BRIEFER_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "BRIEFER_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:         "BRIEFER_STORAGE_PROVIDER",
	Root:             "BRIEFER_STORAGE_ROOT",
	ContainerName:    "BRIEFER_STORAGE_CONTAINER_NAME",
	ConnectionString: "BRIEFER_STORAGE_CONNECTION_STRING",
	ServiceURL:       "BRIEFER_STORAGE_SERVICE_URL",
}

// Config is the root configuration for the Briefer service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Agent           AgentConfig     `toml:"agent"`
	Auth            AuthConfig      `toml:"auth"`
	Pipeline        PipelineConfig  `toml:"pipeline"`
	Jobs            JobsConfig      `toml:"jobs"`
	Knowledge       KnowledgeConfig `toml:"knowledge"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the BRIEFER_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvBrieferEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return duration(c.ShutdownTimeout)
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

// LoadDatabase reads only the database section from the same sources as
// Load. Tools that never start the service use it to avoid validating
// unrelated sections.
func LoadDatabase() (*database.Config, error) {
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
		cfg.Database.Merge(&overlay.Database)
	}

	if err := cfg.Database.Finalize(databaseEnv); err != nil {
		return nil, fmt.Errorf("finalize database config: %w", err)
	}
	return &cfg.Database, nil
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
	c.API.Merge(&overlay.API)
	c.Agent.Merge(&overlay.Agent)
	c.Auth.Merge(&overlay.Auth)
	c.Pipeline.Merge(&overlay.Pipeline)
	c.Jobs.Merge(&overlay.Jobs)
	c.Knowledge.Merge(&overlay.Knowledge)
}

func (c *Config) finalize() error {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	envString(&c.ShutdownTimeout, EnvBrieferShutdownTimeout)
	envString(&c.Version, EnvBrieferVersion)

	if err := parseDuration("shutdown_timeout", c.ShutdownTimeout); err != nil {
		return err
	}

	sections := []struct {
		name     string
		finalize func() error
	}{
		{"server", c.Server.Finalize},
		{"database", func() error { return c.Database.Finalize(databaseEnv) }},
		{"storage", func() error { return c.Storage.Finalize(storageEnv) }},
		{"api", c.API.Finalize},
		{"agent", c.Agent.Finalize},
		{"auth", c.Auth.Finalize},
		{"pipeline", c.Pipeline.Finalize},
		{"jobs", c.Jobs.Finalize},
		{"knowledge", c.Knowledge.Finalize},
	}
	for _, s := range sections {
		if err := s.finalize(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
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
	if env := os.Getenv(EnvBrieferEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func fieldError(field string, err error) error {
	return fmt.Errorf("invalid %s: %w", field, err)
}
