package storage

import (
	"fmt"
	"os"
)

// Provider names accepted by Config.Provider.
const (
	ProviderLocal = "local"
	ProviderAzure = "azure"
)

// Config selects and configures a blob storage provider.
//
// The azure provider authenticates with ConnectionString when set, otherwise
// with DefaultAzureCredential against ServiceURL.
type Config struct {
	Provider         string `toml:"provider"`
	Root             string `toml:"root"`
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	ServiceURL       string `toml:"service_url"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider         string
	Root             string
	ContainerName    string
	ConnectionString string
	ServiceURL       string
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
	for dst, v := range map[*string]string{
		&c.Provider:         overlay.Provider,
		&c.Root:             overlay.Root,
		&c.ContainerName:    overlay.ContainerName,
		&c.ConnectionString: overlay.ConnectionString,
		&c.ServiceURL:       overlay.ServiceURL,
	} {
		if v != "" {
			*dst = v
		}
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderLocal
	}
	if c.Root == "" {
		c.Root = "generated_decks"
	}
	if c.ContainerName == "" {
		c.ContainerName = "decks"
	}
}

func (c *Config) loadEnv(env *Env) {
	for dst, name := range map[*string]string{
		&c.Provider:         env.Provider,
		&c.Root:             env.Root,
		&c.ContainerName:    env.ContainerName,
		&c.ConnectionString: env.ConnectionString,
		&c.ServiceURL:       env.ServiceURL,
	} {
		if name == "" {
			continue
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderLocal:
		if c.Root == "" {
			return fmt.Errorf("root required")
		}
	case ProviderAzure:
		if c.ContainerName == "" {
			return fmt.Errorf("container_name required")
		}
		if c.ConnectionString == "" && c.ServiceURL == "" {
			return fmt.Errorf("connection_string or service_url required")
		}
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	return nil
}
