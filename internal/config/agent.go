package config

import (
	"fmt"
	"maps"
	"os"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

const (
	EnvAgentName         = "BRIEFER_AGENT_NAME"
	EnvAgentProviderName = "BRIEFER_AGENT_PROVIDER_NAME"
	EnvAgentBaseURL      = "BRIEFER_AGENT_BASE_URL"
	EnvAgentToken        = "BRIEFER_AGENT_TOKEN"
	EnvAgentDeployment   = "BRIEFER_AGENT_DEPLOYMENT"
	EnvAgentAPIVersion   = "BRIEFER_AGENT_API_VERSION"
	EnvAgentAuthType     = "BRIEFER_AGENT_AUTH_TYPE"
	EnvAgentModelName    = "BRIEFER_AGENT_MODEL_NAME"
)

// AgentConfig is the TOML shape of the generation agent. AgentConfig()
// converts it into a go-agents AgentConfig layered over the library defaults.
type AgentConfig struct {
	Name     string         `toml:"name"`
	Provider string         `toml:"provider"`
	BaseURL  string         `toml:"base_url"`
	Model    string         `toml:"model"`
	Options  map[string]any `toml:"options"`
}

// Finalize applies environment variable overrides and validation. Unset
// fields fall back to go-agents defaults in AgentConfig.
func (c *AgentConfig) Finalize() error {
	envString(&c.Name, EnvAgentName)
	envString(&c.Provider, EnvAgentProviderName)
	envString(&c.BaseURL, EnvAgentBaseURL)
	envString(&c.Model, EnvAgentModelName)

	setOption := func(envVar, key string) {
		if v := os.Getenv(envVar); v != "" {
			if c.Options == nil {
				c.Options = make(map[string]any)
			}
			c.Options[key] = v
		}
	}
	setOption(EnvAgentToken, "token")
	setOption(EnvAgentDeployment, "deployment")
	setOption(EnvAgentAPIVersion, "api_version")
	setOption(EnvAgentAuthType, "auth_type")

	agent := c.AgentConfig()
	if agent.Name == "" {
		return fmt.Errorf("name required")
	}
	if agent.Provider == nil || agent.Provider.Name == "" {
		return fmt.Errorf("provider name required")
	}
	if agent.Model == nil {
		return fmt.Errorf("model required")
	}
	return nil
}

// Merge overwrites non-zero fields from overlay. Options merge key by key.
func (c *AgentConfig) Merge(overlay *AgentConfig) {
	if overlay.Name != "" {
		c.Name = overlay.Name
	}
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if len(overlay.Options) > 0 {
		if c.Options == nil {
			c.Options = make(map[string]any, len(overlay.Options))
		}
		maps.Copy(c.Options, overlay.Options)
	}
}

// AgentConfig returns the go-agents configuration: DefaultAgentConfig with
// the configured fields merged over it.
func (c *AgentConfig) AgentConfig() gaconfig.AgentConfig {
	cfg := gaconfig.DefaultAgentConfig()

	overlay := gaconfig.AgentConfig{Name: c.Name}
	if c.Provider != "" || c.BaseURL != "" || len(c.Options) > 0 {
		overlay.Provider = &gaconfig.ProviderConfig{
			Name:    c.Provider,
			BaseURL: c.BaseURL,
			Options: maps.Clone(c.Options),
		}
	}
	if c.Model != "" {
		overlay.Model = &gaconfig.ModelConfig{Name: c.Model}
	}

	cfg.Merge(&overlay)
	return cfg
}
