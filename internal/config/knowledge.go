package config

import "fmt"

const EnvKnowledgeSource = "BRIEFER_KNOWLEDGE_SOURCE"

// Knowledge sources.
const (
	KnowledgePostgres = "postgres"
	KnowledgeStatic   = "static"
)

// KnowledgeConfig selects where reference passages are retrieved from.
type KnowledgeConfig struct {
	Source string `toml:"source"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *KnowledgeConfig) Finalize() error {
	if c.Source == "" {
		c.Source = KnowledgePostgres
	}
	envString(&c.Source, EnvKnowledgeSource)

	switch c.Source {
	case KnowledgePostgres, KnowledgeStatic:
		return nil
	}
	return fmt.Errorf("unknown source %q", c.Source)
}

// Merge overwrites non-zero fields from overlay.
func (c *KnowledgeConfig) Merge(overlay *KnowledgeConfig) {
	if overlay.Source != "" {
		c.Source = overlay.Source
	}
}
