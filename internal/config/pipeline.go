package config

import "fmt"

const (
	EnvPipelineWorkers           = "BRIEFER_PIPELINE_WORKERS"
	EnvPipelineQueueSize         = "BRIEFER_PIPELINE_QUEUE_SIZE"
	EnvPipelineMaxFormatAttempts = "BRIEFER_PIPELINE_MAX_FORMAT_ATTEMPTS"
	EnvPipelineMaxInputTokens    = "BRIEFER_PIPELINE_MAX_INPUT_TOKENS"
	EnvPipelineOperatorNames     = "BRIEFER_PIPELINE_OPERATOR_NAMES"
	EnvPipelineKnowledgeQuery    = "BRIEFER_PIPELINE_KNOWLEDGE_QUERY"
	EnvPipelineKnowledgeLimit    = "BRIEFER_PIPELINE_KNOWLEDGE_LIMIT"
)

// Slide bounds a configured deck size must stay within.
const (
	MinDeckSlides = 5
	MaxDeckSlides = 7
)

// DefaultKnowledgeQuery is the retrieval query issued by the narrative stage.
const DefaultKnowledgeQuery = "enterprise terminology brand guidelines change management TOGAF ITIL"

// PipelineConfig holds worker pool sizing and stage limits.
type PipelineConfig struct {
	Workers           int      `toml:"workers"`
	QueueSize         int      `toml:"queue_size"`
	MaxFormatAttempts int      `toml:"max_format_attempts"`
	MaxInputTokens    int      `toml:"max_input_tokens"`
	MinSlides         int      `toml:"min_slides"`
	MaxSlides         int      `toml:"max_slides"`
	OperatorNames     []string `toml:"operator_names"`
	KnowledgeQuery    string   `toml:"knowledge_query"`
	KnowledgeLimit    int      `toml:"knowledge_limit"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	for dst, v := range map[*int]int{
		&c.Workers:           overlay.Workers,
		&c.QueueSize:         overlay.QueueSize,
		&c.MaxFormatAttempts: overlay.MaxFormatAttempts,
		&c.MaxInputTokens:    overlay.MaxInputTokens,
		&c.MinSlides:         overlay.MinSlides,
		&c.MaxSlides:         overlay.MaxSlides,
		&c.KnowledgeLimit:    overlay.KnowledgeLimit,
	} {
		if v != 0 {
			*dst = v
		}
	}
	if overlay.OperatorNames != nil {
		c.OperatorNames = overlay.OperatorNames
	}
	if overlay.KnowledgeQuery != "" {
		c.KnowledgeQuery = overlay.KnowledgeQuery
	}
}

func (c *PipelineConfig) loadDefaults() {
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 32
	}
	if c.MaxFormatAttempts <= 0 {
		c.MaxFormatAttempts = 3
	}
	if c.MaxInputTokens == 0 {
		c.MaxInputTokens = 100_000
	}
	if c.MinSlides <= 0 {
		c.MinSlides = MinDeckSlides
	}
	if c.MaxSlides <= 0 {
		c.MaxSlides = MaxDeckSlides
	}
	if c.OperatorNames == nil {
		c.OperatorNames = []string{"Briefer"}
	}
	if c.KnowledgeQuery == "" {
		c.KnowledgeQuery = DefaultKnowledgeQuery
	}
	if c.KnowledgeLimit <= 0 {
		c.KnowledgeLimit = 5
	}
}

func (c *PipelineConfig) loadEnv() {
	envInt(&c.Workers, EnvPipelineWorkers)
	envInt(&c.QueueSize, EnvPipelineQueueSize)
	envInt(&c.MaxFormatAttempts, EnvPipelineMaxFormatAttempts)
	envInt(&c.MaxInputTokens, EnvPipelineMaxInputTokens)
	envList(&c.OperatorNames, EnvPipelineOperatorNames)
	envString(&c.KnowledgeQuery, EnvPipelineKnowledgeQuery)
	envInt(&c.KnowledgeLimit, EnvPipelineKnowledgeLimit)
}

func (c *PipelineConfig) validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("queue_size must be positive")
	}
	if c.MaxFormatAttempts < 1 {
		return fmt.Errorf("max_format_attempts must be positive")
	}
	if c.MinSlides < MinDeckSlides || c.MinSlides > MaxDeckSlides {
		return fmt.Errorf("min_slides must be between %d and %d", MinDeckSlides, MaxDeckSlides)
	}
	if c.MaxSlides < MinDeckSlides || c.MaxSlides > MaxDeckSlides {
		return fmt.Errorf("max_slides must be between %d and %d", MinDeckSlides, MaxDeckSlides)
	}
	if c.MinSlides > c.MaxSlides {
		return fmt.Errorf("min_slides cannot exceed max_slides")
	}
	return nil
}
