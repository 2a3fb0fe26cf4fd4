package api

import (
	"github.com/JaimeStill/briefer/internal/config"
	"github.com/JaimeStill/briefer/internal/infrastructure"
	"github.com/JaimeStill/briefer/internal/pipeline"
	"github.com/JaimeStill/briefer/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Config     *config.Config
	Pagination pagination.Config
	Pipeline   *pipeline.Runtime
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	logger := infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    logger,
			Database:  infra.Database,
			Storage:   infra.Storage,
			Knowledge: infra.Knowledge,
			Tokens:    infra.Tokens,
		},
		Config:     cfg,
		Pagination: cfg.API.Pagination,
		Pipeline: &pipeline.Runtime{
			Generator: pipeline.NewAgentGenerator(cfg.Agent.AgentConfig()),
			Retriever: infra.Knowledge,
			Tokens:    infra.Tokens,
			Logger:    logger.With("workflow", "deck"),
			Limits:    limits(&cfg.Pipeline),
		},
	}
}

func limits(cfg *config.PipelineConfig) pipeline.Limits {
	return pipeline.Limits{
		MaxFormatAttempts: cfg.MaxFormatAttempts,
		MaxInputTokens:    cfg.MaxInputTokens,
		MinSlides:         cfg.MinSlides,
		MaxSlides:         cfg.MaxSlides,
		OperatorNames:     cfg.OperatorNames,
		KnowledgeQuery:    cfg.KnowledgeQuery,
		KnowledgeLimit:    cfg.KnowledgeLimit,
	}
}
