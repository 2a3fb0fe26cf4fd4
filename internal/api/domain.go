package api

import (
	"context"
	"fmt"

	"github.com/JaimeStill/briefer/internal/auth"
	"github.com/JaimeStill/briefer/internal/decks"
	"github.com/JaimeStill/briefer/internal/jobs"
	"github.com/JaimeStill/briefer/internal/prompts"
	"github.com/JaimeStill/briefer/internal/render"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Auth    auth.System
	Prompts prompts.System
	Decks   decks.System
}

// NewDomain creates all domain systems from the API runtime. When an OIDC
// issuer is configured its discovery document is fetched here.
func NewDomain(ctx context.Context, runtime *Runtime) (*Domain, error) {
	cfg := runtime.Config

	var verifier auth.Verifier
	if cfg.Auth.OIDCIssuer != "" {
		v, err := auth.NewOIDCVerifier(ctx, cfg.Auth.OIDCIssuer, cfg.Auth.OIDCClientID)
		if err != nil {
			return nil, err
		}
		verifier = v
	}

	authSystem := auth.New(
		auth.NewStore(runtime.Database.Connection()),
		auth.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTLDuration()),
		verifier,
		cfg.Auth.BcryptCost,
		runtime.Logger,
	)

	promptsSystem := prompts.New(
		prompts.NewStore(runtime.Database.Connection()),
		runtime.Pagination,
		runtime.Logger,
	)
	runtime.Pipeline.Instructions = promptsSystem

	renderer, err := render.New(nil)
	if err != nil {
		return nil, fmt.Errorf("renderer init failed: %w", err)
	}

	decksSystem := decks.New(
		jobs.NewTracker(cfg.Jobs.TTLDuration(), cfg.Jobs.MaxJobs, runtime.Logger),
		runtime.Pipeline,
		renderer,
		runtime.Storage,
		runtime.Pagination,
		decks.Options{
			Workers:         cfg.Pipeline.Workers,
			QueueSize:       cfg.Pipeline.QueueSize,
			JanitorInterval: cfg.Jobs.JanitorIntervalDuration(),
			MaxExtracted:    cfg.API.MaxExtractedBytes(),
		},
		runtime.Logger,
	)

	return &Domain{
		Auth:    authSystem,
		Prompts: promptsSystem,
		Decks:   decksSystem,
	}, nil
}
