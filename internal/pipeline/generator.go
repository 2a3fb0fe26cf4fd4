package pipeline

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

type agentGenerator struct {
	cfg gaconfig.AgentConfig
}

// NewAgentGenerator returns a Generator backed by a go-agents agent. A new
// agent is created per call so concurrent jobs share no client state.
func NewAgentGenerator(cfg gaconfig.AgentConfig) Generator {
	return &agentGenerator{cfg: cfg}
}

func (g *agentGenerator) Chat(ctx context.Context, prompt string) (string, error) {
	a, err := agent.New(&g.cfg)
	if err != nil {
		return "", fmt.Errorf("create agent: %w", err)
	}

	resp, err := a.Chat(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("chat call: %w", err)
	}
	return resp.Content(), nil
}

func (g *agentGenerator) Vision(ctx context.Context, prompt string, images []string) (string, error) {
	a, err := agent.New(&g.cfg)
	if err != nil {
		return "", fmt.Errorf("create agent: %w", err)
	}

	resp, err := a.Vision(ctx, prompt, images)
	if err != nil {
		return "", fmt.Errorf("vision call: %w", err)
	}
	return resp.Content(), nil
}
