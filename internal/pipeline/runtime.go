package pipeline

import (
	"context"
	"log/slog"
)

// Generator is the text generation collaborator. Chat sends a text prompt;
// Vision sends a prompt with images encoded as data URIs.
type Generator interface {
	Chat(ctx context.Context, prompt string) (string, error)
	Vision(ctx context.Context, prompt string, images []string) (string, error)
}

// Retriever returns up to k reference passages ranked for query.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]string, error)
}

// Truncator cuts text to a token budget.
type Truncator interface {
	Truncate(text string, limit int) (string, error)
}

// Limits bound the stages.
type Limits struct {
	MaxFormatAttempts int
	MaxInputTokens    int
	MinSlides         int
	MaxSlides         int
	OperatorNames     []string
	KnowledgeQuery    string
	KnowledgeLimit    int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxFormatAttempts: 3,
		MinSlides:         5,
		MaxSlides:         7,
		OperatorNames:     []string{"Briefer"},
		KnowledgeQuery:    "enterprise terminology brand guidelines change management TOGAF ITIL",
		KnowledgeLimit:    5,
	}
}

// Runtime bundles the dependencies that stages require. Retriever, Tokens,
// and Instructions are optional.
type Runtime struct {
	Generator    Generator
	Retriever    Retriever
	Tokens       Truncator
	Instructions InstructionSource
	Logger       *slog.Logger
	Limits       Limits
}
