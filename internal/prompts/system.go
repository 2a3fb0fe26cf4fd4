package prompts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/briefer/internal/pipeline"
	"github.com/JaimeStill/briefer/pkg/pagination"
)

// System defines the public contract for prompt override operations. It
// also serves as the pipeline's instruction source.
type System interface {
	Handler(authenticate func(http.Handler) http.Handler) *Handler

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Prompt], error)
	Find(ctx context.Context, id uuid.UUID) (*Prompt, error)
	Create(ctx context.Context, cmd CreateCommand) (*Prompt, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Prompt, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Activate(ctx context.Context, id uuid.UUID) (*Prompt, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*Prompt, error)

	// Effective returns the instructions a stage currently runs on: the
	// active override if there is one, otherwise the built-in default.
	Effective(ctx context.Context, stage Stage) (string, error)

	Instructions(ctx context.Context, stage string) (string, bool, error)
}

type service struct {
	store      Store
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates the prompt override System.
func New(store Store, pagination pagination.Config, logger *slog.Logger) System {
	return &service{
		store:      store,
		logger:     logger.With("system", "prompts"),
		pagination: pagination,
	}
}

func (s *service) Handler(authenticate func(http.Handler) http.Handler) *Handler {
	return NewHandler(s, authenticate, s.logger, s.pagination)
}

func (s *service) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Prompt], error) {
	page.Normalize(s.pagination)

	prompts, total, err := s.store.List(ctx, page, filters)
	if err != nil {
		return nil, err
	}

	result := pagination.NewPageResult(prompts, total, page.Page, page.PageSize)
	return &result, nil
}

func (s *service) Find(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	p, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *service) Create(ctx context.Context, cmd CreateCommand) (*Prompt, error) {
	if err := validate(&cmd.Name, cmd.Stage, cmd.Instructions); err != nil {
		return nil, err
	}

	p, err := s.store.Insert(ctx, cmd)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "prompt created", "id", p.ID, "name", p.Name, "stage", p.Stage)
	return &p, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Prompt, error) {
	if err := validate(&cmd.Name, cmd.Stage, cmd.Instructions); err != nil {
		return nil, err
	}

	p, err := s.store.Update(ctx, id, cmd)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "prompt updated", "id", p.ID, "name", p.Name)
	return &p, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "prompt deleted", "id", id)
	return nil
}

func (s *service) Activate(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	p, err := s.store.Activate(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "prompt activated", "id", p.ID, "name", p.Name, "stage", p.Stage)
	return &p, nil
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	p, err := s.store.Deactivate(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "prompt deactivated", "id", p.ID, "name", p.Name, "stage", p.Stage)
	return &p, nil
}

func (s *service) Effective(ctx context.Context, stage Stage) (string, error) {
	text, ok, err := s.Instructions(ctx, string(stage))
	if err != nil {
		return "", err
	}
	if ok {
		return text, nil
	}
	text, _ = pipeline.DefaultInstructions(string(stage))
	return text, nil
}

// Instructions returns the active override for stage. ok is false when the
// stage runs on its built-in instructions.
func (s *service) Instructions(ctx context.Context, stage string) (string, bool, error) {
	st, err := ParseStage(stage)
	if err != nil {
		return "", false, err
	}

	p, err := s.store.FindActive(ctx, st)
	switch {
	case errors.Is(err, ErrNotFound):
		return "", false, nil
	case err != nil:
		return "", false, err
	}
	return p.Instructions, true, nil
}

func validate(name *string, stage Stage, instructions string) error {
	*name = strings.TrimSpace(*name)
	if *name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, err := ParseStage(string(stage)); err != nil {
		return err
	}
	if strings.TrimSpace(instructions) == "" {
		return fmt.Errorf("%w: instructions are required", ErrInvalidInstructions)
	}
	if err := pipeline.ValidateInstructions(instructions); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInstructions, err)
	}
	return nil
}
