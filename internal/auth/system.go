package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// System defines the public contract for account operations.
type System interface {
	Handler() *Handler
	Middleware() func(http.Handler) http.Handler

	Register(ctx context.Context, cmd RegisterCommand) (*User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Authenticate(ctx context.Context, token string) (*User, error)
	UpdatePersona(ctx context.Context, id uuid.UUID, persona string) (*User, error)
}

type service struct {
	store      Store
	tokens     *Tokens
	verifier   Verifier
	bcryptCost int
	logger     *slog.Logger
}

// New creates the account System. verifier may be nil, in which case only
// locally issued tokens are accepted.
func New(store Store, tokens *Tokens, verifier Verifier, bcryptCost int, logger *slog.Logger) System {
	return &service{
		store:      store,
		tokens:     tokens,
		verifier:   verifier,
		bcryptCost: bcryptCost,
		logger:     logger.With("system", "auth"),
	}
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *service) Middleware() func(http.Handler) http.Handler {
	return Middleware(s, s.logger)
}

func (s *service) Register(ctx context.Context, cmd RegisterCommand) (*User, error) {
	cmd.Normalize()
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(cmd.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.store.Insert(ctx, User{
		ID:           uuid.New(),
		FirstName:    cmd.FirstName,
		LastName:     cmd.LastName,
		CompanyName:  cmd.CompanyName,
		Email:        cmd.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", u.ID)
	return &u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !VerifyPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.Email)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken: token,
		TokenType:   "bearer",
		Persona:     u.Persona,
	}, nil
}

// Authenticate resolves a bearer token to its user. Local tokens are tried
// first; when an external verifier is configured its accounts are
// provisioned on first use. External identities never resolve to an account
// that has a password.
func (s *service) Authenticate(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	email, err := s.tokens.Parse(token)
	external := false
	if err != nil {
		if s.verifier == nil {
			return nil, err
		}
		if email, err = s.verifier.Verify(ctx, token); err != nil {
			return nil, err
		}
		external = true
	}

	u, err := s.store.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrNotFound) && external:
		return s.provision(ctx, email)
	case errors.Is(err, ErrNotFound):
		return nil, ErrUnauthorized
	case err != nil:
		return nil, err
	}
	if external && u.PasswordHash != "" {
		s.logger.WarnContext(ctx, "external token matched a password account", "user_id", u.ID)
		return nil, ErrUnauthorized
	}
	return &u, nil
}

func (s *service) provision(ctx context.Context, email string) (*User, error) {
	u, err := s.store.Insert(ctx, User{ID: uuid.New(), Email: email})
	if errors.Is(err, ErrDuplicate) {
		u, err = s.store.FindByEmail(ctx, email)
		if err == nil && u.PasswordHash != "" {
			return nil, ErrUnauthorized
		}
	}
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "provisioned external user", "user_id", u.ID)
	return &u, nil
}

func (s *service) UpdatePersona(ctx context.Context, id uuid.UUID, persona string) (*User, error) {
	persona = strings.TrimSpace(persona)
	if persona == "" {
		return nil, fmt.Errorf("%w: persona is required", ErrInvalidInput)
	}

	u, err := s.store.UpdatePersona(ctx, id, persona)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
