package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/JaimeStill/briefer/internal/auth"
)

const secret = "test-secret-0123456789"

type memStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]auth.User
	err   error
}

func newMemStore() *memStore {
	return &memStore{users: map[uuid.UUID]auth.User{}}
}

func (s *memStore) Insert(ctx context.Context, u auth.User) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return auth.User{}, s.err
	}
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return auth.User{}, auth.ErrDuplicate
		}
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = u
	return u, nil
}

func (s *memStore) FindByEmail(ctx context.Context, email string) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return auth.User{}, s.err
	}
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return auth.User{}, auth.ErrNotFound
}

func (s *memStore) FindByID(ctx context.Context, id uuid.UUID) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return auth.User{}, auth.ErrNotFound
	}
	return u, nil
}

func (s *memStore) UpdatePersona(ctx context.Context, id uuid.UUID, persona string) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return auth.User{}, auth.ErrNotFound
	}
	u.Persona = persona
	s.users[id] = u
	return u, nil
}

type fakeVerifier struct {
	email string
	err   error
}

func (v fakeVerifier) Verify(ctx context.Context, raw string) (string, error) {
	return v.email, v.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSystem(store auth.Store, verifier auth.Verifier) auth.System {
	return auth.New(store, auth.NewTokens(secret, "briefer", time.Hour), verifier, bcrypt.MinCost, discard())
}

func register(t *testing.T, sys auth.System, email string) *auth.User {
	t.Helper()
	u, err := sys.Register(context.Background(), auth.RegisterCommand{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		CompanyName: "Acme Corp",
		Email:       email,
		Password:    "correct horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return u
}

func TestPasswordTruncation(t *testing.T) {
	long := strings.Repeat("a", 72)
	hash, err := auth.HashPassword(long+"first-suffix", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if !auth.VerifyPassword(hash, long+"different-suffix") {
		t.Error("bytes past 72 must not affect verification")
	}
	if auth.VerifyPassword(hash, strings.Repeat("a", 71)) {
		t.Error("shorter password verified")
	}
	if auth.VerifyPassword("", "anything") || auth.VerifyPassword("not-a-hash", "x") {
		t.Error("malformed hash verified")
	}
}

func TestTokens(t *testing.T) {
	tokens := auth.NewTokens(secret, "briefer", time.Hour)

	raw, err := tokens.Issue("ada@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	sub, err := tokens.Parse(raw)
	if err != nil || sub != "ada@example.com" {
		t.Fatalf("parse = %q, %v", sub, err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"other secret", mustIssue(t, auth.NewTokens("another-secret-98765", "briefer", time.Hour))},
		{"other issuer", mustIssue(t, auth.NewTokens(secret, "someone-else", time.Hour))},
		{"expired", mustIssue(t, auth.NewTokens(secret, "briefer", -time.Minute))},
		{"garbage", "not.a.token"},
		{"alg none", "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJzdWIiOiJhZGFAZXhhbXBsZS5jb20iLCJpc3MiOiJicmllZmVyIn0."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tokens.Parse(tt.token); !errors.Is(err, auth.ErrUnauthorized) {
				t.Errorf("err = %v, want ErrUnauthorized", err)
			}
		})
	}
}

func mustIssue(t *testing.T, tokens *auth.Tokens) string {
	t.Helper()
	raw, err := tokens.Issue("ada@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return raw
}

func TestRegister(t *testing.T) {
	store := newMemStore()
	sys := newSystem(store, nil)

	u := register(t, sys, "  Ada@Example.com ")
	if u.Email != "ada@example.com" {
		t.Errorf("email = %q, want normalized", u.Email)
	}
	if u.PasswordHash == "" || u.PasswordHash == "correct horse" {
		t.Error("password not hashed")
	}

	_, err := sys.Register(context.Background(), auth.RegisterCommand{Email: "ada@example.com", Password: "x"})
	if !errors.Is(err, auth.ErrDuplicate) {
		t.Errorf("duplicate err = %v", err)
	}

	invalid := []auth.RegisterCommand{
		{Email: "nope", Password: "x"},
		{Email: "Ada <ada2@example.com>", Password: "x"},
		{Email: "ada2@example.com"},
	}
	for _, cmd := range invalid {
		if _, err := sys.Register(context.Background(), cmd); !errors.Is(err, auth.ErrInvalidInput) {
			t.Errorf("register %+v err = %v, want ErrInvalidInput", cmd, err)
		}
	}
}

func TestLoginAndAuthenticate(t *testing.T) {
	sys := newSystem(newMemStore(), nil)
	u := register(t, sys, "ada@example.com")
	sys.UpdatePersona(context.Background(), u.ID, "CFO")

	result, err := sys.Login(context.Background(), "ADA@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.TokenType != "bearer" || result.Persona != "CFO" || result.AccessToken == "" {
		t.Errorf("result = %+v", result)
	}

	got, err := sys.Authenticate(context.Background(), result.AccessToken)
	if err != nil || got.ID != u.ID {
		t.Fatalf("authenticate = %+v, %v", got, err)
	}

	for _, tc := range []struct{ email, password string }{
		{"ada@example.com", "wrong"},
		{"nobody@example.com", "correct horse"},
	} {
		if _, err := sys.Login(context.Background(), tc.email, tc.password); !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Errorf("login %s err = %v", tc.email, err)
		}
	}

	if _, err := sys.Authenticate(context.Background(), ""); !errors.Is(err, auth.ErrUnauthorized) {
		t.Errorf("empty token err = %v", err)
	}
}

func TestAuthenticateDeletedUser(t *testing.T) {
	tokens := auth.NewTokens(secret, "briefer", time.Hour)
	sys := newSystem(newMemStore(), nil)

	raw, _ := tokens.Issue("ghost@example.com")
	if _, err := sys.Authenticate(context.Background(), raw); !errors.Is(err, auth.ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestAuthenticateExternal(t *testing.T) {
	store := newMemStore()
	sys := newSystem(store, fakeVerifier{email: "sso@example.com"})

	first, err := sys.Authenticate(context.Background(), "external-token")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if first.Email != "sso@example.com" {
		t.Errorf("email = %q", first.Email)
	}

	second, err := sys.Authenticate(context.Background(), "external-token")
	if err != nil || second.ID != first.ID {
		t.Errorf("second = %+v, %v; want same user", second, err)
	}
	if len(store.users) != 1 {
		t.Errorf("users = %d, want 1", len(store.users))
	}

	if _, err := sys.Login(context.Background(), "sso@example.com", ""); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Error("provisioned account accepted a password login")
	}

	rejecting := newSystem(newMemStore(), fakeVerifier{err: auth.ErrUnauthorized})
	if _, err := rejecting.Authenticate(context.Background(), "bad"); !errors.Is(err, auth.ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestAuthenticateExternalSkipsPasswordAccounts(t *testing.T) {
	store := newMemStore()
	sys := newSystem(store, fakeVerifier{email: "ada@example.com"})
	register(t, sys, "ada@example.com")

	if u, err := sys.Authenticate(context.Background(), "external-token"); !errors.Is(err, auth.ErrUnauthorized) {
		t.Errorf("user = %+v, err = %v; want ErrUnauthorized", u, err)
	}
	if len(store.users) != 1 {
		t.Errorf("users = %d, want 1", len(store.users))
	}
}

func TestUpdatePersona(t *testing.T) {
	sys := newSystem(newMemStore(), nil)
	u := register(t, sys, "ada@example.com")

	updated, err := sys.UpdatePersona(context.Background(), u.ID, " CTO ")
	if err != nil || updated.Persona != "CTO" {
		t.Fatalf("update = %+v, %v", updated, err)
	}

	if _, err := sys.UpdatePersona(context.Background(), u.ID, "  "); !errors.Is(err, auth.ErrInvalidInput) {
		t.Errorf("blank persona err = %v", err)
	}
	if _, err := sys.UpdatePersona(context.Background(), uuid.New(), "CTO"); !errors.Is(err, auth.ErrNotFound) {
		t.Errorf("unknown user err = %v", err)
	}
}
