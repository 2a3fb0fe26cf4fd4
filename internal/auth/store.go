package auth

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/JaimeStill/briefer/pkg/repository"
)

// Store persists user accounts.
type Store interface {
	Insert(ctx context.Context, u User) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id uuid.UUID) (User, error)
	UpdatePersona(ctx context.Context, id uuid.UUID, persona string) (User, error)
}

var userColumns = []string{
	"id", "first_name", "last_name", "company_name",
	"email", "persona", "password_hash", "created_at", "updated_at",
}

func returning() string {
	return "RETURNING " + strings.Join(userColumns, ", ")
}

type pgStore struct {
	db *sql.DB
}

// NewStore creates a Store over the users table.
func NewStore(db *sql.DB) Store {
	return &pgStore{db: db}
}

func scanUser(s repository.Scanner) (User, error) {
	var u User
	err := s.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.CompanyName,
		&u.Email, &u.Persona, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

func (s *pgStore) Insert(ctx context.Context, u User) (User, error) {
	stmt := repository.Builder.
		Insert("users").
		Columns("id", "first_name", "last_name", "company_name", "email", "persona", "password_hash").
		Values(u.ID, u.FirstName, u.LastName, u.CompanyName, u.Email, u.Persona, u.PasswordHash).
		Suffix(returning())

	created, err := repository.QueryOne(ctx, s.db, stmt, scanUser)
	return created, repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (s *pgStore) FindByEmail(ctx context.Context, email string) (User, error) {
	stmt := repository.Builder.
		Select(userColumns...).
		From("users").
		Where(sq.Eq{"email": email})

	u, err := repository.QueryOne(ctx, s.db, stmt, scanUser)
	return u, repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (s *pgStore) FindByID(ctx context.Context, id uuid.UUID) (User, error) {
	stmt := repository.Builder.
		Select(userColumns...).
		From("users").
		Where(sq.Eq{"id": id})

	u, err := repository.QueryOne(ctx, s.db, stmt, scanUser)
	return u, repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (s *pgStore) UpdatePersona(ctx context.Context, id uuid.UUID, persona string) (User, error) {
	stmt := repository.Builder.
		Update("users").
		Set("persona", persona).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix(returning())

	u, err := repository.QueryOne(ctx, s.db, stmt, scanUser)
	return u, repository.MapError(err, ErrNotFound, ErrDuplicate)
}
