package prompts

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/JaimeStill/briefer/pkg/pagination"
	"github.com/JaimeStill/briefer/pkg/repository"
)

// Store persists prompt overrides.
type Store interface {
	List(ctx context.Context, page pagination.PageRequest, filters Filters) ([]Prompt, int, error)
	Find(ctx context.Context, id uuid.UUID) (Prompt, error)
	FindActive(ctx context.Context, stage Stage) (Prompt, error)
	Insert(ctx context.Context, cmd CreateCommand) (Prompt, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (Prompt, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Activate(ctx context.Context, id uuid.UUID) (Prompt, error)
	Deactivate(ctx context.Context, id uuid.UUID) (Prompt, error)
}

type pgStore struct {
	db *sql.DB
}

// NewStore creates a Store over the prompts table.
func NewStore(db *sql.DB) Store {
	return &pgStore{db: db}
}

func (s *pgStore) List(ctx context.Context, page pagination.PageRequest, filters Filters) ([]Prompt, int, error) {
	countStmt, rowsStmt := listStmt(page, filters)

	var total int
	q, args, err := countStmt.ToSql()
	if err != nil {
		return nil, 0, err
	}
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count prompts: %w", err)
	}

	prompts, err := repository.QueryMany(ctx, s.db, rowsStmt, scanPrompt)
	if err != nil {
		return nil, 0, fmt.Errorf("query prompts: %w", err)
	}
	return prompts, total, nil
}

func (s *pgStore) Find(ctx context.Context, id uuid.UUID) (Prompt, error) {
	stmt := repository.Builder.
		Select(columns...).
		From("prompts").
		Where(sq.Eq{"id": id})

	p, err := repository.QueryOne(ctx, s.db, stmt, scanPrompt)
	return p, repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (s *pgStore) FindActive(ctx context.Context, stage Stage) (Prompt, error) {
	stmt := repository.Builder.
		Select(columns...).
		From("prompts").
		Where(sq.Eq{"stage": stage, "active": true})

	p, err := repository.QueryOne(ctx, s.db, stmt, scanPrompt)
	return p, repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (s *pgStore) Insert(ctx context.Context, cmd CreateCommand) (Prompt, error) {
	stmt := repository.Builder.
		Insert("prompts").
		Columns("id", "name", "stage", "instructions", "description").
		Values(uuid.New(), cmd.Name, cmd.Stage, cmd.Instructions, cmd.Description).
		Suffix(returning())

	p, err := repository.QueryOne(ctx, s.db, stmt, scanPrompt)
	return p, repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (s *pgStore) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (Prompt, error) {
	p, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Prompt, error) {
		current, err := repository.QueryOne(ctx, tx, repository.Builder.
			Select(columns...).
			From("prompts").
			Where(sq.Eq{"id": id}).
			Suffix("FOR UPDATE"), scanPrompt)
		if err != nil {
			return Prompt{}, err
		}

		// Moving an active override to another stage would leave two active
		// overrides on the target stage.
		active := current.Active && current.Stage == cmd.Stage

		return repository.QueryOne(ctx, tx, repository.Builder.
			Update("prompts").
			Set("name", cmd.Name).
			Set("stage", cmd.Stage).
			Set("instructions", cmd.Instructions).
			Set("description", cmd.Description).
			Set("active", active).
			Set("updated_at", sq.Expr("NOW()")).
			Where(sq.Eq{"id": id}).
			Suffix(returning()), scanPrompt)
	})
	return p, repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (s *pgStore) Delete(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, s.db, repository.Builder.
		Delete("prompts").
		Where(sq.Eq{"id": id}))
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

// Activate makes id the active override for its stage, deactivating the
// stage's current override in the same transaction.
func (s *pgStore) Activate(ctx context.Context, id uuid.UUID) (Prompt, error) {
	p, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Prompt, error) {
		target, err := repository.QueryOne(ctx, tx, repository.Builder.
			Select(columns...).
			From("prompts").
			Where(sq.Eq{"id": id}), scanPrompt)
		if err != nil {
			return Prompt{}, err
		}

		deactivate := repository.Builder.
			Update("prompts").
			Set("active", false).
			Set("updated_at", sq.Expr("NOW()")).
			Where(sq.Eq{"stage": target.Stage, "active": true})
		q, args, err := deactivate.ToSql()
		if err != nil {
			return Prompt{}, err
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return Prompt{}, fmt.Errorf("deactivate current: %w", err)
		}

		return repository.QueryOne(ctx, tx, setActive(id, true), scanPrompt)
	})
	return p, repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (s *pgStore) Deactivate(ctx context.Context, id uuid.UUID) (Prompt, error) {
	p, err := repository.QueryOne(ctx, s.db, setActive(id, false), scanPrompt)
	return p, repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func setActive(id uuid.UUID, active bool) sq.UpdateBuilder {
	return repository.Builder.
		Update("prompts").
		Set("active", active).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix(returning())
}
