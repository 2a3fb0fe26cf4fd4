package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// MapError translates database errors to domain errors: sql.ErrNoRows becomes
// notFound and a PostgreSQL unique violation becomes duplicate. Other errors
// are returned unchanged.
func MapError(err, notFound, duplicate error) error {
	var pgErr *pgconn.PgError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return notFound
	case errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation:
		return duplicate
	}
	return err
}
