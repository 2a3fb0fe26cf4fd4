package repository_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/briefer/pkg/repository"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, errNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), errNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, errDuplicate},
		{"other pg error", &pgconn.PgError{Code: "23503"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.MapError(tt.err, errNotFound, errDuplicate)
			if tt.want == nil {
				if tt.err != nil && got != tt.err {
					t.Errorf("got %v, want passthrough %v", got, tt.err)
				}
				if tt.err == nil && got != nil {
					t.Errorf("got %v, want nil", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuilderUsesDollarPlaceholders(t *testing.T) {
	query, args, err := repository.Builder.
		Select("id").
		From("users").
		Where("email = ?", "a@b.c").
		ToSql()
	if err != nil {
		t.Fatalf("to sql: %v", err)
	}
	if query != "SELECT id FROM users WHERE email = $1" {
		t.Errorf("query = %q", query)
	}
	if len(args) != 1 || args[0] != "a@b.c" {
		t.Errorf("args = %v", args)
	}
}
