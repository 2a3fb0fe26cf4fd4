package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/JaimeStill/briefer/pkg/repository"
)

const textSearchConfig = "english"

// Postgres ranks reference_passages by full-text relevance.
type Postgres struct {
	db     repository.Querier
	logger *slog.Logger
}

// NewPostgres creates a Postgres retriever over db.
func NewPostgres(db repository.Querier, logger *slog.Logger) *Postgres {
	return &Postgres{
		db:     db,
		logger: logger.With("system", "knowledge"),
	}
}

// Search matches any query term and orders by ts_rank.
func (p *Postgres) Search(ctx context.Context, query string, k int) ([]string, error) {
	stmt, ok := searchStmt(query, k)
	if !ok {
		return []string{}, nil
	}

	passages, err := repository.QueryMany(ctx, p.db, stmt, func(s repository.Scanner) (string, error) {
		var content string
		err := s.Scan(&content)
		return content, err
	})
	if err != nil {
		return nil, fmt.Errorf("search passages: %w", err)
	}

	p.logger.DebugContext(ctx, "retrieved passages", "count", len(passages))
	return passages, nil
}

// searchStmt builds the ranked query. It reports false when there is
// nothing to search for.
func searchStmt(query string, k int) (sq.SelectBuilder, bool) {
	words := terms(query)
	if len(words) == 0 || k <= 0 {
		return sq.SelectBuilder{}, false
	}

	tsq := strings.Join(words, " | ")
	match := fmt.Sprintf("to_tsquery('%s', ?)", textSearchConfig)

	return repository.Builder.
		Select("content").
		From("reference_passages").
		Where("search_vector @@ "+match, tsq).
		OrderByClause("ts_rank(search_vector, "+match+") DESC", tsq).
		OrderBy("id").
		Limit(uint64(k)), true
}
