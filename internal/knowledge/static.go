package knowledge

import (
	"context"
	"slices"
	"strings"
)

// Static ranks an in-memory passage set by how many query terms each
// passage contains.
type Static struct {
	passages []Passage
}

// NewStatic creates a Static retriever over passages.
func NewStatic(passages []Passage) *Static {
	return &Static{passages: slices.Clone(passages)}
}

// Search returns up to k passages sharing at least one term with query,
// best match first. Ties keep the passage order.
func (s *Static) Search(ctx context.Context, query string, k int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []string{}, nil
	}

	type scored struct {
		idx   int
		score int
	}

	q := terms(query)
	var ranked []scored
	for i, p := range s.passages {
		words := make(map[string]bool)
		for _, w := range terms(p.Term + " " + p.Content) {
			words[w] = true
		}
		var score int
		for _, t := range q {
			if words[t] {
				score++
			}
		}
		if score > 0 {
			ranked = append(ranked, scored{i, score})
		}
	}

	slices.SortStableFunc(ranked, func(a, b scored) int {
		return b.score - a.score
	})

	out := make([]string, 0, min(k, len(ranked)))
	for _, r := range ranked[:min(k, len(ranked))] {
		out = append(out, strings.TrimSpace(s.passages[r.idx].Content))
	}
	return out, nil
}
