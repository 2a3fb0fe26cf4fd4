// Package knowledge retrieves enterprise reference passages that ground the
// narrative stage in house terminology.
package knowledge

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Retriever returns up to k passages ranked for query.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]string, error)
}

// Passage is one reference entry.
type Passage struct {
	Category string `yaml:"category" json:"category"`
	Term     string `yaml:"term" json:"term"`
	Content  string `yaml:"content" json:"content"`
}

//go:embed passages.yaml
var defaultPassages []byte

// DefaultPassages returns the built-in reference set.
func DefaultPassages() ([]Passage, error) {
	var passages []Passage
	if err := yaml.Unmarshal(defaultPassages, &passages); err != nil {
		return nil, fmt.Errorf("decode default passages: %w", err)
	}
	return passages, nil
}

// terms splits query into lowercase alphanumeric words.
func terms(query string) []string {
	return strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
