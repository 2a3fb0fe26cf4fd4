// Package tokens counts and truncates text by model tokens using the
// cl100k_base encoding.
package tokens

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Encoding is the tiktoken encoding used for budgets.
const Encoding = "cl100k_base"

// Counter counts and truncates text against a token budget.
// The encoding is loaded on first use.
type Counter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

// New returns a Counter for the cl100k_base encoding.
func New() *Counter {
	return &Counter{}
}

func (c *Counter) encoding() (*tiktoken.Tiktoken, error) {
	c.once.Do(func() {
		c.enc, c.err = tiktoken.GetEncoding(Encoding)
		if c.err != nil {
			c.err = fmt.Errorf("load %s encoding: %w", Encoding, c.err)
		}
	})
	return c.enc, c.err
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	enc, err := c.encoding()
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// Truncate returns text cut to at most limit tokens. A limit <= 0 disables
// truncation. Every token spans at least one byte, so text no longer than
// limit bytes is returned without encoding.
func (c *Counter) Truncate(text string, limit int) (string, error) {
	if limit <= 0 || len(text) <= limit {
		return text, nil
	}

	enc, err := c.encoding()
	if err != nil {
		return "", err
	}

	ids := enc.Encode(text, nil, nil)
	if len(ids) <= limit {
		return text, nil
	}
	return enc.Decode(ids[:limit]), nil
}
