package pipeline

import "errors"

var (
	// ErrTooFewSlides indicates the narrative stage produced fewer slides than required.
	ErrTooFewSlides = errors.New("narrative produced too few slides")
	// ErrFormattingExhausted indicates the formatting stage still failed validation
	// after the maximum number of attempts.
	ErrFormattingExhausted = errors.New("formatting attempts exhausted")
	// ErrInvalidState indicates the graph state did not carry a Pipeline State.
	ErrInvalidState = errors.New("invalid pipeline state")
)
