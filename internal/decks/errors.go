package decks

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/briefer/internal/extract"
	"github.com/JaimeStill/briefer/internal/jobs"
	"github.com/JaimeStill/briefer/pkg/storage"
)

// Domain errors for deck generation.
var (
	ErrUnsupportedFile = errors.New("only .zip or .md files are supported")
	ErrInvalidFile     = errors.New("invalid file")
	ErrFileTooLarge    = errors.New("file too large")
	ErrQueueFull       = errors.New("generation queue is full")
	ErrNotReady        = errors.New("presentation not ready yet")
	ErrPanic           = errors.New("deck generation panicked")
)

// MapHTTPStatus maps deck, job, extraction, and storage errors to HTTP
// status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnsupportedFile),
		errors.Is(err, ErrInvalidFile),
		errors.Is(err, ErrNotReady),
		errors.Is(err, extract.ErrInvalidArchive),
		errors.Is(err, extract.ErrInvalidEncoding):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrQueueFull):
		return http.StatusServiceUnavailable
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	}
	return jobs.MapHTTPStatus(err)
}
