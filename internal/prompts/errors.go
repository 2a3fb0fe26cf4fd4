package prompts

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound            = errors.New("prompt not found")
	ErrDuplicate           = errors.New("prompt name already exists")
	ErrInvalidStage        = errors.New("stage must be architecture, business_value, narrative, or formatting")
	ErrInvalidInstructions = errors.New("invalid instructions")
	ErrInvalidInput        = errors.New("invalid input")
)

// MapHTTPStatus maps prompt errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidStage),
		errors.Is(err, ErrInvalidInstructions),
		errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
