package jobs

import (
	"errors"
	"net/http"
)

// Domain errors for job tracking.
var (
	ErrNotFound      = errors.New("job not found")
	ErrDuplicate     = errors.New("job already exists")
	ErrTerminal      = errors.New("job already finished")
	ErrInvalidStatus = errors.New("invalid job status")
	ErrCapacity      = errors.New("job tracker at capacity")
)

// MapHTTPStatus maps job domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrTerminal):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, ErrCapacity):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
