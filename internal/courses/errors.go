package courses

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound    = errors.New("course not found")
	ErrDuplicate   = errors.New("course already exists")
	ErrInvalidDate = errors.New("course dates must be YYYY-MM-DD with end on or after start")
	ErrInvalidRole = errors.New("signing role must be handledare or kursledare")
)

// MapHTTPStatus maps course errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidDate), errors.Is(err, ErrInvalidRole):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
