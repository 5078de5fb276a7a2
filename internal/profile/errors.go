package profile

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound = errors.New("profile not found")
	ErrLocked   = errors.New("profile is locked")
)

// MapHTTPStatus maps profile errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrLocked):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
