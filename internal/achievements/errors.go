package achievements

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound  = errors.New("achievement not found")
	ErrDuplicate = errors.New("achievement already exists")
	ErrInvalid   = errors.New("invalid achievement")
)

// MapHTTPStatus maps achievement errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
