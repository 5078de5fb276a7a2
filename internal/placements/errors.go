package placements

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("placement not found")
	ErrDuplicate         = errors.New("placement already exists")
	ErrInvalidPeriod     = errors.New("placement needs valid start and end dates with end on or after start")
	ErrInvalidAttendance = errors.New("attendance must be between 0 and 100")
)

// MapHTTPStatus maps placement errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidPeriod), errors.Is(err, ErrInvalidAttendance):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
