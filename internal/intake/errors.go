package intake

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/stark/internal/courses"
	"github.com/JaimeStill/stark/internal/ocr"
	"github.com/JaimeStill/stark/internal/placements"
	"github.com/JaimeStill/stark/internal/scans"
)

var (
	ErrEmptyText = errors.New("no text to analyze")
	ErrInvalid   = errors.New("invalid intake request")
)

// MapHTTPStatus maps intake errors, and those of the systems it drives, to
// HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrEmptyText), errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, courses.ErrInvalidDate), errors.Is(err, courses.ErrInvalidRole):
		return courses.MapHTTPStatus(err)
	case errors.Is(err, placements.ErrInvalidPeriod), errors.Is(err, placements.ErrInvalidAttendance):
		return placements.MapHTTPStatus(err)
	case errors.Is(err, scans.ErrNotFound):
		return http.StatusNotFound
	}
	if status := ocr.MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	return scans.MapHTTPStatus(err)
}
