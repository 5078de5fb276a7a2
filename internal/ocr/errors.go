package ocr

import (
	"errors"
	"net/http"
)

var (
	ErrMissingKey      = errors.New("ocr api key is not configured")
	ErrUnsupportedFile = errors.New("unsupported file type, allowed: .jpg, .jpeg, .png, .webp, .pdf")
	ErrFileTooLarge    = errors.New("file exceeds the ocr size limit")
	ErrEmptyFile       = errors.New("file is empty")
	ErrForbidden       = errors.New("ocr provider rejected the api key or the quota is exhausted")
	ErrUpstream        = errors.New("ocr provider failed")
)

// MapHTTPStatus maps OCR errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingKey),
		errors.Is(err, ErrUnsupportedFile),
		errors.Is(err, ErrEmptyFile):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
