package backup

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidBundle = errors.New("invalid backup bundle")
	ErrInvalidMode   = errors.New("import mode must be replace or merge")
)

// MapHTTPStatus maps backup errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidBundle) || errors.Is(err, ErrInvalidMode) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
