package ocr

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

var allowedTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/webp",
	"application/pdf",
}

var allowedExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".pdf"}

// ValidateUpload checks an upload against the size limit and the accepted
// formats. Either a known content type or a known extension is enough.
func ValidateUpload(filename, contentType string, size, limit int64) error {
	if size == 0 {
		return ErrEmptyFile
	}
	if limit > 0 && size > limit {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, size, limit)
	}

	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	ext := strings.ToLower(filepath.Ext(filename))

	if slices.Contains(allowedTypes, ct) || slices.Contains(allowedExtensions, ext) {
		return nil
	}
	return ErrUnsupportedFile
}

// IsPDF reports whether the upload is a PDF by content type or extension.
func IsPDF(filename, contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "application/pdf") ||
		strings.EqualFold(filepath.Ext(filename), ".pdf")
}
