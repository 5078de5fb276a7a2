// Package scans stores uploaded certificate files in blob storage and
// tracks their recognition lifecycle.
package scans

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/stark/internal/certificates"
)

// Scan lifecycle states.
const (
	StatusUploaded   = "uploaded"
	StatusRecognized = "recognized"
	StatusMapped     = "mapped"
)

// Scan is an uploaded certificate image or PDF.
type Scan struct {
	ID          uuid.UUID         `json:"id"`
	Filename    string            `json:"filename"`
	ContentType string            `json:"contentType"`
	SizeBytes   int64             `json:"sizeBytes"`
	PageCount   *int              `json:"pageCount"`
	StorageKey  string            `json:"storageKey"`
	Status      string            `json:"status"`
	Kind        certificates.Kind `json:"kind"`
	Reason      string            `json:"reason,omitempty"`
	Language    string            `json:"language,omitempty"`
	OCRText     string            `json:"ocrText,omitempty"`
	RecordID    string            `json:"recordId,omitempty"`
	UploadedAt  time.Time         `json:"uploadedAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// CreateCommand carries an uploaded file. PageCount is set for PDFs.
type CreateCommand struct {
	Data        []byte
	Filename    string
	ContentType string
	PageCount   *int
}

// RecognizedCommand records the outcome of OCR and classification.
type RecognizedCommand struct {
	Language string
	Text     string
	Kind     certificates.Kind
	Reason   string
}
