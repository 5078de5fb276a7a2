// Package ocr is the boundary to external text-recognition services. A
// Recognizer turns an uploaded image or PDF into text plus positioned words.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
)

// Word is one recognized word with its bounding box in page pixels, origin
// at the top left.
type Word struct {
	Text string  `json:"text"`
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
	X2   float64 `json:"x2"`
	Y2   float64 `json:"y2"`
}

// Request is a single recognition call.
type Request struct {
	Data        []byte
	Filename    string
	ContentType string
	Language    string
}

// Result is the recognized content of a document.
type Result struct {
	Text     string `json:"text"`
	Words    []Word `json:"words,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Language string `json:"language"`
}

// Recognizer runs OCR against an external provider.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, req Request) (*Result, error)
}

// New builds the Recognizer selected by cfg.Provider.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (Recognizer, error) {
	switch cfg.Provider {
	case ProviderVision:
		v, err := NewVision(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return v, nil
	case ProviderOCRSpace:
		return NewOCRSpace(cfg, nil, logger), nil
	default:
		return nil, fmt.Errorf("unsupported ocr provider: %q", cfg.Provider)
	}
}
