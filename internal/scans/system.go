package scans

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/JaimeStill/stark/pkg/pagination"
)

// System defines the public contract for scan operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Scan], error)
	Find(ctx context.Context, id uuid.UUID) (*Scan, error)
	Create(ctx context.Context, cmd CreateCommand) (*Scan, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Download opens the stored file. The caller closes the reader.
	Download(ctx context.Context, id uuid.UUID) (*Scan, io.ReadCloser, error)

	Recognized(ctx context.Context, id uuid.UUID, cmd RecognizedCommand) (*Scan, error)
	Mapped(ctx context.Context, id uuid.UUID, recordID string) (*Scan, error)
}
