package placements

import (
	"context"

	"github.com/JaimeStill/stark/pkg/pagination"
)

// System defines the public contract for placement operations.
type System interface {
	Handler() *Handler

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Placement], error)
	Find(ctx context.Context, id string) (*Placement, error)
	Create(ctx context.Context, cmd Command) (*Placement, error)
	Update(ctx context.Context, id string, cmd Command) (*Placement, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context) (*Summary, error)
}
