package achievements

import (
	"context"

	"github.com/JaimeStill/stark/pkg/pagination"
)

// System defines the public contract for achievement operations.
type System interface {
	Handler() *Handler

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Achievement], error)
	All(ctx context.Context) ([]Achievement, error)
	Find(ctx context.Context, id string) (*Achievement, error)
	Create(ctx context.Context, cmd CreateCommand) (*Achievement, error)
	Delete(ctx context.Context, id string) error
}
