package courses

import (
	"context"

	"github.com/JaimeStill/stark/pkg/pagination"
)

// System defines the public contract for course operations.
type System interface {
	Handler() *Handler

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Course], error)
	Find(ctx context.Context, id string) (*Course, error)
	Create(ctx context.Context, cmd Command) (*Course, error)
	Update(ctx context.Context, id string, cmd Command) (*Course, error)
	Delete(ctx context.Context, id string) error
}
