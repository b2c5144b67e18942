package packages

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, pkg *Package) error
	GetByID(ctx context.Context, id uuid.UUID) (*Package, error)
	Update(ctx context.Context, pkg *Package) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Package, int, error)
}
