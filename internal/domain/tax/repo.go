package tax

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, rate *Rate) error
	GetByID(ctx context.Context, id uuid.UUID) (*Rate, error)
	Update(ctx context.Context, rate *Rate) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*Rate, error)
	ListActive(ctx context.Context) ([]*Rate, error)
}
