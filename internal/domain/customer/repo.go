package customer

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, cust *Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)
	Update(ctx context.Context, cust *Customer) error
	List(ctx context.Context, limit, offset int) ([]*Customer, int, error)
}
