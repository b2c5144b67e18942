package therapist

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, th *Therapist) error
	GetByID(ctx context.Context, id uuid.UUID) (*Therapist, error)
	Update(ctx context.Context, th *Therapist) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Therapist, int, error)
}
