package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	SetPaymentIntent(ctx context.Context, id uuid.UUID, intentID string) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Booking, int, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Booking, int, error)

	// ListActiveForDay returns pending and confirmed bookings for the given
	// therapists on one date. It is the input to conflict resolution;
	// cancelled and completed bookings never block a slot.
	ListActiveForDay(ctx context.Context, therapistIDs []uuid.UUID, date string) ([]*Booking, error)

	// LockDay serializes writers touching one therapist's day. Only
	// meaningful inside a transaction.
	LockDay(ctx context.Context, therapistID uuid.UUID, date string) error

	// CompleteElapsed marks confirmed bookings whose end has passed as
	// completed and returns how many rows changed.
	CompleteElapsed(ctx context.Context, now time.Time) (int64, error)
}
