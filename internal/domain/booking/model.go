package booking

import (
	"time"

	"github.com/google/uuid"
)

// Booking statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// Booking is a reserved treatment slot. Date is "YYYY-MM-DD" and StartTime a
// 24h "HH:mm" in the spa's local time; money fields are cents. A nil
// TherapistID means the booking is unassigned; staff pick it up later.
type Booking struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	CustomerID      *uuid.UUID `db:"customer_id" json:"customer_id,omitempty"`
	TherapistID     *uuid.UUID `db:"therapist_id" json:"therapist_id,omitempty"`
	PackageID       uuid.UUID  `db:"package_id" json:"package_id"`
	GuestName       string     `db:"guest_name" json:"guest_name"`
	GuestEmail      string     `db:"guest_email" json:"guest_email"`
	GuestPhone      *string    `db:"guest_phone" json:"guest_phone,omitempty"`
	Date            string     `db:"date" json:"date"`
	StartTime       string     `db:"start_time" json:"start_time"`
	DurationMinutes int        `db:"duration_minutes" json:"duration_minutes"`
	Status          string     `db:"status" json:"status"`
	PriceCents      int64      `db:"price_cents" json:"price_cents"`
	TaxCents        int64      `db:"tax_cents" json:"tax_cents"`
	TotalCents      int64      `db:"total_cents" json:"total_cents"`
	PaymentIntentID *string    `db:"payment_intent_id" json:"payment_intent_id,omitempty"`
	Notes           *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// EndTime returns the booking's "HH:mm" end, derived from start and duration.
func (b *Booking) EndTime() string {
	start, err := ParseClock(b.StartTime)
	if err != nil {
		return ""
	}
	return FormatClock(start + b.DurationMinutes)
}

var allowedTransitions = map[string]map[string]bool{
	StatusPending:   {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed: {StatusCompleted: true, StatusCancelled: true},
	StatusCancelled: {},
	StatusCompleted: {},
}

// CanTransition reports whether a booking may move from one status to
// another. Cancelled and completed are terminal.
func CanTransition(from, to string) bool {
	return allowedTransitions[from][to]
}
