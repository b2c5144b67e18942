package packages

import (
	"time"

	"github.com/google/uuid"
)

// DefaultDurationMinutes is assumed when a package does not specify one.
const DefaultDurationMinutes = 60

// Package is a bookable treatment offering. Prices are kept in cents.
type Package struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	CategoryID      uuid.UUID  `db:"category_id" json:"category_id"`
	Name            string     `db:"name" json:"name"`
	Description     *string    `db:"description" json:"description,omitempty"`
	ImageURL        *string    `db:"image_url" json:"image_url,omitempty"`
	PriceCents      int64      `db:"price_cents" json:"price_cents"`
	DurationMinutes *int       `db:"duration_minutes" json:"duration_minutes,omitempty"`
	Active          bool       `db:"active" json:"active"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// Duration returns the package's session length in minutes, falling back to
// the default when none is set.
func (p *Package) Duration() int {
	if p.DurationMinutes != nil && *p.DurationMinutes > 0 {
		return *p.DurationMinutes
	}
	return DefaultDurationMinutes
}
