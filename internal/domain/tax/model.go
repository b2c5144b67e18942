package tax

import (
	"time"

	"github.com/google/uuid"
)

// Rate is a named tax applied to every booking total. RateBps is the rate in
// basis points (725 means 7.25%), kept integral to avoid float drift on money.
type Rate struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	RateBps   int       `db:"rate_bps" json:"rate_bps"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
