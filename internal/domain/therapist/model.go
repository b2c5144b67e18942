package therapist

import (
	"time"

	"github.com/google/uuid"
)

// Therapist is a staff member who can be booked for treatments.
type Therapist struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Title       *string   `db:"title" json:"title,omitempty"`
	Bio         *string   `db:"bio" json:"bio,omitempty"`
	PhotoURL    *string   `db:"photo_url" json:"photo_url,omitempty"`
	Specialties []string  `db:"specialties" json:"specialties"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
