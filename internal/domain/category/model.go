package category

import (
	"time"

	"github.com/google/uuid"
)

// Category groups packages on the storefront (massage, facial, body wrap).
type Category struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	Description *string   `db:"description" json:"description,omitempty"`
	ImageURL    *string   `db:"image_url" json:"image_url,omitempty"`
	SortOrder   int       `db:"sort_order" json:"sort_order"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
