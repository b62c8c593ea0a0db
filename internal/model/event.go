package model

import (
	"time"

	"github.com/google/uuid"
)

// Event is the parent of occurrences and ticket types. It carries display
// metadata only; all scheduling lives on its occurrences.
type Event struct {
	ID          int       `json:"id" db:"id"`
	EventID     uuid.UUID `json:"event_id" db:"event_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	Venue       *string   `json:"venue,omitempty" db:"venue"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type UpdateEventParams struct {
	Name        *string
	Description *string
	Venue       *string
}
