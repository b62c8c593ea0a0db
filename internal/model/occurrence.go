package model

import (
	"time"

	"github.com/google/uuid"
)

// Occurrence is one scheduled instance of an event. StartTime anchors the
// relative sale-window bounds of every ticket type sold for it.
type Occurrence struct {
	ID           int       `json:"id" db:"id"`
	OccurrenceID uuid.UUID `json:"occurrence_id" db:"occurrence_id"`
	EventID      int       `json:"event_id" db:"event_id"`
	StartTime    time.Time `json:"start_time" db:"start_time"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
