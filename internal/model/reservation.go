package model

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCanceled  ReservationStatus = "canceled"
)

func (s ReservationStatus) IsValid() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusConfirmed, ReservationStatusCanceled:
		return true
	}
	return false
}

// CanTransitionTo checks whether the status may move to target.
func (s ReservationStatus) CanTransitionTo(target ReservationStatus) bool {
	transitions := map[ReservationStatus][]ReservationStatus{
		ReservationStatusPending:   {ReservationStatusConfirmed, ReservationStatusCanceled},
		ReservationStatusConfirmed: {ReservationStatusCanceled},
		ReservationStatusCanceled:  {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

// Reservation is one booking of Quantity units of a ticket type for an
// occurrence. Canceled reservations do not count against capacity; pending
// ones hold their units until ExpiresAt.
type Reservation struct {
	ID            int               `json:"id" db:"id"`
	ReservationID uuid.UUID         `json:"reservation_id" db:"reservation_id"`
	TicketTypeID  int               `json:"ticket_type_id" db:"ticket_type_id"`
	OccurrenceID  int               `json:"occurrence_id" db:"occurrence_id"`
	Quantity      int               `json:"quantity" db:"quantity"`
	TotalPrice    float64           `json:"total_price" db:"total_price"`
	Status        ReservationStatus `json:"status" db:"status"`
	ExpiresAt     time.Time         `json:"expires_at" db:"expires_at"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" db:"updated_at"`
	DeletedAt     *time.Time        `json:"deleted_at,omitempty" db:"deleted_at"`
}

// IsDeleted reports whether the reservation has been soft-deleted.
func (r *Reservation) IsDeleted() bool {
	return r.DeletedAt != nil
}

// HoldExpired reports whether a pending reservation has outlived its hold.
func (r *Reservation) HoldExpired(now time.Time) bool {
	return r.Status == ReservationStatusPending && !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}

// CreateReservationRequest is the booking payload.
type CreateReservationRequest struct {
	TicketTypeID uuid.UUID `json:"ticket_type_id" binding:"required"`
	OccurrenceID uuid.UUID `json:"occurrence_id" binding:"required"`
	Quantity     int       `json:"quantity" binding:"required,min=1"`
}
