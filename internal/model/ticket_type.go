package model

import (
	"time"

	apperrors "ticket-availability/pkg/app_errors"

	"github.com/google/uuid"
)

// TicketKind gates whether a price is required. It has no effect on the
// availability math.
type TicketKind string

const (
	TicketKindFree   TicketKind = "free"
	TicketKindPriced TicketKind = "priced"
)

func (k TicketKind) IsValid() bool {
	return k == TicketKindFree || k == TicketKindPriced
}

// TicketType is the purchasable ticket configuration attached to an event.
// SaleStart/SaleEnd define the sale window per occurrence; TotalCapacity is
// the aggregate cap across all reservations for one occurrence (0 means
// unlimited), distinct from the per-reservation MaxPerOrder bound.
type TicketType struct {
	ID            int         `json:"id" db:"id"`
	TicketTypeID  uuid.UUID   `json:"ticket_type_id" db:"ticket_type_id"`
	EventID       int         `json:"event_id" db:"event_id"`
	Name          string      `json:"name" db:"name"`
	Description   *string     `json:"description,omitempty" db:"description"`
	Kind          TicketKind  `json:"kind" db:"kind"`
	Price         float64     `json:"price" db:"price"`
	SaleStart     WindowBound `json:"sale_start" db:"-"`
	SaleEnd       WindowBound `json:"sale_end" db:"-"`
	MinPerOrder   int         `json:"min_per_order" db:"min_per_order"`
	MaxPerOrder   int         `json:"max_per_order" db:"max_per_order"`
	TotalCapacity int         `json:"total_capacity" db:"total_capacity"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
	DeletedAt     *time.Time  `json:"deleted_at,omitempty" db:"deleted_at"`
}

type UpdateTicketTypeParams struct {
	Name          *string
	Description   *string
	Kind          *TicketKind
	Price         *float64
	SaleStart     *WindowBound
	SaleEnd       *WindowBound
	MinPerOrder   *int
	MaxPerOrder   *int
	TotalCapacity *int
}

// IsDeleted reports whether the ticket type has been soft-deleted.
func (t *TicketType) IsDeleted() bool {
	return t.DeletedAt != nil
}

// Unlimited reports whether no aggregate cap is configured.
func (t *TicketType) Unlimited() bool {
	return t.TotalCapacity <= 0
}

// Validate enforces the edit-time invariants. The availability core assumes
// a validated configuration and never re-checks these.
func (t *TicketType) Validate() error {
	if t.Name == "" {
		return apperrors.ErrInvalidInput
	}
	if !t.Kind.IsValid() {
		return apperrors.ErrInvalidInput
	}
	if t.Kind == TicketKindPriced && t.Price <= 0 {
		return apperrors.ErrInvalidInput
	}
	// A relative start bound must carry a nonzero offset; a zero-offset
	// relative end bound is legal.
	if err := t.SaleStart.Validate(true); err != nil {
		return err
	}
	if err := t.SaleEnd.Validate(false); err != nil {
		return err
	}
	if t.MinPerOrder < 0 || t.MaxPerOrder < 0 || t.TotalCapacity < 0 {
		return apperrors.ErrInvalidInput
	}
	if t.MinPerOrder > 0 && t.MaxPerOrder > 0 && t.MinPerOrder > t.MaxPerOrder {
		return apperrors.ErrInvalidInput
	}
	return nil
}
