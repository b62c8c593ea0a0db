package model

import (
	"time"

	apperrors "ticket-availability/pkg/app_errors"
)

// BoundKind discriminates the two ways a sale-window edge can be defined.
type BoundKind string

const (
	// BoundAbsolute pins the edge to a fixed instant.
	BoundAbsolute BoundKind = "absolute"
	// BoundRelative counts backwards from the occurrence start time.
	BoundRelative BoundKind = "relative"
)

func (k BoundKind) IsValid() bool {
	return k == BoundAbsolute || k == BoundRelative
}

// WindowBound is one edge of a sale window. Exactly one definition applies
// depending on Kind: At for absolute bounds, the Days/Hours/Minutes offset
// (counted backwards from the occurrence start) for relative ones.
type WindowBound struct {
	Kind    BoundKind `json:"kind"`
	At      time.Time `json:"at,omitzero"`
	Days    int       `json:"days,omitempty"`
	Hours   int       `json:"hours,omitempty"`
	Minutes int       `json:"minutes,omitempty"`
}

func AbsoluteBound(at time.Time) WindowBound {
	return WindowBound{Kind: BoundAbsolute, At: at}
}

func RelativeBound(days, hours, minutes int) WindowBound {
	return WindowBound{Kind: BoundRelative, Days: days, Hours: hours, Minutes: minutes}
}

// Offset returns the duration the bound sits before the occurrence start.
// Only meaningful for relative bounds. Days are fixed 24h units, not
// calendar days.
func (b WindowBound) Offset() time.Duration {
	return time.Duration(b.Days)*24*time.Hour +
		time.Duration(b.Hours)*time.Hour +
		time.Duration(b.Minutes)*time.Minute
}

// IsZeroOffset reports whether a relative bound has no offset at all, i.e.
// it resolves to the occurrence start exactly.
func (b WindowBound) IsZeroOffset() bool {
	return b.Days == 0 && b.Hours == 0 && b.Minutes == 0
}

// Validate enforces the edit-time invariants: an absolute bound needs its
// instant; a relative start bound needs a nonzero offset component when
// requireOffset is set. A zero-offset relative end bound is legal (sale
// closes exactly at occurrence start).
func (b WindowBound) Validate(requireOffset bool) error {
	switch b.Kind {
	case BoundAbsolute:
		if b.At.IsZero() {
			return apperrors.ErrInvalidInput
		}
	case BoundRelative:
		if requireOffset && b.IsZeroOffset() {
			return apperrors.ErrInvalidInput
		}
	default:
		return apperrors.ErrInvalidInput
	}
	return nil
}
