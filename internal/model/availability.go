package model

import "time"

// UnavailableReason says why a ticket type cannot be bought right now.
type UnavailableReason string

const (
	ReasonNotYetOnSale UnavailableReason = "not_yet_on_sale"
	ReasonSalesClosed  UnavailableReason = "sales_closed"
	ReasonSoldOut      UnavailableReason = "sold_out"
)

// Availability is a point-in-time snapshot of whether a ticket type can be
// bought for an occurrence, and how many units remain. It is only a
// snapshot: a caller that uses it to authorize a new booking must serialize
// the aggregate read and the reservation insert externally, or a concurrent
// booking can claim the same units.
type Availability struct {
	Available bool `json:"available"`
	// Unbounded is set when no total capacity is configured; Remaining is
	// meaningless in that case.
	Unbounded bool `json:"unbounded,omitempty"`
	Remaining int  `json:"remaining,omitempty"`
	// Reason and AvailableAt are set only when Available is false;
	// AvailableAt only for ReasonNotYetOnSale.
	Reason      UnavailableReason `json:"reason,omitempty"`
	AvailableAt time.Time         `json:"available_at,omitzero"`
}

func AvailableUnbounded() Availability {
	return Availability{Available: true, Unbounded: true}
}

func AvailableWithRemaining(remaining int) Availability {
	return Availability{Available: true, Remaining: remaining}
}

func NotYetOnSale(availableAt time.Time) Availability {
	return Availability{Reason: ReasonNotYetOnSale, AvailableAt: availableAt}
}

func SalesClosed() Availability {
	return Availability{Reason: ReasonSalesClosed}
}

func SoldOut() Availability {
	return Availability{Reason: ReasonSoldOut}
}
