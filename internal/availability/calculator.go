package availability

import (
	"context"
	"time"

	"ticket-availability/internal/model"
)

// BookedLookup returns the sum of quantities across all non-canceled
// reservations for the ticket type and occurrence, excluding the
// reservation identified by excludeID when non-nil. A lookup failure is
// fatal for the evaluation: it is returned unchanged, never retried, and
// never turned into a sold-out result.
type BookedLookup func(ctx context.Context, ticketTypeID, occurrenceID int, excludeID *int) (int, error)

// Evaluate decides whether the ticket type can be bought at now, in order:
// window-start check, window-end check, then capacity. The sale is open on
// the open interval between the resolved bounds; at exactly the start or
// end instant it is closed. The lookup is only consulted once both window
// checks pass and a finite capacity is configured.
//
// The result is a snapshot. Two callers may both observe remaining units
// and book them concurrently; anyone authorizing a booking from this result
// must cover the lookup and the subsequent insert with external
// serialization (a transaction, or a per-(ticket type, occurrence) mutex).
func Evaluate(
	ctx context.Context,
	t *model.TicketType,
	occ *model.Occurrence,
	now time.Time,
	lookup BookedLookup,
	excludeID *int,
) (model.Availability, error) {
	saleStart := ResolveStart(t, occ.StartTime)
	if !now.After(saleStart) {
		return model.NotYetOnSale(saleStart), nil
	}

	saleEnd := ResolveEnd(t, occ.StartTime)
	if !now.Before(saleEnd) {
		return model.SalesClosed(), nil
	}

	if t.Unlimited() {
		return model.AvailableUnbounded(), nil
	}

	booked, err := lookup(ctx, t.ID, occ.ID, excludeID)
	if err != nil {
		return model.Availability{}, err
	}

	if booked < t.TotalCapacity {
		return model.AvailableWithRemaining(t.TotalCapacity - booked), nil
	}
	return model.SoldOut(), nil
}

// SaleEnd exposes the resolved closing instant alone, for display and for
// hold-expiry logic that needs it without a full evaluation.
func SaleEnd(t *model.TicketType, occurrenceStart time.Time) time.Time {
	return ResolveEnd(t, occurrenceStart)
}
