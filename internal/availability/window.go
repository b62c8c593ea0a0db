// Package availability computes whether a ticket type is on sale for an
// occurrence and how many units remain. It is stateless and pure: the
// current time is always an explicit parameter and the only outside read is
// the booked-quantity lookup supplied by the caller.
package availability

import (
	"time"

	"ticket-availability/internal/model"
)

// ResolveBound resolves one sale-window edge to a concrete instant. An
// absolute bound is returned unchanged; a relative bound is the occurrence
// start minus its offset, all components treated as fixed-length units so
// the subtraction order never matters. A zero-offset relative bound
// resolves to the occurrence start exactly, which is legal (the window
// opens or closes right at the occurrence).
func ResolveBound(b model.WindowBound, occurrenceStart time.Time) time.Time {
	if b.Kind == model.BoundAbsolute {
		return b.At
	}
	return occurrenceStart.Add(-b.Offset())
}

// ResolveStart resolves the instant the sale window opens.
func ResolveStart(t *model.TicketType, occurrenceStart time.Time) time.Time {
	return ResolveBound(t.SaleStart, occurrenceStart)
}

// ResolveEnd resolves the instant the sale window closes.
func ResolveEnd(t *model.TicketType, occurrenceStart time.Time) time.Time {
	return ResolveBound(t.SaleEnd, occurrenceStart)
}
