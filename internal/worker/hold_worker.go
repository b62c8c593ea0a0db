package worker

import (
	"context"
	"time"

	"ticket-availability/internal/queue"
	"ticket-availability/internal/service"
)

// HoldWorker watches the reservation event stream and cancels pending
// reservations whose hold deadline has passed, so their units flow back
// into the booked aggregate. A placed event that is not yet due is nacked
// and comes back after the queue's redelivery delay.
type HoldWorker interface {
	Start(ctx context.Context) error
}

type HoldWorkerImpl struct {
	service service.BookingService
	queue   queue.ReservationQueue
	now     func() time.Time
}

func NewHoldWorker(service service.BookingService, queue queue.ReservationQueue) HoldWorker {
	return &HoldWorkerImpl{
		service: service,
		queue:   queue,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// NewHoldWorkerWithClock injects the clock, for tests.
func NewHoldWorkerWithClock(service service.BookingService, queue queue.ReservationQueue, now func() time.Time) HoldWorker {
	return &HoldWorkerImpl{
		service: service,
		queue:   queue,
		now:     now,
	}
}

func (w *HoldWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeEvents(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			w.handle(ctx, msg)
		}
	}()
	return nil
}

func (w *HoldWorkerImpl) handle(ctx context.Context, msg queue.Delivery) {
	event := msg.Data

	// only placed events carry a hold to track
	if event.Type != queue.ReservationPlaced || event.Reservation == nil {
		msg.Ack()
		return
	}

	now := w.now()
	if now.Before(event.Reservation.ExpiresAt) {
		msg.Nack(true)
		return
	}

	terminal, err := w.service.ExpireReservation(ctx, event.Reservation.ID, now)
	if err != nil {
		msg.Nack(true)
		return
	}
	if terminal {
		msg.Ack()
		return
	}
	msg.Nack(true)
}
