package queue

import (
	"context"
	"time"

	"ticket-availability/internal/model"
)

// ReservationEventType tags what happened to a reservation.
type ReservationEventType string

const (
	ReservationPlaced    ReservationEventType = "placed"
	ReservationConfirmed ReservationEventType = "confirmed"
	ReservationCanceled  ReservationEventType = "canceled"
)

// ReservationEvent is the queue payload: a lifecycle transition plus the
// reservation snapshot at the time it was published.
type ReservationEvent struct {
	Type        ReservationEventType `json:"type"`
	Reservation *model.Reservation   `json:"reservation"`
}

type Delivery struct {
	Data *ReservationEvent
	Ack  func()
	Nack func(requeue bool)
}

type ReservationQueue interface {
	// PublishEvent sends a reservation lifecycle event to the queue
	PublishEvent(ctx context.Context, event *ReservationEvent) error
	// SubscribeEvents subscribes to the reservation event queue
	SubscribeEvents(ctx context.Context) (<-chan Delivery, error)
}

// requeueDelay spaces out redeliveries of nacked events so a consumer that
// nacks a not-yet-due event does not spin against the queue.
const requeueDelay = 50 * time.Millisecond

type ReservationQueueImpl struct {
	// in-memory channel standing in for a real broker
	ch chan *ReservationEvent
}

func NewReservationQueue(bufferSize int) ReservationQueue {
	return &ReservationQueueImpl{
		ch: make(chan *ReservationEvent, bufferSize),
	}
}

func (q *ReservationQueueImpl) PublishEvent(ctx context.Context, event *ReservationEvent) error {
	q.ch <- event
	return nil
}

func (q *ReservationQueueImpl) SubscribeEvents(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-q.ch:
				if !ok {
					return
				}

				out <- Delivery{
					Data: event,
					Ack:  func() { /* nothing to do for the in-memory queue */ },
					Nack: func(requeue bool) {
						if !requeue {
							return
						}
						// requeue asynchronously after a delay, mirroring
						// the stream's min-idle redelivery; the send never
						// blocks the consumer even when the buffer is full
						go func() {
							time.Sleep(requeueDelay)
							q.ch <- event
						}()
					},
				}
			}
		}
	}()

	return out, nil
}
