package lock

import (
	"context"
	"fmt"
	"time"

	apperrors "ticket-availability/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// BookingMutex serializes the check-then-act booking sequence per
// (ticket type, occurrence) pair: the aggregate read of booked units and
// the reservation insert must both happen under the same lock, otherwise
// two concurrent bookings can claim the same remaining units.
type BookingMutex interface {
	// Acquire takes the lock and returns a release token. Returns
	// ErrSaleLocked when another booking currently holds it.
	Acquire(ctx context.Context, ticketTypeID, occurrenceID int) (string, error)
	// Release frees the lock, but only if token still owns it (a lock that
	// expired and was re-acquired by someone else must not be released).
	Release(ctx context.Context, ticketTypeID, occurrenceID int, token string) error
}

type RedisBookingMutex struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisBookingMutex(client *redis.Client, ttl time.Duration) BookingMutex {
	return &RedisBookingMutex{
		client: client,
		ttl:    ttl,
	}
}

func (m *RedisBookingMutex) key(ticketTypeID, occurrenceID int) string {
	return fmt.Sprintf("booking:%d:%d:lock", ticketTypeID, occurrenceID)
}

func (m *RedisBookingMutex) Acquire(ctx context.Context, ticketTypeID, occurrenceID int) (string, error) {
	token := uuid.New().String()

	ok, err := m.client.SetNX(ctx, m.key(ticketTypeID, occurrenceID), token, m.ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperrors.ErrSaleLocked
	}

	return token, nil
}

func (m *RedisBookingMutex) Release(ctx context.Context, ticketTypeID, occurrenceID int, token string) error {
	// compare-and-delete so an expired lock held by another booking is
	// never released from here
	script := `
		if redis.call('GET', KEYS[1]) == ARGV[1] then
			return redis.call('DEL', KEYS[1])
		end
		return 0
	`

	_, err := m.client.Eval(ctx, script, []string{m.key(ticketTypeID, occurrenceID)}, token).Result()
	if err != nil {
		return err
	}

	return nil
}
