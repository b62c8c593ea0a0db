package service_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ticket-availability/internal/model"
	"ticket-availability/internal/repository"
	"ticket-availability/internal/service"
	apperrors "ticket-availability/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingService_PlaceReservation(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	occurrenceStart := now.Add(7 * 24 * time.Hour)

	t.Run("books inside an open window", func(t *testing.T) {
		setupTest(t)
		fx := newSaleFixture(t, occurrenceStart, 10)
		svc := newBookingService(t, 15*time.Minute)

		reservation, avail, err := svc.PlaceReservation(ctx, model.CreateReservationRequest{
			TicketTypeID: fx.ticketTypeID,
			OccurrenceID: fx.occurrenceID,
			Quantity:     2,
		}, now)

		require.NoError(t, err)
		require.NotNil(t, reservation)
		assert.Equal(t, model.ReservationStatusPending, reservation.Status)
		assert.Equal(t, 2, reservation.Quantity)
		assert.Equal(t, 100.0, reservation.TotalPrice)
		assert.True(t, avail.Available)
		assert.Equal(t, 10, avail.Remaining)
		// the hold deadline sits at now plus the hold duration
		assert.WithinDuration(t, now.Add(15*time.Minute), reservation.ExpiresAt, time.Second)
	})

	t.Run("hold deadline is clamped to the sale end", func(t *testing.T) {
		setupTest(t)
		// occurrence starts in five minutes, so the window closes before a
		// fifteen-minute hold would
		soonStart := now.Add(5 * time.Minute)
		fx := newSaleFixture(t, soonStart, 10)
		svc := newBookingService(t, 15*time.Minute)

		reservation, _, err := svc.PlaceReservation(ctx, model.CreateReservationRequest{
			TicketTypeID: fx.ticketTypeID,
			OccurrenceID: fx.occurrenceID,
			Quantity:     1,
		}, now)

		require.NoError(t, err)
		require.NotNil(t, reservation)
		assert.WithinDuration(t, soonStart, reservation.ExpiresAt, time.Second)
	})

	t.Run("closed window yields no reservation", func(t *testing.T) {
		setupTest(t)
		fx := newSaleFixture(t, occurrenceStart, 10)
		svc := newBookingService(t, 15*time.Minute)

		reservation, avail, err := svc.PlaceReservation(ctx, model.CreateReservationRequest{
			TicketTypeID: fx.ticketTypeID,
			OccurrenceID: fx.occurrenceID,
			Quantity:     1,
		}, occurrenceStart) // exactly at sale end

		require.NoError(t, err)
		assert.Nil(t, reservation)
		assert.False(t, avail.Available)
		assert.Equal(t, model.ReasonSalesClosed, avail.Reason)
	})

	t.Run("quantity above the per-order maximum", func(t *testing.T) {
		setupTest(t)
		fx := newSaleFixture(t, occurrenceStart, 100)
		svc := newBookingService(t, 15*time.Minute)

		_, _, err := svc.PlaceReservation(ctx, model.CreateReservationRequest{
			TicketTypeID: fx.ticketTypeID,
			OccurrenceID: fx.occurrenceID,
			Quantity:     11,
		}, now)

		assert.ErrorIs(t, err, apperrors.ErrQuantityOutOfRange)
	})

	t.Run("quantity above the remaining units", func(t *testing.T) {
		setupTest(t)
		fx := newSaleFixture(t, occurrenceStart, 3)
		svc := newBookingService(t, 15*time.Minute)

		_, _, err := svc.PlaceReservation(ctx, model.CreateReservationRequest{
			TicketTypeID: fx.ticketTypeID,
			OccurrenceID: fx.occurrenceID,
			Quantity:     2,
		}, now)
		require.NoError(t, err)

		_, avail, err := svc.PlaceReservation(ctx, model.CreateReservationRequest{
			TicketTypeID: fx.ticketTypeID,
			OccurrenceID: fx.occurrenceID,
			Quantity:     2,
		}, now)

		assert.ErrorIs(t, err, apperrors.ErrInsufficientRemaining)
		assert.Equal(t, 1, avail.Remaining)
	})

	t.Run("unknown ticket type", func(t *testing.T) {
		setupTest(t)
		fx := newSaleFixture(t, occurrenceStart, 10)
		svc := newBookingService(t, 15*time.Minute)

		_, _, err := svc.PlaceReservation(ctx, model.CreateReservationRequest{
			TicketTypeID: uuid.New(),
			OccurrenceID: fx.occurrenceID,
			Quantity:     1,
		}, now)

		assert.ErrorIs(t, err, apperrors.ErrTicketTypeNotFound)
	})
}

// TestBookingService_NoOversell hammers one ticket type from many goroutines
// and checks that the booked total never exceeds the configured capacity.
func TestBookingService_NoOversell(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	occurrenceStart := now.Add(7 * 24 * time.Hour)
	const capacity = 10
	const attempts = 30

	setupTest(t)
	fx := newSaleFixture(t, occurrenceStart, capacity)
	svc := newBookingService(t, 15*time.Minute)

	var succeeded atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := model.CreateReservationRequest{
				TicketTypeID: fx.ticketTypeID,
				OccurrenceID: fx.occurrenceID,
				Quantity:     1,
			}
			// the booking lock turns contenders away, so retry until the
			// attempt gets a definitive answer
			for {
				reservation, avail, err := svc.PlaceReservation(ctx, req, now)
				if err == apperrors.ErrSaleLocked {
					time.Sleep(10 * time.Millisecond)
					continue
				}
				if err != nil {
					t.Errorf("unexpected booking error: %v", err)
					return
				}
				if reservation != nil {
					succeeded.Add(1)
					return
				}
				// sold out is the expected terminal answer for the rest
				assert.Equal(t, model.ReasonSoldOut, avail.Reason)
				return
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(capacity), succeeded.Load())

	// the persisted aggregate agrees
	repo := repository.NewReservationRepository(testDB)
	ticketType, err := repository.NewTicketTypeRepository(testDB).FindByTicketTypeID(ctx, fx.ticketTypeID)
	require.NoError(t, err)
	occ, err := repository.NewOccurrenceRepository(testDB).FindByOccurrenceID(ctx, fx.occurrenceID)
	require.NoError(t, err)

	booked, err := repo.SumBookedQuantity(ctx, testDB, ticketType.ID, occ.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, capacity, booked)
}

func TestBookingService_UpdateQuantity(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	occurrenceStart := now.Add(7 * 24 * time.Hour)

	place := func(t *testing.T, svc service.BookingService, fx saleFixture, quantity int) *model.Reservation {
		t.Helper()
		reservation, _, err := svc.PlaceReservation(ctx, model.CreateReservationRequest{
			TicketTypeID: fx.ticketTypeID,
			OccurrenceID: fx.occurrenceID,
			Quantity:     quantity,
		}, now)
		require.NoError(t, err)
		require.NotNil(t, reservation)
		return reservation
	}

	t.Run("grow within remaining capacity", func(t *testing.T) {
		setupTest(t)
		fx := newSaleFixture(t, occurrenceStart, 10)
		svc := newBookingService(t, 15*time.Minute)
		reservation := place(t, svc, fx, 2)

		updated, avail, err := svc.UpdateQuantity(ctx, reservation.ReservationID, 5, now)

		require.NoError(t, err)
		assert.Equal(t, 5, updated.Quantity)
		assert.Equal(t, 250.0, updated.TotalPrice)
		assert.True(t, avail.Available)
	})

	t.Run("own units do not count against the change", func(t *testing.T) {
		setupTest(t)
		fx := newSaleFixture(t, occurrenceStart, 10)
		svc := newBookingService(t, 15*time.Minute)
		reservation := place(t, svc, fx, 6)
		place(t, svc, fx, 2)

		// 8 of 10 booked; growing 6 to 8 only works because the
		// reservation's own 6 are excluded from the aggregate
		updated, _, err := svc.UpdateQuantity(ctx, reservation.ReservationID, 8, now)

		require.NoError(t, err)
		assert.Equal(t, 8, updated.Quantity)
	})

	t.Run("growth beyond what others left", func(t *testing.T) {
		setupTest(t)
		fx := newSaleFixture(t, occurrenceStart, 10)
		svc := newBookingService(t, 15*time.Minute)
		reservation := place(t, svc, fx, 2)
		place(t, svc, fx, 7)

		_, _, err := svc.UpdateQuantity(ctx, reservation.ReservationID, 4, now)

		assert.ErrorIs(t, err, apperrors.ErrInsufficientRemaining)
	})

	t.Run("only pending reservations can change", func(t *testing.T) {
		setupTest(t)
		fx := newSaleFixture(t, occurrenceStart, 10)
		svc := newBookingService(t, 15*time.Minute)
		reservation := place(t, svc, fx, 2)

		require.NoError(t, svc.ConfirmReservation(ctx, reservation.ID))

		_, _, err := svc.UpdateQuantity(ctx, reservation.ReservationID, 3, now)
		assert.ErrorIs(t, err, apperrors.ErrInvalidStatusTransition)
	})
}

func TestBookingService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	occurrenceStart := now.Add(7 * 24 * time.Hour)

	t.Run("confirm then cancel", func(t *testing.T) {
		setupTest(t)
		fx := newSaleFixture(t, occurrenceStart, 10)
		svc := newBookingService(t, 15*time.Minute)

		reservation, _, err := svc.PlaceReservation(ctx, model.CreateReservationRequest{
			TicketTypeID: fx.ticketTypeID,
			OccurrenceID: fx.occurrenceID,
			Quantity:     2,
		}, now)
		require.NoError(t, err)

		require.NoError(t, svc.ConfirmReservation(ctx, reservation.ID))
		require.NoError(t, svc.CancelReservation(ctx, reservation.ID))

		// canceled is terminal
		assert.ErrorIs(t, svc.ConfirmReservation(ctx, reservation.ID), apperrors.ErrInvalidStatusTransition)
	})

	t.Run("canceling frees the units", func(t *testing.T) {
		setupTest(t)
		fx := newSaleFixture(t, occurrenceStart, 2)
		svc := newBookingService(t, 15*time.Minute)

		first, _, err := svc.PlaceReservation(ctx, model.CreateReservationRequest{
			TicketTypeID: fx.ticketTypeID,
			OccurrenceID: fx.occurrenceID,
			Quantity:     2,
		}, now)
		require.NoError(t, err)

		_, avail, err := svc.PlaceReservation(ctx, model.CreateReservationRequest{
			TicketTypeID: fx.ticketTypeID,
			OccurrenceID: fx.occurrenceID,
			Quantity:     1,
		}, now)
		require.NoError(t, err)
		assert.Equal(t, model.ReasonSoldOut, avail.Reason)

		require.NoError(t, svc.CancelReservation(ctx, first.ID))

		second, _, err := svc.PlaceReservation(ctx, model.CreateReservationRequest{
			TicketTypeID: fx.ticketTypeID,
			OccurrenceID: fx.occurrenceID,
			Quantity:     1,
		}, now)
		require.NoError(t, err)
		require.NotNil(t, second)
	})
}

func TestBookingService_ExpireReservation(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	occurrenceStart := now.Add(7 * 24 * time.Hour)

	setupTest(t)
	fx := newSaleFixture(t, occurrenceStart, 10)
	svc := newBookingService(t, 15*time.Minute)

	reservation, _, err := svc.PlaceReservation(ctx, model.CreateReservationRequest{
		TicketTypeID: fx.ticketTypeID,
		OccurrenceID: fx.occurrenceID,
		Quantity:     2,
	}, now)
	require.NoError(t, err)

	t.Run("not yet due", func(t *testing.T) {
		terminal, err := svc.ExpireReservation(ctx, reservation.ID, now.Add(5*time.Minute))
		require.NoError(t, err)
		assert.False(t, terminal)

		current, err := svc.GetReservationByID(ctx, reservation.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ReservationStatusPending, current.Status)
	})

	t.Run("past the deadline", func(t *testing.T) {
		terminal, err := svc.ExpireReservation(ctx, reservation.ID, now.Add(20*time.Minute))
		require.NoError(t, err)
		assert.True(t, terminal)

		current, err := svc.GetReservationByID(ctx, reservation.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ReservationStatusCanceled, current.Status)
	})

	t.Run("already terminal stays terminal", func(t *testing.T) {
		terminal, err := svc.ExpireReservation(ctx, reservation.ID, now.Add(30*time.Minute))
		require.NoError(t, err)
		assert.True(t, terminal)
	})

	t.Run("missing reservation counts as settled", func(t *testing.T) {
		terminal, err := svc.ExpireReservation(ctx, 99999, now)
		require.NoError(t, err)
		assert.True(t, terminal)
	})
}
