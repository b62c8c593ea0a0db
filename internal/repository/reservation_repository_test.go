package repository_test

import (
	"context"
	"testing"
	"time"

	"ticket-availability/internal/model"
	"ticket-availability/internal/repository"
	apperrors "ticket-availability/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bookingFixture provisions the rows a reservation needs to reference.
type bookingFixture struct {
	ticketTypeID int
	occurrenceID int
}

func newBookingFixture(t *testing.T, capacity int) bookingFixture {
	t.Helper()
	eventID := createTestEvent(t, "Summer Festival")
	occurrenceID := createTestOccurrence(t, eventID, time.Now().UTC().Add(7*24*time.Hour))
	ticketTypeID := createTestTicketType(t, eventID, capacity)
	return bookingFixture{ticketTypeID: ticketTypeID, occurrenceID: occurrenceID}
}

func TestReservationRepository_SumBookedQuantity(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewReservationRepository(testDB)

	t.Run("no reservations sums to zero", func(t *testing.T) {
		setupTestWithTruncate(t)
		fx := newBookingFixture(t, 100)

		booked, err := repo.SumBookedQuantity(ctx, testDB, fx.ticketTypeID, fx.occurrenceID, nil)

		require.NoError(t, err)
		assert.Equal(t, 0, booked)
	})

	t.Run("pending and confirmed both count", func(t *testing.T) {
		setupTestWithTruncate(t)
		fx := newBookingFixture(t, 100)
		createTestReservation(t, fx.ticketTypeID, fx.occurrenceID, 2, model.ReservationStatusPending)
		createTestReservation(t, fx.ticketTypeID, fx.occurrenceID, 3, model.ReservationStatusConfirmed)

		booked, err := repo.SumBookedQuantity(ctx, testDB, fx.ticketTypeID, fx.occurrenceID, nil)

		require.NoError(t, err)
		assert.Equal(t, 5, booked)
	})

	t.Run("canceled reservations do not count", func(t *testing.T) {
		setupTestWithTruncate(t)
		fx := newBookingFixture(t, 100)
		createTestReservation(t, fx.ticketTypeID, fx.occurrenceID, 2, model.ReservationStatusPending)
		createTestReservation(t, fx.ticketTypeID, fx.occurrenceID, 4, model.ReservationStatusCanceled)

		booked, err := repo.SumBookedQuantity(ctx, testDB, fx.ticketTypeID, fx.occurrenceID, nil)

		require.NoError(t, err)
		assert.Equal(t, 2, booked)
	})

	t.Run("soft-deleted reservations do not count", func(t *testing.T) {
		setupTestWithTruncate(t)
		fx := newBookingFixture(t, 100)
		createTestReservation(t, fx.ticketTypeID, fx.occurrenceID, 2, model.ReservationStatusPending)
		deleted := createTestReservation(t, fx.ticketTypeID, fx.occurrenceID, 4, model.ReservationStatusConfirmed)
		softDeleteReservation(t, deleted)

		booked, err := repo.SumBookedQuantity(ctx, testDB, fx.ticketTypeID, fx.occurrenceID, nil)

		require.NoError(t, err)
		assert.Equal(t, 2, booked)
	})

	t.Run("other ticket types and occurrences stay out of the sum", func(t *testing.T) {
		setupTestWithTruncate(t)
		fx := newBookingFixture(t, 100)
		other := newBookingFixture(t, 100)
		createTestReservation(t, fx.ticketTypeID, fx.occurrenceID, 2, model.ReservationStatusPending)
		createTestReservation(t, other.ticketTypeID, other.occurrenceID, 9, model.ReservationStatusPending)

		booked, err := repo.SumBookedQuantity(ctx, testDB, fx.ticketTypeID, fx.occurrenceID, nil)

		require.NoError(t, err)
		assert.Equal(t, 2, booked)
	})

	t.Run("exclusion removes exactly the named reservation", func(t *testing.T) {
		setupTestWithTruncate(t)
		fx := newBookingFixture(t, 100)
		excluded := createTestReservation(t, fx.ticketTypeID, fx.occurrenceID, 2, model.ReservationStatusPending)
		createTestReservation(t, fx.ticketTypeID, fx.occurrenceID, 3, model.ReservationStatusConfirmed)

		booked, err := repo.SumBookedQuantity(ctx, testDB, fx.ticketTypeID, fx.occurrenceID, &excluded)

		require.NoError(t, err)
		assert.Equal(t, 3, booked)
	})

	t.Run("runs inside a transaction", func(t *testing.T) {
		setupTestWithTruncate(t)
		fx := newBookingFixture(t, 100)
		createTestReservation(t, fx.ticketTypeID, fx.occurrenceID, 5, model.ReservationStatusPending)

		tx := beginTestTx(t)
		booked, err := repo.SumBookedQuantity(ctx, tx, fx.ticketTypeID, fx.occurrenceID, nil)

		require.NoError(t, err)
		assert.Equal(t, 5, booked)
	})
}

func TestReservationRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewReservationRepository(testDB)

	setupTestWithTruncate(t)
	fx := newBookingFixture(t, 100)

	expiresAt := time.Now().UTC().Add(15 * time.Minute).Truncate(time.Millisecond)
	reservation := &model.Reservation{
		ReservationID: uuid.New(),
		TicketTypeID:  fx.ticketTypeID,
		OccurrenceID:  fx.occurrenceID,
		Quantity:      2,
		TotalPrice:    100,
		Status:        model.ReservationStatusPending,
		ExpiresAt:     expiresAt,
	}

	tx := beginTestTx(t)
	created, err := repo.Create(ctx, tx, reservation)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	assert.NotZero(t, created.ID)
	assert.Equal(t, reservation.ReservationID, created.ReservationID)
	assert.Equal(t, 2, created.Quantity)
	assert.Equal(t, model.ReservationStatusPending, created.Status)
	assert.WithinDuration(t, expiresAt, created.ExpiresAt, time.Second)

	found, err := repo.FindByReservationID(ctx, reservation.ReservationID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestReservationRepository_StatusAndQuantityUpdates(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewReservationRepository(testDB)

	t.Run("update status", func(t *testing.T) {
		setupTestWithTruncate(t)
		fx := newBookingFixture(t, 100)
		id := createTestReservation(t, fx.ticketTypeID, fx.occurrenceID, 2, model.ReservationStatusPending)

		tx := beginTestTx(t)
		locked, err := repo.FindByIDForUpdate(ctx, tx, id)
		require.NoError(t, err)
		assert.Equal(t, model.ReservationStatusPending, locked.Status)

		updated, err := repo.UpdateStatus(ctx, tx, id, model.ReservationStatusConfirmed)
		require.NoError(t, err)
		require.NoError(t, tx.Commit(ctx))

		assert.Equal(t, model.ReservationStatusConfirmed, updated.Status)
	})

	t.Run("update quantity and price together", func(t *testing.T) {
		setupTestWithTruncate(t)
		fx := newBookingFixture(t, 100)
		id := createTestReservation(t, fx.ticketTypeID, fx.occurrenceID, 2, model.ReservationStatusPending)

		tx := beginTestTx(t)
		updated, err := repo.UpdateQuantity(ctx, tx, id, 5, 250)
		require.NoError(t, err)
		require.NoError(t, tx.Commit(ctx))

		assert.Equal(t, 5, updated.Quantity)
		assert.Equal(t, 250.0, updated.TotalPrice)
	})

	t.Run("unknown id", func(t *testing.T) {
		setupTestWithTruncate(t)

		tx := beginTestTx(t)
		_, err := repo.FindByIDForUpdate(ctx, tx, 99999)
		assert.ErrorIs(t, err, apperrors.ErrReservationNotFound)
	})
}

func TestReservationRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewReservationRepository(testDB)

	setupTestWithTruncate(t)
	fx := newBookingFixture(t, 100)
	id := createTestReservation(t, fx.ticketTypeID, fx.occurrenceID, 2, model.ReservationStatusPending)

	require.NoError(t, repo.Delete(ctx, id))

	_, err := repo.FindByID(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrReservationNotFound)

	// double delete reports not found
	assert.ErrorIs(t, repo.Delete(ctx, id), apperrors.ErrReservationNotFound)
}
