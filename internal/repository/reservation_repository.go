package repository

import (
	"context"
	"fmt"
	"time"

	"ticket-availability/internal/model"
	apperrors "ticket-availability/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx satisfied by both *pgxpool.Pool and pgx.Tx,
// so the booked-quantity aggregate can run either standalone or inside the
// booking transaction that serializes check-then-act.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ReservationRepository interface {
	List(ctx context.Context) ([]*model.Reservation, error)
	ListByTicketAndOccurrence(ctx context.Context, ticketTypeID, occurrenceID int) ([]*model.Reservation, error)
	FindByID(ctx context.Context, id int) (*model.Reservation, error)
	FindByReservationID(ctx context.Context, reservationID uuid.UUID) (*model.Reservation, error)
	Delete(ctx context.Context, id int) error

	// SumBookedQuantity aggregates quantities of all non-canceled,
	// non-deleted reservations for the ticket type and occurrence,
	// excluding the reservation identified by excludeID when non-nil.
	SumBookedQuantity(ctx context.Context, q Querier, ticketTypeID, occurrenceID int, excludeID *int) (int, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, r *model.Reservation) (*model.Reservation, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int) (*model.Reservation, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.ReservationStatus) (*model.Reservation, error)
	UpdateQuantity(ctx context.Context, tx pgx.Tx, id int, quantity int, totalPrice float64) (*model.Reservation, error)
}

type ReservationRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) ReservationRepository {
	return &ReservationRepositoryImpl{
		pool: pool,
	}
}

const reservationColumns = `id, reservation_id, ticket_type_id, occurrence_id, quantity,
		total_price, status, expires_at, created_at, updated_at, deleted_at`

func scanReservation(row pgx.Row) (*model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(
		&res.ID,
		&res.ReservationID,
		&res.TicketTypeID,
		&res.OccurrenceID,
		&res.Quantity,
		&res.TotalPrice,
		&res.Status,
		&res.ExpiresAt,
		&res.CreatedAt,
		&res.UpdatedAt,
		&res.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ReservationRepositoryImpl) SumBookedQuantity(ctx context.Context, q Querier, ticketTypeID, occurrenceID int, excludeID *int) (int, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM reservations
		WHERE ticket_type_id = $1
		  AND occurrence_id = $2
		  AND status != $3
		  AND deleted_at IS NULL
	`
	args := []interface{}{ticketTypeID, occurrenceID, model.ReservationStatusCanceled}

	if excludeID != nil {
		query += ` AND id != $4`
		args = append(args, *excludeID)
	}

	var booked int
	err := q.QueryRow(ctx, query, args...).Scan(&booked)
	if err != nil {
		return 0, err
	}

	return booked, nil
}

func (r *ReservationRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, res *model.Reservation) (*model.Reservation, error) {
	query := fmt.Sprintf(`
		INSERT INTO reservations (
			reservation_id, ticket_type_id, occurrence_id, quantity, total_price, status, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s
	`, reservationColumns)

	created, err := scanReservation(tx.QueryRow(ctx, query,
		res.ReservationID, res.TicketTypeID, res.OccurrenceID,
		res.Quantity, res.TotalPrice, res.Status, res.ExpiresAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	return created, nil
}

func (r *ReservationRepositoryImpl) List(ctx context.Context) ([]*model.Reservation, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM reservations
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`, reservationColumns)

	return r.queryMany(ctx, query)
}

func (r *ReservationRepositoryImpl) ListByTicketAndOccurrence(ctx context.Context, ticketTypeID, occurrenceID int) ([]*model.Reservation, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM reservations
		WHERE ticket_type_id = $1 AND occurrence_id = $2 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`, reservationColumns)

	return r.queryMany(ctx, query, ticketTypeID, occurrenceID)
}

func (r *ReservationRepositoryImpl) queryMany(ctx context.Context, query string, args ...interface{}) ([]*model.Reservation, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []*model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *ReservationRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Reservation, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM reservations
		WHERE id = $1 AND deleted_at IS NULL
	`, reservationColumns)

	res, err := scanReservation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

func (r *ReservationRepositoryImpl) FindByReservationID(ctx context.Context, reservationID uuid.UUID) (*model.Reservation, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM reservations
		WHERE reservation_id = $1 AND deleted_at IS NULL
	`, reservationColumns)

	res, err := scanReservation(r.pool.QueryRow(ctx, query, reservationID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

func (r *ReservationRepositoryImpl) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int) (*model.Reservation, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM reservations
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE
	`, reservationColumns)

	res, err := scanReservation(tx.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

func (r *ReservationRepositoryImpl) UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.ReservationStatus) (*model.Reservation, error) {
	query := fmt.Sprintf(`
		UPDATE reservations
		SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING %s
	`, reservationColumns)

	res, err := scanReservation(tx.QueryRow(ctx, query, status, time.Now().UTC(), id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to update reservation status: %w", err)
	}

	return res, nil
}

func (r *ReservationRepositoryImpl) UpdateQuantity(ctx context.Context, tx pgx.Tx, id int, quantity int, totalPrice float64) (*model.Reservation, error) {
	query := fmt.Sprintf(`
		UPDATE reservations
		SET quantity = $1, total_price = $2, updated_at = $3
		WHERE id = $4
		RETURNING %s
	`, reservationColumns)

	res, err := scanReservation(tx.QueryRow(ctx, query, quantity, totalPrice, time.Now().UTC(), id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to update reservation quantity: %w", err)
	}

	return res, nil
}

func (r *ReservationRepositoryImpl) Delete(ctx context.Context, id int) error {
	query := `
		UPDATE reservations
		SET deleted_at = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
	`
	now := time.Now().UTC()
	result, err := r.pool.Exec(ctx, query, now, now, id)
	if err != nil {
		return err
	}

	// check if reservation exists and not already deleted
	if result.RowsAffected() == 0 {
		return apperrors.ErrReservationNotFound
	}

	return nil
}
