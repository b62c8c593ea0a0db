package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ticket-availability/internal/model"
	apperrors "ticket-availability/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketTypeRepository interface {
	Create(ctx context.Context, t *model.TicketType) (*model.TicketType, error)
	List(ctx context.Context) ([]*model.TicketType, error)
	ListByEventID(ctx context.Context, eventID int) ([]*model.TicketType, error)
	FindByID(ctx context.Context, id int) (*model.TicketType, error)
	FindByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID) (*model.TicketType, error)
	Update(ctx context.Context, id int, params model.UpdateTicketTypeParams) (*model.TicketType, error)
	Delete(ctx context.Context, id int) error
}

type TicketTypeRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketTypeRepository(pool *pgxpool.Pool) TicketTypeRepository {
	return &TicketTypeRepositoryImpl{
		pool: pool,
	}
}

// The two window bounds are stored flattened: a kind column plus the
// absolute instant (nullable) and the three offset components per bound.
const ticketTypeColumns = `id, ticket_type_id, event_id, name, description, kind, price,
		sale_start_kind, sale_start_at, sale_start_days, sale_start_hours, sale_start_minutes,
		sale_end_kind, sale_end_at, sale_end_days, sale_end_hours, sale_end_minutes,
		min_per_order, max_per_order, total_capacity, created_at, updated_at, deleted_at`

func scanTicketType(row pgx.Row) (*model.TicketType, error) {
	var t model.TicketType
	var startAt, endAt *time.Time

	err := row.Scan(
		&t.ID,
		&t.TicketTypeID,
		&t.EventID,
		&t.Name,
		&t.Description,
		&t.Kind,
		&t.Price,
		&t.SaleStart.Kind,
		&startAt,
		&t.SaleStart.Days,
		&t.SaleStart.Hours,
		&t.SaleStart.Minutes,
		&t.SaleEnd.Kind,
		&endAt,
		&t.SaleEnd.Days,
		&t.SaleEnd.Hours,
		&t.SaleEnd.Minutes,
		&t.MinPerOrder,
		&t.MaxPerOrder,
		&t.TotalCapacity,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	if startAt != nil {
		t.SaleStart.At = *startAt
	}
	if endAt != nil {
		t.SaleEnd.At = *endAt
	}
	return &t, nil
}

// nullableAt keeps the absolute-instant column NULL for relative bounds.
func nullableAt(b model.WindowBound) *time.Time {
	if b.Kind != model.BoundAbsolute || b.At.IsZero() {
		return nil
	}
	at := b.At
	return &at
}

func (r *TicketTypeRepositoryImpl) Create(ctx context.Context, t *model.TicketType) (*model.TicketType, error) {
	query := fmt.Sprintf(`
		INSERT INTO ticket_types (
			ticket_type_id, event_id, name, description, kind, price,
			sale_start_kind, sale_start_at, sale_start_days, sale_start_hours, sale_start_minutes,
			sale_end_kind, sale_end_at, sale_end_days, sale_end_hours, sale_end_minutes,
			min_per_order, max_per_order, total_capacity
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING %s
	`, ticketTypeColumns)

	row := r.pool.QueryRow(ctx, query,
		t.TicketTypeID, t.EventID, t.Name, t.Description, t.Kind, t.Price,
		t.SaleStart.Kind, nullableAt(t.SaleStart), t.SaleStart.Days, t.SaleStart.Hours, t.SaleStart.Minutes,
		t.SaleEnd.Kind, nullableAt(t.SaleEnd), t.SaleEnd.Days, t.SaleEnd.Hours, t.SaleEnd.Minutes,
		t.MinPerOrder, t.MaxPerOrder, t.TotalCapacity,
	)

	created, err := scanTicketType(row)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *TicketTypeRepositoryImpl) List(ctx context.Context) ([]*model.TicketType, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM ticket_types
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`, ticketTypeColumns)

	return r.queryMany(ctx, query)
}

func (r *TicketTypeRepositoryImpl) ListByEventID(ctx context.Context, eventID int) ([]*model.TicketType, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM ticket_types
		WHERE event_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`, ticketTypeColumns)

	return r.queryMany(ctx, query, eventID)
}

func (r *TicketTypeRepositoryImpl) queryMany(ctx context.Context, query string, args ...interface{}) ([]*model.TicketType, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ticketTypes := make([]*model.TicketType, 0)
	for rows.Next() {
		t, err := scanTicketType(rows)
		if err != nil {
			return nil, err
		}
		ticketTypes = append(ticketTypes, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ticketTypes, nil
}

func (r *TicketTypeRepositoryImpl) FindByID(ctx context.Context, id int) (*model.TicketType, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM ticket_types
		WHERE id = $1 AND deleted_at IS NULL
	`, ticketTypeColumns)

	t, err := scanTicketType(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketTypeNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *TicketTypeRepositoryImpl) FindByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID) (*model.TicketType, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM ticket_types
		WHERE ticket_type_id = $1 AND deleted_at IS NULL
	`, ticketTypeColumns)

	t, err := scanTicketType(r.pool.QueryRow(ctx, query, ticketTypeID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketTypeNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *TicketTypeRepositoryImpl) Update(ctx context.Context, id int, params model.UpdateTicketTypeParams) (*model.TicketType, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if params.Name != nil {
		addSet("name", *params.Name)
	}
	if params.Description != nil {
		addSet("description", *params.Description)
	}
	if params.Kind != nil {
		addSet("kind", *params.Kind)
	}
	if params.Price != nil {
		addSet("price", *params.Price)
	}
	if params.SaleStart != nil {
		addSet("sale_start_kind", params.SaleStart.Kind)
		addSet("sale_start_at", nullableAt(*params.SaleStart))
		addSet("sale_start_days", params.SaleStart.Days)
		addSet("sale_start_hours", params.SaleStart.Hours)
		addSet("sale_start_minutes", params.SaleStart.Minutes)
	}
	if params.SaleEnd != nil {
		addSet("sale_end_kind", params.SaleEnd.Kind)
		addSet("sale_end_at", nullableAt(*params.SaleEnd))
		addSet("sale_end_days", params.SaleEnd.Days)
		addSet("sale_end_hours", params.SaleEnd.Hours)
		addSet("sale_end_minutes", params.SaleEnd.Minutes)
	}
	if params.MinPerOrder != nil {
		addSet("min_per_order", *params.MinPerOrder)
	}
	if params.MaxPerOrder != nil {
		addSet("max_per_order", *params.MaxPerOrder)
	}
	if params.TotalCapacity != nil {
		addSet("total_capacity", *params.TotalCapacity)
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	addSet("updated_at", time.Now().UTC())

	// add id
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE ticket_types
		SET %s
		WHERE id = $%d AND deleted_at IS NULL
		RETURNING %s
	`, strings.Join(sets, ", "), argPos, ticketTypeColumns)

	t, err := scanTicketType(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketTypeNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *TicketTypeRepositoryImpl) Delete(ctx context.Context, id int) error {
	query := `
		UPDATE ticket_types
		SET deleted_at = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
	`
	now := time.Now().UTC()
	result, err := r.pool.Exec(ctx, query, now, now, id)
	if err != nil {
		return err
	}

	// check if ticket type exists and not already deleted
	if result.RowsAffected() == 0 {
		return apperrors.ErrTicketTypeNotFound
	}

	return nil
}
