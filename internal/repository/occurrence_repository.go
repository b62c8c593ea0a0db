package repository

import (
	"context"
	"time"

	"ticket-availability/internal/model"
	apperrors "ticket-availability/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OccurrenceRepository interface {
	Create(ctx context.Context, occ *model.Occurrence) (*model.Occurrence, error)
	ListByEventID(ctx context.Context, eventID int) ([]*model.Occurrence, error)
	FindByID(ctx context.Context, id int) (*model.Occurrence, error)
	FindByOccurrenceID(ctx context.Context, occurrenceID uuid.UUID) (*model.Occurrence, error)
	UpdateStartTime(ctx context.Context, id int, startTime time.Time) (*model.Occurrence, error)
}

type OccurrenceRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewOccurrenceRepository(pool *pgxpool.Pool) OccurrenceRepository {
	return &OccurrenceRepositoryImpl{
		pool: pool,
	}
}

func (r *OccurrenceRepositoryImpl) Create(ctx context.Context, occ *model.Occurrence) (*model.Occurrence, error) {
	query := `
		INSERT INTO occurrences (occurrence_id, event_id, start_time)
		VALUES ($1, $2, $3)
		RETURNING id, occurrence_id, event_id, start_time, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		occ.OccurrenceID, occ.EventID, occ.StartTime,
	).Scan(
		&occ.ID,
		&occ.OccurrenceID,
		&occ.EventID,
		&occ.StartTime,
		&occ.CreatedAt,
		&occ.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return occ, nil
}

func (r *OccurrenceRepositoryImpl) ListByEventID(ctx context.Context, eventID int) ([]*model.Occurrence, error) {
	query := `
		SELECT id, occurrence_id, event_id, start_time, created_at, updated_at
		FROM occurrences
		WHERE event_id = $1
		ORDER BY start_time ASC
	`
	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	occurrences := make([]*model.Occurrence, 0)
	for rows.Next() {
		var occ model.Occurrence
		err := rows.Scan(
			&occ.ID,
			&occ.OccurrenceID,
			&occ.EventID,
			&occ.StartTime,
			&occ.CreatedAt,
			&occ.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		occurrences = append(occurrences, &occ)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return occurrences, nil
}

func (r *OccurrenceRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Occurrence, error) {
	query := `
		SELECT id, occurrence_id, event_id, start_time, created_at, updated_at
		FROM occurrences
		WHERE id = $1
	`

	var occ model.Occurrence
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&occ.ID,
		&occ.OccurrenceID,
		&occ.EventID,
		&occ.StartTime,
		&occ.CreatedAt,
		&occ.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrOccurrenceNotFound
		}
		return nil, err
	}

	return &occ, nil
}

func (r *OccurrenceRepositoryImpl) FindByOccurrenceID(ctx context.Context, occurrenceID uuid.UUID) (*model.Occurrence, error) {
	query := `
		SELECT id, occurrence_id, event_id, start_time, created_at, updated_at
		FROM occurrences
		WHERE occurrence_id = $1
	`

	var occ model.Occurrence
	err := r.pool.QueryRow(ctx, query, occurrenceID).Scan(
		&occ.ID,
		&occ.OccurrenceID,
		&occ.EventID,
		&occ.StartTime,
		&occ.CreatedAt,
		&occ.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrOccurrenceNotFound
		}
		return nil, err
	}

	return &occ, nil
}

func (r *OccurrenceRepositoryImpl) UpdateStartTime(ctx context.Context, id int, startTime time.Time) (*model.Occurrence, error) {
	query := `
		UPDATE occurrences
		SET start_time = $1, updated_at = $2
		WHERE id = $3
		RETURNING id, occurrence_id, event_id, start_time, created_at, updated_at
	`

	var occ model.Occurrence
	err := r.pool.QueryRow(ctx, query, startTime, time.Now().UTC(), id).Scan(
		&occ.ID,
		&occ.OccurrenceID,
		&occ.EventID,
		&occ.StartTime,
		&occ.CreatedAt,
		&occ.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrOccurrenceNotFound
		}
		return nil, err
	}

	return &occ, nil
}
