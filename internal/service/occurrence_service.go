package service

import (
	"context"
	"time"

	"ticket-availability/internal/model"
	"ticket-availability/internal/repository"
	apperrors "ticket-availability/pkg/app_errors"

	"github.com/google/uuid"
)

type OccurrenceService interface {
	ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*model.Occurrence, error)
	GetByOccurrenceID(ctx context.Context, occurrenceID uuid.UUID) (*model.Occurrence, error)
	Create(ctx context.Context, eventID uuid.UUID, startTime time.Time) (*model.Occurrence, error)
	UpdateStartTime(ctx context.Context, occurrenceID uuid.UUID, startTime time.Time) (*model.Occurrence, error)
}

type OccurrenceServiceImpl struct {
	repo      repository.OccurrenceRepository
	eventRepo repository.EventRepository
}

func NewOccurrenceService(repo repository.OccurrenceRepository, eventRepo repository.EventRepository) OccurrenceService {
	return &OccurrenceServiceImpl{repo: repo, eventRepo: eventRepo}
}

func (s *OccurrenceServiceImpl) ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*model.Occurrence, error) {
	event, err := s.eventRepo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByEventID(ctx, event.ID)
}

func (s *OccurrenceServiceImpl) GetByOccurrenceID(ctx context.Context, occurrenceID uuid.UUID) (*model.Occurrence, error) {
	return s.repo.FindByOccurrenceID(ctx, occurrenceID)
}

func (s *OccurrenceServiceImpl) Create(ctx context.Context, eventID uuid.UUID, startTime time.Time) (*model.Occurrence, error) {
	if startTime.IsZero() {
		return nil, apperrors.ErrInvalidInput
	}

	event, err := s.eventRepo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	occ := &model.Occurrence{
		OccurrenceID: uuid.New(),
		EventID:      event.ID,
		StartTime:    startTime,
	}
	return s.repo.Create(ctx, occ)
}

func (s *OccurrenceServiceImpl) UpdateStartTime(ctx context.Context, occurrenceID uuid.UUID, startTime time.Time) (*model.Occurrence, error) {
	if startTime.IsZero() {
		return nil, apperrors.ErrInvalidInput
	}

	occ, err := s.repo.FindByOccurrenceID(ctx, occurrenceID)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateStartTime(ctx, occ.ID, startTime)
}
