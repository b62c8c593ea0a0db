package service

import (
	"context"
	"time"

	"ticket-availability/internal/availability"
	"ticket-availability/internal/model"
	"ticket-availability/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AvailabilityService answers the two read-only questions callers have
// about a ticket type and an occurrence: can it be bought at now, and when
// does its sale window close. Results are point-in-time snapshots; the
// booking service owns the serialization needed to act on them.
type AvailabilityService interface {
	EvaluateAvailability(ctx context.Context, ticketTypeID, occurrenceID uuid.UUID, now time.Time, excludeReservationID *uuid.UUID) (model.Availability, error)
	SaleEndInstant(ctx context.Context, ticketTypeID, occurrenceID uuid.UUID) (time.Time, error)
}

type AvailabilityServiceImpl struct {
	pool            *pgxpool.Pool
	ticketTypeRepo  repository.TicketTypeRepository
	occurrenceRepo  repository.OccurrenceRepository
	reservationRepo repository.ReservationRepository
}

func NewAvailabilityService(
	pool *pgxpool.Pool,
	ticketTypeRepo repository.TicketTypeRepository,
	occurrenceRepo repository.OccurrenceRepository,
	reservationRepo repository.ReservationRepository,
) AvailabilityService {
	return &AvailabilityServiceImpl{
		pool:            pool,
		ticketTypeRepo:  ticketTypeRepo,
		occurrenceRepo:  occurrenceRepo,
		reservationRepo: reservationRepo,
	}
}

func (s *AvailabilityServiceImpl) EvaluateAvailability(
	ctx context.Context,
	ticketTypeID, occurrenceID uuid.UUID,
	now time.Time,
	excludeReservationID *uuid.UUID,
) (model.Availability, error) {
	ticketType, err := s.ticketTypeRepo.FindByTicketTypeID(ctx, ticketTypeID)
	if err != nil {
		return model.Availability{}, err
	}

	occ, err := s.occurrenceRepo.FindByOccurrenceID(ctx, occurrenceID)
	if err != nil {
		return model.Availability{}, err
	}

	var excludeID *int
	if excludeReservationID != nil {
		res, err := s.reservationRepo.FindByReservationID(ctx, *excludeReservationID)
		if err != nil {
			return model.Availability{}, err
		}
		excludeID = &res.ID
	}

	return availability.Evaluate(ctx, ticketType, occ, now, s.bookedLookup(), excludeID)
}

func (s *AvailabilityServiceImpl) SaleEndInstant(ctx context.Context, ticketTypeID, occurrenceID uuid.UUID) (time.Time, error) {
	ticketType, err := s.ticketTypeRepo.FindByTicketTypeID(ctx, ticketTypeID)
	if err != nil {
		return time.Time{}, err
	}

	occ, err := s.occurrenceRepo.FindByOccurrenceID(ctx, occurrenceID)
	if err != nil {
		return time.Time{}, err
	}

	return availability.SaleEnd(ticketType, occ.StartTime), nil
}

// bookedLookup runs the aggregate against the pool directly; this is the
// snapshot path, not the serialized booking path.
func (s *AvailabilityServiceImpl) bookedLookup() availability.BookedLookup {
	return func(ctx context.Context, ticketTypeID, occurrenceID int, excludeID *int) (int, error) {
		return s.reservationRepo.SumBookedQuantity(ctx, s.pool, ticketTypeID, occurrenceID, excludeID)
	}
}
