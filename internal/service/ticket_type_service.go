package service

import (
	"context"

	"ticket-availability/internal/model"
	"ticket-availability/internal/repository"

	"github.com/google/uuid"
)

// TicketTypeService is the admin editing workflow: it validates the
// configuration invariants at the edges so the availability core can assume
// validated input.
type TicketTypeService interface {
	List(ctx context.Context) ([]*model.TicketType, error)
	ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*model.TicketType, error)
	GetByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID) (*model.TicketType, error)
	Create(ctx context.Context, eventID uuid.UUID, ticketType *model.TicketType) (*model.TicketType, error)
	UpdateByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID, params model.UpdateTicketTypeParams) (*model.TicketType, error)
	DeleteByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID) error
}

type TicketTypeServiceImpl struct {
	repo      repository.TicketTypeRepository
	eventRepo repository.EventRepository
}

func NewTicketTypeService(repo repository.TicketTypeRepository, eventRepo repository.EventRepository) TicketTypeService {
	return &TicketTypeServiceImpl{repo: repo, eventRepo: eventRepo}
}

func (s *TicketTypeServiceImpl) List(ctx context.Context) ([]*model.TicketType, error) {
	return s.repo.List(ctx)
}

func (s *TicketTypeServiceImpl) ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*model.TicketType, error) {
	event, err := s.eventRepo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByEventID(ctx, event.ID)
}

func (s *TicketTypeServiceImpl) GetByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID) (*model.TicketType, error) {
	return s.repo.FindByTicketTypeID(ctx, ticketTypeID)
}

func (s *TicketTypeServiceImpl) Create(ctx context.Context, eventID uuid.UUID, ticketType *model.TicketType) (*model.TicketType, error) {
	event, err := s.eventRepo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	ticketType.EventID = event.ID
	if err := ticketType.Validate(); err != nil {
		return nil, err
	}

	ticketType.TicketTypeID = uuid.New()
	return s.repo.Create(ctx, ticketType)
}

func (s *TicketTypeServiceImpl) UpdateByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID, params model.UpdateTicketTypeParams) (*model.TicketType, error) {
	current, err := s.repo.FindByTicketTypeID(ctx, ticketTypeID)
	if err != nil {
		return nil, err
	}

	// validate the configuration as it would look after the update
	merged := *current
	applyTicketTypeParams(&merged, params)
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, current.ID, params)
}

func (s *TicketTypeServiceImpl) DeleteByTicketTypeID(ctx context.Context, ticketTypeID uuid.UUID) error {
	current, err := s.repo.FindByTicketTypeID(ctx, ticketTypeID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, current.ID)
}

func applyTicketTypeParams(t *model.TicketType, params model.UpdateTicketTypeParams) {
	if params.Name != nil {
		t.Name = *params.Name
	}
	if params.Description != nil {
		t.Description = params.Description
	}
	if params.Kind != nil {
		t.Kind = *params.Kind
	}
	if params.Price != nil {
		t.Price = *params.Price
	}
	if params.SaleStart != nil {
		t.SaleStart = *params.SaleStart
	}
	if params.SaleEnd != nil {
		t.SaleEnd = *params.SaleEnd
	}
	if params.MinPerOrder != nil {
		t.MinPerOrder = *params.MinPerOrder
	}
	if params.MaxPerOrder != nil {
		t.MaxPerOrder = *params.MaxPerOrder
	}
	if params.TotalCapacity != nil {
		t.TotalCapacity = *params.TotalCapacity
	}
}
