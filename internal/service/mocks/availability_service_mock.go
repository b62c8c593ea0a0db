package mocks

import (
	"context"
	"time"

	"ticket-availability/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type AvailabilityServiceMock struct {
	mock.Mock
}

func NewAvailabilityServiceMock() *AvailabilityServiceMock {
	return &AvailabilityServiceMock{}
}

func (m *AvailabilityServiceMock) EvaluateAvailability(ctx context.Context, ticketTypeID, occurrenceID uuid.UUID, now time.Time, excludeReservationID *uuid.UUID) (model.Availability, error) {
	args := m.Called(ctx, ticketTypeID, occurrenceID, now, excludeReservationID)
	return args.Get(0).(model.Availability), args.Error(1)
}

func (m *AvailabilityServiceMock) SaleEndInstant(ctx context.Context, ticketTypeID, occurrenceID uuid.UUID) (time.Time, error) {
	args := m.Called(ctx, ticketTypeID, occurrenceID)
	return args.Get(0).(time.Time), args.Error(1)
}
