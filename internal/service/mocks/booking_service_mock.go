package mocks

import (
	"context"
	"time"

	"ticket-availability/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type BookingServiceMock struct {
	mock.Mock
}

func NewBookingServiceMock() *BookingServiceMock {
	return &BookingServiceMock{}
}

func (m *BookingServiceMock) PlaceReservation(ctx context.Context, req model.CreateReservationRequest, now time.Time) (*model.Reservation, model.Availability, error) {
	args := m.Called(ctx, req, now)
	if args.Get(0) == nil {
		return nil, args.Get(1).(model.Availability), args.Error(2)
	}
	return args.Get(0).(*model.Reservation), args.Get(1).(model.Availability), args.Error(2)
}

func (m *BookingServiceMock) UpdateQuantity(ctx context.Context, reservationID uuid.UUID, quantity int, now time.Time) (*model.Reservation, model.Availability, error) {
	args := m.Called(ctx, reservationID, quantity, now)
	if args.Get(0) == nil {
		return nil, args.Get(1).(model.Availability), args.Error(2)
	}
	return args.Get(0).(*model.Reservation), args.Get(1).(model.Availability), args.Error(2)
}

func (m *BookingServiceMock) ConfirmReservation(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *BookingServiceMock) CancelReservation(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *BookingServiceMock) ExpireReservation(ctx context.Context, id int, now time.Time) (bool, error) {
	args := m.Called(ctx, id, now)
	return args.Bool(0), args.Error(1)
}

func (m *BookingServiceMock) ListReservations(ctx context.Context) ([]*model.Reservation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Reservation), args.Error(1)
}

func (m *BookingServiceMock) GetReservationByID(ctx context.Context, id int) (*model.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *BookingServiceMock) GetReservationByUUID(ctx context.Context, reservationID uuid.UUID) (*model.Reservation, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *BookingServiceMock) DeleteReservation(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
