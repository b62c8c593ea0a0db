package service

import (
	"context"
	"time"

	"ticket-availability/internal/availability"
	"ticket-availability/internal/lock"
	"ticket-availability/internal/model"
	"ticket-availability/internal/queue"
	"ticket-availability/internal/repository"
	apperrors "ticket-availability/pkg/app_errors"
	"ticket-availability/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// BookingService owns the write side of the booking workflow. An
// availability snapshot alone cannot authorize a booking, so PlaceReservation
// and UpdateQuantity take the per-(ticket type, occurrence) mutex and
// re-run the evaluation inside the same transaction that writes the
// reservation. That closes the check-then-act race: no concurrent booking
// can slip between the aggregate read and the insert.
type BookingService interface {
	// PlaceReservation books quantity units. When the ticket is not
	// available the returned Availability carries the reason and the
	// reservation is nil; the error is reserved for failures.
	PlaceReservation(ctx context.Context, req model.CreateReservationRequest, now time.Time) (*model.Reservation, model.Availability, error)
	// UpdateQuantity changes a pending reservation's quantity, re-checking
	// capacity with the reservation's own prior booking excluded so it does
	// not count against itself.
	UpdateQuantity(ctx context.Context, reservationID uuid.UUID, quantity int, now time.Time) (*model.Reservation, model.Availability, error)
	ConfirmReservation(ctx context.Context, id int) error
	CancelReservation(ctx context.Context, id int) error
	// ExpireReservation cancels a pending reservation whose hold deadline
	// has passed. It reports true when the reservation is in a terminal
	// state afterwards, false when it is still pending and not yet due.
	ExpireReservation(ctx context.Context, id int, now time.Time) (bool, error)
	ListReservations(ctx context.Context) ([]*model.Reservation, error)
	GetReservationByID(ctx context.Context, id int) (*model.Reservation, error)
	GetReservationByUUID(ctx context.Context, reservationID uuid.UUID) (*model.Reservation, error)
	DeleteReservation(ctx context.Context, id int) error
}

type BookingServiceImpl struct {
	pool            *pgxpool.Pool
	reservationRepo repository.ReservationRepository
	ticketTypeRepo  repository.TicketTypeRepository
	occurrenceRepo  repository.OccurrenceRepository
	bookingMutex    lock.BookingMutex
	eventQueue      queue.ReservationQueue
	holdDuration    time.Duration
}

func NewBookingService(
	pool *pgxpool.Pool,
	reservationRepo repository.ReservationRepository,
	ticketTypeRepo repository.TicketTypeRepository,
	occurrenceRepo repository.OccurrenceRepository,
	bookingMutex lock.BookingMutex,
	eventQueue queue.ReservationQueue,
	holdDuration time.Duration,
) BookingService {
	return &BookingServiceImpl{
		pool:            pool,
		reservationRepo: reservationRepo,
		ticketTypeRepo:  ticketTypeRepo,
		occurrenceRepo:  occurrenceRepo,
		bookingMutex:    bookingMutex,
		eventQueue:      eventQueue,
		holdDuration:    holdDuration,
	}
}

func (s *BookingServiceImpl) PlaceReservation(ctx context.Context, req model.CreateReservationRequest, now time.Time) (*model.Reservation, model.Availability, error) {
	ticketType, err := s.ticketTypeRepo.FindByTicketTypeID(ctx, req.TicketTypeID)
	if err != nil {
		return nil, model.Availability{}, err
	}

	occ, err := s.occurrenceRepo.FindByOccurrenceID(ctx, req.OccurrenceID)
	if err != nil {
		return nil, model.Availability{}, err
	}

	if occ.EventID != ticketType.EventID {
		return nil, model.Availability{}, apperrors.ErrInvalidInput
	}

	if err := checkPerOrderBounds(ticketType, req.Quantity); err != nil {
		return nil, model.Availability{}, err
	}

	token, err := s.bookingMutex.Acquire(ctx, ticketType.ID, occ.ID)
	if err != nil {
		return nil, model.Availability{}, err
	}
	// release must run even when the request context is already gone
	defer s.releaseMutex(ticketType.ID, occ.ID, token)

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, model.Availability{}, err
	}
	defer tx.Rollback(ctx)

	avail, err := availability.Evaluate(ctx, ticketType, occ, now, s.txLookup(tx), nil)
	if err != nil {
		return nil, model.Availability{}, err
	}
	if !avail.Available {
		return nil, avail, nil
	}
	if !avail.Unbounded && req.Quantity > avail.Remaining {
		return nil, avail, apperrors.ErrInsufficientRemaining
	}

	reservation := &model.Reservation{
		ReservationID: uuid.New(),
		TicketTypeID:  ticketType.ID,
		OccurrenceID:  occ.ID,
		Quantity:      req.Quantity,
		TotalPrice:    totalPrice(ticketType, req.Quantity),
		Status:        model.ReservationStatusPending,
		ExpiresAt:     s.holdDeadline(ticketType, occ, now),
	}

	created, err := s.reservationRepo.Create(ctx, tx, reservation)
	if err != nil {
		return nil, model.Availability{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, model.Availability{}, err
	}

	s.publishEvent(queue.ReservationPlaced, created)

	return created, avail, nil
}

func (s *BookingServiceImpl) UpdateQuantity(ctx context.Context, reservationID uuid.UUID, quantity int, now time.Time) (*model.Reservation, model.Availability, error) {
	current, err := s.reservationRepo.FindByReservationID(ctx, reservationID)
	if err != nil {
		return nil, model.Availability{}, err
	}
	if current.Status != model.ReservationStatusPending {
		return nil, model.Availability{}, apperrors.ErrInvalidStatusTransition
	}

	ticketType, err := s.ticketTypeRepo.FindByID(ctx, current.TicketTypeID)
	if err != nil {
		return nil, model.Availability{}, err
	}

	occ, err := s.occurrenceRepo.FindByID(ctx, current.OccurrenceID)
	if err != nil {
		return nil, model.Availability{}, err
	}

	if err := checkPerOrderBounds(ticketType, quantity); err != nil {
		return nil, model.Availability{}, err
	}

	token, err := s.bookingMutex.Acquire(ctx, ticketType.ID, occ.ID)
	if err != nil {
		return nil, model.Availability{}, err
	}
	defer s.releaseMutex(ticketType.ID, occ.ID, token)

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, model.Availability{}, err
	}
	defer tx.Rollback(ctx)

	locked, err := s.reservationRepo.FindByIDForUpdate(ctx, tx, current.ID)
	if err != nil {
		return nil, model.Availability{}, err
	}
	if locked.Status != model.ReservationStatusPending {
		return nil, model.Availability{}, apperrors.ErrInvalidStatusTransition
	}

	// the reservation's own units must not count against itself
	excludeID := locked.ID
	avail, err := availability.Evaluate(ctx, ticketType, occ, now, s.txLookup(tx), &excludeID)
	if err != nil {
		return nil, model.Availability{}, err
	}
	if !avail.Available {
		return nil, avail, nil
	}
	if !avail.Unbounded && quantity > avail.Remaining {
		return nil, avail, apperrors.ErrInsufficientRemaining
	}

	updated, err := s.reservationRepo.UpdateQuantity(ctx, tx, locked.ID, quantity, totalPrice(ticketType, quantity))
	if err != nil {
		return nil, model.Availability{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, model.Availability{}, err
	}

	return updated, avail, nil
}

func (s *BookingServiceImpl) ConfirmReservation(ctx context.Context, id int) error {
	res, err := s.transitionStatus(ctx, id, model.ReservationStatusConfirmed)
	if err != nil {
		return err
	}
	s.publishEvent(queue.ReservationConfirmed, res)
	return nil
}

func (s *BookingServiceImpl) CancelReservation(ctx context.Context, id int) error {
	res, err := s.transitionStatus(ctx, id, model.ReservationStatusCanceled)
	if err != nil {
		return err
	}
	s.publishEvent(queue.ReservationCanceled, res)
	return nil
}

func (s *BookingServiceImpl) ExpireReservation(ctx context.Context, id int, now time.Time) (bool, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	res, err := s.reservationRepo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		if err == apperrors.ErrReservationNotFound {
			return true, nil
		}
		return false, err
	}

	if res.Status != model.ReservationStatusPending {
		return true, nil
	}
	if !res.HoldExpired(now) {
		return false, nil
	}

	canceled, err := s.reservationRepo.UpdateStatus(ctx, tx, id, model.ReservationStatusCanceled)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}

	logger.WithComponent("booking").Info("expired pending reservation",
		zap.Int("reservation_id", canceled.ID),
		zap.Time("expires_at", canceled.ExpiresAt))
	s.publishEvent(queue.ReservationCanceled, canceled)
	return true, nil
}

func (s *BookingServiceImpl) ListReservations(ctx context.Context) ([]*model.Reservation, error) {
	return s.reservationRepo.List(ctx)
}

func (s *BookingServiceImpl) GetReservationByID(ctx context.Context, id int) (*model.Reservation, error) {
	return s.reservationRepo.FindByID(ctx, id)
}

func (s *BookingServiceImpl) GetReservationByUUID(ctx context.Context, reservationID uuid.UUID) (*model.Reservation, error) {
	return s.reservationRepo.FindByReservationID(ctx, reservationID)
}

func (s *BookingServiceImpl) DeleteReservation(ctx context.Context, id int) error {
	return s.reservationRepo.Delete(ctx, id)
}

func (s *BookingServiceImpl) transitionStatus(ctx context.Context, id int, target model.ReservationStatus) (*model.Reservation, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	res, err := s.reservationRepo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !res.Status.CanTransitionTo(target) {
		return nil, apperrors.ErrInvalidStatusTransition
	}

	updated, err := s.reservationRepo.UpdateStatus(ctx, tx, id, target)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return updated, nil
}

// holdDeadline is the hold duration clamped to the sale-window close; a
// hold must never outlive the window it was granted in.
func (s *BookingServiceImpl) holdDeadline(t *model.TicketType, occ *model.Occurrence, now time.Time) time.Time {
	deadline := now.Add(s.holdDuration)
	saleEnd := availability.SaleEnd(t, occ.StartTime)
	if deadline.After(saleEnd) {
		return saleEnd
	}
	return deadline
}

func (s *BookingServiceImpl) txLookup(tx pgx.Tx) availability.BookedLookup {
	return func(ctx context.Context, ticketTypeID, occurrenceID int, excludeID *int) (int, error) {
		return s.reservationRepo.SumBookedQuantity(ctx, tx, ticketTypeID, occurrenceID, excludeID)
	}
}

// releaseMutex uses context.Background() so the lock is freed even when
// the request context was canceled mid-booking.
func (s *BookingServiceImpl) releaseMutex(ticketTypeID, occurrenceID int, token string) {
	if err := s.bookingMutex.Release(context.Background(), ticketTypeID, occurrenceID, token); err != nil {
		logger.WithComponent("booking").Error("failed to release booking lock",
			zap.Int("ticket_type_id", ticketTypeID),
			zap.Int("occurrence_id", occurrenceID),
			zap.Error(err))
	}
}

// publishEvent is best-effort: the reservation row is already committed.
// TODO: move publishing into an outbox table so a failed publish cannot
// strand a pending hold past its deadline.
func (s *BookingServiceImpl) publishEvent(eventType queue.ReservationEventType, res *model.Reservation) {
	event := &queue.ReservationEvent{Type: eventType, Reservation: res}
	if err := s.eventQueue.PublishEvent(context.Background(), event); err != nil {
		logger.WithComponent("booking").Error("failed to publish reservation event",
			zap.String("event_type", string(eventType)),
			zap.Int("reservation_id", res.ID),
			zap.Error(err))
	}
}

func checkPerOrderBounds(t *model.TicketType, quantity int) error {
	if quantity <= 0 {
		return apperrors.ErrQuantityOutOfRange
	}
	if t.MinPerOrder > 0 && quantity < t.MinPerOrder {
		return apperrors.ErrQuantityOutOfRange
	}
	if t.MaxPerOrder > 0 && quantity > t.MaxPerOrder {
		return apperrors.ErrQuantityOutOfRange
	}
	return nil
}

func totalPrice(t *model.TicketType, quantity int) float64 {
	if t.Kind == model.TicketKindFree {
		return 0
	}
	return t.Price * float64(quantity)
}
