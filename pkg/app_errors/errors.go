package apperrors

import "errors"

var (
	ErrEventNotFound           = errors.New("event not found")
	ErrOccurrenceNotFound      = errors.New("occurrence not found")
	ErrTicketTypeNotFound      = errors.New("ticket type not found")
	ErrReservationNotFound     = errors.New("reservation not found")
	ErrInvalidInput            = errors.New("invalid input")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrQuantityOutOfRange      = errors.New("quantity outside per-order bounds")
	ErrInsufficientRemaining   = errors.New("not enough units remaining")
	ErrSaleLocked              = errors.New("booking lock not acquired")
	ErrInternalServerError     = errors.New("internal server error")
)
