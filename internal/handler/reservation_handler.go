package handler

import (
	"context"
	"net/http"
	"time"

	"ticket-availability/internal/model"
	"ticket-availability/internal/service"
	apperrors "ticket-availability/pkg/app_errors"
	"ticket-availability/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReservationHandler struct {
	service service.BookingService
}

func NewReservationHandler(service service.BookingService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("reservations", h.List)
		router.GET("reservations/:uuid", h.GetByUUID)
		router.POST("reservations", h.Create)
		router.PATCH("reservations/:uuid/quantity", h.UpdateQuantity)
		router.PUT("reservations/:uuid/confirm", h.Confirm)
		router.PUT("reservations/:uuid/cancel", h.Cancel)
		router.DELETE("reservations/:uuid", h.Delete)
	}
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

func (h *ReservationHandler) List(c *gin.Context) {
	reservations, err := h.service.ListReservations(c)
	if err != nil {
		h.handleError(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, reservations)
}

func (h *ReservationHandler) GetByUUID(c *gin.Context) {
	reservationID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	reservation, err := h.service.GetReservationByUUID(c, reservationID)
	if err != nil {
		h.handleError(c, err, "GetByUUID")
		return
	}
	c.JSON(http.StatusOK, reservation)
}

func (h *ReservationHandler) Create(c *gin.Context) {
	var req model.CreateReservationRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	reservation, avail, err := h.service.PlaceReservation(c, req, time.Now().UTC())
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}
	if !avail.Available {
		// not an error: the window or capacity said no
		c.JSON(http.StatusConflict, gin.H{"availability": avail})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"reservation": reservation, "availability": avail})
}

func (h *ReservationHandler) UpdateQuantity(c *gin.Context) {
	reservationID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	var req UpdateQuantityRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	reservation, avail, err := h.service.UpdateQuantity(c, reservationID, req.Quantity, time.Now().UTC())
	if err != nil {
		h.handleError(c, err, "UpdateQuantity")
		return
	}
	if !avail.Available {
		c.JSON(http.StatusConflict, gin.H{"availability": avail})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": reservation, "availability": avail})
}

func (h *ReservationHandler) Confirm(c *gin.Context) {
	h.transition(c, "Confirm", h.service.ConfirmReservation)
}

func (h *ReservationHandler) Cancel(c *gin.Context) {
	h.transition(c, "Cancel", h.service.CancelReservation)
}

func (h *ReservationHandler) transition(c *gin.Context, operation string, fn func(ctx context.Context, id int) error) {
	reservationID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	reservation, err := h.service.GetReservationByUUID(c, reservationID)
	if err != nil {
		h.handleError(c, err, operation)
		return
	}
	if err := fn(c, reservation.ID); err != nil {
		h.handleError(c, err, operation)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ReservationHandler) Delete(c *gin.Context) {
	reservationID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	reservation, err := h.service.GetReservationByUUID(c, reservationID)
	if err != nil {
		h.handleError(c, err, "Delete")
		return
	}
	if err := h.service.DeleteReservation(c, reservation.ID); err != nil {
		h.handleError(c, err, "Delete")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ReservationHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case err == apperrors.ErrTicketTypeNotFound:
		log.Warn("Ticket type not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Ticket type not found"})
	case err == apperrors.ErrOccurrenceNotFound:
		log.Warn("Occurrence not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Occurrence not found"})
	case err == apperrors.ErrReservationNotFound:
		log.Warn("Reservation not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
	case err == apperrors.ErrQuantityOutOfRange:
		log.Warn("Quantity out of range")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity outside the per-order bounds"})
	case err == apperrors.ErrInsufficientRemaining:
		log.Warn("Not enough units remaining")
		c.JSON(http.StatusConflict, gin.H{"error": "Not enough units remaining"})
	case err == apperrors.ErrSaleLocked:
		log.Warn("Booking lock busy")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Booking in progress, please retry"})
	case err == apperrors.ErrInvalidStatusTransition:
		log.Warn("Invalid status transition")
		c.JSON(http.StatusConflict, gin.H{"error": "Invalid status transition"})
	case err == apperrors.ErrInvalidInput:
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error, please try again"})
	}
}
