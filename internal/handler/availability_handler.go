package handler

import (
	"net/http"
	"time"

	"ticket-availability/internal/service"
	apperrors "ticket-availability/pkg/app_errors"
	"ticket-availability/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AvailabilityHandler struct {
	service service.AvailabilityService
}

func NewAvailabilityHandler(service service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

func (h *AvailabilityHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("ticket-types/:uuid/occurrences/:occ_uuid/availability", h.GetAvailability)
		router.GET("ticket-types/:uuid/occurrences/:occ_uuid/sale-end", h.GetSaleEnd)
	}
}

func (h *AvailabilityHandler) GetAvailability(c *gin.Context) {
	ticketTypeID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	occurrenceID, ok := ParseUUIDParam(c, "occ_uuid")
	if !ok {
		return
	}

	var exclude *uuid.UUID
	if raw := c.Query("exclude_reservation"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid exclude_reservation"})
			return
		}
		exclude = &id
	}

	avail, err := h.service.EvaluateAvailability(c, ticketTypeID, occurrenceID, time.Now().UTC(), exclude)
	if err != nil {
		h.handleError(c, err, "GetAvailability")
		return
	}
	c.JSON(http.StatusOK, avail)
}

func (h *AvailabilityHandler) GetSaleEnd(c *gin.Context) {
	ticketTypeID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	occurrenceID, ok := ParseUUIDParam(c, "occ_uuid")
	if !ok {
		return
	}

	saleEnd, err := h.service.SaleEndInstant(c, ticketTypeID, occurrenceID)
	if err != nil {
		h.handleError(c, err, "GetSaleEnd")
		return
	}
	c.JSON(http.StatusOK, gin.H{"sale_end": saleEnd})
}

func (h *AvailabilityHandler) handleError(c *gin.Context, err error, operation string) {
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
	default:
		// a failed lookup must surface as retryable, never as sold out
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error, please try again"})
	}
}
