package handler

import (
	"net/http"
	"time"

	"ticket-availability/internal/service"
	apperrors "ticket-availability/pkg/app_errors"
	"ticket-availability/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OccurrenceHandler struct {
	service service.OccurrenceService
}

func NewOccurrenceHandler(service service.OccurrenceService) *OccurrenceHandler {
	return &OccurrenceHandler{service: service}
}

func (h *OccurrenceHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("events/:uuid/occurrences", h.ListByEvent)
		router.POST("events/:uuid/occurrences", h.Create)
		router.GET("occurrences/:uuid", h.GetByOccurrenceID)
		router.PUT("occurrences/:uuid", h.UpdateStartTime)
	}
}

type CreateOccurrenceRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
}

type UpdateOccurrenceRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
}

func (h *OccurrenceHandler) ListByEvent(c *gin.Context) {
	eventID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	occurrences, err := h.service.ListByEventID(c, eventID)
	if err != nil {
		h.handleError(c, err, "ListByEvent")
		return
	}
	c.JSON(http.StatusOK, occurrences)
}

func (h *OccurrenceHandler) Create(c *gin.Context) {
	eventID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	var req CreateOccurrenceRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	created, err := h.service.Create(c, eventID, req.StartTime)
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *OccurrenceHandler) GetByOccurrenceID(c *gin.Context) {
	occurrenceID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	occ, err := h.service.GetByOccurrenceID(c, occurrenceID)
	if err != nil {
		h.handleError(c, err, "GetByOccurrenceID")
		return
	}
	c.JSON(http.StatusOK, occ)
}

func (h *OccurrenceHandler) UpdateStartTime(c *gin.Context) {
	occurrenceID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	var req UpdateOccurrenceRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	updated, err := h.service.UpdateStartTime(c, occurrenceID, req.StartTime)
	if err != nil {
		h.handleError(c, err, "UpdateStartTime")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *OccurrenceHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case err == apperrors.ErrOccurrenceNotFound:
		log.Warn("Occurrence not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Occurrence not found"})
	case err == apperrors.ErrEventNotFound:
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case err == apperrors.ErrInvalidInput:
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
