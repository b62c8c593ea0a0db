package handler

import (
	"net/http"
	"time"

	"ticket-availability/internal/model"
	"ticket-availability/internal/service"
	apperrors "ticket-availability/pkg/app_errors"
	"ticket-availability/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TicketTypeHandler struct {
	service service.TicketTypeService
}

func NewTicketTypeHandler(service service.TicketTypeService) *TicketTypeHandler {
	return &TicketTypeHandler{service: service}
}

func (h *TicketTypeHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("ticket-types", h.List)
		router.GET("ticket-types/:uuid", h.GetByTicketTypeID)
		router.GET("events/:uuid/ticket-types", h.ListByEvent)
		router.POST("events/:uuid/ticket-types", h.Create)
		router.PUT("ticket-types/:uuid", h.UpdateByTicketTypeID)
		router.DELETE("ticket-types/:uuid", h.DeleteByTicketTypeID)
	}
}

// WindowBoundRequest is the wire shape of one sale-window edge.
type WindowBoundRequest struct {
	Kind    string     `json:"kind" binding:"required,oneof=absolute relative"`
	At      *time.Time `json:"at"`
	Days    int        `json:"days"`
	Hours   int        `json:"hours"`
	Minutes int        `json:"minutes"`
}

func (r WindowBoundRequest) toBound() model.WindowBound {
	b := model.WindowBound{
		Kind:    model.BoundKind(r.Kind),
		Days:    r.Days,
		Hours:   r.Hours,
		Minutes: r.Minutes,
	}
	if r.At != nil {
		b.At = *r.At
	}
	return b
}

type CreateTicketTypeRequest struct {
	Name          string             `json:"name" binding:"required"`
	Description   *string            `json:"description"`
	Kind          string             `json:"kind" binding:"required,oneof=free priced"`
	Price         float64            `json:"price"`
	SaleStart     WindowBoundRequest `json:"sale_start" binding:"required"`
	SaleEnd       WindowBoundRequest `json:"sale_end" binding:"required"`
	MinPerOrder   int                `json:"min_per_order"`
	MaxPerOrder   int                `json:"max_per_order"`
	TotalCapacity int                `json:"total_capacity"`
}

type UpdateTicketTypeRequest struct {
	Name          *string             `json:"name"`
	Description   *string             `json:"description"`
	Kind          *string             `json:"kind"`
	Price         *float64            `json:"price"`
	SaleStart     *WindowBoundRequest `json:"sale_start"`
	SaleEnd       *WindowBoundRequest `json:"sale_end"`
	MinPerOrder   *int                `json:"min_per_order"`
	MaxPerOrder   *int                `json:"max_per_order"`
	TotalCapacity *int                `json:"total_capacity"`
}

func (h *TicketTypeHandler) List(c *gin.Context) {
	ticketTypes, err := h.service.List(c)
	if err != nil {
		h.handleError(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, ticketTypes)
}

func (h *TicketTypeHandler) ListByEvent(c *gin.Context) {
	eventID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	ticketTypes, err := h.service.ListByEventID(c, eventID)
	if err != nil {
		h.handleError(c, err, "ListByEvent")
		return
	}
	c.JSON(http.StatusOK, ticketTypes)
}

func (h *TicketTypeHandler) GetByTicketTypeID(c *gin.Context) {
	ticketTypeID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	ticketType, err := h.service.GetByTicketTypeID(c, ticketTypeID)
	if err != nil {
		h.handleError(c, err, "GetByTicketTypeID")
		return
	}
	c.JSON(http.StatusOK, ticketType)
}

func (h *TicketTypeHandler) Create(c *gin.Context) {
	eventID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	var req CreateTicketTypeRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	ticketType := &model.TicketType{
		Name:          req.Name,
		Description:   req.Description,
		Kind:          model.TicketKind(req.Kind),
		Price:         req.Price,
		SaleStart:     req.SaleStart.toBound(),
		SaleEnd:       req.SaleEnd.toBound(),
		MinPerOrder:   req.MinPerOrder,
		MaxPerOrder:   req.MaxPerOrder,
		TotalCapacity: req.TotalCapacity,
	}
	created, err := h.service.Create(c, eventID, ticketType)
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *TicketTypeHandler) UpdateByTicketTypeID(c *gin.Context) {
	ticketTypeID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	var req UpdateTicketTypeRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	params := model.UpdateTicketTypeParams{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		MinPerOrder:   req.MinPerOrder,
		MaxPerOrder:   req.MaxPerOrder,
		TotalCapacity: req.TotalCapacity,
	}
	if req.Kind != nil {
		kind := model.TicketKind(*req.Kind)
		params.Kind = &kind
	}
	if req.SaleStart != nil {
		bound := req.SaleStart.toBound()
		params.SaleStart = &bound
	}
	if req.SaleEnd != nil {
		bound := req.SaleEnd.toBound()
		params.SaleEnd = &bound
	}

	updated, err := h.service.UpdateByTicketTypeID(c, ticketTypeID, params)
	if err != nil {
		h.handleError(c, err, "UpdateByTicketTypeID")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *TicketTypeHandler) DeleteByTicketTypeID(c *gin.Context) {
	ticketTypeID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	err := h.service.DeleteByTicketTypeID(c, ticketTypeID)
	if err != nil {
		h.handleError(c, err, "DeleteByTicketTypeID")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TicketTypeHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case err == apperrors.ErrTicketTypeNotFound:
		log.Warn("Ticket type not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Ticket type not found"})
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
