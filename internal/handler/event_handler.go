package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/availability-api/internal/dto"
	"github.com/noah-isme/availability-api/internal/models"
	appErrors "github.com/noah-isme/availability-api/pkg/errors"
	"github.com/noah-isme/availability-api/pkg/response"
)

type eventService interface {
	Create(ctx context.Context, ownerID string, req dto.CreateEventRequest) (*models.Event, error)
	Get(ctx context.Context, id string) (*models.Event, error)
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, *models.Pagination, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// EventHandler manages availability events.
type EventHandler struct {
	service eventService
}

// NewEventHandler constructs the handler.
func NewEventHandler(service eventService) *EventHandler {
	return &EventHandler{service: service}
}

// List godoc
// @Summary List the caller's events
// @Tags Events
// @Produce json
// @Param type query string false "SPECIFIC_DATES or DAYS_OF_WEEK"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	events, pagination, err := h.service.List(c.Request.Context(), models.EventFilter{
		OwnerID:  userID,
		Type:     c.Query("type"),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, pagination)
}

// Get godoc
// @Summary Get an event
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Create godoc
// @Summary Create an event
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body dto.CreateEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid payload"))
		return
	}
	event, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Delete godoc
// @Summary Delete an event
// @Tags Events
// @Param id path string true "Event ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
