package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/availability-api/internal/dto"
	"github.com/noah-isme/availability-api/internal/models"
	appErrors "github.com/noah-isme/availability-api/pkg/errors"
	"github.com/noah-isme/availability-api/pkg/response"
)

type calendarSourceService interface {
	Create(ctx context.Context, userID string, req dto.CreateCalendarSourceRequest) (*models.CalendarSource, error)
	List(ctx context.Context, userID string) ([]models.CalendarSource, error)
	Delete(ctx context.Context, id, userID string) error
}

// CalendarSourceHandler manages the caller's calendar feed subscriptions.
type CalendarSourceHandler struct {
	service calendarSourceService
}

// NewCalendarSourceHandler constructs the handler.
func NewCalendarSourceHandler(service calendarSourceService) *CalendarSourceHandler {
	return &CalendarSourceHandler{service: service}
}

// List godoc
// @Summary List calendar sources
// @Tags CalendarSources
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /calendar-sources [get]
func (h *CalendarSourceHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sources, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sources, nil)
}

// Create godoc
// @Summary Subscribe to an ICS feed
// @Tags CalendarSources
// @Accept json
// @Produce json
// @Param payload body dto.CreateCalendarSourceRequest true "Feed"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calendar-sources [post]
func (h *CalendarSourceHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.CreateCalendarSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid payload"))
		return
	}
	source, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, source)
}

// Delete godoc
// @Summary Unsubscribe from an ICS feed
// @Tags CalendarSources
// @Param id path string true "Source ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /calendar-sources/{id} [delete]
func (h *CalendarSourceHandler) Delete(c *gin.Context) {
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
