package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/availability-api/internal/dto"
	"github.com/noah-isme/availability-api/internal/middleware"
	"github.com/noah-isme/availability-api/internal/service"
	appErrors "github.com/noah-isme/availability-api/pkg/errors"
	"github.com/noah-isme/availability-api/pkg/response"
)

const maxWeekOffset = 520

type overlayService interface {
	GetEventOverlay(ctx context.Context, q dto.OverlayQuery) (*dto.OverlayResponse, bool, error)
	Compute(ctx context.Context, req dto.ComputeOverlayRequest) (*dto.OverlayResponse, error)
}

type overlayExporter interface {
	Export(ctx context.Context, q dto.OverlayExportQuery) (*service.ExportResult, error)
}

// OverlayHandler serves calendar overlays for availability events.
type OverlayHandler struct {
	overlays overlayService
	exports  overlayExporter
}

// NewOverlayHandler constructs the handler.
func NewOverlayHandler(overlays overlayService, exports overlayExporter) *OverlayHandler {
	return &OverlayHandler{overlays: overlays, exports: exports}
}

// EventOverlay godoc
// @Summary Overlay the caller's busy blocks on an event
// @Tags Overlay
// @Produce json
// @Param id path string true "Event ID"
// @Param week_offset query int false "Weeks from the current week (DAYS_OF_WEEK events only)"
// @Param tz query string false "IANA timezone, defaults to the server default"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /events/{id}/overlay [get]
func (h *OverlayHandler) EventOverlay(c *gin.Context) {
	query, ok := overlayQueryFromRequest(c)
	if !ok {
		return
	}
	resp, hit, err := h.overlays.GetEventOverlay(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	middleware.SetMeta(c, "busy_blocks", resp.Total)
	response.JSON(c, http.StatusOK, resp, nil, middleware.ExtractMeta(c))
}

// Compute godoc
// @Summary Overlay caller-supplied busy blocks on an inline event
// @Tags Overlay
// @Accept json
// @Produce json
// @Param payload body dto.ComputeOverlayRequest true "Event and busy blocks"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /overlay [post]
func (h *OverlayHandler) Compute(c *gin.Context) {
	var req dto.ComputeOverlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid payload"))
		return
	}
	if err := validateWeekOffset(req.WeekOffset); err != nil {
		response.Error(c, err)
		return
	}
	resp, err := h.overlays.Compute(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Export godoc
// @Summary Download the caller's overlay for an event
// @Tags Overlay
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Event ID"
// @Param format query string false "csv (default) or pdf"
// @Param week_offset query int false "Weeks from the current week"
// @Param tz query string false "IANA timezone"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /events/{id}/overlay/export [get]
func (h *OverlayHandler) Export(c *gin.Context) {
	query, ok := overlayQueryFromRequest(c)
	if !ok {
		return
	}
	result, err := h.exports.Export(c.Request.Context(), dto.OverlayExportQuery{
		OverlayQuery: query,
		Format:       c.Query("format"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Payload)
}

// overlayQueryFromRequest reads the caller, event id, week_offset and tz. It
// writes the error response itself and reports false on bad input.
func overlayQueryFromRequest(c *gin.Context) (dto.OverlayQuery, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return dto.OverlayQuery{}, false
	}
	query := dto.OverlayQuery{
		EventID:  c.Param("id"),
		UserID:   userID,
		Timezone: strings.TrimSpace(c.Query("tz")),
	}
	if raw := strings.TrimSpace(c.Query("week_offset")); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "week_offset must be an integer"))
			return dto.OverlayQuery{}, false
		}
		if err := validateWeekOffset(offset); err != nil {
			response.Error(c, err)
			return dto.OverlayQuery{}, false
		}
		query.WeekOffset = offset
	}
	return query, true
}

func validateWeekOffset(offset int) error {
	if offset < -maxWeekOffset || offset > maxWeekOffset {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("week_offset must be between -%d and %d", maxWeekOffset, maxWeekOffset))
	}
	return nil
}
