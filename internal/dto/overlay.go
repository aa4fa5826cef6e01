package dto

import (
	"time"

	"github.com/noah-isme/availability-api/internal/overlay"
)

// OverlayQuery identifies a stored event overlay for one respondent.
type OverlayQuery struct {
	EventID    string
	UserID     string
	WeekOffset int
	Timezone   string
}

// OverlayEventPayload is an inline event definition.
type OverlayEventPayload struct {
	Type     string   `json:"type" validate:"required,oneof=SPECIFIC_DATES DAYS_OF_WEEK"`
	Dates    []string `json:"dates" validate:"required,min=1,max=366,dive,required"`
	Duration float64  `json:"duration" validate:"gt=0,lte=24"`
}

// ComputeOverlayRequest runs the overlay over caller-supplied data without touching storage.
type ComputeOverlayRequest struct {
	Event      OverlayEventPayload    `json:"event" validate:"required"`
	BusyBlocks []overlay.RawBusyBlock `json:"busy_blocks" validate:"max=5000"`
	WeekOffset int                    `json:"week_offset"`
	Timezone   string                 `json:"timezone"`
	Now        string                 `json:"now,omitempty"`
}

// OverlayResponse is the per-day projection returned to clients.
type OverlayResponse struct {
	EventID    string       `json:"event_id,omitempty"`
	Label      string       `json:"label"`
	Timezone   string       `json:"timezone"`
	WeekOffset int          `json:"week_offset"`
	TimeMin    time.Time    `json:"time_min"`
	TimeMax    time.Time    `json:"time_max"`
	Days       overlay.Days `json:"days" swaggertype:"array,object"`
	Total      int          `json:"total"`
}

// OverlayExportQuery selects the export format for an overlay.
type OverlayExportQuery struct {
	OverlayQuery
	Format string
}
