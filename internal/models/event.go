package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/availability-api/internal/overlay"
)

// Event is a scheduling poll whose day windows respondents overlay their calendars on.
type Event struct {
	ID        string         `db:"id" json:"id"`
	OwnerID   string         `db:"owner_id" json:"owner_id"`
	Name      string         `db:"name" json:"name"`
	Type      string         `db:"type" json:"type"`
	Dates     types.JSONText `db:"dates" json:"dates" swaggertype:"array,string"`
	Duration  float64        `db:"duration" json:"duration"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// EventFilter narrows down event listings.
type EventFilter struct {
	OwnerID  string
	Type     string
	Page     int
	PageSize int
}

// DateStrings decodes the stored anchor list.
func (e Event) DateStrings() ([]string, error) {
	if len(e.Dates) == 0 {
		return []string{}, nil
	}
	var dates []string
	if err := json.Unmarshal(e.Dates, &dates); err != nil {
		return nil, fmt.Errorf("decode event dates: %w", err)
	}
	return dates, nil
}

// ToOverlay converts the persisted row into the engine's event shape.
func (e Event) ToOverlay() (overlay.Event, error) {
	kind, err := overlay.ParseKind(e.Type)
	if err != nil {
		return overlay.Event{}, err
	}
	raw, err := e.DateStrings()
	if err != nil {
		return overlay.Event{}, err
	}
	dates := make([]time.Time, 0, len(raw))
	for i, r := range raw {
		ts, err := overlay.ParseTime(r, time.UTC)
		if err != nil {
			return overlay.Event{}, fmt.Errorf("event date %d: %w", i, err)
		}
		dates = append(dates, ts)
	}
	return overlay.Event{Kind: kind, Dates: dates, Duration: e.Duration}, nil
}
