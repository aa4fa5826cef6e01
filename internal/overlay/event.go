// Package overlay projects a respondent's calendar busy blocks onto the day
// windows of an availability event.
package overlay

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Kind tags the two event shapes.
type Kind string

const (
	// SpecificDates events anchor each window on an absolute calendar day.
	SpecificDates Kind = "SPECIFIC_DATES"
	// DaysOfWeek events only care about the weekday of each anchor.
	DaysOfWeek Kind = "DAYS_OF_WEEK"
)

var (
	ErrNoDates             = errors.New("event has no dates")
	ErrNonPositiveDuration = errors.New("event duration must be positive")
	ErrUnknownKind         = errors.New("unknown event type")
	ErrInvalidBusyBlock    = errors.New("invalid busy block")
)

// ParseKind validates a raw event type tag.
func ParseKind(raw string) (Kind, error) {
	switch Kind(raw) {
	case SpecificDates, DaysOfWeek:
		return Kind(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
	}
}

// Event is the availability definition the overlay is computed against.
// Dates must be supplied in chronological order; Duration is in hours.
type Event struct {
	Kind     Kind
	Dates    []time.Time
	Duration float64
}

// Validate rejects events the engine cannot produce slots for.
func (e Event) Validate() error {
	if _, err := ParseKind(string(e.Kind)); err != nil {
		return err
	}
	if len(e.Dates) == 0 {
		return ErrNoDates
	}
	if math.IsNaN(e.Duration) || e.Duration <= 0 {
		return ErrNonPositiveDuration
	}
	return nil
}

func (e Event) window() time.Duration {
	return time.Duration(e.Duration * float64(time.Hour))
}

// Reference pins the wall clock and timezone used to resolve the displayed week.
type Reference struct {
	Now      time.Time
	Location *time.Location
}

func (r Reference) location() *time.Location {
	if r.Location != nil {
		return r.Location
	}
	if !r.Now.IsZero() {
		return r.Now.Location()
	}
	return time.UTC
}

// BusyBlock is a single externally sourced busy interval. Fields other than
// Start and End are carried through to the output untouched.
type BusyBlock struct {
	ID       string            `json:"id,omitempty"`
	Summary  string            `json:"summary,omitempty"`
	SourceID string            `json:"source_id,omitempty"`
	AllDay   bool              `json:"all_day,omitempty"`
	Start    time.Time         `json:"start_date"`
	End      time.Time         `json:"end_date"`
	Extra    map[string]string `json:"extra,omitempty"`
}

// ClippedBusyBlock is a busy block trimmed to one day window.
type ClippedBusyBlock struct {
	BusyBlock
	HoursOffset float64 `json:"hours_offset"`
	HoursLength float64 `json:"hours_length"`
}

// Days holds one slot per event date, in event date order.
type Days [][]ClippedBusyBlock

// Count returns the number of clipped blocks across all days.
func (d Days) Count() int {
	total := 0
	for _, day := range d {
		total += len(day)
	}
	return total
}
