package overlay

import (
	"fmt"
	"strings"
	"time"
)

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTime accepts RFC 3339 timestamps, or zone-less timestamps interpreted in loc.
func ParseTime(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", raw)
}

// RawBusyBlock is a busy block as received over the wire, dates still unparsed.
type RawBusyBlock struct {
	ID        string            `json:"id"`
	Summary   string            `json:"summary"`
	SourceID  string            `json:"source_id"`
	AllDay    bool              `json:"all_day"`
	StartDate string            `json:"start_date"`
	EndDate   string            `json:"end_date"`
	Extra     map[string]string `json:"extra"`
}

// ParseBusyBlocks converts raw blocks. A single unparseable date fails the whole batch.
func ParseBusyBlocks(raw []RawBusyBlock, loc *time.Location) ([]BusyBlock, error) {
	out := make([]BusyBlock, 0, len(raw))
	for i, r := range raw {
		start, err := ParseTime(r.StartDate, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: block %d start_date: %v", ErrInvalidBusyBlock, i, err)
		}
		end, err := ParseTime(r.EndDate, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: block %d end_date: %v", ErrInvalidBusyBlock, i, err)
		}
		out = append(out, BusyBlock{
			ID:       r.ID,
			Summary:  r.Summary,
			SourceID: r.SourceID,
			AllDay:   r.AllDay,
			Start:    start,
			End:      end,
			Extra:    r.Extra,
		})
	}
	return out, nil
}
