package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

// ErrEmptyFeed is returned for a zero-length ICS body.
var ErrEmptyFeed = errors.New("empty ICS body")

// ParsedEvent is a VEVENT reduced to what busy-block expansion needs.
type ParsedEvent struct {
	Source Source

	UID      string
	Summary  string
	Location string

	Start  time.Time
	End    time.Time
	AllDay bool

	RawRRule   string
	ExDates    []time.Time
	Recurrence *time.Time
}

// IsOverride reports whether the VEVENT replaces one instance of a recurring series.
func (p ParsedEvent) IsOverride() bool {
	return p.Recurrence != nil
}

// Parse decodes a feed body. Malformed, transparent and cancelled VEVENTs are
// skipped and counted; floating times resolve in the feed's X-WR-TIMEZONE or
// fallback when the feed declares none.
func Parse(src Source, body []byte, fallback *time.Location) ([]ParsedEvent, int, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, 0, ErrEmptyFeed
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("parse ics %s: %w", src.ID, err)
	}

	loc := feedLocation(cal, fallback)
	events := make([]ParsedEvent, 0)
	skipped := 0
	for _, ve := range cal.Events() {
		if !isBusy(ve) {
			skipped++
			continue
		}
		ev, err := parseVEvent(src, ve, loc)
		if err != nil {
			skipped++
			continue
		}
		events = append(events, ev)
	}
	return events, skipped, nil
}

func feedLocation(cal *ical.Calendar, fallback *time.Location) *time.Location {
	if fallback == nil {
		fallback = time.UTC
	}
	for _, p := range cal.CalendarProperties {
		if p.IANAToken != "X-WR-TIMEZONE" {
			continue
		}
		if loc, err := time.LoadLocation(strings.TrimSpace(p.Value)); err == nil {
			return loc
		}
	}
	return fallback
}

func isBusy(ve *ical.VEvent) bool {
	if p := ve.GetProperty(ical.ComponentPropertyTransp); p != nil && strings.EqualFold(strings.TrimSpace(p.Value), "TRANSPARENT") {
		return false
	}
	if p := ve.GetProperty(ical.ComponentPropertyStatus); p != nil && strings.EqualFold(strings.TrimSpace(p.Value), "CANCELLED") {
		return false
	}
	return true
}

func parseVEvent(src Source, ve *ical.VEvent, loc *time.Location) (ParsedEvent, error) {
	out := ParsedEvent{Source: src}

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || strings.TrimSpace(uid.Value) == "" {
		return out, errors.New("missing UID")
	}
	out.UID = strings.TrimSpace(uid.Value)

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return out, errors.New("missing DTSTART")
	}
	start, allDay, err := propertyTime(dtStart.Value, dtStart.ICalParameters, loc)
	if err != nil {
		return out, fmt.Errorf("DTSTART: %w", err)
	}
	out.Start = start
	out.AllDay = allDay

	switch dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); {
	case dtEnd != nil:
		end, _, err := propertyTime(dtEnd.Value, dtEnd.ICalParameters, loc)
		if err != nil {
			return out, fmt.Errorf("DTEND: %w", err)
		}
		out.End = end
	case allDay:
		out.End = start.AddDate(0, 0, 1)
	default:
		out.End = start
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = strings.TrimSpace(p.Value)
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			if t, _, err := propertyTime(part, p.ICalParameters, loc); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRecurrenceId); p != nil {
		rid, _, err := propertyTime(p.Value, p.ICalParameters, loc)
		if err != nil {
			return out, fmt.Errorf("RECURRENCE-ID: %w", err)
		}
		out.Recurrence = &rid
	}

	return out, nil
}

// propertyTime parses DATE and DATE-TIME values. TZID wins over the feed
// location; a trailing Z means UTC.
func propertyTime(raw string, params map[string][]string, loc *time.Location) (time.Time, bool, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return time.Time{}, false, errors.New("empty time value")
	}

	if tz, ok := params["TZID"]; ok && len(tz) > 0 {
		tzLoc, err := time.LoadLocation(strings.Trim(tz[0], `"`))
		if err != nil {
			return time.Time{}, false, fmt.Errorf("unknown TZID %q: %w", tz[0], err)
		}
		loc = tzLoc
	}

	dateOnly := !strings.Contains(v, "T")
	if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		dateOnly = true
	}

	switch {
	case dateOnly:
		t, err := time.ParseInLocation("20060102", strings.TrimSuffix(v, "Z"), loc)
		return t, true, err
	case strings.HasSuffix(v, "Z"):
		t, err := time.Parse("20060102T150405Z", v)
		return t, false, err
	default:
		t, err := time.ParseInLocation("20060102T150405", v, loc)
		return t, false, err
	}
}
