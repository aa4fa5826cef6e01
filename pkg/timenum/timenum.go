// Package timenum implements the fractional-hour clock representation used
// across availability grids: 13.5 is 1:30 pm, 0 is midnight.
package timenum

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Bound selects which side of a clock value Clamp protects.
type Bound int

const (
	// Upper keeps a time-of-day from rising past the bound.
	Upper Bound = iota
	// Lower keeps a time-of-day from falling below the bound.
	Lower
)

// Split decodes a timeNum into whole hours and minutes. Minutes are truncated, never rounded.
func Split(t float64) (hours, minutes int) {
	h := math.Floor(t)
	return int(h), int(math.Floor((t - h) * 60))
}

// Text renders a timeNum as a 12-hour label such as "9 am" or "1:30 pm".
func Text(t float64) string {
	hours, minutes := Split(t)
	suffix := ""
	if t-math.Floor(t) > 0 {
		suffix = fmt.Sprintf(":%02d", minutes)
	}

	switch {
	case t >= 0 && t < 1:
		return "12" + suffix + " am"
	case t < 12:
		return strconv.Itoa(hours) + suffix + " am"
	case t < 13:
		return "12" + suffix + " pm"
	default:
		return strconv.Itoa(hours-12) + suffix + " pm"
	}
}

// ClockString renders a timeNum as a "15:04:05" wall clock string.
func ClockString(t float64) string {
	hours, minutes := Split(t)
	return fmt.Sprintf("%02d:%02d:00", hours, minutes)
}

// ParseClock converts an "HH:MM" string into a timeNum.
func ParseClock(raw string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock %q: expected HH:MM", raw)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid clock %q: bad hour", raw)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid clock %q: bad minute", raw)
	}
	return float64(hours) + float64(minutes)/60, nil
}

// FromTime reads the time-of-day of t in loc as a timeNum. A nil loc uses t's own location.
func FromTime(t time.Time, loc *time.Location) float64 {
	t = in(t, loc)
	return float64(t.Hour()) + float64(t.Minute())/60
}

// OnDate keeps the calendar date of date (as seen in loc) and replaces its
// time-of-day with the clock decoded from t.
func OnDate(date time.Time, t float64, loc *time.Location) time.Time {
	date = in(date, loc)
	hours, minutes := Split(t)
	return time.Date(date.Year(), date.Month(), date.Day(), hours, minutes, 0, 0, date.Location())
}

// Clamp moves date onto the clock value t when it crosses the given bound,
// otherwise date is returned unchanged.
func Clamp(date time.Time, t float64, bound Bound, loc *time.Location) time.Time {
	current := FromTime(date, loc)
	switch bound {
	case Upper:
		if current > t {
			return OnDate(date, t, loc)
		}
	case Lower:
		if current < t {
			return OnDate(date, t, loc)
		}
	}
	return date
}

// WithinHourRange reports whether t lies within the clock-hour span of start
// and end. When the span wraps past midnight (end hour before start hour) the
// test becomes t >= startHour || t <= endHour.
func WithinHourRange(t float64, start, end time.Time) bool {
	startHour := float64(start.Hour())
	endHour := float64(end.Hour())
	if endHour < startHour {
		return t >= startHour || t <= endHour
	}
	return startHour <= t && t <= endHour
}

// FromUTC shifts a timeNum across timezones by subtracting offsetMinutes
// (positive west of UTC, as reported by browsers) and wraps into [0, 24).
func FromUTC(t float64, offsetMinutes int) float64 {
	shifted := math.Mod(t-float64(offsetMinutes)/60, 24)
	if shifted < 0 {
		shifted += 24
	}
	return shifted
}

// InDateRange reports whether date falls inside [start, start+durationHours], inclusive.
func InDateRange(date, start time.Time, durationHours float64) bool {
	end := start.Add(time.Duration(durationHours * float64(time.Hour)))
	return !date.Before(start) && !date.After(end)
}

func in(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t
	}
	return t.In(loc)
}
