// Package dateutil holds calendar-date arithmetic and labels that do not depend
// on a particular time-of-day.
package dateutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/availability-api/pkg/timenum"
)

var weekdayAbbreviations = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// DayOffset adds n days (fractional and negative allowed) as an absolute duration.
func DayOffset(t time.Time, n float64) time.Time {
	return t.Add(time.Duration(n * 24 * float64(time.Hour)))
}

// HourOffset adds a fractional-hour delta, decomposed into whole hours and minutes
// and applied on the wall clock of t's location.
func HourOffset(t time.Time, delta float64) time.Time {
	hours, minutes := timenum.Split(delta)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+hours, t.Minute()+minutes, t.Second(), t.Nanosecond(), t.Location())
}

// CompareInstant returns a-b in milliseconds.
func CompareInstant(a, b time.Time) int64 {
	return a.Sub(b).Milliseconds()
}

// CompareDay compares the (year, month, day) of a and b, ignoring time-of-day.
func CompareDay(a, b time.Time) int {
	switch {
	case a.Year() != b.Year():
		return a.Year() - b.Year()
	case a.Month() != b.Month():
		return int(a.Month()) - int(b.Month())
	default:
		return a.Day() - b.Day()
	}
}

// Between reports lo <= x <= hi on absolute instants.
func Between(x, lo, hi time.Time) bool {
	return !x.Before(lo) && !x.After(hi)
}

// ShortDate renders "5/14".
func ShortDate(t time.Time) string {
	return fmt.Sprintf("%d/%d", int(t.Month()), t.Day())
}

// ISODate renders "2006-01-02" in t's location, or in UTC when utc is set.
func ISODate(t time.Time, utc bool) string {
	if utc {
		t = t.UTC()
	}
	return t.Format("2006-01-02")
}

// WithClock keeps the calendar date of t in loc and applies an "HH:MM" clock.
func WithClock(t time.Time, clock string, loc *time.Location) (time.Time, error) {
	value, err := timenum.ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return timenum.OnDate(t, value, loc), nil
}

// RangeLabel renders "5/14 - 5/27". An end landing exactly on midnight belongs
// to the previous day.
func RangeLabel(start, end time.Time) string {
	if isMidnight(end) {
		end = end.AddDate(0, 0, -1)
	}
	return ShortDate(start) + " - " + ShortDate(end)
}

// WeekdayAbbreviation returns "Sun".."Sat".
func WeekdayAbbreviation(d time.Weekday) string {
	return weekdayAbbreviations[d]
}

// WeekdayLabels lists the weekday abbreviation of each date, e.g. "Mon, Wed".
func WeekdayLabels(dates []time.Time) string {
	var b strings.Builder
	for _, d := range dates {
		b.WriteString(WeekdayAbbreviation(d.Weekday()))
		b.WriteString(", ")
	}
	return strings.TrimSuffix(b.String(), ", ")
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}
