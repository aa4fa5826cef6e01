package overlay

import (
	"time"

	"github.com/noah-isme/availability-api/pkg/dateutil"
)

// FetchWindow returns the [timeMin, timeMax] range busy blocks should be
// requested for. Specific-date events cover the first date through two days
// past the last; weekday events cover the displayed week with a day of slack
// on each side for timezone skew. The weekday window starts at a local
// midnight so it is stable for the whole week.
func FetchWindow(ev Event, weekOffset int, ref Reference) (time.Time, time.Time, error) {
	if err := ev.Validate(); err != nil {
		return time.Time{}, time.Time{}, err
	}

	switch ev.Kind {
	case SpecificDates:
		return ev.Dates[0], dateutil.DayOffset(ev.Dates[len(ev.Dates)-1], 2), nil
	case DaysOfWeek:
		loc := ref.location()
		current := ref.Now.In(loc).AddDate(0, 0, weekOffset*7)
		day := time.Date(current.Year(), current.Month(), current.Day(), 0, 0, 0, 0, loc)
		timeMin := day.AddDate(0, 0, -(int(day.Weekday()) + 1))
		return timeMin, timeMin.AddDate(0, 0, 7+2), nil
	default:
		return time.Time{}, time.Time{}, ErrUnknownKind
	}
}

// Label describes the event's dates: "Mon, Wed" for weekday events, "5/14 - 5/27" otherwise.
func Label(ev Event, loc *time.Location) string {
	if len(ev.Dates) == 0 {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	dates := make([]time.Time, len(ev.Dates))
	for i, d := range ev.Dates {
		dates[i] = d.In(loc)
	}
	if ev.Kind == DaysOfWeek {
		return dateutil.WeekdayLabels(dates)
	}
	return dateutil.RangeLabel(dates[0], dates[len(dates)-1])
}
