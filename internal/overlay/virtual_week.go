package overlay

import (
	"math"
	"sort"
	"time"
)

// MapToVirtualWeek moves date into the week spanned by the weekday anchors so
// that a busy block from the displayed week (the reference week shifted by
// weekOffset) lands on the matching anchor weekday. Time-of-day is preserved
// on the reference location's wall clock.
func MapToVirtualWeek(anchors []time.Time, date time.Time, weekOffset int, ref Reference) time.Time {
	loc := ref.location()
	if len(anchors) == 0 {
		return date.In(loc)
	}

	// Anchors authored east of the viewer can roll the first date back to
	// Saturday; ordering by weekday keeps the anchor week starting on Sunday.
	sorted := make([]time.Time, len(anchors))
	for i, a := range anchors {
		sorted[i] = a.In(loc)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Weekday() < sorted[j].Weekday()
	})

	targetSunday := sundayOf(ref.Now.In(loc)).AddDate(0, 0, 7*weekOffset)
	anchorSunday := sundayOf(sorted[0])
	shift := int(math.Round(targetSunday.Sub(anchorSunday).Hours() / 24))

	return date.In(loc).AddDate(0, 0, -shift)
}

func sundayOf(t time.Time) time.Time {
	return t.AddDate(0, 0, -int(t.Weekday()))
}
