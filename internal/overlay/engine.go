package overlay

import (
	"sort"
	"time"

	"github.com/noah-isme/availability-api/pkg/dateutil"
)

// Compute clips busy blocks onto the day windows of ev. The result has exactly
// one slot per event date; each slot is ordered by HoursOffset.
//
// Blocks are swept once against the windows: every block is consumed by at
// most one day, and a block that starts before a window but does not reach it
// is dropped. Windows are treated as [start, end): a block starting exactly at
// a window's end belongs to a later day, and a block ending exactly at a
// window's start clips to zero length and is discarded.
//
// weekOffset only matters for DaysOfWeek events. The blocks slice is not modified.
func Compute(ev Event, blocks []BusyBlock, weekOffset int, ref Reference) (Days, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}

	normalized, err := normalize(ev, blocks, weekOffset, ref)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(normalized, func(i, j int) bool {
		return normalized[i].Start.Before(normalized[j].Start)
	})

	days := make(Days, len(ev.Dates))
	span := ev.window()
	cursor := 0
	for i, anchor := range ev.Dates {
		days[i] = []ClippedBusyBlock{}
		windowStart := anchor
		windowEnd := anchor.Add(span)

		for cursor < len(normalized) && normalized[cursor].Start.Before(windowEnd) {
			block := normalized[cursor]
			cursor++
			if clipped, ok := clip(block, windowStart, windowEnd); ok {
				days[i] = append(days[i], clipped)
			}
		}
	}

	return days, nil
}

func normalize(ev Event, blocks []BusyBlock, weekOffset int, ref Reference) ([]BusyBlock, error) {
	out := make([]BusyBlock, len(blocks))
	copy(out, blocks)

	switch ev.Kind {
	case SpecificDates:
		return out, nil
	case DaysOfWeek:
		for i := range out {
			out[i].Start = MapToVirtualWeek(ev.Dates, out[i].Start, weekOffset, ref)
			out[i].End = MapToVirtualWeek(ev.Dates, out[i].End, weekOffset, ref)
		}
		return out, nil
	default:
		return nil, ErrUnknownKind
	}
}

// clip trims b to [start, end]. It reports false when b does not overlap the
// window or nothing of positive length remains.
func clip(b BusyBlock, start, end time.Time) (ClippedBusyBlock, bool) {
	startInWindow := dateutil.Between(b.Start, start, end)
	endInWindow := dateutil.Between(b.End, start, end)
	windowStartInBlock := dateutil.Between(start, b.Start, b.End)
	windowEndInBlock := dateutil.Between(end, b.Start, b.End)

	if !startInWindow && !endInWindow && !(windowStartInBlock && windowEndInBlock) {
		return ClippedBusyBlock{}, false
	}
	if windowStartInBlock {
		b.Start = start
	}
	if windowEndInBlock {
		b.End = end
	}

	length := b.End.Sub(b.Start)
	if length <= 0 {
		return ClippedBusyBlock{}, false
	}

	return ClippedBusyBlock{
		BusyBlock:   b,
		HoursOffset: b.Start.Sub(start).Hours(),
		HoursLength: length.Hours(),
	}, true
}
