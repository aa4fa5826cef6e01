package ics

import (
	"errors"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/noah-isme/availability-api/internal/overlay"
)

const defaultMaxOccurrences = 5000

// ExpandResult holds the busy blocks of a window plus the UIDs whose
// recurrence hit the occurrence cap.
type ExpandResult struct {
	Blocks    []overlay.BusyBlock
	Truncated []string
}

// Expand turns parsed VEVENTs into concrete busy blocks intersecting
// [timeMin, timeMax). RRULEs are expanded, EXDATEs removed and
// RECURRENCE-ID overrides replace the instance they point at.
func Expand(events []ParsedEvent, timeMin, timeMax time.Time, maxOccurrences int) (ExpandResult, error) {
	var result ExpandResult
	if timeMax.Before(timeMin) {
		return result, errors.New("expand: timeMax is before timeMin")
	}
	if maxOccurrences <= 0 {
		maxOccurrences = defaultMaxOccurrences
	}

	bases := make(map[string][]ParsedEvent)
	overrides := make(map[string][]ParsedEvent)
	uids := make([]string, 0)
	for _, ev := range events {
		if _, seen := bases[ev.UID]; !seen {
			if _, seenOverride := overrides[ev.UID]; !seenOverride {
				uids = append(uids, ev.UID)
			}
		}
		if ev.IsOverride() {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
			continue
		}
		bases[ev.UID] = append(bases[ev.UID], ev)
	}

	blocks := make([]overlay.BusyBlock, 0)
	for _, uid := range uids {
		base := bases[uid]
		if len(base) == 0 {
			// Overrides whose series is not in the feed stand alone.
			for _, o := range overrides[uid] {
				if overlaps(o.Start, o.End, timeMin, timeMax) {
					blocks = append(blocks, toBlock(o, o.Start, o.End, true))
				}
			}
			continue
		}

		used := make([]bool, len(overrides[uid]))
		truncated := false
		for _, ev := range base {
			if ev.RawRRule == "" {
				blocks = appendInstance(blocks, ev, ev.Start, ev.End, false, overrides[uid], used, timeMin, timeMax)
				continue
			}
			out, hitCap := expandRecurring(ev, overrides[uid], used, timeMin, timeMax, maxOccurrences)
			blocks = append(blocks, out...)
			truncated = truncated || hitCap
		}
		// Instances moved into the window from an occurrence outside it.
		for i, o := range overrides[uid] {
			if !used[i] && overlaps(o.Start, o.End, timeMin, timeMax) {
				blocks = append(blocks, toBlock(o, o.Start, o.End, true))
			}
		}
		if truncated {
			result.Truncated = append(result.Truncated, uid)
		}
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Start.Before(blocks[j].Start)
	})
	result.Blocks = blocks
	return result, nil
}

func expandRecurring(ev ParsedEvent, overrides []ParsedEvent, used []bool, timeMin, timeMax time.Time, maxOccurrences int) ([]overlay.BusyBlock, bool) {
	out := make([]overlay.BusyBlock, 0)

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		// An unreadable rule still leaves the first instance on the calendar.
		return appendInstance(out, ev, ev.Start, ev.End, false, overrides, used, timeMin, timeMax), false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	span := ev.End.Sub(ev.Start)
	loc := ev.Start.Location()
	// Instances starting before timeMin may still run into the window.
	starts := set.Between(timeMin.Add(-span).In(loc), timeMax.In(loc), true)

	hitCap := false
	if len(starts) > maxOccurrences {
		starts = starts[:maxOccurrences]
		hitCap = true
	}

	for _, start := range starts {
		end := start.Add(span)
		if ev.AllDay {
			start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
			end = start.AddDate(0, 0, int(span.Hours()/24+0.5))
		}

		out = appendInstance(out, ev, start, end, true, overrides, used, timeMin, timeMax)
	}
	return out, hitCap
}

// appendInstance adds the occurrence of ev at start, or the override that
// replaces it, when it overlaps the window. Matched overrides are marked used.
func appendInstance(out []overlay.BusyBlock, ev ParsedEvent, start, end time.Time, instance bool, overrides []ParsedEvent, used []bool, timeMin, timeMax time.Time) []overlay.BusyBlock {
	if i, ok := findOverride(overrides, start); ok {
		used[i] = true
		ev, start, end, instance = overrides[i], overrides[i].Start, overrides[i].End, true
	}
	if !overlaps(start, end, timeMin, timeMax) {
		return out
	}
	return append(out, toBlock(ev, start, end, instance))
}

func findOverride(overrides []ParsedEvent, start time.Time) (int, bool) {
	for i, o := range overrides {
		if o.Recurrence != nil && o.Recurrence.Equal(start) {
			return i, true
		}
	}
	return -1, false
}

func overlaps(start, end, timeMin, timeMax time.Time) bool {
	if end.Equal(start) {
		return !start.Before(timeMin) && start.Before(timeMax)
	}
	return start.Before(timeMax) && end.After(timeMin)
}

func toBlock(ev ParsedEvent, start, end time.Time, instance bool) overlay.BusyBlock {
	id := ev.UID
	extra := map[string]string{"uid": ev.UID}
	if instance {
		key := start.UTC().Format(time.RFC3339)
		id = ev.UID + "/" + key
		extra["instance"] = key
	}
	if ev.Location != "" {
		extra["location"] = ev.Location
	}
	return overlay.BusyBlock{
		ID:       id,
		Summary:  ev.Summary,
		SourceID: ev.Source.ID,
		AllDay:   ev.AllDay,
		Start:    start,
		End:      end,
		Extra:    extra,
	}
}
