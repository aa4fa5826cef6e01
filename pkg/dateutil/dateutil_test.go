package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayOffset(t *testing.T) {
	base := time.Date(2023, 5, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2023, 5, 3, 9, 0, 0, 0, time.UTC), DayOffset(base, 2))
	assert.Equal(t, time.Date(2023, 4, 30, 9, 0, 0, 0, time.UTC), DayOffset(base, -1))
	assert.Equal(t, time.Date(2023, 5, 1, 21, 0, 0, 0, time.UTC), DayOffset(base, 0.5))
}

func TestHourOffset(t *testing.T) {
	base := time.Date(2023, 5, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2023, 5, 1, 11, 30, 0, 0, time.UTC), HourOffset(base, 2.5))
	assert.Equal(t, time.Date(2023, 5, 2, 1, 0, 0, 0, time.UTC), HourOffset(base, 16))
}

func TestCompare(t *testing.T) {
	a := time.Date(2023, 5, 1, 9, 0, 0, 0, time.UTC)
	b := time.Date(2023, 5, 1, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, int64(3600000), CompareInstant(a, b))
	assert.Equal(t, int64(-3600000), CompareInstant(b, a))

	assert.Zero(t, CompareDay(a, b))
	assert.Negative(t, CompareDay(a, a.AddDate(0, 1, 0)))
	assert.Positive(t, CompareDay(a, a.AddDate(-1, 0, 0)))
	assert.Positive(t, CompareDay(a.AddDate(0, 0, 1), b))
}

func TestBetweenIsInclusive(t *testing.T) {
	lo := time.Date(2023, 5, 1, 9, 0, 0, 0, time.UTC)
	hi := lo.Add(time.Hour)
	assert.True(t, Between(lo, lo, hi))
	assert.True(t, Between(hi, lo, hi))
	assert.False(t, Between(hi.Add(time.Millisecond), lo, hi))
}

func TestLabels(t *testing.T) {
	start := time.Date(2023, 5, 14, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "5/14", ShortDate(start))
	assert.Equal(t, "5/14 - 5/27", RangeLabel(start, time.Date(2023, 5, 27, 17, 0, 0, 0, time.UTC)))
	assert.Equal(t, "5/14 - 5/27", RangeLabel(start, time.Date(2023, 5, 28, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "5/14 - 5/28", RangeLabel(start, time.Date(2023, 5, 28, 0, 30, 0, 0, time.UTC)))

	mon := time.Date(2018, 6, 18, 9, 0, 0, 0, time.UTC)
	wed := mon.AddDate(0, 0, 2)
	assert.Equal(t, "Mon, Wed", WeekdayLabels([]time.Time{mon, wed}))
	assert.Equal(t, "", WeekdayLabels(nil))
}

func TestISODate(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	ts := time.Date(2023, 5, 2, 3, 0, 0, 0, tokyo)
	assert.Equal(t, "2023-05-02", ISODate(ts, false))
	assert.Equal(t, "2023-05-01", ISODate(ts, true))
}

func TestWithClock(t *testing.T) {
	ts := time.Date(2022, 5, 2, 18, 0, 0, 0, time.UTC)
	got, err := WithClock(ts, "11:30", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2022, 5, 2, 11, 30, 0, 0, time.UTC), got)

	_, err = WithClock(ts, "bogus", time.UTC)
	assert.Error(t, err)
}
