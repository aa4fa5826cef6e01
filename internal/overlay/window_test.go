package overlay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchWindowSpecificDates(t *testing.T) {
	ev := workday(t, "2023-05-01T09:00:00", "2023-05-04T09:00:00")

	timeMin, timeMax, err := FetchWindow(ev, 4, Reference{})
	require.NoError(t, err)
	assert.Equal(t, at(t, "2023-05-01T09:00:00"), timeMin)
	assert.Equal(t, at(t, "2023-05-06T09:00:00"), timeMax)
}

func TestFetchWindowDaysOfWeek(t *testing.T) {
	ev := Event{Kind: DaysOfWeek, Duration: 8, Dates: []time.Time{at(t, "2018-06-18T09:00:00")}}
	// Wednesday.
	ref := Reference{Now: at(t, "2023-05-03T12:00:00"), Location: time.UTC}

	timeMin, timeMax, err := FetchWindow(ev, 0, ref)
	require.NoError(t, err)
	assert.Equal(t, at(t, "2023-04-29T00:00:00"), timeMin)
	assert.Equal(t, at(t, "2023-05-08T00:00:00"), timeMax)

	timeMin, _, err = FetchWindow(ev, -1, ref)
	require.NoError(t, err)
	assert.Equal(t, at(t, "2023-04-22T00:00:00"), timeMin)
}

func TestFetchWindowDaysOfWeekStableWithinWeek(t *testing.T) {
	ev := Event{Kind: DaysOfWeek, Duration: 8, Dates: []time.Time{at(t, "2018-06-18T09:00:00")}}
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// Sunday morning and Saturday night of the same Berlin week.
	first := Reference{Now: time.Date(2023, 4, 30, 0, 0, 1, 0, berlin), Location: berlin}
	last := Reference{Now: time.Date(2023, 5, 6, 23, 59, 59, 0, berlin), Location: berlin}

	min1, max1, err := FetchWindow(ev, 0, first)
	require.NoError(t, err)
	min2, max2, err := FetchWindow(ev, 0, last)
	require.NoError(t, err)

	assert.True(t, min1.Equal(min2))
	assert.True(t, max1.Equal(max2))
	assert.True(t, min1.Equal(time.Date(2023, 4, 29, 0, 0, 0, 0, berlin)))
	assert.True(t, max1.Equal(time.Date(2023, 5, 8, 0, 0, 0, 0, berlin)))
}

func TestFetchWindowRejectsEmptyEvent(t *testing.T) {
	_, _, err := FetchWindow(Event{Kind: DaysOfWeek, Duration: 1}, 0, Reference{})
	assert.ErrorIs(t, err, ErrNoDates)
}

func TestLabel(t *testing.T) {
	dow := Event{Kind: DaysOfWeek, Duration: 1, Dates: []time.Time{
		at(t, "2018-06-17T09:00:00"),
		at(t, "2018-06-19T09:00:00"),
		at(t, "2018-06-22T09:00:00"),
	}}
	assert.Equal(t, "Sun, Tue, Fri", Label(dow, time.UTC))

	specific := workday(t, "2023-05-14T00:00:00", "2023-05-28T00:00:00")
	assert.Equal(t, "5/14 - 5/27", Label(specific, time.UTC))

	assert.Equal(t, "", Label(Event{}, nil))
}
