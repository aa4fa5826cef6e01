package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/availability-api/internal/dto"
	"github.com/noah-isme/availability-api/internal/models"
	"github.com/noah-isme/availability-api/internal/overlay"
	appErrors "github.com/noah-isme/availability-api/pkg/errors"
)

type stubBusyFetcher struct {
	blocks  []overlay.BusyBlock
	hit     bool
	err     error
	userID  string
	timeMin time.Time
	timeMax time.Time
}

func (s *stubBusyFetcher) Fetch(_ context.Context, userID string, timeMin, timeMax time.Time) ([]overlay.BusyBlock, bool, error) {
	s.userID, s.timeMin, s.timeMax = userID, timeMin, timeMax
	return s.blocks, s.hit, s.err
}

type overlayRecorderSpy struct {
	kinds  []string
	blocks int
}

func (s *overlayRecorderSpy) RecordOverlay(kind string, blocks int) {
	s.kinds = append(s.kinds, kind)
	s.blocks += blocks
}

func planningEvent() *models.Event {
	return &models.Event{
		ID:       "event-1",
		Name:     "Planning",
		Type:     "SPECIFIC_DATES",
		Dates:    types.JSONText(`["2024-05-14T09:00:00Z","2024-05-15T09:00:00Z"]`),
		Duration: 8,
	}
}

func TestOverlayServiceGetEventOverlay(t *testing.T) {
	events := &mockEventRepo{events: map[string]*models.Event{"event-1": planningEvent()}}
	busy := &stubBusyFetcher{hit: true, blocks: []overlay.BusyBlock{
		{ID: "standup", Start: time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC), End: time.Date(2024, 5, 14, 11, 0, 0, 0, time.UTC)},
		{ID: "commute", Start: time.Date(2024, 5, 15, 8, 0, 0, 0, time.UTC), End: time.Date(2024, 5, 15, 9, 30, 0, 0, time.UTC)},
	}}
	spy := &overlayRecorderSpy{}
	svc := NewOverlayService(events, busy, spy, nil, OverlayConfig{}, nil)

	resp, hit, err := svc.GetEventOverlay(context.Background(), dto.OverlayQuery{EventID: "event-1", UserID: "user-1"})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "user-1", busy.userID)
	assert.True(t, busy.timeMin.Equal(time.Date(2024, 5, 14, 9, 0, 0, 0, time.UTC)))
	assert.True(t, busy.timeMax.Equal(time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC)))

	assert.Equal(t, "event-1", resp.EventID)
	assert.Equal(t, "5/14 - 5/15", resp.Label)
	assert.Equal(t, "UTC", resp.Timezone)
	require.Len(t, resp.Days, 2)
	require.Len(t, resp.Days[0], 1)
	assert.Equal(t, "standup", resp.Days[0][0].ID)
	assert.InDelta(t, 1.0, resp.Days[0][0].HoursOffset, 1e-9)
	assert.InDelta(t, 1.0, resp.Days[0][0].HoursLength, 1e-9)
	require.Len(t, resp.Days[1], 1)
	assert.InDelta(t, 0.0, resp.Days[1][0].HoursOffset, 1e-9)
	assert.InDelta(t, 0.5, resp.Days[1][0].HoursLength, 1e-9)
	assert.Equal(t, 2, resp.Total)

	assert.Equal(t, []string{"SPECIFIC_DATES"}, spy.kinds)
	assert.Equal(t, 2, spy.blocks)
}

func TestOverlayServiceGetEventOverlayErrors(t *testing.T) {
	events := &mockEventRepo{events: map[string]*models.Event{"event-1": planningEvent()}}
	ctx := context.Background()

	svc := NewOverlayService(events, &stubBusyFetcher{}, nil, nil, OverlayConfig{}, nil)
	_, _, err := svc.GetEventOverlay(ctx, dto.OverlayQuery{EventID: "missing"})
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)

	_, _, err = svc.GetEventOverlay(ctx, dto.OverlayQuery{EventID: "event-1", Timezone: "Mars/Olympus"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	upstream := NewOverlayService(events, &stubBusyFetcher{err: appErrors.Clone(appErrors.ErrUpstream, "")}, nil, nil, OverlayConfig{}, nil)
	_, _, err = upstream.GetEventOverlay(ctx, dto.OverlayQuery{EventID: "event-1"})
	assert.Equal(t, http.StatusBadGateway, appErrors.FromError(err).Status)
}

func TestOverlayServiceComputeDaysOfWeek(t *testing.T) {
	svc := NewOverlayService(nil, nil, nil, nil, OverlayConfig{}, nil)

	resp, err := svc.Compute(context.Background(), dto.ComputeOverlayRequest{
		Event: dto.OverlayEventPayload{
			Type:     "DAYS_OF_WEEK",
			Dates:    []string{"2023-01-01T09:00:00", "2023-01-02T09:00:00"},
			Duration: 8,
		},
		BusyBlocks: []overlay.RawBusyBlock{
			{ID: "dentist", StartDate: "2024-05-13T10:00:00Z", EndDate: "2024-05-13T11:00:00Z"},
		},
		Timezone: "UTC",
		Now:      "2024-05-15T12:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "Sun, Mon", resp.Label)
	assert.True(t, resp.TimeMin.Equal(time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC)))
	assert.True(t, resp.TimeMax.Equal(time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)))
	require.Len(t, resp.Days, 2)
	assert.Empty(t, resp.Days[0])
	require.Len(t, resp.Days[1], 1)
	assert.Equal(t, "dentist", resp.Days[1][0].ID)
	assert.InDelta(t, 1.0, resp.Days[1][0].HoursOffset, 1e-9)
	assert.InDelta(t, 1.0, resp.Days[1][0].HoursLength, 1e-9)
}

func TestOverlayServiceComputeRejectsBadInput(t *testing.T) {
	svc := NewOverlayService(nil, nil, nil, nil, OverlayConfig{}, nil)
	ctx := context.Background()
	event := dto.OverlayEventPayload{Type: "SPECIFIC_DATES", Dates: []string{"2024-05-14T09:00:00Z"}, Duration: 8}

	_, err := svc.Compute(ctx, dto.ComputeOverlayRequest{
		Event:      event,
		BusyBlocks: []overlay.RawBusyBlock{{StartDate: "yesterday", EndDate: "2024-05-14T10:00:00Z"}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Compute(ctx, dto.ComputeOverlayRequest{Event: event, Now: "soon"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Compute(ctx, dto.ComputeOverlayRequest{Event: dto.OverlayEventPayload{Type: "SPECIFIC_DATES", Dates: []string{"2024-05-14T09:00:00Z"}}})
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestOverlayServiceComputeBoundsBatchSize(t *testing.T) {
	svc := NewOverlayService(nil, nil, nil, nil, OverlayConfig{}, nil)
	ctx := context.Background()

	dates := make([]string, 367)
	for i := range dates {
		dates[i] = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC).AddDate(0, 0, i).Format(time.RFC3339)
	}
	_, err := svc.Compute(ctx, dto.ComputeOverlayRequest{
		Event: dto.OverlayEventPayload{Type: "SPECIFIC_DATES", Dates: dates, Duration: 1},
	})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	blocks := make([]overlay.RawBusyBlock, 5001)
	for i := range blocks {
		blocks[i] = overlay.RawBusyBlock{StartDate: "2024-05-14T10:00:00Z", EndDate: "2024-05-14T11:00:00Z"}
	}
	_, err = svc.Compute(ctx, dto.ComputeOverlayRequest{
		Event:      dto.OverlayEventPayload{Type: "SPECIFIC_DATES", Dates: dates[:366], Duration: 1},
		BusyBlocks: blocks,
	})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Compute(ctx, dto.ComputeOverlayRequest{
		Event:      dto.OverlayEventPayload{Type: "SPECIFIC_DATES", Dates: dates[:366], Duration: 1},
		BusyBlocks: blocks[:5000],
	})
	assert.NoError(t, err)
}

func TestOverlayServiceReusesCachedBusyBlocksWithinWeek(t *testing.T) {
	weekly := &models.Event{
		ID:       "weekly",
		Type:     "DAYS_OF_WEEK",
		Dates:    types.JSONText(`["2023-01-02T09:00:00Z","2023-01-04T09:00:00Z"]`),
		Duration: 8,
	}
	events := &mockEventRepo{events: map[string]*models.Event{"weekly": weekly}}
	sources := &mockCalendarSourceRepo{sources: []models.CalendarSource{{ID: "src-1", URL: "https://example.com/a.ics", Enabled: true}}}
	provider := &stubBusyProvider{}
	cacheRepo := &memoryCacheRepo{}
	busy := NewBusyBlockService(sources, provider, NewCacheService(cacheRepo, nil, time.Minute, nil, true), time.Minute, nil)
	svc := NewOverlayService(events, busy, nil, nil, OverlayConfig{}, nil)

	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	query := dto.OverlayQuery{EventID: "weekly", UserID: "user-1"}

	hits := 0
	for i := 0; i < 5; i++ {
		_, hit, err := svc.GetEventOverlay(context.Background(), query)
		require.NoError(t, err)
		if hit {
			hits++
		}
		now = now.Add(time.Second)
	}

	assert.Equal(t, 4, hits)
	assert.Equal(t, 1, provider.calls)
	assert.Len(t, cacheRepo.store, 1)
}
