package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/availability-api/internal/dto"
	"github.com/noah-isme/availability-api/internal/models"
	appErrors "github.com/noah-isme/availability-api/pkg/errors"
)

type mockEventRepo struct {
	events    map[string]*models.Event
	created   []*models.Event
	lastList  models.EventFilter
	total     int
	err       error
	deleteErr error
}

func (m *mockEventRepo) FindByID(_ context.Context, id string) (*models.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	ev, ok := m.events[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return ev, nil
}

func (m *mockEventRepo) List(_ context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	m.lastList = filter
	if m.err != nil {
		return nil, 0, m.err
	}
	out := make([]models.Event, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, *ev)
	}
	return out, m.total, nil
}

func (m *mockEventRepo) Create(_ context.Context, event *models.Event) error {
	if m.err != nil {
		return m.err
	}
	if event.ID == "" {
		event.ID = "event-new"
	}
	m.created = append(m.created, event)
	return nil
}

func (m *mockEventRepo) Delete(_ context.Context, id, _ string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.events[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.events, id)
	return nil
}

func TestEventServiceCreateNormalisesDates(t *testing.T) {
	repo := &mockEventRepo{}
	svc := NewEventService(repo, nil, nil)

	event, err := svc.Create(context.Background(), "owner-1", dto.CreateEventRequest{
		Name:     "Planning",
		Type:     "SPECIFIC_DATES",
		Dates:    []string{"2024-05-14T09:00:00-04:00", "2024-05-15T13:00:00Z"},
		Duration: 8,
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "owner-1", event.OwnerID)

	dates, err := event.DateStrings()
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-05-14T13:00:00Z", "2024-05-15T13:00:00Z"}, dates)
}

func TestEventServiceCreateRejectsInvalidPayloads(t *testing.T) {
	svc := NewEventService(&mockEventRepo{}, nil, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		req  dto.CreateEventRequest
		code string
	}{
		{"missing dates", dto.CreateEventRequest{Name: "x", Type: "SPECIFIC_DATES", Duration: 1}, appErrors.ErrValidation.Code},
		{"bad type", dto.CreateEventRequest{Name: "x", Type: "WEEKLY", Dates: []string{"2024-05-14T09:00:00Z"}, Duration: 1}, appErrors.ErrValidation.Code},
		{"zero duration", dto.CreateEventRequest{Name: "x", Type: "DAYS_OF_WEEK", Dates: []string{"2024-05-14T09:00:00Z"}}, appErrors.ErrValidation.Code},
		{"bad date", dto.CreateEventRequest{Name: "x", Type: "DAYS_OF_WEEK", Dates: []string{"next tuesday"}, Duration: 1}, appErrors.ErrInvalidEvent.Code},
		{"out of order", dto.CreateEventRequest{Name: "x", Type: "SPECIFIC_DATES", Dates: []string{"2024-05-15T09:00:00Z", "2024-05-14T09:00:00Z"}, Duration: 1}, appErrors.ErrInvalidEvent.Code},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "owner-1", tc.req)
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, tc.code, appErr.Code)
			assert.Equal(t, http.StatusBadRequest, appErr.Status)
		})
	}
}

func TestEventServiceGetAndDeleteMapNotFound(t *testing.T) {
	repo := &mockEventRepo{events: map[string]*models.Event{"e1": {ID: "e1"}}}
	svc := NewEventService(repo, nil, nil)
	ctx := context.Background()

	ev, err := svc.Get(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "e1", ev.ID)

	_, err = svc.Get(ctx, "missing")
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)

	require.NoError(t, svc.Delete(ctx, "e1", "owner-1"))
	err = svc.Delete(ctx, "e1", "owner-1")
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)

	repo.deleteErr = errors.New("db down")
	err = svc.Delete(ctx, "e1", "owner-1")
	assert.Equal(t, http.StatusInternalServerError, appErrors.FromError(err).Status)
}

func TestEventServiceListDefaultsPagination(t *testing.T) {
	repo := &mockEventRepo{events: map[string]*models.Event{"e1": {ID: "e1"}}, total: 41}
	svc := NewEventService(repo, nil, nil)

	events, pagination, err := svc.List(context.Background(), models.EventFilter{OwnerID: "owner-1", PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 41, pagination.TotalCount)
	assert.Equal(t, 20, repo.lastList.PageSize)

	_, _, err = svc.List(context.Background(), models.EventFilter{Type: "MONTHLY"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
