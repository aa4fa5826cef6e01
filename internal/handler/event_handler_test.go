package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/availability-api/internal/dto"
	"github.com/noah-isme/availability-api/internal/middleware"
	"github.com/noah-isme/availability-api/internal/models"
	appErrors "github.com/noah-isme/availability-api/pkg/errors"
)

type fakeEventSrv struct {
	created    dto.CreateEventRequest
	owner      string
	lastFilter models.EventFilter
	deleted    string
	err        error
}

func (f *fakeEventSrv) Create(_ context.Context, ownerID string, req dto.CreateEventRequest) (*models.Event, error) {
	f.owner, f.created = ownerID, req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Event{ID: "event-1", OwnerID: ownerID, Name: req.Name, Type: req.Type}, nil
}

func (f *fakeEventSrv) Get(_ context.Context, id string) (*models.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Event{ID: id}, nil
}

func (f *fakeEventSrv) List(_ context.Context, filter models.EventFilter) ([]models.Event, *models.Pagination, error) {
	f.lastFilter = filter
	return []models.Event{{ID: "event-1"}}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: 1}, nil
}

func (f *fakeEventSrv) Delete(_ context.Context, id, _ string) error {
	f.deleted = id
	return f.err
}

func TestEventHandlerCreate(t *testing.T) {
	srv := &fakeEventSrv{}
	handler := NewEventHandler(srv)

	body := []byte(`{"name":"Planning","type":"DAYS_OF_WEEK","dates":["2023-01-02T09:00:00Z"],"duration":2.5}`)
	c, rec := newTestContext(http.MethodPost, "/events", body, "user-1")
	handler.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "user-1", srv.owner)
	assert.Equal(t, 2.5, srv.created.Duration)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "event-1", envelope.Data["id"])

	c, rec = newTestContext(http.MethodPost, "/events", body, "")
	handler.Create(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = newTestContext(http.MethodPost, "/events", []byte(`not json`), "user-1")
	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventHandlerListUsesCallerAndPaging(t *testing.T) {
	srv := &fakeEventSrv{}
	handler := NewEventHandler(srv)

	c, rec := newTestContext(http.MethodGet, "/events?page=2&page_size=5&type=SPECIFIC_DATES", nil, "user-1")
	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.EventFilter{OwnerID: "user-1", Type: "SPECIFIC_DATES", Page: 2, PageSize: 5}, srv.lastFilter)
	var body struct {
		Pagination models.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Pagination.Page)
}

func TestEventHandlerGetAndDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeEventSrv{}
	handler := NewEventHandler(srv)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1"})
	})
	r.DELETE("/events/:id", handler.Delete)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/events/event-9", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "event-9", srv.deleted)

	srv.err = appErrors.Clone(appErrors.ErrNotFound, "event not found")
	c, rec := newTestContext(http.MethodGet, "/events/event-9", nil, "user-1")
	c.Params = gin.Params{{Key: "id", Value: "event-9"}}
	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
