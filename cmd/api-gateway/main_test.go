package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/availability-api/internal/handler"
	"github.com/noah-isme/availability-api/internal/service"
)

func TestAPIPrefix(t *testing.T) {
	assert.Equal(t, "/api/v1", apiPrefix(""))
	assert.Equal(t, "/api/v1", apiPrefix("/"))
	assert.Equal(t, "/v2", apiPrefix("v2/"))
	assert.Equal(t, "/api/v1", apiPrefix(" /api/v1 "))
}

func TestRegisterRoutesRequiresTokenForRespondentRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	tokens := service.NewTokenService(service.TokenConfig{Secret: "secret"})
	registerRoutes(r.Group("/api/v1"), routeDeps{
		tokens:   tokens,
		events:   handler.NewEventHandler(nil),
		sources:  handler.NewCalendarSourceHandler(nil),
		overlays: handler.NewOverlayHandler(nil, nil),
		metrics:  handler.NewMetricsHandler(service.NewMetricsService(), nil),
	})

	for _, target := range []string{"/api/v1/events", "/api/v1/events/e1/overlay", "/api/v1/calendar-sources"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, target)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/metrics/summary", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	routes := map[string]bool{}
	for _, route := range r.Routes() {
		routes[route.Method+" "+route.Path] = true
	}
	for _, want := range []string{
		"POST /api/v1/overlay",
		"GET /api/v1/events/:id/overlay/export",
		"DELETE /api/v1/calendar-sources/:id",
	} {
		assert.True(t, routes[want], want)
	}
}
