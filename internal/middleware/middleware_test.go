package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observerSpy struct {
	method string
	path   string
	status int
}

func (o *observerSpy) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	o.method, o.path, o.status = method, path, status
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	spy := &observerSpy{}
	r := gin.New()
	r.Use(Metrics(spy))
	r.GET("/events/:id/overlay", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events/abc/overlay", nil))
	assert.Equal(t, "/events/:id/overlay", spy.path)
	assert.Equal(t, http.StatusTeapot, spy.status)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, "unmatched", spy.path)
	assert.Equal(t, http.StatusNotFound, spy.status)
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var captured map[string]interface{}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		captured = ExtractMeta(c)
	})
	r.Use(WithResponseMeta())
	r.GET("/", func(c *gin.Context) {
		SetCacheHit(c, true)
		SetMeta(c, "busy_blocks", 3)
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, captured)
	assert.Equal(t, true, captured["cache_hit"])
	assert.Equal(t, 3, captured["busy_blocks"])
	assert.Contains(t, captured, "processing_time_ms")

	assert.Nil(t, ExtractMeta(nil))
}
