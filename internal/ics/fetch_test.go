package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type feedServer struct {
	status atomic.Int32
	hits   atomic.Int32
}

func newFeedServer(t *testing.T) (*feedServer, *httptest.Server) {
	t.Helper()
	fs := &feedServer{}
	fs.status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.hits.Add(1)
		if code := int(fs.status.Load()); code != http.StatusOK {
			w.WriteHeader(code)
			return
		}
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(basicFeed))
	}))
	t.Cleanup(srv.Close)
	return fs, srv
}

func TestFetcherRevalidatesWithETag(t *testing.T) {
	_, srv := newFeedServer(t)
	f := NewFetcher(time.Second, nil)
	src := Source{ID: "work", URL: srv.URL + "/private/token.ics"}

	first, err := f.Fetch(context.Background(), src)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, basicFeed, string(first.Body))

	second, err := f.Fetch(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Body, second.Body)
}

func TestFetcherFallsBackToCachedBody(t *testing.T) {
	fs, srv := newFeedServer(t)
	f := NewFetcher(time.Second, nil)
	src := Source{ID: "work", URL: srv.URL}

	_, err := f.Fetch(context.Background(), src)
	require.NoError(t, err)

	fs.status.Store(http.StatusBadGateway)
	res, err := f.Fetch(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.Equal(t, basicFeed, string(res.Body))
	assert.EqualValues(t, 2, fs.hits.Load())
}

func TestFetcherErrorsWithoutCache(t *testing.T) {
	fs, srv := newFeedServer(t)
	fs.status.Store(http.StatusNotFound)
	f := NewFetcher(time.Second, nil)

	_, err := f.Fetch(context.Background(), Source{ID: "gone", URL: srv.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")

	_, err = f.Fetch(context.Background(), Source{ID: "blank"})
	assert.Error(t, err)
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://calendar.example.com/...(redacted)", RedactURL("https://calendar.example.com/ical/secret/basic.ics"))
	assert.Equal(t, "https://host/...(redacted)", RedactURL("https://host?token=abc"))
	assert.Equal(t, "ics://...(redacted)", RedactURL("webcal-without-scheme"))
}
