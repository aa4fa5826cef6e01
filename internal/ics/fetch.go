package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Source is a single subscribed calendar feed.
type Source struct {
	ID  string
	URL string
}

// FetchResult carries a feed body, fresh or revalidated.
type FetchResult struct {
	Source    Source
	Body      []byte
	FromCache bool
}

type cacheEntry struct {
	etag         string
	lastModified string
	body         []byte
	updatedAt    time.Time
}

// Fetcher downloads ICS feeds and revalidates them with ETag / Last-Modified.
// The last good body per URL is kept in memory and served when the upstream
// is unreachable or answers with an error status.
type Fetcher struct {
	client *http.Client
	logger *zap.Logger

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewFetcher constructs a Fetcher.
func NewFetcher(timeout time.Duration, logger *zap.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
		entries: make(map[string]cacheEntry),
	}
}

// Fetch retrieves a single feed.
func (f *Fetcher) Fetch(ctx context.Context, src Source) (FetchResult, error) {
	if src.URL == "" {
		return FetchResult{}, errors.New("source URL is empty")
	}

	cached, hasCached := f.entry(src.URL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return FetchResult{}, fmt.Errorf("build ics request: %w", err)
	}
	if hasCached {
		if cached.etag != "" {
			req.Header.Set("If-None-Match", cached.etag)
		}
		if cached.lastModified != "" {
			req.Header.Set("If-Modified-Since", cached.lastModified)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if hasCached {
			f.logger.Warn("ics fetch failed, serving cached body", zap.String("source_id", src.ID), zap.String("url", RedactURL(src.URL)), zap.Error(err))
			return FetchResult{Source: src, Body: cached.body, FromCache: true}, nil
		}
		return FetchResult{}, fmt.Errorf("fetch ics %s: %w", src.ID, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return FetchResult{}, fmt.Errorf("read ics body %s: %w", src.ID, err)
		}
		f.store(src.URL, cacheEntry{
			etag:         resp.Header.Get("ETag"),
			lastModified: resp.Header.Get("Last-Modified"),
			body:         body,
			updatedAt:    time.Now().UTC(),
		})
		f.logger.Debug("ics fetched", zap.String("source_id", src.ID), zap.String("url", RedactURL(src.URL)), zap.Int("bytes", len(body)))
		return FetchResult{Source: src, Body: body}, nil
	case http.StatusNotModified:
		if !hasCached {
			return FetchResult{}, fmt.Errorf("fetch ics %s: 304 without cached body", src.ID)
		}
		return FetchResult{Source: src, Body: cached.body, FromCache: true}, nil
	default:
		if hasCached {
			f.logger.Warn("ics upstream error, serving cached body", zap.String("source_id", src.ID), zap.String("url", RedactURL(src.URL)), zap.Int("status", resp.StatusCode))
			return FetchResult{Source: src, Body: cached.body, FromCache: true}, nil
		}
		return FetchResult{}, fmt.Errorf("fetch ics %s: unexpected status %s", src.ID, resp.Status)
	}
}

func (f *Fetcher) entry(url string) (cacheEntry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[url]
	return e, ok && len(e.body) > 0
}

func (f *Fetcher) store(url string, e cacheEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[url] = e
}

// RedactURL keeps only scheme and host; feed URLs usually embed a private token.
func RedactURL(u string) string {
	i := strings.Index(u, "://")
	if i == -1 {
		return "ics://...(redacted)"
	}
	rest := u[i+3:]
	if j := strings.IndexAny(rest, "/?#"); j != -1 {
		rest = rest[:j]
	}
	return u[:i+3] + rest + "/...(redacted)"
}
