package ics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/availability-api/internal/overlay"
)

// ErrAllSourcesFailed is returned when not a single feed could be read.
var ErrAllSourcesFailed = errors.New("no calendar source could be fetched")

// FetchRecorder receives per-source fetch outcomes ("ok", "cached", "error").
type FetchRecorder interface {
	RecordICSFetch(result string)
}

// ProviderConfig tunes a Provider.
type ProviderConfig struct {
	Location       *time.Location
	MaxOccurrences int
	Recorder       FetchRecorder
	Logger         *zap.Logger
}

// Provider fetches every source of an owner and flattens them into busy blocks.
type Provider struct {
	fetcher  *Fetcher
	location *time.Location
	maxOcc   int
	recorder FetchRecorder
	logger   *zap.Logger
}

// NewProvider constructs a Provider.
func NewProvider(fetcher *Fetcher, cfg ProviderConfig) *Provider {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Provider{
		fetcher:  fetcher,
		location: cfg.Location,
		maxOcc:   cfg.MaxOccurrences,
		recorder: cfg.Recorder,
		logger:   cfg.Logger,
	}
}

// Refresh fetches a single source so its body is revalidated ahead of use.
func (p *Provider) Refresh(ctx context.Context, src Source) error {
	res, err := p.fetcher.Fetch(ctx, src)
	p.record(res, err)
	return err
}

// BusyBlocks returns the merged, start-sorted blocks of all sources in
// [timeMin, timeMax). A failing source is logged and skipped unless every
// source fails.
func (p *Provider) BusyBlocks(ctx context.Context, sources []Source, timeMin, timeMax time.Time) ([]overlay.BusyBlock, error) {
	if len(sources) == 0 {
		return []overlay.BusyBlock{}, nil
	}

	type outcome struct {
		blocks []overlay.BusyBlock
		err    error
	}
	results := make([]outcome, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			blocks, err := p.sourceBlocks(ctx, src, timeMin, timeMax)
			results[i] = outcome{blocks: blocks, err: err}
		}(i, src)
	}
	wg.Wait()

	merged := make([]overlay.BusyBlock, 0)
	failures := 0
	var firstErr error
	for i, r := range results {
		if r.err != nil {
			failures++
			if firstErr == nil {
				firstErr = r.err
			}
			p.logger.Warn("calendar source skipped", zap.String("source_id", sources[i].ID), zap.String("url", RedactURL(sources[i].URL)), zap.Error(r.err))
			continue
		}
		merged = append(merged, r.blocks...)
	}
	if failures == len(sources) {
		return nil, fmt.Errorf("%w: %v", ErrAllSourcesFailed, firstErr)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Start.Before(merged[j].Start)
	})
	return merged, nil
}

func (p *Provider) sourceBlocks(ctx context.Context, src Source, timeMin, timeMax time.Time) ([]overlay.BusyBlock, error) {
	res, err := p.fetcher.Fetch(ctx, src)
	p.record(res, err)
	if err != nil {
		return nil, err
	}

	events, skipped, err := Parse(src, res.Body, p.location)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		p.logger.Debug("ics vevents skipped", zap.String("source_id", src.ID), zap.Int("skipped", skipped))
	}

	expanded, err := Expand(events, timeMin, timeMax, p.maxOcc)
	if err != nil {
		return nil, err
	}
	for _, uid := range expanded.Truncated {
		p.logger.Warn("recurrence truncated", zap.String("source_id", src.ID), zap.String("uid", uid), zap.Int("cap", p.maxOcc))
	}
	return expanded.Blocks, nil
}

func (p *Provider) record(res FetchResult, err error) {
	if p.recorder == nil {
		return
	}
	switch {
	case err != nil:
		p.recorder.RecordICSFetch("error")
	case res.FromCache:
		p.recorder.RecordICSFetch("cached")
	default:
		p.recorder.RecordICSFetch("ok")
	}
}
