package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/availability-api/internal/ics"
	"github.com/noah-isme/availability-api/internal/models"
	"github.com/noah-isme/availability-api/pkg/jobs"
)

// JobTypeFeedRefresh identifies calendar feed refresh jobs.
const JobTypeFeedRefresh = "ics.refresh"

type feedRefresher interface {
	Refresh(ctx context.Context, src ics.Source) error
}

// FeedRefreshConfig controls the refresh schedule and worker pool.
type FeedRefreshConfig struct {
	Schedule   string
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// FeedRefreshService periodically revalidates every enabled calendar feed so
// overlay requests find warm conditional-request state.
type FeedRefreshService struct {
	sources   sourceLister
	refresher feedRefresher
	cfg       FeedRefreshConfig
	logger    *zap.Logger

	queue *jobs.Queue
	cron  *cron.Cron
	mu    sync.Mutex
}

// NewFeedRefreshService validates the cron schedule and builds the service.
func NewFeedRefreshService(sources sourceLister, refresher feedRefresher, cfg FeedRefreshConfig, logger *zap.Logger) (*FeedRefreshService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "*/15 * * * *"
	}
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", cfg.Schedule, err)
	}
	svc := &FeedRefreshService{sources: sources, refresher: refresher, cfg: cfg, logger: logger}
	svc.queue = jobs.NewQueue("feed-refresh", svc.Handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: 256,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return svc, nil
}

// Start launches the workers and the cron schedule.
func (s *FeedRefreshService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}
	s.queue.Start(ctx)

	c := cron.New()
	if _, err := c.AddFunc(s.cfg.Schedule, func() {
		if _, err := s.EnqueueAll(ctx); err != nil {
			s.logger.Warn("feed refresh tick failed", zap.Error(err))
		}
	}); err != nil {
		s.queue.Stop()
		return fmt.Errorf("schedule feed refresh: %w", err)
	}
	c.Start()
	s.cron = c
	s.logger.Info("feed refresh scheduled", zap.String("schedule", s.cfg.Schedule))
	return nil
}

// Stop halts the schedule, waits for a running tick and drains the workers.
func (s *FeedRefreshService) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
	s.queue.Stop()
}

// EnqueueAll queues one refresh job per enabled source. Sources that do not
// fit in the buffer are skipped until the next tick.
func (s *FeedRefreshService) EnqueueAll(ctx context.Context) (int, error) {
	rows, err := s.sources.List(ctx, models.CalendarSourceFilter{EnabledOnly: true})
	if err != nil {
		return 0, fmt.Errorf("list calendar sources: %w", err)
	}
	queued := 0
	for _, row := range rows {
		job := jobs.Job{
			ID:      row.ID,
			Type:    JobTypeFeedRefresh,
			Payload: ics.Source{ID: row.ID, URL: row.URL},
		}
		if err := s.queue.TryEnqueue(job); err != nil {
			s.logger.Warn("feed refresh skipped", zap.String("source_id", row.ID), zap.Error(err))
			continue
		}
		queued++
	}
	s.logger.Debug("feed refresh enqueued", zap.Int("sources", len(rows)), zap.Int("queued", queued))
	return queued, nil
}

// Handle processes a single refresh job.
func (s *FeedRefreshService) Handle(ctx context.Context, job jobs.Job) error {
	if job.Type != JobTypeFeedRefresh {
		return fmt.Errorf("unsupported job type %s", job.Type)
	}
	src, ok := job.Payload.(ics.Source)
	if !ok {
		return fmt.Errorf("invalid payload for job %s", job.ID)
	}
	return s.refresher.Refresh(ctx, src)
}
