package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/availability-api/internal/ics"
	"github.com/noah-isme/availability-api/internal/models"
	"github.com/noah-isme/availability-api/internal/overlay"
	appErrors "github.com/noah-isme/availability-api/pkg/errors"
)

const busyCacheNamespace = "busy"

type sourceLister interface {
	List(ctx context.Context, filter models.CalendarSourceFilter) ([]models.CalendarSource, error)
}

type busyBlockProvider interface {
	BusyBlocks(ctx context.Context, sources []ics.Source, timeMin, timeMax time.Time) ([]overlay.BusyBlock, error)
}

// BusyBlockService resolves a respondent's busy blocks for a time range from
// their enabled calendar sources, caching merged results per range.
type BusyBlockService struct {
	sources  sourceLister
	provider busyBlockProvider
	cache    *CacheService
	ttl      time.Duration
	logger   *zap.Logger
}

// NewBusyBlockService builds the service. cache may be nil.
func NewBusyBlockService(sources sourceLister, provider busyBlockProvider, cache *CacheService, ttl time.Duration, logger *zap.Logger) *BusyBlockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BusyBlockService{sources: sources, provider: provider, cache: cache, ttl: ttl, logger: logger}
}

// Fetch returns busy blocks between timeMin and timeMax. hit reports whether
// the result came from cache.
func (s *BusyBlockService) Fetch(ctx context.Context, userID string, timeMin, timeMax time.Time) ([]overlay.BusyBlock, bool, error) {
	key := CacheKey(busyCacheNamespace, userID, strconv.FormatInt(timeMin.Unix(), 10), strconv.FormatInt(timeMax.Unix(), 10))
	return Remember(ctx, s.cache, key, s.ttl, func(ctx context.Context) ([]overlay.BusyBlock, error) {
		return s.resolve(ctx, userID, timeMin, timeMax)
	})
}

func (s *BusyBlockService) resolve(ctx context.Context, userID string, timeMin, timeMax time.Time) ([]overlay.BusyBlock, error) {
	rows, err := s.sources.List(ctx, models.CalendarSourceFilter{UserID: userID, EnabledOnly: true})
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load calendar sources")
	}
	sources := make([]ics.Source, 0, len(rows))
	for _, row := range rows {
		sources = append(sources, ics.Source{ID: row.ID, URL: row.URL})
	}

	blocks, err := s.provider.BusyBlocks(ctx, sources, timeMin, timeMax)
	if err != nil {
		if errors.Is(err, ics.ErrAllSourcesFailed) {
			return nil, appErrors.WrapAs(err, appErrors.ErrUpstream, "no calendar source could be fetched")
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to resolve busy blocks")
	}
	if blocks == nil {
		blocks = []overlay.BusyBlock{}
	}

	s.logger.Debug("busy blocks resolved",
		zap.String("user_id", userID),
		zap.Int("sources", len(sources)),
		zap.Int("blocks", len(blocks)),
	)
	return blocks, nil
}

// Invalidate drops every cached range of userID.
func (s *BusyBlockService) Invalidate(ctx context.Context, userID string) error {
	return s.cache.Invalidate(ctx, CacheKey(busyCacheNamespace, userID, "*"))
}
