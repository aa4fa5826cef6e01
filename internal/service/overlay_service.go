package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/availability-api/internal/dto"
	"github.com/noah-isme/availability-api/internal/models"
	"github.com/noah-isme/availability-api/internal/overlay"
	appErrors "github.com/noah-isme/availability-api/pkg/errors"
)

type eventFinder interface {
	FindByID(ctx context.Context, id string) (*models.Event, error)
}

type busyBlockFetcher interface {
	Fetch(ctx context.Context, userID string, timeMin, timeMax time.Time) ([]overlay.BusyBlock, bool, error)
}

type overlayRecorder interface {
	RecordOverlay(kind string, blocks int)
}

// OverlayConfig tunes overlay resolution.
type OverlayConfig struct {
	DefaultLocation *time.Location
}

// OverlayService projects a respondent's busy blocks onto an event's day windows.
type OverlayService struct {
	events    eventFinder
	busy      busyBlockFetcher
	metrics   overlayRecorder
	validator *validator.Validate
	logger    *zap.Logger
	cfg       OverlayConfig
	now       func() time.Time
}

// NewOverlayService builds the service. metrics may be nil.
func NewOverlayService(events eventFinder, busy busyBlockFetcher, metrics overlayRecorder, validate *validator.Validate, cfg OverlayConfig, logger *zap.Logger) *OverlayService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultLocation == nil {
		cfg.DefaultLocation = time.UTC
	}
	return &OverlayService{
		events:    events,
		busy:      busy,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// GetEventOverlay resolves the stored event, fetches the caller's busy blocks
// for the event's fetch window and clips them onto its days. hit reports
// whether the busy blocks were served from cache.
func (s *OverlayService) GetEventOverlay(ctx context.Context, q dto.OverlayQuery) (*dto.OverlayResponse, bool, error) {
	loc, err := s.location(q.Timezone)
	if err != nil {
		return nil, false, err
	}

	row, err := s.events.FindByID(ctx, q.EventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, false, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load event")
	}
	ev, err := row.ToOverlay()
	if err != nil {
		return nil, false, translateOverlayError(err)
	}

	ref := overlay.Reference{Now: s.now().In(loc), Location: loc}
	timeMin, timeMax, err := overlay.FetchWindow(ev, q.WeekOffset, ref)
	if err != nil {
		return nil, false, translateOverlayError(err)
	}

	blocks, hit, err := s.busy.Fetch(ctx, q.UserID, timeMin, timeMax)
	if err != nil {
		return nil, false, err
	}

	resp, err := s.compute(ev, blocks, q.WeekOffset, ref, timeMin, timeMax)
	if err != nil {
		return nil, false, err
	}
	resp.EventID = row.ID
	s.logger.Debug("overlay computed",
		zap.String("event_id", row.ID),
		zap.String("user_id", q.UserID),
		zap.Int("week_offset", q.WeekOffset),
		zap.Int("blocks", resp.Total),
		zap.Bool("cache_hit", hit),
	)
	return resp, hit, nil
}

// Compute runs the overlay over a caller-supplied event and busy blocks.
// Zone-less timestamps are read in the request timezone.
func (s *OverlayService) Compute(ctx context.Context, req dto.ComputeOverlayRequest) (*dto.OverlayResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid overlay request")
	}
	loc, err := s.location(req.Timezone)
	if err != nil {
		return nil, err
	}

	ev, err := eventFromPayload(req.Event.Type, req.Event.Dates, req.Event.Duration, loc)
	if err != nil {
		return nil, err
	}
	blocks, err := overlay.ParseBusyBlocks(req.BusyBlocks, loc)
	if err != nil {
		return nil, translateOverlayError(err)
	}

	now := s.now()
	if strings.TrimSpace(req.Now) != "" {
		now, err = overlay.ParseTime(req.Now, loc)
		if err != nil {
			return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "now must be an ISO-8601 timestamp")
		}
	}
	ref := overlay.Reference{Now: now.In(loc), Location: loc}
	timeMin, timeMax, err := overlay.FetchWindow(ev, req.WeekOffset, ref)
	if err != nil {
		return nil, translateOverlayError(err)
	}
	return s.compute(ev, blocks, req.WeekOffset, ref, timeMin, timeMax)
}

func (s *OverlayService) compute(ev overlay.Event, blocks []overlay.BusyBlock, weekOffset int, ref overlay.Reference, timeMin, timeMax time.Time) (*dto.OverlayResponse, error) {
	days, err := overlay.Compute(ev, blocks, weekOffset, ref)
	if err != nil {
		return nil, translateOverlayError(err)
	}
	total := days.Count()
	if s.metrics != nil {
		s.metrics.RecordOverlay(string(ev.Kind), total)
	}
	return &dto.OverlayResponse{
		Label:      overlay.Label(ev, ref.Location),
		Timezone:   ref.Location.String(),
		WeekOffset: weekOffset,
		TimeMin:    timeMin,
		TimeMax:    timeMax,
		Days:       days,
		Total:      total,
	}, nil
}

func (s *OverlayService) location(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s.cfg.DefaultLocation, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "unknown timezone "+name)
	}
	return loc, nil
}
