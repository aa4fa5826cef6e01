package service

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/availability-api/internal/dto"
	"github.com/noah-isme/availability-api/internal/models"
	appErrors "github.com/noah-isme/availability-api/pkg/errors"
)

type calendarSourceRepository interface {
	List(ctx context.Context, filter models.CalendarSourceFilter) ([]models.CalendarSource, error)
	Create(ctx context.Context, source *models.CalendarSource) error
	Delete(ctx context.Context, id, userID string) error
}

type busyBlockInvalidator interface {
	Invalidate(ctx context.Context, userID string) error
}

// CalendarSourceService manages a respondent's subscribed ICS feeds.
type CalendarSourceService struct {
	repo      calendarSourceRepository
	busy      busyBlockInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCalendarSourceService builds the service. busy may be nil.
func NewCalendarSourceService(repo calendarSourceRepository, busy busyBlockInvalidator, validate *validator.Validate, logger *zap.Logger) *CalendarSourceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarSourceService{repo: repo, busy: busy, validator: validate, logger: logger}
}

// Create subscribes userID to a feed. webcal:// URLs are rewritten to https://.
func (s *CalendarSourceService) Create(ctx context.Context, userID string, req dto.CreateCalendarSourceRequest) (*models.CalendarSource, error) {
	req.URL = normaliseFeedURL(req.URL)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid calendar source payload")
	}
	parsed, err := url.Parse(req.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, appErrors.Clone(appErrors.ErrValidation, "calendar source url must be http(s) or webcal")
	}

	source := &models.CalendarSource{UserID: userID, Name: strings.TrimSpace(req.Name), URL: req.URL, Enabled: true}
	if err := s.repo.Create(ctx, source); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to create calendar source")
	}
	s.invalidate(ctx, userID)
	return source, nil
}

// List returns every source of userID.
func (s *CalendarSourceService) List(ctx context.Context, userID string) ([]models.CalendarSource, error) {
	sources, err := s.repo.List(ctx, models.CalendarSourceFilter{UserID: userID})
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to list calendar sources")
	}
	if sources == nil {
		sources = []models.CalendarSource{}
	}
	return sources, nil
}

// Delete unsubscribes userID from a feed.
func (s *CalendarSourceService) Delete(ctx context.Context, id, userID string) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "calendar source not found")
		}
		return appErrors.WrapAs(err, appErrors.ErrInternal, "failed to delete calendar source")
	}
	s.invalidate(ctx, userID)
	return nil
}

// invalidate drops cached busy blocks after a subscription change. A failure
// only leaves stale entries until their TTL, so the write still succeeds.
func (s *CalendarSourceService) invalidate(ctx context.Context, userID string) {
	if s.busy == nil {
		return
	}
	if err := s.busy.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("failed to invalidate busy block cache", zap.String("user_id", userID), zap.Error(err))
	}
}

func normaliseFeedURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(raw), "webcal://") {
		return "https://" + raw[len("webcal://"):]
	}
	return raw
}
