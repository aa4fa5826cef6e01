package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/availability-api/internal/dto"
	"github.com/noah-isme/availability-api/internal/models"
	"github.com/noah-isme/availability-api/internal/overlay"
	appErrors "github.com/noah-isme/availability-api/pkg/errors"
)

type eventRepository interface {
	FindByID(ctx context.Context, id string) (*models.Event, error)
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error)
	Create(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id, ownerID string) error
}

// EventService manages availability event definitions.
type EventService struct {
	repo      eventRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEventService builds the service.
func NewEventService(repo eventRepository, validate *validator.Validate, logger *zap.Logger) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{repo: repo, validator: validate, logger: logger}
}

// Create validates and stores a new event. Dates are normalised to RFC 3339
// UTC and must be chronological.
func (s *EventService) Create(ctx context.Context, ownerID string, req dto.CreateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid event payload")
	}

	ev, err := eventFromPayload(req.Type, req.Dates, req.Duration, time.UTC)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(ev.Dates); i++ {
		if ev.Dates[i].Before(ev.Dates[i-1]) {
			return nil, appErrors.Clone(appErrors.ErrInvalidEvent, "event dates must be in chronological order")
		}
	}

	normalised := make([]string, len(ev.Dates))
	for i, d := range ev.Dates {
		normalised[i] = d.UTC().Format(time.RFC3339)
	}
	raw, err := json.Marshal(normalised)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to encode event dates")
	}

	event := &models.Event{
		OwnerID:  ownerID,
		Name:     req.Name,
		Type:     string(ev.Kind),
		Dates:    types.JSONText(raw),
		Duration: req.Duration,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to create event")
	}
	s.logger.Info("event created", zap.String("event_id", event.ID), zap.String("type", event.Type), zap.Int("dates", len(normalised)))
	return event, nil
}

// Get returns a single event.
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load event")
	}
	return event, nil
}

// List returns the caller's events with pagination metadata.
func (s *EventService) List(ctx context.Context, filter models.EventFilter) ([]models.Event, *models.Pagination, error) {
	if filter.Type != "" {
		if _, err := overlay.ParseKind(filter.Type); err != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "type must be SPECIFIC_DATES or DAYS_OF_WEEK")
		}
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to list events")
	}
	return events, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Delete removes an event owned by ownerID.
func (s *EventService) Delete(ctx context.Context, id, ownerID string) error {
	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return appErrors.WrapAs(err, appErrors.ErrInternal, "failed to delete event")
	}
	return nil
}

// eventFromPayload turns wire fields into a validated engine event.
func eventFromPayload(kind string, dates []string, duration float64, loc *time.Location) (overlay.Event, error) {
	k, err := overlay.ParseKind(kind)
	if err != nil {
		return overlay.Event{}, appErrors.WrapAs(err, appErrors.ErrInvalidEvent, "type must be SPECIFIC_DATES or DAYS_OF_WEEK")
	}
	ev := overlay.Event{Kind: k, Duration: duration, Dates: make([]time.Time, 0, len(dates))}
	for _, raw := range dates {
		ts, err := overlay.ParseTime(raw, loc)
		if err != nil {
			return overlay.Event{}, appErrors.WrapAs(err, appErrors.ErrInvalidEvent, "event dates must be ISO-8601 timestamps")
		}
		ev.Dates = append(ev.Dates, ts)
	}
	if err := ev.Validate(); err != nil {
		return overlay.Event{}, translateOverlayError(err)
	}
	return ev, nil
}

// translateOverlayError maps engine sentinels onto API errors.
func translateOverlayError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, overlay.ErrNoDates):
		return appErrors.WrapAs(err, appErrors.ErrInvalidEvent, "event has no dates")
	case errors.Is(err, overlay.ErrNonPositiveDuration):
		return appErrors.WrapAs(err, appErrors.ErrInvalidEvent, "event duration must be positive")
	case errors.Is(err, overlay.ErrUnknownKind):
		return appErrors.WrapAs(err, appErrors.ErrInvalidEvent, "type must be SPECIFIC_DATES or DAYS_OF_WEEK")
	case errors.Is(err, overlay.ErrInvalidBusyBlock):
		return appErrors.WrapAs(err, appErrors.ErrValidation, err.Error())
	default:
		return appErrors.WrapAs(err, appErrors.ErrInternal, "failed to compute overlay")
	}
}
