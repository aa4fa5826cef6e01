package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/availability-api/internal/models"
)

const eventColumns = `id, owner_id, name, type, dates, duration, created_at, updated_at`

// EventRepository persists availability events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs the repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// FindByID returns a single event.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 LIMIT 1`
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find event by id: %w", err)
	}
	return &event, nil
}

// List returns events matching the filter with the total count.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	baseQuery := `FROM events WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.OwnerID != "" {
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", len(args)+1))
		args = append(args, filter.OwnerID)
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", eventColumns, baseQuery, pageSize, offset)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", baseQuery), args...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}
	return events, total, nil
}

// Create inserts a new event.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	if len(event.Dates) == 0 {
		event.Dates = []byte("[]")
	}

	const query = `INSERT INTO events (id, owner_id, name, type, dates, duration, created_at, updated_at)
		VALUES (:id, :owner_id, :name, :type, :dates, :duration, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Delete removes an event owned by ownerID.
func (r *EventRepository) Delete(ctx context.Context, id, ownerID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
