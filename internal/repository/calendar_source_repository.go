package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/availability-api/internal/models"
)

const calendarSourceColumns = `id, user_id, name, url, enabled, created_at, updated_at`

// CalendarSourceRepository persists subscribed ICS feeds.
type CalendarSourceRepository struct {
	db *sqlx.DB
}

// NewCalendarSourceRepository constructs the repository.
func NewCalendarSourceRepository(db *sqlx.DB) *CalendarSourceRepository {
	return &CalendarSourceRepository{db: db}
}

// List returns sources for a user, or every source when UserID is empty.
func (r *CalendarSourceRepository) List(ctx context.Context, filter models.CalendarSourceFilter) ([]models.CalendarSource, error) {
	query := `SELECT ` + calendarSourceColumns + ` FROM calendar_sources WHERE 1=1`
	var args []interface{}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.EnabledOnly {
		query += " AND enabled = TRUE"
	}
	query += " ORDER BY created_at ASC"

	var sources []models.CalendarSource
	if err := r.db.SelectContext(ctx, &sources, query, args...); err != nil {
		return nil, fmt.Errorf("list calendar sources: %w", err)
	}
	return sources, nil
}

// Create inserts a source.
func (r *CalendarSourceRepository) Create(ctx context.Context, source *models.CalendarSource) error {
	if source.ID == "" {
		source.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	source.CreatedAt = now
	source.UpdatedAt = now

	const query = `INSERT INTO calendar_sources (id, user_id, name, url, enabled, created_at, updated_at)
		VALUES (:id, :user_id, :name, :url, :enabled, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, source); err != nil {
		return fmt.Errorf("create calendar source: %w", err)
	}
	return nil
}

// Delete removes a user's source.
func (r *CalendarSourceRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM calendar_sources WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete calendar source: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete calendar source rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
