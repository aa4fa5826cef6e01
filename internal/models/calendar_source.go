package models

import "time"

// CalendarSource is an ICS feed a respondent subscribed to.
type CalendarSource struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	URL       string    `db:"url" json:"-"`
	Enabled   bool      `db:"enabled" json:"enabled"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CalendarSourceFilter narrows down calendar source listings.
type CalendarSourceFilter struct {
	UserID      string
	EnabledOnly bool
}
