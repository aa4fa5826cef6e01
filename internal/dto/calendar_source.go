package dto

// CreateCalendarSourceRequest subscribes the caller to an ICS feed.
type CreateCalendarSourceRequest struct {
	Name string `json:"name" validate:"required,max=120"`
	URL  string `json:"url" validate:"required,url"`
}
