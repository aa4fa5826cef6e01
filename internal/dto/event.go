package dto

// CreateEventRequest defines an availability event.
type CreateEventRequest struct {
	Name     string   `json:"name" validate:"required,max=200"`
	Type     string   `json:"type" validate:"required,oneof=SPECIFIC_DATES DAYS_OF_WEEK"`
	Dates    []string `json:"dates" validate:"required,min=1,max=366,dive,required"`
	Duration float64  `json:"duration" validate:"gt=0,lte=24"`
}
