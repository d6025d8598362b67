package entity

import (
	"time"
)

// Event - представление события на границе API
type Event struct {
	ID          string    `json:"id" example:"3f1c2a9b8e7d4c6a9b0e1f2a3b4c5d6e"`
	Title       string    `json:"title" example:"Launch"`
	Date        time.Time `json:"date" example:"2025-11-01T14:30:00Z"`
	Description *string   `json:"description" example:"Rooftop, 5th floor"`
}

// EventCreateRequest - тело POST /events
type EventCreateRequest struct {
	Title       string  `json:"title" validate:"required,min=1" example:"Launch"`
	Date        string  `json:"date" validate:"required,iso8601" example:"2025-11-01T14:30:00Z"`
	Description *string `json:"description" example:"Rooftop, 5th floor"`
}

// EventUpdateRequest - тело PUT /events/{id}; null и отсутствие поля равнозначны
type EventUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1" example:"Launch Party"`
	Date        *string `json:"date" validate:"omitempty,iso8601" example:"2025-11-02T18:00:00Z"`
	Description *string `json:"description" example:"Moved to the garden"`
}

// EventCreate - проверенные данные для создания
type EventCreate struct {
	Title       string
	Date        time.Time
	Description *string
}

// EventUpdate - проверенные данные для частичного обновления, nil = не менять
type EventUpdate struct {
	Title       *string
	Date        *time.Time
	Description *string
}

// Empty сообщает, что обновлять нечего
func (u EventUpdate) Empty() bool {
	return u.Title == nil && u.Date == nil && u.Description == nil
}
