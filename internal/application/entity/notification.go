package entity

import "time"

type NotificationType string

const (
	EventCreated NotificationType = "event_created"
	EventUpdated NotificationType = "event_updated"
	EventDeleted NotificationType = "event_deleted"
)

// Notification - сообщение об изменении события для Kafka
type Notification struct {
	Type       NotificationType `json:"type"`
	EventID    string           `json:"eventId"`
	Event      *Event           `json:"event,omitempty"` // nil для event_deleted
	OccurredAt time.Time        `json:"occurredAt"`
}
