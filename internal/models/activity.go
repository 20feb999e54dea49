package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Activity is a lifecycle message persisted by the activity consumer.
type Activity struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	EventID    uint           `gorm:"not null;index" json:"event_id"`
	Kind       string         `gorm:"size:40;not null" json:"kind"`
	ActorID    uint           `gorm:"not null" json:"actor_id"`
	Payload    datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	OccurredAt time.Time      `gorm:"not null" json:"occurred_at"`
	CreatedAt  time.Time      `json:"created_at"`
}

// LifecycleMessage is the JSON body published for every successful mutation.
type LifecycleMessage struct {
	Kind       string          `json:"kind"`
	EventID    uint            `json:"event_id"`
	ActorID    uint            `json:"actor_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data,omitempty"`
}
