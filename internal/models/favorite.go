package models

import "time"

type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   uint      `gorm:"not null;uniqueIndex:idx_favorite_event_user" json:"event_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorite_event_user;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	Event *Event `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"event,omitempty"`
}
