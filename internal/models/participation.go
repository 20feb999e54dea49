package models

import "time"

// Participation records that a user joined an event. (event_id, user_id) is unique.
type Participation struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	EventID           uint      `gorm:"not null;uniqueIndex:idx_participation_event_user" json:"event_id"`
	UserID            uint      `gorm:"not null;uniqueIndex:idx_participation_event_user;index" json:"user_id"`
	ParticipationDate time.Time `gorm:"autoCreateTime" json:"participation_date"`

	Event *Event `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
}
