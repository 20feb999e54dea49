package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// EventStatus is the event-level state machine. Active is initial, Cancelled is terminal.
type EventStatus string

const (
	StatusActive    EventStatus = "active"
	StatusCancelled EventStatus = "cancelled"
)

// Cancel returns the status after a cancellation request and whether it changed anything.
func (s EventStatus) Cancel() (EventStatus, bool) {
	switch s {
	case StatusActive:
		return StatusCancelled, true
	case StatusCancelled:
		return StatusCancelled, false
	default:
		panic("unknown event status: " + string(s))
	}
}

type Event struct {
	ID                    uint                        `gorm:"primaryKey" json:"id"`
	Name                  string                      `gorm:"size:50;not null" json:"name"`
	Description           string                      `gorm:"size:300;not null" json:"description"`
	Price                 decimal.Decimal             `gorm:"type:numeric(6,2);not null" json:"price"`
	Category              Category                    `gorm:"size:3;not null;default:''" json:"category"`
	Tags                  datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'" json:"tags"`
	Place                 string                      `gorm:"size:200;not null" json:"place"`
	EventDate             time.Time                   `gorm:"not null;index" json:"event_date"`
	ParticipationDeadline time.Time                   `gorm:"not null" json:"participation_deadline"`
	CreatedBy             uint                        `gorm:"not null;index" json:"created_by"`
	MaxParticipants       *int                        `gorm:"check:max_participants > 0" json:"max_participants"`
	IsPrivate             bool                        `gorm:"not null;default:false" json:"is_private"`
	Status                EventStatus                 `gorm:"type:varchar(16);not null;default:'active';index" json:"status"`
	CoverImageHash        *string                     `gorm:"size:64;index" json:"-"`
	CoverImage            *string                     `json:"cover_image"`
	CreationTS            time.Time                   `gorm:"column:creation_ts;autoCreateTime" json:"creation_ts"`
	LastModifiedTS        time.Time                   `gorm:"column:last_modified_ts;autoUpdateTime" json:"last_modified_ts"`
}

func (e *Event) Cancelled() bool {
	return e.Status == StatusCancelled
}

// Full reports whether joinedCount has reached the capacity. Unlimited events are never full.
func (e *Event) Full(joinedCount int64) bool {
	return e.MaxParticipants != nil && joinedCount >= int64(*e.MaxParticipants)
}

// DeadlinePassed reports whether joining is closed at instant now.
func (e *Event) DeadlinePassed(now time.Time) bool {
	return now.After(e.ParticipationDeadline)
}
