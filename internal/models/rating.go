package models

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	MinRating  = decimal.Zero
	MaxRating  = decimal.NewFromInt(5)
	RatingStep = decimal.NewFromFloat(0.5)
)

// Rating is one user's score for an event. (event_id, user_id) is unique.
type Rating struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	EventID   uint            `gorm:"not null;uniqueIndex:idx_rating_event_user" json:"event_id"`
	UserID    uint            `gorm:"not null;uniqueIndex:idx_rating_event_user" json:"user_id"`
	Rating    decimal.Decimal `gorm:"type:numeric(2,1);not null;check:rating >= 0 AND rating <= 5" json:"rating"`
	Review    string          `gorm:"type:text;not null;default:''" json:"review"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	Event *Event `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
}

// ValidRating reports whether v is a half-point step within [0, 5].
func ValidRating(v decimal.Decimal) bool {
	if v.LessThan(MinRating) || v.GreaterThan(MaxRating) {
		return false
	}
	return v.Mod(RatingStep).IsZero()
}
