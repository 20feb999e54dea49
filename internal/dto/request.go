package dto

import (
	"time"

	"github.com/joinit/events-api/internal/models"
	"github.com/shopspring/decimal"
)

// EventRequest is the body of create, full update and partial update.
// Partial updates decode into the same struct and apply only the keys present.
type EventRequest struct {
	Name                  string           `json:"name" validate:"required,max=50"`
	Description           string           `json:"description" validate:"max=300"`
	Price                 *decimal.Decimal `json:"price" validate:"required"`
	Category              models.Category  `json:"category"`
	Tags                  []string         `json:"tags" validate:"dive,max=30"`
	Place                 string           `json:"place" validate:"required,max=200"`
	EventDate             *time.Time       `json:"event_date" validate:"required"`
	ParticipationDeadline *time.Time       `json:"participation_deadline" validate:"required"`
	MaxParticipants       *int             `json:"max_participants" validate:"omitempty,gt=0"`
	IsPrivate             bool             `json:"is_private"`
}

type RateRequest struct {
	Rating *decimal.Decimal `json:"rating" validate:"required"`
	Review string           `json:"review" validate:"max=2000"`
}

type UpdateRatingRequest struct {
	Rating *decimal.Decimal `json:"rating"`
	Review *string          `json:"review" validate:"omitempty,max=2000"`
}
