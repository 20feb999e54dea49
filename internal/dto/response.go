package dto

import (
	"time"

	"github.com/joinit/events-api/internal/models"
	"github.com/shopspring/decimal"
)

type EventResponse struct {
	ID                    uint            `json:"id"`
	Name                  string          `json:"name"`
	Description           string          `json:"description"`
	Price                 string          `json:"price"`
	Category              models.Category `json:"category"`
	CategoryLabel         string          `json:"category_label"`
	Tags                  []string        `json:"tags"`
	Place                 string          `json:"place"`
	EventDate             time.Time       `json:"event_date"`
	ParticipationDeadline time.Time       `json:"participation_deadline"`
	CreatedBy             uint            `json:"created_by"`
	MaxParticipants       *int            `json:"max_participants"`
	IsPrivate             bool            `json:"is_private"`
	Status                string          `json:"status"`
	Cancelled             bool            `json:"cancelled"`
	CoverImage            *string         `json:"cover_image"`
	CreationTS            time.Time       `json:"creation_ts"`
	LastModifiedTS        time.Time       `json:"last_modified_ts"`
}

// PageResponse wraps one page of a listing.
type PageResponse[T any] struct {
	Count      int64 `json:"count"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
	Results    []T   `json:"results"`
}

type ParticipationResponse struct {
	EventID           uint      `json:"event_id"`
	UserID            uint      `json:"user_id"`
	ParticipationDate time.Time `json:"participation_date"`
}

type RatingResponse struct {
	ID        uint      `json:"id"`
	EventID   uint      `json:"event_id"`
	UserID    uint      `json:"user_id"`
	Rating    string    `json:"rating"`
	Review    string    `json:"review"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RatingWriteResponse is returned by rate and update-rating.
type RatingWriteResponse struct {
	Rating        RatingResponse `json:"rating"`
	AverageRating *string        `json:"average_rating"`
}

type RatingListResponse struct {
	Count         int              `json:"count"`
	AverageRating *string          `json:"average_rating"`
	Results       []RatingResponse `json:"results"`
}

type FavoriteToggleResponse struct {
	Status     string `json:"status"`
	IsFavorite bool   `json:"is_favorite"`
}

type IsFavoriteResponse struct {
	IsFavorite bool `json:"is_favorite"`
}

type CategoryResponse struct {
	Code  models.Category `json:"code"`
	Label string          `json:"label"`
}

type ActivityResponse struct {
	Kind       string    `json:"kind"`
	ActorID    uint      `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

type DetailResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string            `json:"detail"`
	Code   string            `json:"code,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

func ToEventResponse(e *models.Event) EventResponse {
	tags := []string(e.Tags)
	if tags == nil {
		tags = []string{}
	}
	return EventResponse{
		ID:                    e.ID,
		Name:                  e.Name,
		Description:           e.Description,
		Price:                 e.Price.StringFixed(2),
		Category:              e.Category,
		CategoryLabel:         e.Category.Label(),
		Tags:                  tags,
		Place:                 e.Place,
		EventDate:             e.EventDate,
		ParticipationDeadline: e.ParticipationDeadline,
		CreatedBy:             e.CreatedBy,
		MaxParticipants:       e.MaxParticipants,
		IsPrivate:             e.IsPrivate,
		Status:                string(e.Status),
		Cancelled:             e.Cancelled(),
		CoverImage:            e.CoverImage,
		CreationTS:            e.CreationTS,
		LastModifiedTS:        e.LastModifiedTS,
	}
}

func ToEventResponses(events []models.Event) []EventResponse {
	resp := make([]EventResponse, len(events))
	for i := range events {
		resp[i] = ToEventResponse(&events[i])
	}
	return resp
}

func ToPageResponse(events []models.Event, total int64, page, pageSize int) PageResponse[EventResponse] {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return PageResponse[EventResponse]{
		Count:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		Results:    ToEventResponses(events),
	}
}

func ToParticipationResponses(rows []models.Participation) []ParticipationResponse {
	resp := make([]ParticipationResponse, len(rows))
	for i, p := range rows {
		resp[i] = ParticipationResponse{EventID: p.EventID, UserID: p.UserID, ParticipationDate: p.ParticipationDate}
	}
	return resp
}

func ToRatingResponse(r *models.Rating) RatingResponse {
	return RatingResponse{
		ID:        r.ID,
		EventID:   r.EventID,
		UserID:    r.UserID,
		Rating:    r.Rating.StringFixed(1),
		Review:    r.Review,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func ToRatingResponses(rows []models.Rating) []RatingResponse {
	resp := make([]RatingResponse, len(rows))
	for i := range rows {
		resp[i] = ToRatingResponse(&rows[i])
	}
	return resp
}

// FormatAverage renders an average with one decimal place, or nil when undefined.
func FormatAverage(avg *decimal.Decimal) *string {
	if avg == nil {
		return nil
	}
	s := avg.StringFixed(1)
	return &s
}

func ToActivityResponses(rows []models.Activity) []ActivityResponse {
	resp := make([]ActivityResponse, len(rows))
	for i, a := range rows {
		resp[i] = ActivityResponse{Kind: a.Kind, ActorID: a.ActorID, OccurredAt: a.OccurredAt}
		if len(a.Payload) > 0 {
			resp[i].Payload = a.Payload
		}
	}
	return resp
}

func ToCategoryResponses() []CategoryResponse {
	cats := models.Categories()
	resp := make([]CategoryResponse, len(cats))
	for i, c := range cats {
		resp[i] = CategoryResponse{Code: c, Label: c.Label()}
	}
	return resp
}
