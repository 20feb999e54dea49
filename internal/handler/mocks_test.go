package handler

import (
	"context"

	"github.com/joinit/events-api/internal/identity"
	"github.com/joinit/events-api/internal/models"
	"github.com/joinit/events-api/internal/repository"
	"github.com/joinit/events-api/internal/service"
	"github.com/shopspring/decimal"
)

// --- Mock EventService ---

type mockEventService struct {
	createFn   func(ctx context.Context, user identity.User, in service.EventInput) (*models.Event, error)
	updateFn   func(ctx context.Context, user identity.User, id uint, in service.EventInput, fields []string) (*models.Event, error)
	cancelFn   func(ctx context.Context, user identity.User, id uint) (bool, error)
	getFn      func(ctx context.Context, id uint) (*models.Event, error)
	searchFn   func(ctx context.Context, filter repository.EventFilter, page int) (*service.EventPage, error)
	listAllFn  func(ctx context.Context, user identity.User, page int) (*service.EventPage, error)
	listMineFn func(ctx context.Context, user identity.User, page int) (*service.EventPage, error)
	setCoverFn func(ctx context.Context, user identity.User, id uint, filename string, data []byte) (*models.Event, error)
}

func (m *mockEventService) CreateEvent(ctx context.Context, user identity.User, in service.EventInput) (*models.Event, error) {
	return m.createFn(ctx, user, in)
}
func (m *mockEventService) UpdateEvent(ctx context.Context, user identity.User, id uint, in service.EventInput, fields []string) (*models.Event, error) {
	return m.updateFn(ctx, user, id, in, fields)
}
func (m *mockEventService) CancelEvent(ctx context.Context, user identity.User, id uint) (bool, error) {
	return m.cancelFn(ctx, user, id)
}
func (m *mockEventService) GetEvent(ctx context.Context, id uint) (*models.Event, error) {
	return m.getFn(ctx, id)
}
func (m *mockEventService) ListPublic(ctx context.Context, page int) (*service.EventPage, error) {
	return m.searchFn(ctx, repository.EventFilter{}, page)
}
func (m *mockEventService) Search(ctx context.Context, filter repository.EventFilter, page int) (*service.EventPage, error) {
	return m.searchFn(ctx, filter, page)
}
func (m *mockEventService) ListAll(ctx context.Context, user identity.User, page int) (*service.EventPage, error) {
	return m.listAllFn(ctx, user, page)
}
func (m *mockEventService) ListMine(ctx context.Context, user identity.User, page int) (*service.EventPage, error) {
	return m.listMineFn(ctx, user, page)
}
func (m *mockEventService) SetCover(ctx context.Context, user identity.User, id uint, filename string, data []byte) (*models.Event, error) {
	return m.setCoverFn(ctx, user, id, filename, data)
}
func (m *mockEventService) RemoveCover(ctx context.Context, user identity.User, id uint) (*models.Event, error) {
	return m.setCoverFn(ctx, user, id, "", nil)
}

// --- Mock ParticipationService ---

type mockParticipationService struct {
	joinFn  func(ctx context.Context, user identity.User, eventID uint) (*models.Participation, error)
	leaveFn func(ctx context.Context, user identity.User, eventID uint) error
	listFn  func(ctx context.Context, eventID uint) ([]models.Participation, error)
}

func (m *mockParticipationService) Join(ctx context.Context, user identity.User, eventID uint) (*models.Participation, error) {
	return m.joinFn(ctx, user, eventID)
}
func (m *mockParticipationService) Leave(ctx context.Context, user identity.User, eventID uint) error {
	return m.leaveFn(ctx, user, eventID)
}
func (m *mockParticipationService) ListParticipants(ctx context.Context, eventID uint) ([]models.Participation, error) {
	return m.listFn(ctx, eventID)
}

// --- Mock RatingService ---

type mockRatingService struct {
	rateFn   func(ctx context.Context, user identity.User, eventID uint, score decimal.Decimal, review string) (*service.RatingResult, error)
	updateFn func(ctx context.Context, user identity.User, eventID uint, score *decimal.Decimal, review *string) (*service.RatingResult, error)
	deleteFn func(ctx context.Context, user identity.User, eventID uint) error
	listFn   func(ctx context.Context, eventID uint) (*service.RatingSummary, error)
}

func (m *mockRatingService) Rate(ctx context.Context, user identity.User, eventID uint, score decimal.Decimal, review string) (*service.RatingResult, error) {
	return m.rateFn(ctx, user, eventID, score, review)
}
func (m *mockRatingService) UpdateRating(ctx context.Context, user identity.User, eventID uint, score *decimal.Decimal, review *string) (*service.RatingResult, error) {
	return m.updateFn(ctx, user, eventID, score, review)
}
func (m *mockRatingService) DeleteRating(ctx context.Context, user identity.User, eventID uint) error {
	return m.deleteFn(ctx, user, eventID)
}
func (m *mockRatingService) ListRatings(ctx context.Context, eventID uint) (*service.RatingSummary, error) {
	return m.listFn(ctx, eventID)
}

// --- Mock FavoriteService ---

type mockFavoriteService struct {
	toggleFn func(ctx context.Context, user identity.User, eventID uint) (bool, error)
	isFn     func(ctx context.Context, user identity.User, eventID uint) (bool, error)
	listFn   func(ctx context.Context, user identity.User) ([]models.Event, error)
}

func (m *mockFavoriteService) Toggle(ctx context.Context, user identity.User, eventID uint) (bool, error) {
	return m.toggleFn(ctx, user, eventID)
}
func (m *mockFavoriteService) IsFavorite(ctx context.Context, user identity.User, eventID uint) (bool, error) {
	return m.isFn(ctx, user, eventID)
}
func (m *mockFavoriteService) ListFavorites(ctx context.Context, user identity.User) ([]models.Event, error) {
	return m.listFn(ctx, user)
}
