package service

import (
	"context"
	"fmt"
	"time"

	"github.com/joinit/events-api/internal/identity"
	"github.com/joinit/events-api/internal/models"
	"github.com/joinit/events-api/internal/repository"
	"gorm.io/gorm"
)

type FavoriteService interface {
	// Toggle adds the favorite when absent and removes it when present.
	Toggle(ctx context.Context, user identity.User, eventID uint) (added bool, err error)
	IsFavorite(ctx context.Context, user identity.User, eventID uint) (bool, error)
	ListFavorites(ctx context.Context, user identity.User) ([]models.Event, error)
}

type favoriteService struct {
	tx        repository.TxRunner
	eventRepo repository.EventRepository
	favorites repository.FavoriteRepository
	publisher Publisher
	now       func() time.Time
}

func NewFavoriteService(
	tx repository.TxRunner,
	eventRepo repository.EventRepository,
	favorites repository.FavoriteRepository,
	publisher Publisher,
	now func() time.Time,
) FavoriteService {
	if now == nil {
		now = time.Now
	}
	return &favoriteService{tx: tx, eventRepo: eventRepo, favorites: favorites, publisher: publisher, now: now}
}

func (s *favoriteService) Toggle(ctx context.Context, user identity.User, eventID uint) (bool, error) {
	if user.ID == 0 {
		return false, ErrNotAuthenticated
	}
	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		return false, notFoundOr(err, ErrEventNotFound)
	}

	var added bool
	err := s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		removed, err := s.favorites.Delete(ctx, tx, eventID, user.ID)
		if err != nil {
			return fmt.Errorf("delete favorite: %w", err)
		}
		if removed > 0 {
			added = false
			return nil
		}

		// A concurrent toggle may have inserted first; either way the row now exists.
		if _, err := s.favorites.Insert(ctx, tx, &models.Favorite{EventID: eventID, UserID: user.ID}); err != nil {
			return fmt.Errorf("insert favorite: %w", err)
		}
		added = true
		return nil
	})
	if err != nil {
		return false, err
	}

	key := KeyFavoriteRemoved
	if added {
		key = KeyFavoriteAdded
	}
	notify(s.publisher, key, eventID, user.ID, nil, s.now())
	return added, nil
}

func (s *favoriteService) IsFavorite(ctx context.Context, user identity.User, eventID uint) (bool, error) {
	if user.ID == 0 {
		return false, ErrNotAuthenticated
	}
	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		return false, notFoundOr(err, ErrEventNotFound)
	}
	return s.favorites.Exists(ctx, eventID, user.ID)
}

func (s *favoriteService) ListFavorites(ctx context.Context, user identity.User) ([]models.Event, error) {
	if user.ID == 0 {
		return nil, ErrNotAuthenticated
	}

	favorites, err := s.favorites.FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	events := make([]models.Event, 0, len(favorites))
	for _, f := range favorites {
		if f.Event != nil {
			events = append(events, *f.Event)
		}
	}
	return events, nil
}
