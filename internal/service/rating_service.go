package service

import (
	"context"
	"fmt"
	"time"

	"github.com/joinit/events-api/internal/identity"
	"github.com/joinit/events-api/internal/models"
	"github.com/joinit/events-api/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RatingResult pairs a written rating with the event average after the write.
type RatingResult struct {
	Rating  *models.Rating
	Average *decimal.Decimal
}

type RatingSummary struct {
	Ratings []models.Rating
	Average *decimal.Decimal
}

type RatingService interface {
	Rate(ctx context.Context, user identity.User, eventID uint, score decimal.Decimal, review string) (*RatingResult, error)
	UpdateRating(ctx context.Context, user identity.User, eventID uint, score *decimal.Decimal, review *string) (*RatingResult, error)
	DeleteRating(ctx context.Context, user identity.User, eventID uint) error
	ListRatings(ctx context.Context, eventID uint) (*RatingSummary, error)
}

type ratingService struct {
	tx             repository.TxRunner
	eventRepo      repository.EventRepository
	participations repository.ParticipationRepository
	ratings        repository.RatingRepository
	publisher      Publisher
	now            func() time.Time
}

func NewRatingService(
	tx repository.TxRunner,
	eventRepo repository.EventRepository,
	participations repository.ParticipationRepository,
	ratings repository.RatingRepository,
	publisher Publisher,
	now func() time.Time,
) RatingService {
	if now == nil {
		now = time.Now
	}
	return &ratingService{
		tx:             tx,
		eventRepo:      eventRepo,
		participations: participations,
		ratings:        ratings,
		publisher:      publisher,
		now:            now,
	}
}

func validateScore(score decimal.Decimal) error {
	if !models.ValidRating(score) {
		return NewValidationError("rating", "Rating must be between 0.0 and 5.0 in increments of 0.5.")
	}
	return nil
}

// Rate requires a participation row at the time of rating. Leaving the event
// later does not remove the rating.
func (s *ratingService) Rate(ctx context.Context, user identity.User, eventID uint, score decimal.Decimal, review string) (*RatingResult, error) {
	if user.ID == 0 {
		return nil, ErrNotAuthenticated
	}
	if err := validateScore(score); err != nil {
		return nil, err
	}

	result := &RatingResult{}
	err := s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		event, err := s.eventRepo.FindByIDForUpdate(ctx, tx, eventID)
		if err != nil {
			return notFoundOr(err, ErrEventNotFound)
		}
		if !user.CanComment {
			return ErrCommentNotAllowed
		}
		if event.Cancelled() {
			return ErrEventCancelled
		}

		joined, err := s.participations.Exists(ctx, tx, eventID, user.ID)
		if err != nil {
			return err
		}
		if !joined {
			return ErrNotJoined
		}

		if _, err := s.ratings.FindByUserAndEvent(ctx, tx, eventID, user.ID); err == nil {
			return ErrAlreadyRated
		} else if !repository.IsNotFound(err) {
			return err
		}

		rating := &models.Rating{EventID: eventID, UserID: user.ID, Rating: score, Review: review}
		if err := s.ratings.Create(ctx, tx, rating); err != nil {
			if repository.IsUniqueViolation(err) {
				return ErrAlreadyRated
			}
			return fmt.Errorf("create rating: %w", err)
		}
		result.Rating = rating

		avg, err := s.average(ctx, tx, eventID)
		if err != nil {
			return err
		}
		result.Average = avg
		return nil
	})
	if err != nil {
		return nil, err
	}

	notify(s.publisher, KeyRatingCreated, eventID, user.ID, map[string]any{"rating": score}, s.now())
	return result, nil
}

// UpdateRating rewrites the caller's rating in place. A nil review keeps the
// previous one.
func (s *ratingService) UpdateRating(ctx context.Context, user identity.User, eventID uint, score *decimal.Decimal, review *string) (*RatingResult, error) {
	if user.ID == 0 {
		return nil, ErrNotAuthenticated
	}
	if score != nil {
		if err := validateScore(*score); err != nil {
			return nil, err
		}
	}

	result := &RatingResult{}
	err := s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		event, err := s.eventRepo.FindByIDForUpdate(ctx, tx, eventID)
		if err != nil {
			return notFoundOr(err, ErrEventNotFound)
		}
		if !user.CanComment {
			return ErrCommentNotAllowed
		}
		if event.Cancelled() {
			return ErrEventCancelled
		}

		existing, err := s.ratings.FindByUserAndEvent(ctx, tx, eventID, user.ID)
		if err != nil {
			return notFoundOr(err, ErrNotRated)
		}

		if score != nil {
			existing.Rating = *score
		}
		if review != nil {
			existing.Review = *review
		}
		if err := s.ratings.UpdateScore(ctx, tx, existing); err != nil {
			return fmt.Errorf("update rating: %w", err)
		}
		result.Rating = existing

		avg, err := s.average(ctx, tx, eventID)
		if err != nil {
			return err
		}
		result.Average = avg
		return nil
	})
	if err != nil {
		return nil, err
	}

	notify(s.publisher, KeyRatingUpdated, eventID, user.ID, map[string]any{"rating": result.Rating.Rating}, s.now())
	return result, nil
}

func (s *ratingService) DeleteRating(ctx context.Context, user identity.User, eventID uint) error {
	if user.ID == 0 {
		return ErrNotAuthenticated
	}

	err := s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.eventRepo.FindByIDForUpdate(ctx, tx, eventID); err != nil {
			return notFoundOr(err, ErrEventNotFound)
		}
		removed, err := s.ratings.Delete(ctx, tx, eventID, user.ID)
		if err != nil {
			return fmt.Errorf("delete rating: %w", err)
		}
		if removed == 0 {
			return ErrRatingNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	notify(s.publisher, KeyRatingDeleted, eventID, user.ID, nil, s.now())
	return nil
}

func (s *ratingService) ListRatings(ctx context.Context, eventID uint) (*RatingSummary, error) {
	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		return nil, notFoundOr(err, ErrEventNotFound)
	}

	ratings, err := s.ratings.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	avg, err := s.average(ctx, nil, eventID)
	if err != nil {
		return nil, err
	}
	return &RatingSummary{Ratings: ratings, Average: avg}, nil
}

// average is the mean rounded to one decimal place, nil when nobody rated.
func (s *ratingService) average(ctx context.Context, tx *gorm.DB, eventID uint) (*decimal.Decimal, error) {
	avg, err := s.ratings.Average(ctx, tx, eventID)
	if err != nil {
		return nil, fmt.Errorf("average rating: %w", err)
	}
	if !avg.Valid {
		return nil, nil
	}
	rounded := avg.Decimal.Round(1)
	return &rounded, nil
}
