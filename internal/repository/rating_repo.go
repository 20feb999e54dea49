package repository

import (
	"context"

	"github.com/joinit/events-api/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RatingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, rating *models.Rating) error
	FindByUserAndEvent(ctx context.Context, tx *gorm.DB, eventID, userID uint) (*models.Rating, error)
	UpdateScore(ctx context.Context, tx *gorm.DB, rating *models.Rating) error
	Delete(ctx context.Context, tx *gorm.DB, eventID, userID uint) (int64, error)
	FindByEventID(ctx context.Context, eventID uint) ([]models.Rating, error)
	Average(ctx context.Context, tx *gorm.DB, eventID uint) (decimal.NullDecimal, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Create(ctx context.Context, tx *gorm.DB, rating *models.Rating) error {
	return conn(r.db, tx).WithContext(ctx).Create(rating).Error
}

func (r *ratingRepository) FindByUserAndEvent(ctx context.Context, tx *gorm.DB, eventID, userID uint) (*models.Rating, error) {
	var rating models.Rating
	err := conn(r.db, tx).WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// UpdateScore rewrites rating and review in place; created_at is left untouched.
func (r *ratingRepository) UpdateScore(ctx context.Context, tx *gorm.DB, rating *models.Rating) error {
	return conn(r.db, tx).WithContext(ctx).
		Model(rating).
		Updates(map[string]any{"rating": rating.Rating, "review": rating.Review}).Error
}

func (r *ratingRepository) Delete(ctx context.Context, tx *gorm.DB, eventID, userID uint) (int64, error) {
	res := conn(r.db, tx).WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&models.Rating{})
	return res.RowsAffected, res.Error
}

func (r *ratingRepository) FindByEventID(ctx context.Context, eventID uint) ([]models.Rating, error) {
	ratings := []models.Rating{}
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC, id ASC").
		Find(&ratings).Error; err != nil {
		return nil, err
	}
	return ratings, nil
}

// Average is NULL when the event has no ratings.
func (r *ratingRepository) Average(ctx context.Context, tx *gorm.DB, eventID uint) (decimal.NullDecimal, error) {
	var avg decimal.NullDecimal
	err := conn(r.db, tx).WithContext(ctx).
		Model(&models.Rating{}).
		Select("AVG(rating)").
		Where("event_id = ?", eventID).
		Row().
		Scan(&avg)
	return avg, err
}
