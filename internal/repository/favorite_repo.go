package repository

import (
	"context"

	"github.com/joinit/events-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FavoriteRepository interface {
	// Insert returns false when the row already existed.
	Insert(ctx context.Context, tx *gorm.DB, fav *models.Favorite) (bool, error)
	Delete(ctx context.Context, tx *gorm.DB, eventID, userID uint) (int64, error)
	Exists(ctx context.Context, eventID, userID uint) (bool, error)
	FindByUserID(ctx context.Context, userID uint) ([]models.Favorite, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Insert(ctx context.Context, tx *gorm.DB, fav *models.Favorite) (bool, error) {
	res := conn(r.db, tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(fav)
	return res.RowsAffected > 0, res.Error
}

func (r *favoriteRepository) Delete(ctx context.Context, tx *gorm.DB, eventID, userID uint) (int64, error) {
	res := conn(r.db, tx).WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&models.Favorite{})
	return res.RowsAffected, res.Error
}

func (r *favoriteRepository) Exists(ctx context.Context, eventID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *favoriteRepository) FindByUserID(ctx context.Context, userID uint) ([]models.Favorite, error) {
	favorites := []models.Favorite{}
	if err := r.db.WithContext(ctx).
		Preload("Event").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&favorites).Error; err != nil {
		return nil, err
	}
	return favorites, nil
}
