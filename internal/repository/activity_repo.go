package repository

import (
	"context"

	"github.com/joinit/events-api/internal/models"
	"gorm.io/gorm"
)

type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	FindByEventID(ctx context.Context, eventID uint, limit int) ([]models.Activity, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *activityRepository) FindByEventID(ctx context.Context, eventID uint, limit int) ([]models.Activity, error) {
	activities := []models.Activity{}
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("occurred_at DESC, id DESC").
		Limit(limit).
		Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}
