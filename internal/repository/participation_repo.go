package repository

import (
	"context"

	"github.com/joinit/events-api/internal/models"
	"gorm.io/gorm"
)

type ParticipationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, p *models.Participation) error
	Delete(ctx context.Context, tx *gorm.DB, eventID, userID uint) (int64, error)
	Exists(ctx context.Context, tx *gorm.DB, eventID, userID uint) (bool, error)
	CountByEvent(ctx context.Context, tx *gorm.DB, eventID uint) (int64, error)
	FindByEventID(ctx context.Context, eventID uint) ([]models.Participation, error)
}

type participationRepository struct {
	db *gorm.DB
}

func NewParticipationRepository(db *gorm.DB) ParticipationRepository {
	return &participationRepository{db: db}
}

func (r *participationRepository) Create(ctx context.Context, tx *gorm.DB, p *models.Participation) error {
	return conn(r.db, tx).WithContext(ctx).Create(p).Error
}

func (r *participationRepository) Delete(ctx context.Context, tx *gorm.DB, eventID, userID uint) (int64, error) {
	res := conn(r.db, tx).WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&models.Participation{})
	return res.RowsAffected, res.Error
}

func (r *participationRepository) Exists(ctx context.Context, tx *gorm.DB, eventID, userID uint) (bool, error) {
	var count int64
	err := conn(r.db, tx).WithContext(ctx).
		Model(&models.Participation{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count).Error
	return count > 0, err
}

// CountByEvent counts ledger rows; capacity is never tracked as a denormalized counter.
func (r *participationRepository) CountByEvent(ctx context.Context, tx *gorm.DB, eventID uint) (int64, error) {
	var count int64
	err := conn(r.db, tx).WithContext(ctx).
		Model(&models.Participation{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	return count, err
}

func (r *participationRepository) FindByEventID(ctx context.Context, eventID uint) ([]models.Participation, error) {
	participations := []models.Participation{}
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("participation_date ASC, id ASC").
		Find(&participations).Error; err != nil {
		return nil, err
	}
	return participations, nil
}
