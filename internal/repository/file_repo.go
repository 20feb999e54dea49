package repository

import (
	"context"
	"fmt"

	"github.com/joinit/events-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FileRepository keeps reference counts for content-addressed uploads.
type FileRepository interface {
	// Acquire makes sure a row for hash exists and locks it for the rest of tx.
	// A row deleted by a concurrent release between the insert and the lock is
	// inserted again.
	Acquire(ctx context.Context, tx *gorm.DB, hash string) (*models.StoredFile, error)
	FindForUpdate(ctx context.Context, tx *gorm.DB, hash string) (*models.StoredFile, error)
	Save(ctx context.Context, tx *gorm.DB, file *models.StoredFile) error
	Delete(ctx context.Context, tx *gorm.DB, hash string) error
}

type fileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

const acquireAttempts = 3

func (r *fileRepository) Acquire(ctx context.Context, tx *gorm.DB, hash string) (*models.StoredFile, error) {
	for attempt := 0; attempt < acquireAttempts; attempt++ {
		if err := conn(r.db, tx).WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.StoredFile{Hash: hash}).Error; err != nil {
			return nil, err
		}
		file, err := r.FindForUpdate(ctx, tx, hash)
		if err == nil {
			return file, nil
		}
		if !IsNotFound(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("stored file %s removed %d times while acquiring", hash, acquireAttempts)
}

func (r *fileRepository) FindForUpdate(ctx context.Context, tx *gorm.DB, hash string) (*models.StoredFile, error) {
	var file models.StoredFile
	if err := conn(r.db, tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("hash = ?", hash).
		First(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *fileRepository) Save(ctx context.Context, tx *gorm.DB, file *models.StoredFile) error {
	return conn(r.db, tx).WithContext(ctx).Save(file).Error
}

func (r *fileRepository) Delete(ctx context.Context, tx *gorm.DB, hash string) error {
	return conn(r.db, tx).WithContext(ctx).
		Where("hash = ?", hash).
		Delete(&models.StoredFile{}).Error
}
