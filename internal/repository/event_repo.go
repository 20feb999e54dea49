package repository

import (
	"context"
	"strings"

	"github.com/joinit/events-api/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventFilter narrows an event listing. Zero values are ignored.
type EventFilter struct {
	PublicOnly  bool
	CreatedBy   *uint
	Name        string
	Place       string
	Category    *models.Category
	Tags        []string
	PriceMin    *decimal.Decimal
	PriceMax    *decimal.Decimal
	MaxCapacity *int
}

type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Beyond reports whether the page starts past the last of total rows. It
// compares page counts rather than offsets so huge page numbers cannot wrap.
func (p Page) Beyond(total int64) bool {
	if p.Size <= 0 {
		return true
	}
	pages := (total + int64(p.Size) - 1) / int64(p.Size)
	return int64(p.Number-1) >= pages
}

type EventRepository interface {
	Create(ctx context.Context, tx *gorm.DB, event *models.Event) error
	Save(ctx context.Context, tx *gorm.DB, event *models.Event) error
	FindByID(ctx context.Context, id uint) (*models.Event, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.EventStatus) error
	UpdateCover(ctx context.Context, tx *gorm.DB, id uint, hash, reference *string) error
	Search(ctx context.Context, filter EventFilter, page Page) ([]models.Event, int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	return conn(r.db, tx).WithContext(ctx).Create(event).Error
}

func (r *eventRepository) Save(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	return conn(r.db, tx).WithContext(ctx).Save(event).Error
}

func (r *eventRepository) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// FindByIDForUpdate acquires a row-level lock on the event within the given transaction.
func (r *eventRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
	var event models.Event
	if err := conn(r.db, tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.EventStatus) error {
	return conn(r.db, tx).WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *eventRepository) UpdateCover(ctx context.Context, tx *gorm.DB, id uint, hash, reference *string) error {
	return conn(r.db, tx).WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", id).
		Updates(map[string]any{"cover_image_hash": hash, "cover_image": reference}).Error
}

func (r *eventRepository) Search(ctx context.Context, filter EventFilter, page Page) ([]models.Event, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Model(&models.Event{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	events := []models.Event{}
	if page.Beyond(total) {
		return events, total, nil
	}

	err := r.filtered(ctx, filter).
		Order("event_date DESC, id DESC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&events).Error
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) filtered(ctx context.Context, f EventFilter) *gorm.DB {
	q := r.db.WithContext(ctx)

	if f.PublicOnly {
		q = q.Where("is_private = ? AND status = ?", false, models.StatusActive)
	}
	if f.CreatedBy != nil {
		q = q.Where("created_by = ?", *f.CreatedBy)
	}
	if name := strings.TrimSpace(f.Name); name != "" {
		q = q.Where("name ILIKE ?", containsPattern(name))
	}
	if place := strings.TrimSpace(f.Place); place != "" {
		q = q.Where("place ILIKE ?", containsPattern(place))
	}
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.PriceMin != nil {
		q = q.Where("price >= ?", *f.PriceMin)
	}
	if f.PriceMax != nil {
		q = q.Where("price <= ?", *f.PriceMax)
	}
	if f.MaxCapacity != nil {
		q = q.Where("max_participants IS NOT NULL AND max_participants <= ?", *f.MaxCapacity)
	}
	if len(f.Tags) > 0 {
		// Any-overlap: one jsonb containment test per requested tag.
		anyTag := r.db.Where("tags @> ?::jsonb", datatypes.JSONSlice[string]{f.Tags[0]})
		for _, tag := range f.Tags[1:] {
			anyTag = anyTag.Or("tags @> ?::jsonb", datatypes.JSONSlice[string]{tag})
		}
		q = q.Where(anyTag)
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
