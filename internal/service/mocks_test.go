package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/joinit/events-api/internal/models"
	"github.com/joinit/events-api/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- Mock TxRunner ---

type mockTx struct{}

func (mockTx) WithinTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

// lockingTx serializes transactions the way a row lock on the event would.
type lockingTx struct {
	mu *sync.Mutex
}

func (l lockingTx) WithinTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(nil)
}

// --- Mock EventRepository ---

type mockEventRepo struct {
	createFn       func(ctx context.Context, event *models.Event) error
	saveFn         func(ctx context.Context, event *models.Event) error
	findByIDFn     func(ctx context.Context, id uint) (*models.Event, error)
	updateStatusFn func(ctx context.Context, id uint, status models.EventStatus) error
	updateCoverFn  func(ctx context.Context, id uint, hash, reference *string) error
	searchFn       func(ctx context.Context, filter repository.EventFilter, page repository.Page) ([]models.Event, int64, error)
}

func (m *mockEventRepo) Create(ctx context.Context, _ *gorm.DB, event *models.Event) error {
	return m.createFn(ctx, event)
}
func (m *mockEventRepo) Save(ctx context.Context, _ *gorm.DB, event *models.Event) error {
	return m.saveFn(ctx, event)
}
func (m *mockEventRepo) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockEventRepo) FindByIDForUpdate(ctx context.Context, _ *gorm.DB, id uint) (*models.Event, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockEventRepo) UpdateStatus(ctx context.Context, _ *gorm.DB, id uint, status models.EventStatus) error {
	return m.updateStatusFn(ctx, id, status)
}
func (m *mockEventRepo) UpdateCover(ctx context.Context, _ *gorm.DB, id uint, hash, reference *string) error {
	return m.updateCoverFn(ctx, id, hash, reference)
}
func (m *mockEventRepo) Search(ctx context.Context, filter repository.EventFilter, page repository.Page) ([]models.Event, int64, error) {
	return m.searchFn(ctx, filter, page)
}

func eventFound(e *models.Event) *mockEventRepo {
	return &mockEventRepo{
		findByIDFn: func(ctx context.Context, id uint) (*models.Event, error) {
			if e == nil || e.ID != id {
				return nil, gorm.ErrRecordNotFound
			}
			return e, nil
		},
	}
}

// --- Mock ParticipationRepository ---

// memParticipations is an in-memory ledger keyed by (event, user).
type memParticipations struct {
	mu   sync.Mutex
	rows map[[2]uint]models.Participation
}

func newMemParticipations(userIDs ...uint) *memParticipations {
	m := &memParticipations{rows: map[[2]uint]models.Participation{}}
	for _, u := range userIDs {
		m.rows[[2]uint{1, u}] = models.Participation{EventID: 1, UserID: u}
	}
	return m
}

func (m *memParticipations) Create(ctx context.Context, _ *gorm.DB, p *models.Participation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]uint{p.EventID, p.UserID}
	if _, ok := m.rows[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	p.ID = uint(len(m.rows) + 1)
	m.rows[key] = *p
	return nil
}
func (m *memParticipations) Delete(ctx context.Context, _ *gorm.DB, eventID, userID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]uint{eventID, userID}
	if _, ok := m.rows[key]; !ok {
		return 0, nil
	}
	delete(m.rows, key)
	return 1, nil
}
func (m *memParticipations) Exists(ctx context.Context, _ *gorm.DB, eventID, userID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[[2]uint{eventID, userID}]
	return ok, nil
}
func (m *memParticipations) CountByEvent(ctx context.Context, _ *gorm.DB, eventID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k := range m.rows {
		if k[0] == eventID {
			n++
		}
	}
	return n, nil
}
func (m *memParticipations) FindByEventID(ctx context.Context, eventID uint) ([]models.Participation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Participation
	for k, p := range m.rows {
		if k[0] == eventID {
			out = append(out, p)
		}
	}
	return out, nil
}

// --- Mock RatingRepository ---

type memRatings struct {
	rows map[[2]uint]*models.Rating
}

func newMemRatings() *memRatings {
	return &memRatings{rows: map[[2]uint]*models.Rating{}}
}

func (m *memRatings) Create(ctx context.Context, _ *gorm.DB, r *models.Rating) error {
	key := [2]uint{r.EventID, r.UserID}
	if _, ok := m.rows[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	r.ID = uint(len(m.rows) + 1)
	m.rows[key] = r
	return nil
}
func (m *memRatings) FindByUserAndEvent(ctx context.Context, _ *gorm.DB, eventID, userID uint) (*models.Rating, error) {
	r, ok := m.rows[[2]uint{eventID, userID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}
func (m *memRatings) UpdateScore(ctx context.Context, _ *gorm.DB, r *models.Rating) error {
	cp := *r
	m.rows[[2]uint{r.EventID, r.UserID}] = &cp
	return nil
}
func (m *memRatings) Delete(ctx context.Context, _ *gorm.DB, eventID, userID uint) (int64, error) {
	key := [2]uint{eventID, userID}
	if _, ok := m.rows[key]; !ok {
		return 0, nil
	}
	delete(m.rows, key)
	return 1, nil
}
func (m *memRatings) FindByEventID(ctx context.Context, eventID uint) ([]models.Rating, error) {
	var out []models.Rating
	for k, r := range m.rows {
		if k[0] == eventID {
			out = append(out, *r)
		}
	}
	return out, nil
}
func (m *memRatings) Average(ctx context.Context, _ *gorm.DB, eventID uint) (decimal.NullDecimal, error) {
	var scores []decimal.Decimal
	for k, r := range m.rows {
		if k[0] == eventID {
			scores = append(scores, r.Rating)
		}
	}
	if len(scores) == 0 {
		return decimal.NullDecimal{}, nil
	}
	return decimal.NewNullDecimal(decimal.Avg(scores[0], scores[1:]...)), nil
}

// --- Mock FavoriteRepository ---

type memFavorites struct {
	rows map[[2]uint]bool
	list []models.Favorite
}

func (m *memFavorites) Insert(ctx context.Context, _ *gorm.DB, f *models.Favorite) (bool, error) {
	key := [2]uint{f.EventID, f.UserID}
	if m.rows[key] {
		return false, nil
	}
	m.rows[key] = true
	return true, nil
}
func (m *memFavorites) Delete(ctx context.Context, _ *gorm.DB, eventID, userID uint) (int64, error) {
	key := [2]uint{eventID, userID}
	if !m.rows[key] {
		return 0, nil
	}
	delete(m.rows, key)
	return 1, nil
}
func (m *memFavorites) Exists(ctx context.Context, eventID, userID uint) (bool, error) {
	return m.rows[[2]uint{eventID, userID}], nil
}
func (m *memFavorites) FindByUserID(ctx context.Context, userID uint) ([]models.Favorite, error) {
	return m.list, nil
}

// --- Mock FileRepository ---

type memFiles struct {
	rows map[string]*models.StoredFile
}

func newMemFiles() *memFiles {
	return &memFiles{rows: map[string]*models.StoredFile{}}
}

func (m *memFiles) Acquire(ctx context.Context, _ *gorm.DB, hash string) (*models.StoredFile, error) {
	if _, ok := m.rows[hash]; !ok {
		m.rows[hash] = &models.StoredFile{Hash: hash}
	}
	cp := *m.rows[hash]
	return &cp, nil
}
func (m *memFiles) FindForUpdate(ctx context.Context, _ *gorm.DB, hash string) (*models.StoredFile, error) {
	f, ok := m.rows[hash]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *f
	return &cp, nil
}
func (m *memFiles) Save(ctx context.Context, _ *gorm.DB, f *models.StoredFile) error {
	cp := *f
	m.rows[f.Hash] = &cp
	return nil
}
func (m *memFiles) Delete(ctx context.Context, _ *gorm.DB, hash string) error {
	delete(m.rows, hash)
	return nil
}

// --- Mock file store ---

type mockStore struct {
	stored  int
	deleted []string
}

func (m *mockStore) Store(ctx context.Context, data []byte) (string, string, error) {
	m.stored++
	return "", fmt.Sprintf("ref-%d", m.stored), nil
}
func (m *mockStore) Delete(ctx context.Context, ref string) error {
	m.deleted = append(m.deleted, ref)
	return nil
}

// --- Mock Publisher ---

type recordingPublisher struct {
	keys []string
}

func (p *recordingPublisher) Publish(routingKey string, payload any) error {
	p.keys = append(p.keys, routingKey)
	return nil
}

// --- Mock ActivityRepository ---

type mockActivityRepo struct {
	createFn func(ctx context.Context, a *models.Activity) error
	findFn   func(ctx context.Context, eventID uint, limit int) ([]models.Activity, error)
}

func (m *mockActivityRepo) Create(ctx context.Context, a *models.Activity) error {
	return m.createFn(ctx, a)
}
func (m *mockActivityRepo) FindByEventID(ctx context.Context, eventID uint, limit int) ([]models.Activity, error) {
	return m.findFn(ctx, eventID, limit)
}

var errNotFoundForTest = gorm.ErrRecordNotFound
