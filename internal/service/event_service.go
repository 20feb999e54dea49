package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joinit/events-api/internal/identity"
	"github.com/joinit/events-api/internal/models"
	"github.com/joinit/events-api/internal/policy"
	"github.com/joinit/events-api/internal/repository"
	"github.com/joinit/events-api/pkg/filestore"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	maxNameLength        = 50
	maxDescriptionLength = 300
	maxPlaceLength       = 200
	maxTagLength         = 30
)

var maxPrice = decimal.RequireFromString("9999.99")

// EventInput holds every writable event field. Partial updates name the
// fields to apply; the others are ignored.
type EventInput struct {
	Name                  string
	Description           string
	Price                 decimal.Decimal
	Category              models.Category
	Tags                  []string
	Place                 string
	EventDate             time.Time
	ParticipationDeadline time.Time
	MaxParticipants       *int
	IsPrivate             bool
}

// FullUpdateFields is the field set a PUT replaces.
var FullUpdateFields = []string{
	policy.FieldName, policy.FieldDescription, policy.FieldPrice, policy.FieldCategory,
	policy.FieldTags, policy.FieldPlace, policy.FieldEventDate, policy.FieldParticipationDeadline,
	policy.FieldMaxParticipants, policy.FieldIsPrivate,
}

type EventPage struct {
	Events   []models.Event
	Total    int64
	Page     int
	PageSize int
}

type EventService interface {
	CreateEvent(ctx context.Context, user identity.User, in EventInput) (*models.Event, error)
	UpdateEvent(ctx context.Context, user identity.User, id uint, in EventInput, fields []string) (*models.Event, error)
	CancelEvent(ctx context.Context, user identity.User, id uint) (alreadyCancelled bool, err error)
	GetEvent(ctx context.Context, id uint) (*models.Event, error)
	ListPublic(ctx context.Context, page int) (*EventPage, error)
	Search(ctx context.Context, filter repository.EventFilter, page int) (*EventPage, error)
	ListAll(ctx context.Context, user identity.User, page int) (*EventPage, error)
	ListMine(ctx context.Context, user identity.User, page int) (*EventPage, error)
	SetCover(ctx context.Context, user identity.User, id uint, filename string, data []byte) (*models.Event, error)
	RemoveCover(ctx context.Context, user identity.User, id uint) (*models.Event, error)
}

type Options struct {
	PageSize int
	Location *time.Location
	Now      func() time.Time
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = 10
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type eventService struct {
	tx        repository.TxRunner
	events    repository.EventRepository
	files     repository.FileRepository
	store     filestore.Store
	publisher Publisher
	opts      Options
}

func NewEventService(
	tx repository.TxRunner,
	events repository.EventRepository,
	files repository.FileRepository,
	store filestore.Store,
	publisher Publisher,
	opts Options,
) EventService {
	return &eventService{
		tx:        tx,
		events:    events,
		files:     files,
		store:     store,
		publisher: publisher,
		opts:      opts.withDefaults(),
	}
}

func (s *eventService) CreateEvent(ctx context.Context, user identity.User, in EventInput) (*models.Event, error) {
	if user.ID == 0 {
		return nil, ErrNotAuthenticated
	}
	if !user.CanPost {
		return nil, ErrPostNotAllowed
	}

	event := &models.Event{CreatedBy: user.ID, Status: models.StatusActive}
	applyFields(event, in, FullUpdateFields)
	if err := s.validate(event, true); err != nil {
		return nil, err
	}

	if err := s.events.Create(ctx, nil, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	notify(s.publisher, KeyEventCreated, event.ID, user.ID, event, s.opts.Now())
	return event, nil
}

// UpdateEvent applies the named fields. The date rule is re-checked whenever a
// date field is among them.
func (s *eventService) UpdateEvent(ctx context.Context, user identity.User, id uint, in EventInput, fields []string) (*models.Event, error) {
	if user.ID == 0 {
		return nil, ErrNotAuthenticated
	}

	var result *models.Event
	err := s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		event, err := s.events.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return notFoundOr(err, ErrEventNotFound)
		}
		if err := authorizeFields(user, event, fields); err != nil {
			return err
		}
		if event.Cancelled() {
			return ErrEventCancelled
		}

		applyFields(event, in, fields)
		if err := s.validate(event, touchesDates(fields)); err != nil {
			return err
		}
		if err := s.events.Save(ctx, tx, event); err != nil {
			return fmt.Errorf("save event: %w", err)
		}
		result = event
		return nil
	})
	if err != nil {
		return nil, err
	}

	notify(s.publisher, KeyEventUpdated, result.ID, user.ID, map[string]any{"fields": fields}, s.opts.Now())
	return result, nil
}

// CancelEvent flips the event to cancelled. A second call reports alreadyCancelled
// and writes nothing. Date validation is intentionally skipped so past events can
// still be cancelled.
func (s *eventService) CancelEvent(ctx context.Context, user identity.User, id uint) (bool, error) {
	if user.ID == 0 {
		return false, ErrNotAuthenticated
	}

	var already bool
	err := s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		event, err := s.events.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return notFoundOr(err, ErrEventNotFound)
		}
		if event.CreatedBy != user.ID {
			return ErrNotOwner
		}

		next, changed := event.Status.Cancel()
		if !changed {
			already = true
			return nil
		}
		return s.events.UpdateStatus(ctx, tx, id, next)
	})
	if err != nil {
		return false, err
	}

	if !already {
		notify(s.publisher, KeyEventCancelled, id, user.ID, nil, s.opts.Now())
	}
	return already, nil
}

func (s *eventService) GetEvent(ctx context.Context, id uint) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrEventNotFound)
	}
	return event, nil
}

func (s *eventService) ListPublic(ctx context.Context, page int) (*EventPage, error) {
	return s.Search(ctx, repository.EventFilter{}, page)
}

// Search always anchors on public, non-cancelled events.
func (s *eventService) Search(ctx context.Context, filter repository.EventFilter, page int) (*EventPage, error) {
	filter.PublicOnly = true
	return s.page(ctx, filter, page)
}

func (s *eventService) ListAll(ctx context.Context, user identity.User, page int) (*EventPage, error) {
	if user.ID == 0 {
		return nil, ErrNotAuthenticated
	}
	if !user.IsStaff {
		return nil, ErrStaffOnly
	}
	return s.page(ctx, repository.EventFilter{}, page)
}

func (s *eventService) ListMine(ctx context.Context, user identity.User, page int) (*EventPage, error) {
	if user.ID == 0 {
		return nil, ErrNotAuthenticated
	}
	owner := user.ID
	return s.page(ctx, repository.EventFilter{CreatedBy: &owner}, page)
}

func (s *eventService) page(ctx context.Context, filter repository.EventFilter, page int) (*EventPage, error) {
	if page < 1 {
		return nil, NewValidationError("page", "Page must be a positive integer.")
	}
	for i, tag := range filter.Tags {
		filter.Tags[i] = normalizeTag(tag)
	}

	p := repository.Page{Number: page, Size: s.opts.PageSize}
	events, total, err := s.events.Search(ctx, filter, p)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return &EventPage{Events: events, Total: total, Page: page, PageSize: s.opts.PageSize}, nil
}

// authorizeFields consults the per-role mutable field table.
func authorizeFields(user identity.User, event *models.Event, fields []string) error {
	role := policy.RoleFor(user.ID, event.CreatedBy, user.IsStaff)
	if role != policy.RoleOwner {
		return ErrNotOwner
	}

	verr := &ValidationError{}
	for _, f := range policy.Forbidden(role, fields) {
		verr.Add(f, "This field is read-only.")
	}
	return verr.Err()
}

func applyFields(e *models.Event, in EventInput, fields []string) {
	for _, f := range fields {
		switch f {
		case policy.FieldName:
			e.Name = strings.TrimSpace(in.Name)
		case policy.FieldDescription:
			e.Description = strings.TrimSpace(in.Description)
		case policy.FieldPrice:
			e.Price = in.Price
		case policy.FieldCategory:
			e.Category = in.Category
		case policy.FieldTags:
			tags := make([]string, len(in.Tags))
			for i, t := range in.Tags {
				tags[i] = normalizeTag(t)
			}
			e.Tags = tags
		case policy.FieldPlace:
			e.Place = strings.TrimSpace(in.Place)
		case policy.FieldEventDate:
			e.EventDate = in.EventDate
		case policy.FieldParticipationDeadline:
			e.ParticipationDeadline = in.ParticipationDeadline
		case policy.FieldMaxParticipants:
			e.MaxParticipants = in.MaxParticipants
		case policy.FieldIsPrivate:
			e.IsPrivate = in.IsPrivate
		}
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
}

func touchesDates(fields []string) bool {
	for _, f := range fields {
		if f == policy.FieldEventDate || f == policy.FieldParticipationDeadline {
			return true
		}
	}
	return false
}

func (s *eventService) validate(e *models.Event, checkDates bool) error {
	verr := &ValidationError{}

	switch n := utf8.RuneCountInString(e.Name); {
	case n == 0:
		verr.Add(policy.FieldName, "This field may not be blank.")
	case n > maxNameLength:
		verr.Add(policy.FieldName, fmt.Sprintf("Ensure this field has no more than %d characters.", maxNameLength))
	}
	if utf8.RuneCountInString(e.Description) > maxDescriptionLength {
		verr.Add(policy.FieldDescription, fmt.Sprintf("Ensure this field has no more than %d characters.", maxDescriptionLength))
	}
	switch n := utf8.RuneCountInString(e.Place); {
	case n == 0:
		verr.Add(policy.FieldPlace, "This field may not be blank.")
	case n > maxPlaceLength:
		verr.Add(policy.FieldPlace, fmt.Sprintf("Ensure this field has no more than %d characters.", maxPlaceLength))
	}

	switch {
	case e.Price.IsNegative():
		verr.Add(policy.FieldPrice, "Ensure this value is greater than or equal to 0.")
	case e.Price.GreaterThan(maxPrice):
		verr.Add(policy.FieldPrice, "Ensure this value is less than or equal to 9999.99.")
	case !e.Price.Equal(e.Price.Truncate(2)):
		verr.Add(policy.FieldPrice, "Ensure that there are no more than 2 decimal places.")
	}

	if !e.Category.Valid() {
		verr.Add(policy.FieldCategory, fmt.Sprintf("%q is not a valid choice.", string(e.Category)))
	}
	for _, tag := range e.Tags {
		if tag == "" {
			verr.Add(policy.FieldTags, "Tags must be non-empty strings.")
			break
		}
		if utf8.RuneCountInString(tag) > maxTagLength {
			verr.Add(policy.FieldTags, fmt.Sprintf("Tags must be at most %d characters.", maxTagLength))
			break
		}
	}
	if e.MaxParticipants != nil && *e.MaxParticipants <= 0 {
		verr.Add(policy.FieldMaxParticipants, "Ensure this value is greater than 0.")
	}

	if e.EventDate.IsZero() {
		verr.Add(policy.FieldEventDate, "This field is required.")
	}
	if e.ParticipationDeadline.IsZero() {
		verr.Add(policy.FieldParticipationDeadline, "This field is required.")
	}
	if checkDates && !e.EventDate.IsZero() && !e.ParticipationDeadline.IsZero() {
		today := startOfDay(s.opts.Now(), s.opts.Location)
		if e.ParticipationDeadline.Before(today) {
			verr.Add(policy.FieldParticipationDeadline, "The participation deadline cannot be in the past.")
		} else if e.ParticipationDeadline.After(e.EventDate) {
			verr.Add(policy.FieldParticipationDeadline, "The participation deadline must not be after the event date.")
		}
	}

	return verr.Err()
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

func notFoundOr(err, notFound error) error {
	if repository.IsNotFound(err) {
		return notFound
	}
	return err
}
