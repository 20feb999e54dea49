package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/joinit/events-api/internal/identity"
	"github.com/joinit/events-api/internal/models"
	"github.com/joinit/events-api/internal/policy"
	"github.com/joinit/events-api/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	creator  = identity.User{ID: 7, CanJoin: true, CanPost: true, CanComment: true}
	member   = identity.User{ID: 8, CanJoin: true, CanPost: true, CanComment: true}
)

func testOptions() Options {
	return Options{PageSize: 10, Location: time.UTC, Now: func() time.Time { return fixedNow }}
}

func sampleInput() EventInput {
	capacity := 20
	return EventInput{
		Name:                  "Jazz Night",
		Description:           "Live jazz on the river",
		Price:                 decimal.RequireFromString("12.50"),
		Category:              models.CategoryMusic,
		Tags:                  []string{" Music ", "LIVE"},
		Place:                 "Riverside",
		EventDate:             fixedNow.AddDate(0, 0, 5),
		ParticipationDeadline: fixedNow.AddDate(0, 0, 3),
		MaxParticipants:       &capacity,
	}
}

func sampleEvent() *models.Event {
	capacity := 20
	return &models.Event{
		ID:                    1,
		Name:                  "Jazz Night",
		Place:                 "Riverside",
		Category:              models.CategoryMusic,
		Tags:                  []string{"music"},
		EventDate:             fixedNow.AddDate(0, 0, 5),
		ParticipationDeadline: fixedNow.AddDate(0, 0, 3),
		CreatedBy:             creator.ID,
		MaxParticipants:       &capacity,
		Status:                models.StatusActive,
	}
}

func newEventSvc(repo *mockEventRepo, pub Publisher) EventService {
	return NewEventService(mockTx{}, repo, newMemFiles(), &mockStore{}, pub, testOptions())
}

func TestCreateEvent_Success(t *testing.T) {
	pub := &recordingPublisher{}
	repo := &mockEventRepo{
		createFn: func(ctx context.Context, event *models.Event) error {
			event.ID = 1
			return nil
		},
	}

	event, err := newEventSvc(repo, pub).CreateEvent(context.Background(), creator, sampleInput())

	require.NoError(t, err)
	assert.Equal(t, uint(1), event.ID)
	assert.Equal(t, creator.ID, event.CreatedBy)
	assert.Equal(t, models.StatusActive, event.Status)
	assert.Equal(t, []string{"music", "live"}, []string(event.Tags))
	assert.Equal(t, []string{KeyEventCreated}, pub.keys)
}

func TestCreateEvent_NotAuthenticated(t *testing.T) {
	_, err := newEventSvc(&mockEventRepo{}, nil).CreateEvent(context.Background(), identity.User{}, sampleInput())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestCreateEvent_PostNotAllowed(t *testing.T) {
	user := creator
	user.CanPost = false

	_, err := newEventSvc(&mockEventRepo{}, nil).CreateEvent(context.Background(), user, sampleInput())
	assert.ErrorIs(t, err, ErrPostNotAllowed)
}

func TestCreateEvent_DeadlineAfterEventDate(t *testing.T) {
	in := sampleInput()
	in.ParticipationDeadline = in.EventDate.Add(time.Hour)

	_, err := newEventSvc(&mockEventRepo{}, nil).CreateEvent(context.Background(), creator, in)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, policy.FieldParticipationDeadline)
}

func TestCreateEvent_DeadlineEarlierToday_Accepted(t *testing.T) {
	in := sampleInput()
	in.ParticipationDeadline = time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)
	repo := &mockEventRepo{createFn: func(ctx context.Context, event *models.Event) error { return nil }}

	_, err := newEventSvc(repo, nil).CreateEvent(context.Background(), creator, in)
	assert.NoError(t, err)
}

func TestCreateEvent_DeadlineYesterday_Rejected(t *testing.T) {
	in := sampleInput()
	in.ParticipationDeadline = fixedNow.AddDate(0, 0, -1)

	_, err := newEventSvc(&mockEventRepo{}, nil).CreateEvent(context.Background(), creator, in)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, policy.FieldParticipationDeadline)
}

func TestCreateEvent_FieldValidation(t *testing.T) {
	zero := 0
	in := sampleInput()
	in.Name = ""
	in.Price = decimal.RequireFromString("10000")
	in.Category = models.Category("XYZ")
	in.MaxParticipants = &zero
	in.Tags = []string{"   "}

	_, err := newEventSvc(&mockEventRepo{}, nil).CreateEvent(context.Background(), creator, in)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	for _, f := range []string{policy.FieldName, policy.FieldPrice, policy.FieldCategory, policy.FieldMaxParticipants, policy.FieldTags} {
		assert.Contains(t, verr.Fields, f)
	}
}

func TestCreateEvent_PriceScale(t *testing.T) {
	in := sampleInput()
	in.Price = decimal.RequireFromString("1.234")

	_, err := newEventSvc(&mockEventRepo{}, nil).CreateEvent(context.Background(), creator, in)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, policy.FieldPrice)
}

func TestCreateEvent_RepoError(t *testing.T) {
	repo := &mockEventRepo{
		createFn: func(ctx context.Context, event *models.Event) error {
			return errors.New("db connection failed")
		},
	}

	_, err := newEventSvc(repo, nil).CreateEvent(context.Background(), creator, sampleInput())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "db connection failed")
}

func TestUpdateEvent_OwnerPartial(t *testing.T) {
	event := sampleEvent()
	repo := eventFound(event)
	repo.saveFn = func(ctx context.Context, e *models.Event) error { return nil }
	pub := &recordingPublisher{}

	in := EventInput{Name: "Jazz Night II"}
	updated, err := newEventSvc(repo, pub).UpdateEvent(context.Background(), creator, 1, in, []string{policy.FieldName})

	require.NoError(t, err)
	assert.Equal(t, "Jazz Night II", updated.Name)
	assert.Equal(t, "Riverside", updated.Place)
	assert.Equal(t, []string{KeyEventUpdated}, pub.keys)
}

func TestUpdateEvent_PastDatesKeptWhenNotTouched(t *testing.T) {
	event := sampleEvent()
	event.EventDate = fixedNow.AddDate(0, 0, -2)
	event.ParticipationDeadline = fixedNow.AddDate(0, 0, -3)
	repo := eventFound(event)
	repo.saveFn = func(ctx context.Context, e *models.Event) error { return nil }

	_, err := newEventSvc(repo, nil).UpdateEvent(context.Background(), creator, 1, EventInput{Description: "recap"}, []string{policy.FieldDescription})
	assert.NoError(t, err)
}

func TestUpdateEvent_DateRuleReappliedWhenTouched(t *testing.T) {
	repo := eventFound(sampleEvent())

	in := EventInput{ParticipationDeadline: fixedNow.AddDate(0, 0, 10)}
	_, err := newEventSvc(repo, nil).UpdateEvent(context.Background(), creator, 1, in, []string{policy.FieldParticipationDeadline})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, policy.FieldParticipationDeadline)
}

func TestUpdateEvent_NotOwner(t *testing.T) {
	repo := eventFound(sampleEvent())

	_, err := newEventSvc(repo, nil).UpdateEvent(context.Background(), member, 1, EventInput{Name: "x"}, []string{policy.FieldName})
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestUpdateEvent_StaffIsNotOwner(t *testing.T) {
	staff := member
	staff.IsStaff = true
	repo := eventFound(sampleEvent())

	_, err := newEventSvc(repo, nil).UpdateEvent(context.Background(), staff, 1, EventInput{Name: "x"}, []string{policy.FieldName})
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestUpdateEvent_ReadOnlyField(t *testing.T) {
	repo := eventFound(sampleEvent())

	_, err := newEventSvc(repo, nil).UpdateEvent(context.Background(), creator, 1, EventInput{}, []string{"created_by"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "created_by")
}

func TestUpdateEvent_Cancelled(t *testing.T) {
	event := sampleEvent()
	event.Status = models.StatusCancelled

	_, err := newEventSvc(eventFound(event), nil).UpdateEvent(context.Background(), creator, 1, EventInput{Name: "x"}, []string{policy.FieldName})
	assert.ErrorIs(t, err, ErrEventCancelled)
}

func TestUpdateEvent_NotFound(t *testing.T) {
	_, err := newEventSvc(eventFound(nil), nil).UpdateEvent(context.Background(), creator, 99, EventInput{}, nil)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestCancelEvent_Idempotent(t *testing.T) {
	event := sampleEvent()
	repo := eventFound(event)
	writes := 0
	repo.updateStatusFn = func(ctx context.Context, id uint, status models.EventStatus) error {
		writes++
		event.Status = status
		return nil
	}
	pub := &recordingPublisher{}
	svc := newEventSvc(repo, pub)

	already, err := svc.CancelEvent(context.Background(), creator, 1)
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, models.StatusCancelled, event.Status)

	already, err = svc.CancelEvent(context.Background(), creator, 1)
	require.NoError(t, err)
	assert.True(t, already)
	assert.Equal(t, 1, writes)
	assert.Equal(t, []string{KeyEventCancelled}, pub.keys)
}

func TestCancelEvent_PastEventAllowed(t *testing.T) {
	event := sampleEvent()
	event.EventDate = fixedNow.AddDate(0, -1, 0)
	event.ParticipationDeadline = fixedNow.AddDate(0, -1, -1)
	repo := eventFound(event)
	repo.updateStatusFn = func(ctx context.Context, id uint, status models.EventStatus) error { return nil }

	_, err := newEventSvc(repo, nil).CancelEvent(context.Background(), creator, 1)
	assert.NoError(t, err)
}

func TestCancelEvent_NotOwner(t *testing.T) {
	_, err := newEventSvc(eventFound(sampleEvent()), nil).CancelEvent(context.Background(), member, 1)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestGetEvent_NotFound(t *testing.T) {
	_, err := newEventSvc(eventFound(nil), nil).GetEvent(context.Background(), 1)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestSearch_ForcesPublicAndNormalizesTags(t *testing.T) {
	var got repository.EventFilter
	var gotPage repository.Page
	repo := &mockEventRepo{
		searchFn: func(ctx context.Context, filter repository.EventFilter, page repository.Page) ([]models.Event, int64, error) {
			got, gotPage = filter, page
			return []models.Event{*sampleEvent()}, 11, nil
		},
	}

	page, err := newEventSvc(repo, nil).Search(context.Background(), repository.EventFilter{Tags: []string{" MUSIC"}}, 2)

	require.NoError(t, err)
	assert.True(t, got.PublicOnly)
	assert.Equal(t, []string{"music"}, got.Tags)
	assert.Equal(t, repository.Page{Number: 2, Size: 10}, gotPage)
	assert.Equal(t, int64(11), page.Total)
	assert.Len(t, page.Events, 1)
}

func TestSearch_InvalidPage(t *testing.T) {
	_, err := newEventSvc(&mockEventRepo{}, nil).ListPublic(context.Background(), 0)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "page")
}

func TestListAll_StaffOnly(t *testing.T) {
	_, err := newEventSvc(&mockEventRepo{}, nil).ListAll(context.Background(), member, 1)
	assert.ErrorIs(t, err, ErrStaffOnly)

	var got repository.EventFilter
	repo := &mockEventRepo{
		searchFn: func(ctx context.Context, filter repository.EventFilter, page repository.Page) ([]models.Event, int64, error) {
			got = filter
			return nil, 0, nil
		},
	}
	staff := member
	staff.IsStaff = true

	_, err = newEventSvc(repo, nil).ListAll(context.Background(), staff, 1)
	require.NoError(t, err)
	assert.False(t, got.PublicOnly)
}

func TestListMine_FiltersByCreator(t *testing.T) {
	var got repository.EventFilter
	repo := &mockEventRepo{
		searchFn: func(ctx context.Context, filter repository.EventFilter, page repository.Page) ([]models.Event, int64, error) {
			got = filter
			return nil, 0, nil
		},
	}

	_, err := newEventSvc(repo, nil).ListMine(context.Background(), creator, 1)

	require.NoError(t, err)
	require.NotNil(t, got.CreatedBy)
	assert.Equal(t, creator.ID, *got.CreatedBy)
	assert.False(t, got.PublicOnly)
}
