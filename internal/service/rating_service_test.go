package service

import (
	"context"
	"testing"

	"github.com/joinit/events-api/internal/identity"
	"github.com/joinit/events-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newRatingSvc(event *models.Event, ledger *memParticipations, ratings *memRatings, pub Publisher) RatingService {
	return NewRatingService(mockTx{}, eventFound(event), ledger, ratings, pub, fixedClock())
}

func TestRate_Success(t *testing.T) {
	pub := &recordingPublisher{}
	ratings := newMemRatings()

	res, err := newRatingSvc(sampleEvent(), newMemParticipations(member.ID), ratings, pub).
		Rate(context.Background(), member, 1, dec("4.5"), "great")

	require.NoError(t, err)
	assert.True(t, dec("4.5").Equal(res.Rating.Rating))
	require.NotNil(t, res.Average)
	assert.Equal(t, "4.5", res.Average.String())
	assert.Equal(t, []string{KeyRatingCreated}, pub.keys)
}

func TestRate_Rejections(t *testing.T) {
	noComment := member
	noComment.CanComment = false
	rated := newMemRatings()
	rated.rows[[2]uint{1, member.ID}] = &models.Rating{EventID: 1, UserID: member.ID, Rating: dec("3")}

	tests := []struct {
		name    string
		user    identity.User
		event   *models.Event
		ledger  *memParticipations
		ratings *memRatings
		score   string
		want    error
	}{
		{name: "capability", user: noComment, ledger: newMemParticipations(member.ID), score: "3", want: ErrCommentNotAllowed},
		{name: "not joined", user: member, ledger: newMemParticipations(), score: "3", want: ErrNotJoined},
		{name: "already rated", user: member, ledger: newMemParticipations(member.ID), ratings: rated, score: "3", want: ErrAlreadyRated},
		{
			name:   "cancelled",
			user:   member,
			event:  &models.Event{ID: 1, CreatedBy: creator.ID, Status: models.StatusCancelled},
			ledger: newMemParticipations(member.ID),
			score:  "3",
			want:   ErrEventCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := tt.event
			if event == nil {
				event = sampleEvent()
			}
			ratings := tt.ratings
			if ratings == nil {
				ratings = newMemRatings()
			}

			_, err := newRatingSvc(event, tt.ledger, ratings, nil).Rate(context.Background(), tt.user, 1, dec(tt.score), "")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRate_InvalidScore(t *testing.T) {
	for _, score := range []string{"-0.5", "5.5", "3.3", "10"} {
		t.Run(score, func(t *testing.T) {
			_, err := newRatingSvc(sampleEvent(), newMemParticipations(member.ID), newMemRatings(), nil).
				Rate(context.Background(), member, 1, dec(score), "")

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, "rating")
		})
	}
}

func TestRate_InvalidScoreCheckedBeforeDuplicate(t *testing.T) {
	svc := newRatingSvc(sampleEvent(), newMemParticipations(member.ID), newMemRatings(), nil)
	_, err := svc.Rate(context.Background(), member, 1, dec("4"), "")
	require.NoError(t, err)

	_, err = svc.Rate(context.Background(), member, 1, dec("7"), "")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotErrorIs(t, err, ErrAlreadyRated)
}

func TestRate_AverageOfFourAndTwo(t *testing.T) {
	ledger := newMemParticipations(8, 9)
	ratings := newMemRatings()
	svc := newRatingSvc(sampleEvent(), ledger, ratings, nil)

	_, err := svc.Rate(context.Background(), identity.User{ID: 8, CanComment: true}, 1, dec("4"), "")
	require.NoError(t, err)
	res, err := svc.Rate(context.Background(), identity.User{ID: 9, CanComment: true}, 1, dec("2"), "")
	require.NoError(t, err)

	assert.Equal(t, "3", res.Average.String())
}

func TestRate_SurvivesLeave(t *testing.T) {
	ledger := newMemParticipations(member.ID)
	ratings := newMemRatings()

	_, err := newRatingSvc(sampleEvent(), ledger, ratings, nil).Rate(context.Background(), member, 1, dec("5"), "")
	require.NoError(t, err)
	require.NoError(t, newParticipationSvc(sampleEvent(), ledger, nil).Leave(context.Background(), member, 1))

	summary, err := newRatingSvc(sampleEvent(), ledger, ratings, nil).ListRatings(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, summary.Ratings, 1)
}

func TestUpdateRating(t *testing.T) {
	ratings := newMemRatings()
	ratings.rows[[2]uint{1, member.ID}] = &models.Rating{EventID: 1, UserID: member.ID, Rating: dec("2"), Review: "meh"}
	pub := &recordingPublisher{}
	svc := newRatingSvc(sampleEvent(), newMemParticipations(member.ID), ratings, pub)

	score := dec("4")
	res, err := svc.UpdateRating(context.Background(), member, 1, &score, nil)

	require.NoError(t, err)
	assert.True(t, score.Equal(res.Rating.Rating))
	assert.Equal(t, "meh", res.Rating.Review)
	assert.Equal(t, "4", res.Average.String())
	assert.Len(t, ratings.rows, 1)
	assert.Equal(t, []string{KeyRatingUpdated}, pub.keys)
}

func TestUpdateRating_NotRated(t *testing.T) {
	score := dec("4")
	_, err := newRatingSvc(sampleEvent(), newMemParticipations(member.ID), newMemRatings(), nil).
		UpdateRating(context.Background(), member, 1, &score, nil)
	assert.ErrorIs(t, err, ErrNotRated)
}

func TestDeleteRating(t *testing.T) {
	ratings := newMemRatings()
	ratings.rows[[2]uint{1, member.ID}] = &models.Rating{EventID: 1, UserID: member.ID, Rating: dec("2")}
	svc := newRatingSvc(sampleEvent(), newMemParticipations(), ratings, nil)

	require.NoError(t, svc.DeleteRating(context.Background(), member, 1))
	assert.ErrorIs(t, svc.DeleteRating(context.Background(), member, 1), ErrRatingNotFound)
}

func TestListRatings_NoRatings(t *testing.T) {
	summary, err := newRatingSvc(sampleEvent(), newMemParticipations(), newMemRatings(), nil).ListRatings(context.Background(), 1)

	require.NoError(t, err)
	assert.Empty(t, summary.Ratings)
	assert.Nil(t, summary.Average)
}

func TestListRatings_AverageRounded(t *testing.T) {
	ratings := newMemRatings()
	for uid, score := range map[uint]string{1: "4.5", 2: "4", 3: "4"} {
		ratings.rows[[2]uint{1, uid}] = &models.Rating{EventID: 1, UserID: uid, Rating: dec(score)}
	}

	summary, err := newRatingSvc(sampleEvent(), newMemParticipations(), ratings, nil).ListRatings(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, "4.2", summary.Average.String())
}
