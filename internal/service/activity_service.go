package service

import (
	"context"

	"github.com/joinit/events-api/internal/identity"
	"github.com/joinit/events-api/internal/models"
	"github.com/joinit/events-api/internal/policy"
	"github.com/joinit/events-api/internal/repository"
)

const activityLimit = 100

type ActivityService interface {
	ListActivity(ctx context.Context, user identity.User, eventID uint) ([]models.Activity, error)
}

type activityService struct {
	eventRepo  repository.EventRepository
	activities repository.ActivityRepository
}

func NewActivityService(eventRepo repository.EventRepository, activities repository.ActivityRepository) ActivityService {
	return &activityService{eventRepo: eventRepo, activities: activities}
}

// ListActivity is visible to the event creator and to staff.
func (s *activityService) ListActivity(ctx context.Context, user identity.User, eventID uint) ([]models.Activity, error) {
	if user.ID == 0 {
		return nil, ErrNotAuthenticated
	}
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, notFoundOr(err, ErrEventNotFound)
	}
	if policy.RoleFor(user.ID, event.CreatedBy, user.IsStaff) == policy.RoleOther {
		return nil, ErrNotOwner
	}
	return s.activities.FindByEventID(ctx, eventID, activityLimit)
}
