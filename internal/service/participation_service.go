package service

import (
	"context"
	"fmt"
	"time"

	"github.com/joinit/events-api/internal/identity"
	"github.com/joinit/events-api/internal/models"
	"github.com/joinit/events-api/internal/repository"
	"gorm.io/gorm"
)

type ParticipationService interface {
	Join(ctx context.Context, user identity.User, eventID uint) (*models.Participation, error)
	Leave(ctx context.Context, user identity.User, eventID uint) error
	ListParticipants(ctx context.Context, eventID uint) ([]models.Participation, error)
}

type participationService struct {
	tx             repository.TxRunner
	eventRepo      repository.EventRepository
	participations repository.ParticipationRepository
	publisher      Publisher
	now            func() time.Time
}

func NewParticipationService(
	tx repository.TxRunner,
	eventRepo repository.EventRepository,
	participations repository.ParticipationRepository,
	publisher Publisher,
	now func() time.Time,
) ParticipationService {
	if now == nil {
		now = time.Now
	}
	return &participationService{
		tx:             tx,
		eventRepo:      eventRepo,
		participations: participations,
		publisher:      publisher,
		now:            now,
	}
}

// Join locks the event row so the capacity count and the insert see the same
// ledger; the (event_id, user_id) unique index settles duplicate races.
func (s *participationService) Join(ctx context.Context, user identity.User, eventID uint) (*models.Participation, error) {
	if user.ID == 0 {
		return nil, ErrNotAuthenticated
	}

	var result *models.Participation
	err := s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		// 1. Lock the event row: serializes concurrent joins for this event
		event, err := s.eventRepo.FindByIDForUpdate(ctx, tx, eventID)
		if err != nil {
			return notFoundOr(err, ErrEventNotFound)
		}

		// 2. Capability and event state
		switch {
		case !user.CanJoin:
			return ErrJoinNotAllowed
		case event.Cancelled():
			return ErrEventCancelled
		case event.IsPrivate:
			return ErrEventPrivate
		case event.DeadlinePassed(s.now()):
			return ErrDeadlinePassed
		}

		// 3. Check double-join
		joined, err := s.participations.Exists(ctx, tx, eventID, user.ID)
		if err != nil {
			return err
		}
		if joined {
			return ErrAlreadyJoined
		}

		// 4. Capacity from the ledger itself
		count, err := s.participations.CountByEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if event.Full(count) {
			return ErrEventFull
		}

		p := &models.Participation{EventID: eventID, UserID: user.ID}
		if err := s.participations.Create(ctx, tx, p); err != nil {
			if repository.IsUniqueViolation(err) {
				return ErrAlreadyJoined
			}
			return fmt.Errorf("create participation: %w", err)
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	notify(s.publisher, KeyParticipationJoined, eventID, user.ID, nil, s.now())
	return result, nil
}

func (s *participationService) Leave(ctx context.Context, user identity.User, eventID uint) error {
	if user.ID == 0 {
		return ErrNotAuthenticated
	}

	err := s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		event, err := s.eventRepo.FindByIDForUpdate(ctx, tx, eventID)
		if err != nil {
			return notFoundOr(err, ErrEventNotFound)
		}
		if event.CreatedBy == user.ID {
			return ErrCreatorCannotLeave
		}

		removed, err := s.participations.Delete(ctx, tx, eventID, user.ID)
		if err != nil {
			return fmt.Errorf("delete participation: %w", err)
		}
		if removed == 0 {
			return ErrNotParticipating
		}
		return nil
	})
	if err != nil {
		return err
	}

	notify(s.publisher, KeyParticipationLeft, eventID, user.ID, nil, s.now())
	return nil
}

func (s *participationService) ListParticipants(ctx context.Context, eventID uint) ([]models.Participation, error) {
	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		return nil, notFoundOr(err, ErrEventNotFound)
	}
	return s.participations.FindByEventID(ctx, eventID)
}
