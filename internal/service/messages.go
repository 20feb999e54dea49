package service

import (
	"encoding/json"
	"log"
	"time"

	"github.com/joinit/events-api/internal/models"
)

// Routing keys on the lifecycle exchange.
const (
	KeyEventCreated        = "event.created"
	KeyEventUpdated        = "event.updated"
	KeyEventCancelled      = "event.cancelled"
	KeyParticipationJoined = "participation.joined"
	KeyParticipationLeft   = "participation.left"
	KeyRatingCreated       = "rating.created"
	KeyRatingUpdated       = "rating.updated"
	KeyRatingDeleted       = "rating.deleted"
	KeyFavoriteAdded       = "favorite.added"
	KeyFavoriteRemoved     = "favorite.removed"
)

// Publisher is satisfied by *rabbitmq.Publisher.
type Publisher interface {
	Publish(routingKey string, payload any) error
}

// notify publishes after commit. Failures are logged and never fail the request.
func notify(p Publisher, key string, eventID, actorID uint, data any, now time.Time) {
	if p == nil {
		return
	}

	msg := models.LifecycleMessage{
		Kind:       key,
		EventID:    eventID,
		ActorID:    actorID,
		OccurredAt: now.UTC(),
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			log.Printf("[Lifecycle] marshal %s payload for event %d: %v", key, eventID, err)
			return
		}
		msg.Data = raw
	}

	if err := p.Publish(key, msg); err != nil {
		log.Printf("[Lifecycle] publish %s for event %d: %v", key, eventID, err)
	}
}
