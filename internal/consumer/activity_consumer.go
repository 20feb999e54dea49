package consumer

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/joinit/events-api/internal/models"
	"github.com/joinit/events-api/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
	"gorm.io/datatypes"
)

const writeTimeout = 5 * time.Second

type ActivityConsumer struct {
	activities repository.ActivityRepository
}

func NewActivityConsumer(activities repository.ActivityRepository) *ActivityConsumer {
	return &ActivityConsumer{activities: activities}
}

// Start records every lifecycle message as an Activity row until msgs is closed.
func (ac *ActivityConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			ac.handleMessage(msg)
		}
		log.Println("[ActivityConsumer] channel closed, stopping consumer")
	}()
}

func (ac *ActivityConsumer) handleMessage(msg amqp.Delivery) {
	var lm models.LifecycleMessage
	if err := json.Unmarshal(msg.Body, &lm); err != nil || lm.EventID == 0 || lm.Kind == "" {
		log.Printf("[ActivityConsumer] dropping malformed message %q: %v", msg.RoutingKey, err)
		_ = msg.Nack(false, false)
		return
	}

	activity := &models.Activity{
		EventID:    lm.EventID,
		Kind:       lm.Kind,
		ActorID:    lm.ActorID,
		OccurredAt: lm.OccurredAt,
	}
	if len(lm.Data) > 0 {
		activity.Payload = datatypes.JSON(lm.Data)
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := ac.activities.Create(ctx, activity); err != nil {
		log.Printf("[ActivityConsumer] failed to record %s for event %d: %v", lm.Kind, lm.EventID, err)
		_ = msg.Nack(false, !msg.Redelivered)
		return
	}

	log.Printf("[ActivityConsumer] recorded %s for event %d", lm.Kind, lm.EventID)
	_ = msg.Ack(false)
}
