package notification

import (
	"context"
	"time"

	"github.com/example/restaurant-pos/internal/infrastructure/kafka"
)

// KafkaPublisher pushes notification envelopes to the shared topic.
type KafkaPublisher struct {
	producer *kafka.Producer
}

func NewKafkaPublisher(producer *kafka.Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event, key string, payload any) error {
	return p.producer.Publish(ctx, key, Envelope{
		Event:     event,
		Payload:   payload,
		Timestamp: time.Now(),
	})
}
