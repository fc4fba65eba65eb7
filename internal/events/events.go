package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	applog "padoca/internal/log"
	"padoca/models"
)

// Publisher delivers committed stock movements to an external consumer.
type Publisher interface {
	Publish(ctx context.Context, movements ...models.HistoryEntry) error
	Close() error
}

var (
	mu      sync.RWMutex
	current Publisher = nopPublisher{}
)

// Configure installs the publisher used by Emit. A nil publisher restores the
// default no-op behavior.
func Configure(p Publisher) {
	mu.Lock()
	defer mu.Unlock()
	if p == nil {
		current = nopPublisher{}
		return
	}
	current = p
}

// Emit publishes the given movements. Delivery is best-effort: failures are
// logged and never surfaced to the caller, because the stock transaction has
// already committed.
func Emit(ctx context.Context, movements ...models.HistoryEntry) {
	if len(movements) == 0 {
		return
	}
	mu.RLock()
	p := current
	mu.RUnlock()
	if err := p.Publish(ctx, movements...); err != nil {
		applog.Error(ctx, "failed to publish stock movements", "error", err, "count", len(movements))
	}
}

// Close shuts down the configured publisher.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	err := current.Close()
	current = nopPublisher{}
	return err
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, ...models.HistoryEntry) error { return nil }
func (nopPublisher) Close() error                                          { return nil }

// KafkaPublisher writes stock movements to a Kafka topic, keyed by product
// name so movements of the same ingredient stay ordered within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher builds a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			BatchTimeout:           10 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, movements ...models.HistoryEntry) error {
	messages := make([]kafka.Message, 0, len(movements))
	for _, movement := range movements {
		payload, err := json.Marshal(movement)
		if err != nil {
			return err
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(movement.Produto),
			Value: payload,
		})
	}
	return p.writer.WriteMessages(ctx, messages...)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
