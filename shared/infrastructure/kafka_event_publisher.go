package infrastructure

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"github.com/orderprocessing/order-system/shared/events"
	"github.com/orderprocessing/order-system/shared/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

var _ events.Publisher = (*KafkaEventPublisher)(nil)

// KafkaEventPublisher implements events.Publisher on top of Kafka. Every
// message is keyed by order id and routed to the topic of its event type,
// so all events of one order land on a single partition per topic and are
// consumed in publish order. WriteMessages returns only after the broker
// acknowledges, which lets callers commit their own transaction after the
// publish is durable.
type KafkaEventPublisher struct {
	writer *kafka.Writer
}

// NewKafkaEventPublisher creates a publisher over the given brokers
func NewKafkaEventPublisher(brokers []string) *KafkaEventPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		MaxAttempts:            5,
		ReadTimeout:            10 * time.Second,
		WriteTimeout:           10 * time.Second,
		Async:                  false,
		AllowAutoTopicCreation: true,
	}

	return &KafkaEventPublisher{writer: w}
}

// Publish publishes events to their per-type topics
func (p *KafkaEventPublisher) Publish(ctx context.Context, evts ...*events.Event) error {
	if len(evts) == 0 {
		return nil
	}

	messages := make([]kafka.Message, 0, len(evts))
	for _, event := range evts {
		value, err := event.ToJSON()
		if err != nil {
			return errors.Wrap(err, "failed to marshal event")
		}

		messages = append(messages, kafka.Message{
			Topic: events.TopicName(event.EventType),
			Key:   []byte(event.OrderID.String()),
			Value: value,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(event.EventType)},
				{Key: "correlation_id", Value: []byte(event.CorrelationID.String())},
			},
		})
	}

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		return errors.Wrap(err, "failed to write messages to kafka")
	}

	for _, event := range evts {
		telemetry.RecordCounter(ctx, "events_published_total", "Total events published", 1,
			attribute.String("event_type", event.EventType),
		)
	}

	return nil
}

// Close closes the underlying writer
func (p *KafkaEventPublisher) Close() error {
	return p.writer.Close()
}
