package infrastructure

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/orderprocessing/order-system/shared/events"
	"github.com/orderprocessing/order-system/shared/saga"
	"github.com/orderprocessing/order-system/shared/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

const (
	KafkaPartitionKey = "kafka_partition"
	KafkaOffsetKey    = "kafka_offset"
)

var _ events.Subscriber = (*KafkaEventSubscriber)(nil)

// KafkaEventSubscriber consumes the topics a service subscribes to, one
// reader loop per topic. Within a loop a message is handled to completion
// before the next fetch and the offset is committed only after the
// handler succeeds or the message is dead-lettered, so per-key order
// holds and a crash before commit causes redelivery rather than loss.
//
// A retryable failure is retried in place with backoff; once the retry
// policy is exhausted, or immediately for terminal kinds (invalid
// transition, order not found), the raw message is forwarded to the
// dead-letter topic and the offset advances. A publish failure to the
// dead-letter topic blocks the partition, a deliberate backpressure
// choice over dropping work.
type KafkaEventSubscriber struct {
	brokers    []string
	groupID    string
	topics     []string
	policy     saga.RetryPolicy
	deadLetter *kafka.Writer
	logger     *zap.SugaredLogger
}

// NewKafkaEventSubscriber creates a subscriber for the given consumer
// group and topics
func NewKafkaEventSubscriber(brokers []string, groupID string, topics []string, policy saga.RetryPolicy, logger *zap.SugaredLogger) *KafkaEventSubscriber {
	return &KafkaEventSubscriber{
		brokers: brokers,
		groupID: groupID,
		topics:  topics,
		policy:  policy,
		deadLetter: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  policy.DeadLetterTopic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
		logger: logger,
	}
}

// Subscribe implements events.Subscriber. It blocks until ctx is
// cancelled or a reader fails fatally.
func (s *KafkaEventSubscriber) Subscribe(ctx context.Context, handler events.EventHandler) error {
	gr, ctx := errgroup.WithContext(ctx)

	for _, topic := range s.topics {
		topic := topic
		gr.Go(func() error {
			return s.consumeTopic(ctx, topic, handler)
		})
	}

	return gr.Wait()
}

func (s *KafkaEventSubscriber) consumeTopic(ctx context.Context, topic string, handler events.EventHandler) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        s.brokers,
		Topic:          topic,
		GroupID:        s.groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: 0, // synchronous commits
	})
	defer reader.Close()

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrapf(err, "failed to fetch message from %s", topic)
		}

		if err := s.process(ctx, msg, handler); err != nil {
			return err
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrapf(err, "failed to commit offset on %s", topic)
		}
	}
}

// process handles one message to completion. It returns an error only
// when the subscriber itself must stop; handler failures are resolved
// here through retries and the dead-letter topic.
func (s *KafkaEventSubscriber) process(ctx context.Context, msg kafka.Message, handler events.EventHandler) error {
	event, err := events.FromJSON(msg.Value)
	if err != nil {
		s.logger.Errorw("malformed event payload, dead-lettering",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
		return s.sendToDeadLetter(ctx, msg, "malformed payload")
	}

	event.WithMetadata(KafkaPartitionKey, strconv.Itoa(msg.Partition))
	event.WithMetadata(KafkaOffsetKey, strconv.FormatInt(msg.Offset, 10))

	var handleErr error
	for attempt := 0; ; attempt++ {
		handleErr = handler.Handle(ctx, event)
		if handleErr == nil {
			telemetry.RecordCounter(ctx, "events_consumed_total", "Total events consumed", 1,
				attribute.String("event_type", event.EventType),
				attribute.String("group", s.groupID),
			)
			return nil
		}

		if !saga.Retryable(handleErr) {
			break
		}

		if attempt >= s.policy.MaxRetries {
			s.logger.Errorw("retries exhausted for event",
				"event_id", event.ID,
				"event_type", event.EventType,
				"order_id", event.OrderID,
				"attempts", attempt+1,
				"error", handleErr,
			)
			break
		}

		backoff := s.policy.BackoffFor(attempt)
		s.logger.Warnw("handler failed, retrying",
			"event_id", event.ID,
			"event_type", event.EventType,
			"attempt", attempt+1,
			"backoff", backoff,
			"error", handleErr,
		)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil
		}
	}

	if saga.IsInvalidTransition(handleErr) || saga.IsNotFound(handleErr) {
		// Terminal for this message: retrying cannot change the
		// outcome. Surfaced loudly rather than silently dropped.
		s.logger.Errorw("terminal failure for event, dead-lettering",
			"event_id", event.ID,
			"event_type", event.EventType,
			"order_id", event.OrderID,
			"correlation_id", event.CorrelationID,
			"error", handleErr,
		)
	}

	telemetry.RecordCounter(ctx, "events_dead_lettered_total", "Total events routed to the dead-letter topic", 1,
		attribute.String("event_type", event.EventType),
		attribute.String("group", s.groupID),
	)

	return s.sendToDeadLetter(ctx, msg, handleErr.Error())
}

func (s *KafkaEventSubscriber) sendToDeadLetter(ctx context.Context, msg kafka.Message, reason string) error {
	dlqMsg := kafka.Message{
		Key:   msg.Key,
		Value: msg.Value,
		Headers: append(msg.Headers,
			kafka.Header{Key: "dead_letter_reason", Value: []byte(reason)},
			kafka.Header{Key: "origin_topic", Value: []byte(msg.Topic)},
			kafka.Header{Key: "consumer_group", Value: []byte(s.groupID)},
		),
	}

	if err := s.deadLetter.WriteMessages(ctx, dlqMsg); err != nil {
		return errors.Wrap(err, "failed to publish to dead-letter topic")
	}
	return nil
}

// Close closes the dead-letter writer
func (s *KafkaEventSubscriber) Close() error {
	return s.deadLetter.Close()
}
