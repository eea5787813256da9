package infrastructure

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/orderprocessing/order-system/shared/events"
)

var _ events.Publisher = (*SNSEventPublisher)(nil)

const snsMaxBatchSize = 10

type snsMessage struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"order_id"`
	CorrelationID string          `json:"correlation_id"`
	Metadata      events.Metadata `json:"metadata"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	Timestamp     time.Time       `json:"timestamp"`
}

// SNSEventPublisher implements events.Publisher on an SNS FIFO topic.
// MessageGroupId is the order id, which gives the same per-key ordering
// guarantee the Kafka driver gets from partition keys; the event id as
// MessageDeduplicationId suppresses publisher-side duplicates inside the
// five minute SNS window (consumers still run their own dedup).
type SNSEventPublisher struct {
	client   *sns.Client
	topicArn string
}

// NewSNSEventPublisher creates a publisher for the given FIFO topic ARN
func NewSNSEventPublisher(ctx context.Context, topicArn string) (*SNSEventPublisher, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	return &SNSEventPublisher{
		client:   sns.NewFromConfig(cfg),
		topicArn: topicArn,
	}, nil
}

// Publish publishes events to SNS in batches
func (p *SNSEventPublisher) Publish(ctx context.Context, evts ...*events.Event) error {
	if len(evts) == 0 {
		return nil
	}

	gr, ctx := errgroup.WithContext(ctx)

	for _, batch := range splitToChunks(evts, snsMaxBatchSize) {
		batch := batch
		gr.Go(func() error {
			return p.batchPublish(ctx, batch)
		})
	}

	return gr.Wait()
}

func (p *SNSEventPublisher) batchPublish(ctx context.Context, evts []*events.Event) error {
	requests := make([]types.PublishBatchRequestEntry, len(evts))

	for i, event := range evts {
		payload, err := event.MarshalPayload()
		if err != nil {
			return errors.Wrap(err, "failed to marshal payload")
		}

		message := &snsMessage{
			ID:            event.ID.String(),
			OrderID:       event.OrderID.String(),
			CorrelationID: event.CorrelationID.String(),
			Metadata:      event.Metadata,
			EventType:     event.EventType,
			Payload:       payload,
			Timestamp:     event.Timestamp,
		}

		msgJSON, err := json.Marshal(message)
		if err != nil {
			return errors.Wrap(err, "failed to marshal message")
		}

		attrs := map[string]types.MessageAttributeValue{
			"event_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.EventType),
			},
			"correlation_id": {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.CorrelationID.String()),
			},
		}

		requests[i] = types.PublishBatchRequestEntry{
			Id:                     aws.String(event.ID.String()),
			Message:                aws.String(string(msgJSON)),
			MessageAttributes:      attrs,
			MessageGroupId:         aws.String(event.OrderID.String()),
			MessageDeduplicationId: aws.String(event.ID.String()),
		}
	}

	res, err := p.client.PublishBatch(ctx, &sns.PublishBatchInput{
		TopicArn:                   &p.topicArn,
		PublishBatchRequestEntries: requests,
	})
	if err != nil {
		return errors.Wrap(err, "failed to publish batch to SNS")
	}

	if len(res.Failed) > 0 {
		return errors.Errorf("%d of %d events failed to publish", len(res.Failed), len(evts))
	}

	return nil
}

// Close closes the publisher
func (p *SNSEventPublisher) Close() error {
	// the SNS client holds no connections to release
	return nil
}

// splitToChunks splits slice into chunks of specified size
func splitToChunks[T any](slice []T, chunkSize int) [][]T {
	var chunks [][]T
	for i := 0; i < len(slice); i += chunkSize {
		end := i + chunkSize
		if end > len(slice) {
			end = len(slice)
		}
		chunks = append(chunks, slice[i:end])
	}
	return chunks
}
