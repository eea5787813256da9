package infrastructure

import (
	"context"
	"encoding/json"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/orderprocessing/order-system/shared/events"
	"github.com/orderprocessing/order-system/shared/models"
	"github.com/orderprocessing/order-system/shared/saga"
)

const (
	SQSMessageIDKey     = "sqs_message_id"
	SQSReceiptHandleKey = "sqs_receipt_handle"
)

var _ events.Subscriber = (*SQSEventSubscriber)(nil)

type sqsWork struct {
	message types.Message
	event   *events.Event
	err     error
}

// SQSEventSubscriber implements events.Subscriber over an SQS FIFO queue
// subscribed to the SNS FIFO topic. A FIFO queue withholds the next
// message of a group until the previous one is deleted or times out, so
// per-order ordering survives the worker pool. Retryable handler failures
// extend the visibility timeout and let SQS redeliver; terminal failures
// are forwarded to the dead-letter queue and the message deleted.
type SQSEventSubscriber struct {
	client       *sqs.Client
	queueURL     string
	deadLetter   string
	policy       saga.RetryPolicy
	logger       *zap.SugaredLogger
	workers      int
	waitTime     int32
	visibility   int32
	maxMessages  int32
	emptySleep   time.Duration
	errorSleep   time.Duration
	running      atomic.Bool
	inbound      chan *sqsWork
	outbound     chan *sqsWork
}

// SQSSubscriberOption customizes the subscriber
type SQSSubscriberOption func(*SQSEventSubscriber)

// WithWorkers sets the number of handler workers
func WithWorkers(n int) SQSSubscriberOption {
	return func(s *SQSEventSubscriber) { s.workers = n }
}

// WithVisibilityTimeout sets the per-receive visibility timeout seconds
func WithVisibilityTimeout(seconds int32) SQSSubscriberOption {
	return func(s *SQSEventSubscriber) { s.visibility = seconds }
}

// NewSQSEventSubscriber creates a subscriber for one queue
func NewSQSEventSubscriber(ctx context.Context, queueURL, deadLetterURL string, policy saga.RetryPolicy, logger *zap.SugaredLogger, opts ...SQSSubscriberOption) (*SQSEventSubscriber, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	s := &SQSEventSubscriber{
		client:      sqs.NewFromConfig(cfg),
		queueURL:    queueURL,
		deadLetter:  deadLetterURL,
		policy:      policy,
		logger:      logger,
		workers:     4,
		waitTime:    15,
		visibility:  30,
		maxMessages: 5,
		emptySleep:  5 * time.Second,
		errorSleep:  10 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Subscribe implements events.Subscriber. It blocks until ctx is
// cancelled.
func (s *SQSEventSubscriber) Subscribe(ctx context.Context, handler events.EventHandler) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("subscriber is already running")
	}
	defer s.running.Store(false)

	s.inbound = make(chan *sqsWork, s.workers)
	s.outbound = make(chan *sqsWork, s.workers)

	gr, ctx := errgroup.WithContext(ctx)

	for i := 0; i < s.workers; i++ {
		gr.Go(func() error {
			return s.runWorker(ctx, handler)
		})
	}

	gr.Go(func() error {
		return s.runReader(ctx)
	})

	gr.Go(func() error {
		return s.runCleaner(ctx)
	})

	err := gr.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *SQSEventSubscriber) runWorker(ctx context.Context, handler events.EventHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case work := <-s.inbound:
			if work == nil {
				continue
			}
			work.err = handler.Handle(ctx, work.event)

			select {
			case s.outbound <- work:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (s *SQSEventSubscriber) runReader(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := s.receive(ctx); err != nil {
				s.logger.Errorw("failed to receive from SQS", "error", err)
				select {
				case <-time.After(s.errorSleep):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}

func (s *SQSEventSubscriber) receive(ctx context.Context) error {
	output, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(s.queueURL),
		MaxNumberOfMessages: s.maxMessages,
		WaitTimeSeconds:     s.waitTime,
		VisibilityTimeout:   s.visibility,
		AttributeNames: []types.QueueAttributeName{
			"ApproximateReceiveCount",
			"MessageGroupId",
		},
		MessageAttributeNames: []string{"All"},
	})
	if err != nil {
		return errors.Wrap(err, "receive message")
	}

	if len(output.Messages) == 0 {
		select {
		case <-time.After(s.emptySleep):
		case <-ctx.Done():
		}
		return nil
	}

	for _, message := range output.Messages {
		event, err := s.decode(message)
		if err != nil {
			s.logger.Errorw("malformed SQS message, dead-lettering",
				"message_id", aws.ToString(message.MessageId),
				"error", err,
			)
			if err := s.moveToDeadLetter(ctx, message, "malformed payload"); err != nil {
				return err
			}
			continue
		}

		select {
		case s.inbound <- &sqsWork{message: message, event: event}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

func (s *SQSEventSubscriber) decode(message types.Message) (*events.Event, error) {
	var envelope snsMessage
	if err := json.Unmarshal([]byte(aws.ToString(message.Body)), &envelope); err != nil {
		return nil, errors.Wrap(err, "unmarshal envelope")
	}

	event := &events.Event{
		ID:            models.ID(envelope.ID),
		OrderID:       models.ID(envelope.OrderID),
		CorrelationID: models.ID(envelope.CorrelationID),
		EventType:     envelope.EventType,
		Data:          envelope.Payload,
		Metadata:      envelope.Metadata,
		Timestamp:     envelope.Timestamp,
	}

	if event.Metadata == nil {
		event.Metadata = make(events.Metadata)
	}
	event.Metadata.Set(SQSMessageIDKey, aws.ToString(message.MessageId))
	if message.ReceiptHandle != nil {
		event.Metadata.Set(SQSReceiptHandleKey, aws.ToString(message.ReceiptHandle))
	}

	return event, nil
}

func (s *SQSEventSubscriber) runCleaner(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case work := <-s.outbound:
			if work == nil {
				continue
			}
			if err := s.finish(ctx, work); err != nil {
				s.logger.Errorw("failed to finish SQS message",
					"message_id", aws.ToString(work.message.MessageId),
					"error", err,
				)
			}
		}
	}
}

func (s *SQSEventSubscriber) finish(ctx context.Context, work *sqsWork) error {
	if work.err == nil {
		return s.delete(ctx, work.message)
	}

	if !saga.Retryable(work.err) {
		s.logger.Errorw("terminal failure for event, dead-lettering",
			"event_id", work.event.ID,
			"event_type", work.event.EventType,
			"order_id", work.event.OrderID,
			"error", work.err,
		)
		if err := s.moveToDeadLetter(ctx, work.message, work.err.Error()); err != nil {
			return err
		}
		return nil
	}

	receiveCount, err := strconv.Atoi(work.message.Attributes["ApproximateReceiveCount"])
	if err != nil {
		receiveCount = 1
	}

	if receiveCount > s.policy.MaxRetries {
		s.logger.Errorw("retries exhausted for event, dead-lettering",
			"event_id", work.event.ID,
			"event_type", work.event.EventType,
			"receive_count", receiveCount,
			"error", work.err,
		)
		return s.moveToDeadLetter(ctx, work.message, work.err.Error())
	}

	// Leave the message invisible for the backoff window; SQS
	// redelivers it afterwards and holds back the rest of the group.
	backoff := int32(s.policy.BackoffFor(receiveCount-1) / time.Second)
	if backoff < 1 {
		backoff = 1
	}

	_, err = s.client.ChangeMessageVisibility(ctx, &sqs.ChangeMessageVisibilityInput{
		QueueUrl:          &s.queueURL,
		ReceiptHandle:     work.message.ReceiptHandle,
		VisibilityTimeout: backoff,
	})
	if err != nil {
		return errors.Wrap(err, "change message visibility")
	}
	return nil
}

func (s *SQSEventSubscriber) moveToDeadLetter(ctx context.Context, message types.Message, reason string) error {
	groupID := message.Attributes["MessageGroupId"]
	if groupID == "" {
		groupID = "dead-letter"
	}

	_, err := s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:               &s.deadLetter,
		MessageBody:            message.Body,
		MessageGroupId:         aws.String(groupID),
		MessageDeduplicationId: message.MessageId,
		MessageAttributes: map[string]types.MessageAttributeValue{
			"dead_letter_reason": {
				DataType:    aws.String("String"),
				StringValue: aws.String(reason),
			},
		},
	})
	if err != nil {
		return errors.Wrap(err, "send to dead-letter queue")
	}

	return s.delete(ctx, message)
}

func (s *SQSEventSubscriber) delete(ctx context.Context, message types.Message) error {
	_, err := s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      &s.queueURL,
		ReceiptHandle: message.ReceiptHandle,
	})
	if err != nil {
		return errors.Wrap(err, "delete message")
	}
	return nil
}
