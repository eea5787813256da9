package config

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/orderprocessing/order-system/payment-service/application"
	"github.com/orderprocessing/order-system/payment-service/domain"
	"github.com/orderprocessing/order-system/payment-service/handlers"
	"github.com/orderprocessing/order-system/shared/events"
	sharedinfra "github.com/orderprocessing/order-system/shared/infrastructure"
	"github.com/orderprocessing/order-system/shared/logger"
	"github.com/orderprocessing/order-system/shared/models"
	"github.com/orderprocessing/order-system/shared/saga"
	"github.com/orderprocessing/order-system/shared/telemetry"
)

const consumerName = "payment-service"

type Dependencies struct {
	// Logging
	Logger *zap.SugaredLogger

	// Database, used for the processed-event store only
	DB *sqlx.DB

	ProcessedEventStore *sharedinfra.PostgresProcessedEventStore

	// Use Cases
	ChargePayment *application.ChargePayment

	// Event pipeline: subscriber -> idempotent processor -> router
	EventPublisher  events.Publisher
	EventSubscriber events.Subscriber
	EventHandler    events.EventHandler

	// Background jobs
	Janitor *sharedinfra.ProcessedEventJanitor

	// Telemetry
	Telemetry         *telemetry.Telemetry
	TelemetryShutdown func()

	closers []func() error
}

func BuildDependencies(ctx context.Context, config *Config) (*Dependencies, error) {
	deps := &Dependencies{}

	log, err := logger.New(config.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	deps.Logger = log

	if config.Telemetry.Enabled {
		telConfig := telemetry.PaymentServiceConfig.WithOTLPEndpoint(config.Telemetry.OTLPEndpoint)
		tel, telemetryShutdown, err := telemetry.InitTelemetry(ctx, telConfig)
		if err != nil {
			log.Warnw("failed to initialize telemetry, continuing without it", "error", err)
		} else {
			deps.Telemetry = tel
			deps.TelemetryShutdown = telemetryShutdown
		}
	}

	db, err := sqlx.Connect("postgres", config.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	deps.DB = db
	deps.closers = append(deps.closers, db.Close)

	if err := deps.buildBus(ctx, config); err != nil {
		return nil, err
	}

	deps.ProcessedEventStore = sharedinfra.NewPostgresProcessedEventStore(db)

	policy := domain.HashChargePolicy(models.NewMoney(config.Payment.SimulatedAmount, config.Payment.Currency))
	deps.ChargePayment = application.NewChargePayment(policy, deps.EventPublisher, log)

	eventHandlers := handlers.NewPaymentEventHandlers(deps.ChargePayment)
	router := saga.NewEventRouter(log)
	router.Register(events.InventoryReservedEvent, eventHandlers)
	deps.EventHandler = saga.NewIdempotentProcessor(consumerName, deps.ProcessedEventStore, router, log)

	deps.Janitor = sharedinfra.NewProcessedEventJanitor(
		deps.ProcessedEventStore,
		config.Retention.Window,
		config.Retention.Interval,
		log,
	)

	return deps, nil
}

// buildBus wires the publisher and subscriber for the configured driver.
// The payment service consumes inventory.reserved only.
func (d *Dependencies) buildBus(ctx context.Context, config *Config) error {
	topics := []string{
		events.TopicName(events.InventoryReservedEvent),
	}

	switch config.Bus.Driver {
	case "sqs":
		publisher, err := sharedinfra.NewSNSEventPublisher(ctx, config.Bus.AWS.SNSTopicArn)
		if err != nil {
			return fmt.Errorf("failed to create SNS publisher: %w", err)
		}
		d.EventPublisher = publisher
		d.closers = append(d.closers, publisher.Close)

		subscriber, err := sharedinfra.NewSQSEventSubscriber(
			ctx,
			config.Bus.AWS.SQSQueueURL,
			config.Bus.AWS.DeadLetterURL,
			config.Bus.Retry,
			d.Logger,
		)
		if err != nil {
			return fmt.Errorf("failed to create SQS subscriber: %w", err)
		}
		d.EventSubscriber = subscriber

	default:
		publisher := sharedinfra.NewKafkaEventPublisher(config.Bus.Kafka.Brokers)
		d.EventPublisher = publisher
		d.closers = append(d.closers, publisher.Close)

		subscriber := sharedinfra.NewKafkaEventSubscriber(
			config.Bus.Kafka.Brokers,
			config.Bus.Kafka.GroupID,
			topics,
			config.Bus.Retry,
			d.Logger,
		)
		d.EventSubscriber = subscriber
		d.closers = append(d.closers, subscriber.Close)
	}

	return nil
}

// Close closes all dependencies
func (d *Dependencies) Close() error {
	var errs []error

	for _, close := range d.closers {
		if err := close(); err != nil {
			errs = append(errs, err)
		}
	}

	if d.TelemetryShutdown != nil {
		d.TelemetryShutdown()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing dependencies: %v", errs)
	}

	return nil
}
