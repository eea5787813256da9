package events

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/orderprocessing/order-system/shared/models"
)

var (
	ErrInvalidPayload  = errors.New("invalid payload")
	ErrInvalidReceiver = errors.New("receiver should be a pointer")
)

// Event represents a domain event flowing between services. Events are
// immutable once published; OrderID doubles as the bus partition key so
// every event of one order travels through a single ordered stream.
type Event struct {
	ID            models.ID   `json:"id"`
	OrderID       models.ID   `json:"order_id"`
	EventType     string      `json:"event_type"`
	Data          interface{} `json:"data"`
	Metadata      Metadata    `json:"metadata"`
	Timestamp     time.Time   `json:"timestamp"`
	CorrelationID models.ID   `json:"correlation_id"`
}

// Metadata represents event metadata
type Metadata map[string]string

func (m Metadata) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m Metadata) Set(key string, value string) {
	if m == nil {
		m = make(Metadata)
	}
	m[key] = value
}

func (m Metadata) Has(key string) bool {
	_, ok := m[key]
	return ok
}

func (m Metadata) Clone() Metadata {
	clone := Metadata{}
	for k, v := range m {
		clone[k] = v
	}
	return clone
}

// Publisher publishes events
type Publisher interface {
	Publish(ctx context.Context, events ...*Event) error
}

// Subscriber delivers events from one or more bus topics to a handler
type Subscriber interface {
	Subscribe(ctx context.Context, handler EventHandler) error
}

// EventHandler handles domain events
type EventHandler interface {
	Handle(ctx context.Context, event *Event) error
}

// EventHandlerFunc adapts a function to the EventHandler interface
type EventHandlerFunc func(ctx context.Context, event *Event) error

func (f EventHandlerFunc) Handle(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// NewEvent creates a new domain event keyed by order id
func NewEvent(orderID models.ID, eventType string, data interface{}) *Event {
	return &Event{
		ID:        models.GenerateUUID(),
		OrderID:   orderID,
		EventType: eventType,
		Data:      data,
		Metadata:  make(Metadata),
		Timestamp: time.Now(),
	}
}

// WithCorrelationID sets correlation ID
func (e *Event) WithCorrelationID(correlationID models.ID) *Event {
	e.CorrelationID = correlationID
	return e
}

// WithMetadata adds metadata
func (e *Event) WithMetadata(key string, value string) *Event {
	if e.Metadata == nil {
		e.Metadata = make(Metadata)
	}
	e.Metadata.Set(key, value)
	return e
}

// ToJSON converts event to JSON
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON creates event from JSON
func FromJSON(data []byte) (*Event, error) {
	var event Event
	err := json.Unmarshal(data, &event)
	return &event, err
}

// MarshalPayload marshals the event payload
func (e *Event) MarshalPayload() (json.RawMessage, error) {
	if b, ok := e.Data.([]byte); ok {
		return b, nil
	}

	if b, ok := e.Data.(json.RawMessage); ok {
		return b, nil
	}

	return json.Marshal(e.Data)
}

// UnmarshalPayload unmarshals the event payload into the given interface
func (e *Event) UnmarshalPayload(v interface{}) error {
	vValue := reflect.ValueOf(v)
	if vValue.Kind() != reflect.Ptr {
		return ErrInvalidReceiver
	}

	vValue = vValue.Elem()
	payloadValue := reflect.ValueOf(e.Data)
	if payloadValue.IsValid() && vValue.Type() == payloadValue.Type() {
		vValue.Set(payloadValue)
		return nil
	}

	if b, ok := e.Data.([]byte); ok {
		return json.Unmarshal(b, v)
	}

	if b, ok := e.Data.(json.RawMessage); ok {
		return json.Unmarshal([]byte(b), v)
	}

	raw, err := e.MarshalPayload()
	if err != nil {
		return err
	}

	return json.Unmarshal(raw, v)
}

// Clone creates a copy of the event
func (e *Event) Clone() *Event {
	return &Event{
		ID:            e.ID,
		OrderID:       e.OrderID,
		EventType:     e.EventType,
		Data:          e.Data,
		Metadata:      e.Metadata.Clone(),
		Timestamp:     e.Timestamp,
		CorrelationID: e.CorrelationID,
	}
}

// Event Types Constants
const (
	// Order Events
	OrderCreatedEvent = "order.created"

	// Inventory Events
	InventoryReservedEvent = "inventory.reserved"

	// Payment Events
	PaymentSucceededEvent = "payment.success"
	PaymentFailedEvent    = "payment.failed"
)

// TopicName maps an event type to its bus topic. One topic exists per
// event type; Kafka topic names avoid dots.
func TopicName(eventType string) string {
	return strings.ReplaceAll(eventType, ".", "-")
}

// AllTopics lists every bus topic in the choreography
func AllTopics() []string {
	return []string{
		TopicName(OrderCreatedEvent),
		TopicName(InventoryReservedEvent),
		TopicName(PaymentSucceededEvent),
		TopicName(PaymentFailedEvent),
	}
}
