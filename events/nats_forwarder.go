package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// MessagePublisher is the transport the forwarder writes to
type MessagePublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// Envelope wraps a forwarded event with routing metadata
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     EventType       `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// SubjectFor maps a domain event type to its NATS subject
func SubjectFor(eventType EventType) string {
	switch eventType {
	case EventTypeBalanceChange:
		return "accounts.balance_changed"
	case EventTypeAccountCreated:
		return "accounts.created"
	case EventTypeSabotage:
		return "sabotage.applied"
	case EventTypeItemGranted:
		return "inventory.granted"
	default:
		return fmt.Sprintf("unknown.%s", eventType)
	}
}

// AllSubjects returns every subject the forwarder publishes to
func AllSubjects() []string {
	subjects := make([]string, 0, len(AllEventTypes))
	for _, eventType := range AllEventTypes {
		subjects = append(subjects, SubjectFor(eventType))
	}
	return subjects
}

// Forwarder republishes bus events onto an external message bus
type Forwarder struct {
	publisher MessagePublisher
	source    string
}

// NewForwarder creates a forwarder writing to publisher
func NewForwarder(publisher MessagePublisher) *Forwarder {
	return &Forwarder{publisher: publisher, source: "pointsgame"}
}

// Attach subscribes the forwarder to every event type on bus
func (f *Forwarder) Attach(bus *Bus) {
	bus.SubscribeAll(f.Handle)
}

// Handle marshals one event into an envelope and publishes it.
// Failures are logged; the ledger never depends on delivery.
func (f *Forwarder) Handle(ctx context.Context, event Event) {
	if err := f.forward(ctx, event); err != nil {
		log.WithError(err).WithField("eventType", event.Type()).Warn("Failed to forward event")
	}
}

func (f *Forwarder) forward(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := Envelope{
		EventID:       uuid.NewString(),
		EventType:     event.Type(),
		Timestamp:     time.Now().UTC(),
		SourceService: f.source,
		Payload:       payload,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := SubjectFor(event.Type())
	if err := f.publisher.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}
