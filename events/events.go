package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"pointsgame/models"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange  EventType = "balance_change"
	EventTypeAccountCreated EventType = "account_created"
	EventTypeSabotage       EventType = "sabotage"
	EventTypeItemGranted    EventType = "item_granted"
)

// AllEventTypes lists every event type emitted on the bus
var AllEventTypes = []EventType{
	EventTypeBalanceChange,
	EventTypeAccountCreated,
	EventTypeSabotage,
	EventTypeItemGranted,
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent is emitted for every history entry that moved a balance
type BalanceChangeEvent struct {
	AccountID    uuid.UUID          `json:"account_id"`
	OldBalance   int64              `json:"old_balance"`
	NewBalance   int64              `json:"new_balance"`
	ChangeAmount int64              `json:"change_amount"`
	Kind         models.HistoryKind `json:"kind"`
	Outcome      string             `json:"outcome"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// AccountCreatedEvent represents a new registration
type AccountCreatedEvent struct {
	AccountID      uuid.UUID `json:"account_id"`
	Username       string    `json:"username"`
	InitialBalance int64     `json:"initial_balance"`
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

// SabotageEvent is emitted once an AGAINST item has landed on its target
type SabotageEvent struct {
	SabotageID     uuid.UUID `json:"sabotage_id"`
	AttackerID     uuid.UUID `json:"attacker_id"`
	TargetID       uuid.UUID `json:"target_id"`
	ItemID         string    `json:"item_id"`
	PointsDeducted int64     `json:"points_deducted"`
	AdminTriggered bool      `json:"admin_triggered"`
	At             time.Time `json:"at"`
}

func (e SabotageEvent) Type() EventType {
	return EventTypeSabotage
}

// ItemGrantedEvent is emitted when an inventory entry is created or incremented
type ItemGrantedEvent struct {
	AccountID     uuid.UUID          `json:"account_id"`
	ItemID        string             `json:"item_id"`
	Uses          int                `json:"uses"`
	RemainingUses int                `json:"remaining_uses"`
	Kind          models.HistoryKind `json:"kind"`
}

func (e ItemGrantedEvent) Type() EventType {
	return EventTypeItemGranted
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// SubscribeAll adds the handler for every known event type
func (b *Bus) SubscribeAll(handler Handler) {
	for _, eventType := range AllEventTypes {
		b.Subscribe(eventType, handler)
	}
}

// Emit publishes an event to all registered handlers.
// Handlers run on their own goroutines and a panicking handler is logged, not propagated.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events raised inside a unit of work until the transaction commits
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Queued event on transactional bus")
	b.pending = append(b.pending, e)
}

// Pending returns the number of queued events
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}

// Flush is called after a successful commit.
// Handlers receive a context detached from ctx cancellation.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	if b.real == nil {
		b.pending = nil
		return nil
	}

	eventCtx := context.WithoutCancel(ctx)
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}

	log.WithField("flushed", len(b.pending)).Debug("Flushed transactional bus")
	b.pending = nil
	return nil
}

// Discard is called after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
