package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pointsgame/models"
)

// TestEventDeliveryIntegration tests the complete event flow from TransactionalBus to main Bus
func TestEventDeliveryIntegration(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan BalanceChangeEvent, 1)
	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		balanceEvent, ok := event.(BalanceChangeEvent)
		if !ok {
			t.Errorf("Expected BalanceChangeEvent, got %T", event)
			return
		}
		eventReceived <- balanceEvent
	})

	testEvent := BalanceChangeEvent{
		AccountID:    uuid.New(),
		OldBalance:   100,
		NewBalance:   140,
		ChangeAmount: 40,
		Kind:         models.HistoryKindGamePlay,
		Outcome:      models.OutcomeBigWin,
	}

	transactionalBus.Publish(testEvent)
	assert.Equal(t, 1, transactionalBus.Pending())

	err := transactionalBus.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, transactionalBus.Pending())

	select {
	case received := <-eventReceived:
		assert.Equal(t, testEvent, received)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

// TestMultipleEventsDelivery tests delivering multiple events in sequence
func TestMultipleEventsDelivery(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventsReceived := make(chan BalanceChangeEvent, 3)
	var wg sync.WaitGroup
	wg.Add(3)

	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		defer wg.Done()
		if balanceEvent, ok := event.(BalanceChangeEvent); ok {
			eventsReceived <- balanceEvent
		}
	})

	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for i, id := range ids {
		transactionalBus.Publish(BalanceChangeEvent{
			AccountID:    id,
			OldBalance:   100,
			NewBalance:   100 + int64(i),
			ChangeAmount: int64(i),
		})
	}

	require.NoError(t, transactionalBus.Flush(context.Background()))
	wg.Wait()
	close(eventsReceived)

	seen := make(map[uuid.UUID]bool)
	for received := range eventsReceived {
		seen[received.AccountID] = true
	}
	for _, id := range ids {
		assert.True(t, seen[id])
	}
}

// TestTransactionalBusDiscard tests that discarded events are not delivered
func TestTransactionalBusDiscard(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan bool, 1)
	mainBus.Subscribe(EventTypeSabotage, func(ctx context.Context, event Event) {
		eventReceived <- true
	})

	transactionalBus.Publish(SabotageEvent{SabotageID: uuid.New(), ItemID: "point_drain"})
	transactionalBus.Discard()
	require.NoError(t, transactionalBus.Flush(context.Background()))

	select {
	case <-eventReceived:
		t.Fatal("Event was received despite being discarded")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBus_HandlerPanicIsContained(t *testing.T) {
	bus := NewBus()
	done := make(chan struct{})

	bus.Subscribe(EventTypeAccountCreated, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeAccountCreated, func(ctx context.Context, event Event) {
		close(done)
	})

	bus.Emit(context.Background(), AccountCreatedEvent{AccountID: uuid.New(), Username: "alice"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second handler did not run")
	}
}

func TestBus_SubscribeAll(t *testing.T) {
	bus := NewBus()
	received := make(chan EventType, len(AllEventTypes))

	bus.SubscribeAll(func(ctx context.Context, event Event) {
		received <- event.Type()
	})

	bus.Emit(context.Background(), ItemGrantedEvent{ItemID: "hint", Uses: 1, RemainingUses: 2})

	select {
	case got := <-received:
		assert.Equal(t, EventTypeItemGranted, got)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}
