package events

import (
	"context"
	"sync"

	"closetcoins/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeCoinChange     EventType = "coin_change"
	EventTypeAccountCreated EventType = "account_created"
	EventTypeRewardRedeemed EventType = "reward_redeemed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// CoinChangeEvent represents a committed balance change
type CoinChangeEvent struct {
	UserID     int64
	OldBalance int64
	NewBalance int64
	Amount     int64
	Reason     models.Reason
}

func (e CoinChangeEvent) Type() EventType {
	return EventTypeCoinChange
}

// AccountCreatedEvent represents a new account provisioned at registration
type AccountCreatedEvent struct {
	UserID         int64
	Username       string
	InitialBalance int64
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

// RewardRedeemedEvent represents a committed redemption
type RewardRedeemedEvent struct {
	UserID     int64
	RewardID   int64
	RewardName string
	Cost       int64
	NewBalance int64
}

func (e RewardRedeemedEvent) Type() EventType {
	return EventTypeRewardRedeemed
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

// Emit publishes an event to all registered handlers. Handlers run
// asynchronously so a slow subscriber never blocks a request worker.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}

// TransactionalBus holds events published during a unit of work and only
// hands them to the real bus after the database commit succeeds.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

// NewTransactionalBus creates a transactional bus wrapping the real one
func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish stashes an event until Flush or Discard
func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events. Called after a successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) {
	// Events outlive the request that produced them, so emission uses a
	// background context rather than the possibly-cancelled request one.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops all pending events. Called after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
