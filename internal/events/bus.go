// Package events in-process publish/subscribe for storefront domain events.
package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Topics
const (
	TopicLineAdded      = "cart.line_added"
	TopicCartCleared    = "cart.cleared"
	TopicOrderSubmitted = "order.submitted"
	TopicRelayFallback  = "order.relay_fallback"
	TopicAuditFailed    = "order.audit_failed"
	TopicFavoriteToggle = "favorite.toggled"
)

// Event domain event
type Event struct {
	Topic     string                 `json:"topic"`
	Source    string                 `json:"source"` // publishing service
	Payload   map[string]interface{} `json:"payload"`
	Timestamp time.Time              `json:"timestamp"`
}

// Handler event handler function
type Handler func(event Event)

// Publisher the publishing half of the bus. PublishAsync is for events
// nothing in the request waits on.
type Publisher interface {
	Publish(source, topic string, payload map[string]interface{})
	PublishAsync(source, topic string, payload map[string]interface{})
}

type subscription struct {
	subscriber string
	handler    Handler
}

// Bus topic-keyed event bus
type Bus struct {
	subscribers map[string][]subscription
	mu          sync.RWMutex
	logger      *zerolog.Logger
	wg          sync.WaitGroup
}

// NewBus creates an empty bus
func NewBus(logger *zerolog.Logger) *Bus {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Bus{
		subscribers: make(map[string][]subscription),
		logger:      logger,
	}
}

// Subscribe registers handler for topic
func (b *Bus) Subscribe(subscriber, topic string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[topic] = append(b.subscribers[topic], subscription{
		subscriber: subscriber,
		handler:    handler,
	})
	b.logger.Debug().Str("subscriber", subscriber).Str("topic", topic).Msg("subscribed")
}

// Publish runs every handler in subscription order. A panicking handler is
// logged and does not stop the others.
func (b *Bus) Publish(source, topic string, payload map[string]interface{}) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subscribers[topic]))
	copy(subs, b.subscribers[topic])
	b.mu.RUnlock()

	if len(subs) == 0 {
		return
	}

	event := Event{
		Topic:     topic,
		Source:    source,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	for _, s := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error().
						Str("source", source).
						Str("topic", topic).
						Str("subscriber", s.subscriber).
						Interface("panic", r).
						Msg("event handler panicked")
				}
			}()
			s.handler(event)
		}()
	}
}

// PublishAsync publishes on a new goroutine
func (b *Bus) PublishAsync(source, topic string, payload map[string]interface{}) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.Publish(source, topic, payload)
	}()
}

// Wait blocks until every async publish has finished
func (b *Bus) Wait() {
	b.wg.Wait()
}

// NopPublisher discards events
type NopPublisher struct{}

func (NopPublisher) Publish(string, string, map[string]interface{}) {}

func (NopPublisher) PublishAsync(string, string, map[string]interface{}) {}
