package events

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// EventBus delivers events synchronously in subscription order. Handlers run
// outside the bus lock, so a handler may subscribe or unsubscribe.
type EventBus struct {
	mu      sync.RWMutex
	routes  []route
	nextFn  int
	logger  zerolog.Logger
	counter busCounters
}

// route is either an object subscriber or a handler bound to one event type
type route struct {
	id        string
	sub       Subscriber
	eventType string
	fn        EventHandler
}

func (r route) wants(eventType string) bool {
	if r.sub != nil {
		return r.sub.InterestedIn(eventType)
	}
	return r.eventType == eventType
}

type busCounters struct {
	published atomic.Int64
	delivered atomic.Int64
	panics    atomic.Int64
}

// BusStats counts traffic since the bus was created
type BusStats struct {
	Published int64
	Delivered int64
	Panics    int64
}

func NewEventBus(logger zerolog.Logger) *EventBus {
	return &EventBus{
		logger: logger.With().Str("component", "EventBus").Logger(),
	}
}

// Subscribe registers s. A subscriber with the same ID is replaced in place.
func (eb *EventBus) Subscribe(s Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	r := route{id: s.ID(), sub: s}
	if i := eb.indexOf(r.id); i >= 0 {
		eb.routes[i] = r
	} else {
		eb.routes = append(eb.routes, r)
	}
	eb.logger.Debug().Str("subscriber_id", r.id).Msg("Subscriber registered")
}

// SubscribeFunc binds handler to one event type and returns an ID that
// Unsubscribe accepts.
func (eb *EventBus) SubscribeFunc(eventType string, handler EventHandler) string {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.nextFn++
	id := fmt.Sprintf("%s#%d", eventType, eb.nextFn)
	eb.routes = append(eb.routes, route{id: id, eventType: eventType, fn: handler})
	eb.logger.Debug().Str("handler_id", id).Msg("Handler registered")
	return id
}

// Unsubscribe removes a subscriber or function handler by ID
func (eb *EventBus) Unsubscribe(id string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if i := eb.indexOf(id); i >= 0 {
		eb.routes = slices.Delete(eb.routes, i, i+1)
		eb.logger.Debug().Str("subscriber_id", id).Msg("Subscriber removed")
	}
}

func (eb *EventBus) indexOf(id string) int {
	return slices.IndexFunc(eb.routes, func(r route) bool { return r.id == id })
}

func (eb *EventBus) Publish(event Event) {
	eventType := event.Type()
	eb.counter.published.Add(1)

	eb.mu.RLock()
	targets := make([]route, 0, len(eb.routes))
	for _, r := range eb.routes {
		if r.wants(eventType) {
			targets = append(targets, r)
		}
	}
	eb.mu.RUnlock()

	eb.logger.Trace().
		Str("event_type", eventType).
		Str("game_id", event.GameID()).
		Int("targets", len(targets)).
		Msg("Publishing event")

	for _, r := range targets {
		eb.deliver(r, event)
	}
}

// deliver runs one route; a panic is logged and counted, never propagated
func (eb *EventBus) deliver(r route, event Event) {
	defer func() {
		if p := recover(); p != nil {
			eb.counter.panics.Add(1)
			eb.logger.Error().
				Str("subscriber_id", r.id).
				Str("event_type", event.Type()).
				Interface("panic", p).
				Msg("Event handler panicked")
		}
	}()
	if r.sub != nil {
		r.sub.HandleEvent(event)
	} else {
		r.fn(event)
	}
	eb.counter.delivered.Add(1)
}

// SubscriberCount is the number of object subscribers
func (eb *EventBus) SubscriberCount() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	n := 0
	for _, r := range eb.routes {
		if r.sub != nil {
			n++
		}
	}
	return n
}

// HandlerCount is the number of function handlers bound to eventType
func (eb *EventBus) HandlerCount(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	n := 0
	for _, r := range eb.routes {
		if r.sub == nil && r.eventType == eventType {
			n++
		}
	}
	return n
}

func (eb *EventBus) Stats() BusStats {
	return BusStats{
		Published: eb.counter.published.Load(),
		Delivered: eb.counter.delivered.Load(),
		Panics:    eb.counter.panics.Load(),
	}
}
