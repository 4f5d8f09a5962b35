package events

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/core"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())

	received := false
	var receivedEvent Event

	bus.SubscribeFunc(TypeEpisodeStarted, func(e Event) {
		received = true
		receivedEvent = e
	})

	bus.Publish(NewEpisodeStartedEvent("test-session", "ep-1", 1, 13, 15, 60))

	assert.True(t, received, "Event handler should have been called")
	assert.NotNil(t, receivedEvent)
	assert.Equal(t, TypeEpisodeStarted, receivedEvent.Type())
	assert.Equal(t, "test-session", receivedEvent.GameID())
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())

	handler1Called := false
	handler2Called := false

	id1 := bus.SubscribeFunc(TypeBombPlaced, func(e Event) {
		handler1Called = true
	})
	id2 := bus.SubscribeFunc(TypeBombPlaced, func(e Event) {
		handler2Called = true
	})

	bus.Publish(NewBombPlacedEvent("test-session", 1, core.NewCoordinate(1, 1)))

	assert.True(t, handler1Called)
	assert.True(t, handler2Called)
	assert.NotEqual(t, id1, id2, "handler IDs must be unique")
	assert.Equal(t, 2, bus.HandlerCount(TypeBombPlaced))
}

// TestSubscriber is a test implementation of Subscriber
type TestSubscriber struct {
	id              string
	interestedTypes map[string]bool
	receivedEvents  []Event
}

func (ts *TestSubscriber) ID() string {
	return ts.id
}

func (ts *TestSubscriber) HandleEvent(e Event) {
	ts.receivedEvents = append(ts.receivedEvents, e)
}

func (ts *TestSubscriber) InterestedIn(eventType string) bool {
	if ts.interestedTypes == nil {
		return true
	}
	return ts.interestedTypes[eventType]
}

func TestEventBusSubscriber(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())

	subscriber := &TestSubscriber{
		id: "test-subscriber",
		interestedTypes: map[string]bool{
			TypeEpisodeStarted: true,
			TypeEpisodeEnded:   true,
		},
	}

	bus.Subscribe(subscriber)
	assert.Equal(t, 1, bus.SubscriberCount())

	bus.Publish(NewEpisodeStartedEvent("s", "ep-1", 1, 13, 15, 60))
	bus.Publish(NewWallDestroyedEvent("s", core.NewCoordinate(3, 3), 1, 1))
	bus.Publish(NewEpisodeEndedEvent("s", EpisodeSummary{Episode: 1, Outcome: OutcomeDied}))

	// Only the episode events should arrive
	assert.Len(t, subscriber.receivedEvents, 2)
	assert.Equal(t, TypeEpisodeStarted, subscriber.receivedEvents[0].Type())
	assert.Equal(t, TypeEpisodeEnded, subscriber.receivedEvents[1].Type())

	bus.Unsubscribe(subscriber.ID())
	bus.Publish(NewEpisodeStartedEvent("s", "ep-2", 2, 13, 15, 60))
	assert.Len(t, subscriber.receivedEvents, 2)
}

type panickingSubscriber struct{}

func (panickingSubscriber) ID() string                 { return "panicky" }
func (panickingSubscriber) HandleEvent(Event)          { panic("boom") }
func (panickingSubscriber) InterestedIn(_ string) bool { return true }

func TestEventBusRecoversFromPanics(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())
	bus.Subscribe(panickingSubscriber{})

	called := false
	bus.SubscribeFunc(TypePlayerKilled, func(Event) { panic("handler boom") })
	bus.SubscribeFunc(TypePlayerKilled, func(Event) { called = true })

	assert.NotPanics(t, func() {
		bus.Publish(NewPlayerKilledEvent("s", core.NewCoordinate(1, 1), 3))
	})
	assert.True(t, called, "handlers after a panicking one still run")

	stats := bus.Stats()
	assert.EqualValues(t, 1, stats.Published)
	assert.EqualValues(t, 2, stats.Panics)
	assert.EqualValues(t, 1, stats.Delivered)
}

func TestEventBus_DeliveryOrder(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())

	var order []string
	first := &TestSubscriber{id: "first"}
	bus.Subscribe(first)
	bus.SubscribeFunc(TypeBombPlaced, func(Event) { order = append(order, "func") })
	bus.Subscribe(&orderSubscriber{id: "last", order: &order})

	for i := 0; i < 5; i++ {
		order = order[:0]
		bus.Publish(NewBombPlacedEvent("s", i, core.NewCoordinate(1, 1)))
		assert.Equal(t, []string{"func", "last"}, order)
	}
	assert.Len(t, first.receivedEvents, 5)

	// re-subscribing an ID keeps its position
	bus.Subscribe(&orderSubscriber{id: "first", order: &order})
	order = order[:0]
	bus.Publish(NewBombPlacedEvent("s", 9, core.NewCoordinate(1, 1)))
	assert.Equal(t, []string{"first", "func", "last"}, order)
	assert.Equal(t, 2, bus.SubscriberCount())
}

func TestEventBus_UnsubscribeFunc(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())

	calls := 0
	id := bus.SubscribeFunc(TypeWallDestroyed, func(Event) { calls++ })
	bus.Publish(NewWallDestroyedEvent("s", core.NewCoordinate(2, 2), 1, 1))

	bus.Unsubscribe(id)
	bus.Publish(NewWallDestroyedEvent("s", core.NewCoordinate(2, 3), 1, 2))

	assert.Equal(t, 1, calls)
	assert.Zero(t, bus.HandlerCount(TypeWallDestroyed))
}

func TestEventBus_HandlerMaySubscribe(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())

	late := 0
	bus.SubscribeFunc(TypeEpisodeStarted, func(Event) {
		bus.SubscribeFunc(TypeEpisodeEnded, func(Event) { late++ })
	})

	assert.NotPanics(t, func() {
		bus.Publish(NewEpisodeStartedEvent("s", "ep-1", 1, 13, 15, 60))
	})
	bus.Publish(NewEpisodeEndedEvent("s", EpisodeSummary{Episode: 1}))
	assert.Equal(t, 1, late)
}

type orderSubscriber struct {
	id    string
	order *[]string
}

func (o *orderSubscriber) ID() string               { return o.id }
func (o *orderSubscriber) HandleEvent(Event)        { *o.order = append(*o.order, o.id) }
func (o *orderSubscriber) InterestedIn(string) bool { return true }
