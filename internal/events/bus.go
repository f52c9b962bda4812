// Package events provides an in-process event bus. Light changes and
// effect progress are published here and fanned out to the WebSocket hub
// and the MQTT bridge.
package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/butterflysky/elgato-keylight/pkg/keylight"
)

// EventType identifies the kind of event.
type EventType string

const (
	// Light events
	LightStateChanged EventType = "light.state_changed"
	LightUnreachable  EventType = "light.unreachable"

	// Preset and mood events
	PresetApplied EventType = "preset.applied"
	MoodApplied   EventType = "mood.applied"

	// Effect events
	EffectStarted  EventType = "effect.started"
	EffectStep     EventType = "effect.step"
	EffectFinished EventType = "effect.finished"
)

// Event is a single event emitted by a producer.
type Event struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent creates an Event, marshaling data to JSON.
// If marshaling fails the Data field is set to null.
func NewEvent(t EventType, data any) Event {
	raw, err := json.Marshal(data)
	if err != nil {
		raw = []byte("null")
	}
	return Event{
		Type:      t,
		Timestamp: time.Now(),
		Data:      raw,
	}
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// LightPayload is the data of light.* events.
type LightPayload struct {
	Light  string               `json:"light"`
	State  *keylight.LightState `json:"state,omitempty"`
	Kelvin int                  `json:"kelvin,omitempty"`
	Error  string               `json:"error,omitempty"`
}

// NewLightPayload builds a light.state_changed payload.
func NewLightPayload(light string, state keylight.LightState) LightPayload {
	return LightPayload{Light: light, State: &state, Kelvin: state.Kelvin()}
}

// NamedPayload is the data of preset.applied and mood.applied events.
type NamedPayload struct {
	Name   string   `json:"name"`
	Lights []string `json:"lights"`
}

// EffectPayload is the data of effect.* events.
type EffectPayload struct {
	RunID  string   `json:"run_id"`
	Effect string   `json:"effect"`
	Lights []string `json:"lights,omitempty"`
	Step   int      `json:"step,omitempty"`
	Steps  int      `json:"steps,omitempty"`
	Error  string   `json:"error,omitempty"`
	// RestoreFailed lists lights that did not return to their previous state.
	RestoreFailed []string `json:"restore_failed,omitempty"`
}

// SubscriberFunc is a callback invoked for each event.
// Implementations must not block; slow subscribers should buffer internally.
type SubscriberFunc func(Event)

// Bus is a simple synchronous fan-out event bus. A nil *Bus discards
// everything published to it.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]SubscriberFunc
	nextID      int
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[int]SubscriberFunc),
	}
}

// Subscribe registers a callback and returns an unsubscribe function.
// Calling the returned function more than once is harmless.
func (b *Bus) Subscribe(fn SubscriberFunc) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, id)
			b.mu.Unlock()
		})
	}
}

// Publish sends an event to all current subscribers.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	subs := make([]SubscriberFunc, 0, len(b.subscribers))
	for _, fn := range b.subscribers {
		subs = append(subs, fn)
	}
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(e)
	}
}

// Emit is shorthand for Publish(NewEvent(t, data)).
func (b *Bus) Emit(t EventType, data any) {
	if b == nil {
		return
	}
	b.Publish(NewEvent(t, data))
}
