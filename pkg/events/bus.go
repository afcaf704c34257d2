package events

import (
	"context"
	"errors"
	"sync"
)

// Handler receives a published event.
type Handler func(ctx context.Context, event Event) error

// AllEvents subscribes a handler to every event name.
const AllEvents = "*"

// Bus is an in-process, synchronous publish/subscribe dispatcher.
// Handlers run on the publisher's goroutine in subscription order.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

var _ Publisher = (*Bus)(nil)

// Subscribe registers h for events named name, or for all events when name is AllEvents.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Publish delivers event to its subscribers and returns their joined errors.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	targets := make([]Handler, 0, len(b.handlers[event.EventName()])+len(b.handlers[AllEvents]))
	targets = append(targets, b.handlers[event.EventName()]...)
	targets = append(targets, b.handlers[AllEvents]...)
	b.mu.RUnlock()

	var errs []error
	for _, h := range targets {
		if err := h(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder is a Publisher that keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

var _ Publisher = (*Recorder)(nil)

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of the recorded events in publish order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Named returns the recorded events with the given name.
func (r *Recorder) Named(name string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}
