// Package eventlog is an append-only, in-memory record of domain events with
// synchronous per-kind subscribers.
//
// A Log is not safe for concurrent use. Give each scenario its own Log, or
// Clear it between scenarios that run one after another.
package eventlog

import (
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/checkout-sim/internal/core/domain"
)

type Subscriber func(evt domain.DomainEvent)

type Log struct {
	events      []domain.DomainEvent
	subscribers map[domain.EventKind][]Subscriber
	now         func() time.Time
}

type Option func(*Log)

// WithClock overrides the timestamp source used by Emit.
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		l.now = now
	}
}

func New(opts ...Option) *Log {
	l := &Log{
		subscribers: make(map[domain.EventKind][]Subscriber),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Subscribe registers fn for events of kind. Subscribers run in
// registration order.
func (l *Log) Subscribe(kind domain.EventKind, fn Subscriber) {
	l.subscribers[kind] = append(l.subscribers[kind], fn)
}

// Publish appends evt and notifies subscribers of its kind. A panicking
// subscriber is not recovered; the event is already recorded when it runs.
func (l *Log) Publish(evt domain.DomainEvent) {
	l.events = append(l.events, evt)
	for _, fn := range l.subscribers[evt.Kind] {
		fn(evt)
	}
}

// Emit stamps a new event with an ID and timestamp, publishes it and
// returns it.
func (l *Log) Emit(kind domain.EventKind, payload any) domain.DomainEvent {
	evt := domain.DomainEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		Timestamp: l.now(),
		Payload:   payload,
	}
	l.Publish(evt)
	return evt
}

// Events returns the full history in publish order.
func (l *Log) Events() []domain.DomainEvent {
	out := make([]domain.DomainEvent, len(l.events))
	copy(out, l.events)
	return out
}

func (l *Log) EventsByKind(kind domain.EventKind) []domain.DomainEvent {
	var out []domain.DomainEvent
	for _, evt := range l.events {
		if evt.Kind == kind {
			out = append(out, evt)
		}
	}
	return out
}

// Kinds returns the kind of every recorded event, in order.
func (l *Log) Kinds() []domain.EventKind {
	out := make([]domain.EventKind, len(l.events))
	for i, evt := range l.events {
		out[i] = evt.Kind
	}
	return out
}

func (l *Log) Len() int {
	return len(l.events)
}

// Clear drops the recorded history. Subscriptions are kept.
func (l *Log) Clear() {
	l.events = nil
}
