// Package events holds the envelope shared by every domain event and the
// recorder aggregates embed to collect them until the outbox drains them.
package events

import (
	"slices"
	"time"
)

type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// EventRecorder is embedded by aggregates. It is not safe for concurrent use;
// an aggregate instance belongs to one unit of work.
type EventRecorder struct {
	pending []DomainEvent
}

// Record appends events in order, skipping nils.
func (r *EventRecorder) Record(evs ...DomainEvent) {
	for _, ev := range evs {
		if ev != nil {
			r.pending = append(r.pending, ev)
		}
	}
}

func (r *EventRecorder) PendingEvents() []DomainEvent { return slices.Clone(r.pending) }

func (r *EventRecorder) ClearEvents() { r.pending = nil }

// Base is the envelope. Time is always reported in UTC.
type Base struct {
	Name      string    `json:"name"`
	Aggregate string    `json:"aggregate_id"`
	Time      time.Time `json:"occurred_at"`
}

func (e Base) EventName() string     { return e.Name }
func (e Base) AggregateID() string   { return e.Aggregate }
func (e Base) OccurredAt() time.Time { return e.Time.UTC() }
