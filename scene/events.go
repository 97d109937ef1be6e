package scene

import (
	"github.com/milk9111/tankbattle/body"
	"github.com/milk9111/tankbattle/collision"
)

// Event is emitted during a tick and readable until the next tick starts.
type Event interface {
	isEvent()
}

// Collided is emitted when a collision binding's policy acted.
type Collided struct {
	A, B    Handle
	Effect  collision.Effect
	Overlap collision.Overlap
}

// Removed is emitted when the sweep reclaims a body.
type Removed struct {
	Handle Handle
	Tag    body.Tag
}

func (Collided) isEvent() {}
func (Removed) isEvent()  {}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.items = nil
}
