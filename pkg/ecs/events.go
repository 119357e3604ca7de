package ecs

import "weak"

// EventQueue is a typed FIFO of event instances. Each system handle that
// declares interest in an event type owns its own queue; dispatching an
// event enqueues a copy into every live queue subscribed to that type.
type EventQueue[T any] struct {
	items []T
}

// push appends an event to the queue.
func (q *EventQueue[T]) push(v T) { q.items = append(q.items, v) }

// Drain returns every queued event and empties the queue. A system handle
// drains each of its queues once per invocation, before the callback
// runs, into SystemContext.Events.
func (q *EventQueue[T]) Drain() []T {
	items := q.items
	q.items = nil
	return items
}

// Len reports the number of queued, undrained events.
func (q *EventQueue[T]) Len() int { return len(q.items) }

func (q *EventQueue[T]) drainAny() []any {
	items := q.Drain()
	out := make([]any, len(items))
	for i, v := range items {
		out[i] = v
	}
	return out
}

// eventRef is a weakly-held reference to one EventQueue[T], type-erased
// behind eventSink so the dispatcher can hold heterogeneous queues in one
// slice per event TypeID without keeping any of them alive itself.
type eventSink interface {
	pushIfAlive(v any) bool
}

type eventRef[T any] struct {
	wp weak.Pointer[EventQueue[T]]
}

func (r eventRef[T]) pushIfAlive(v any) bool {
	q := r.wp.Value()
	if q == nil {
		return false
	}
	q.push(v.(T))
	return true
}

// eventDispatcher is the world's weakly-held registry of live event
// queues, keyed by event TypeID.
type eventDispatcher struct {
	byType map[TypeID][]eventSink
}

func newEventDispatcher() *eventDispatcher {
	return &eventDispatcher{byType: make(map[TypeID][]eventSink)}
}

func registerEventQueue[T any](d *eventDispatcher, q *EventQueue[T]) {
	id := TypeOf[T]()
	d.byType[id] = append(d.byType[id], eventRef[T]{wp: weak.Make(q)})
}

func (d *eventDispatcher) dispatch(id TypeID, v any) {
	list := d.byType[id]
	kept := list[:0]
	for _, ref := range list {
		if ref.pushIfAlive(v) {
			kept = append(kept, ref)
		}
	}
	d.byType[id] = kept
}

// Dispatch default-constructs T, overlays partial's non-zero fields, and
// enqueues the result into every live event queue subscribed to T. Dead
// weak subscribers are dropped lazily.
func Dispatch[T any](w *World, partial T) {
	value := overlay(partial)
	w.events.dispatch(TypeOf[T](), value)
}

// DispatchNew enqueues an event constructed by calling ctor, bypassing
// Dispatch's overlay-onto-zero-value behavior.
func DispatchNew[T any](w *World, ctor func() T) {
	w.events.dispatch(TypeOf[T](), ctor())
}
