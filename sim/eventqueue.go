package sim

import (
	"container/heap"
	"log"
)

// EventQueue is a min-heap of future events keyed by cycle. Events that
// share a cycle fire in insertion order. The queue owns the simulation
// clock: only Step and AdvanceTo move time forward.
type EventQueue struct {
	current Cycle
	nextSeq uint64
	events  eventHeap
}

// NewEventQueue creates an empty event queue at cycle zero.
func NewEventQueue() *EventQueue {
	q := &EventQueue{}
	heap.Init(&q.events)

	return q
}

// CurrentCycle returns the cycle the queue has advanced to.
func (q *EventQueue) CurrentCycle() Cycle {
	return q.current
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int {
	return len(q.events)
}

// InsertEvent schedules an event of the given kind on the target at the
// given cycle. Scheduling into the past is an invariant violation.
func (q *EventQueue) InsertEvent(
	kind EventKind,
	target Domain,
	payload *Request,
	cycle Cycle,
) {
	if cycle < q.current {
		log.Panicf("sim: scheduling %s event at cycle %d before current %d",
			kind, cycle, q.current)
	}

	q.push(&event{
		cycle:   cycle,
		kind:    kind,
		target:  target,
		payload: payload,
	})
}

// InsertCallback schedules a plain function to run at the given cycle.
func (q *EventQueue) InsertCallback(fn func(), cycle Cycle) {
	if cycle < q.current {
		log.Panicf("sim: scheduling callback at cycle %d before current %d",
			cycle, q.current)
	}

	q.push(&event{
		cycle:    cycle,
		kind:     EventCallback,
		callback: fn,
	})
}

func (q *EventQueue) push(evt *event) {
	evt.seq = q.nextSeq
	q.nextSeq++
	heap.Push(&q.events, evt)
}

// Step advances the clock to the cycle of the earliest pending event and
// fires every event scheduled at that cycle, in insertion order. Step on an
// empty queue does nothing.
func (q *EventQueue) Step() {
	if len(q.events) == 0 {
		return
	}

	cycle := q.events[0].cycle
	q.AdvanceTo(cycle)
}

// AdvanceTo moves the clock to the given cycle, firing all events scheduled
// at or before it in (cycle, insertion) order. Events inserted by a firing
// event at an in-range cycle fire within the same call.
func (q *EventQueue) AdvanceTo(cycle Cycle) {
	for len(q.events) > 0 && q.events[0].cycle <= cycle {
		evt := heap.Pop(&q.events).(*event)
		q.current = evt.cycle
		q.fire(evt)
	}

	if cycle > q.current {
		q.current = cycle
	}
}

func (q *EventQueue) fire(evt *event) {
	switch evt.kind {
	case EventCycle:
		evt.target.Cycle(0)
	case EventResponse:
		evt.target.RequestComplete(evt.payload)
	case EventCallback:
		evt.callback()
	}
}

type eventHeap []*event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].cycle != h[j].cycle {
		return h[i].cycle < h[j].cycle
	}

	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(*event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	evt := old[n-1]
	*h = old[:n-1]

	return evt
}
