package core

import "github.com/comalice/statechart/internal/primitives"

// queuedEvent is an event waiting in one of a machine's queues. from names the
// machine that produced it when it crossed a sub-chart boundary, so a relay
// never forwards it back where it came from.
type queuedEvent struct {
	primitives.Event
	from *Machine
}

// eventQueue is a FIFO owned by a single machine.
type eventQueue struct {
	items []queuedEvent
}

func (q *eventQueue) push(e queuedEvent) {
	q.items = append(q.items, e)
}

func (q *eventQueue) pop() (queuedEvent, bool) {
	if len(q.items) == 0 {
		return queuedEvent{}, false
	}
	e := q.items[0]
	q.items[0] = queuedEvent{}
	q.items = q.items[1:]
	return e, true
}

func (q *eventQueue) len() int {
	return len(q.items)
}

func (q *eventQueue) clear() {
	q.items = nil
}
