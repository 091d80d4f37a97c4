package sim

// InputQueue is a bounded FIFO of not-yet-applied inputs for one player.
// The network layer appends at the tail; the tick drains from the head.
// All access happens on the room goroutine, so no locking is needed.
type InputQueue struct {
	items []Input
	cap   int
}

// NewInputQueue returns a queue that holds at most capacity inputs.
func NewInputQueue(capacity int) *InputQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &InputQueue{cap: capacity}
}

// Push appends an input. It reports false when the backlog is full; the
// input is dropped rather than blocking the caller.
func (q *InputQueue) Push(in Input) bool {
	if len(q.items) >= q.cap {
		return false
	}
	q.items = append(q.items, in)
	return true
}

// Pop removes and returns the head of the queue.
func (q *InputQueue) Pop() (Input, bool) {
	if len(q.items) == 0 {
		return Input{}, false
	}
	head := q.items[0]
	q.items = q.items[1:]
	return head, true
}

// Len reports the number of pending inputs.
func (q *InputQueue) Len() int {
	return len(q.items)
}

// Clear drops every pending input. Called on reconnect and takeover so a
// resumed session never replays stale pre-disconnect intents.
func (q *InputQueue) Clear() {
	q.items = q.items[:0]
}
