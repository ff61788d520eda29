package listener

import (
	"net/netip"

	"github.com/wippyai/netsock/errors"
	"github.com/wippyai/netsock/ringbuffer"
	"github.com/wippyai/netsock/socket"
)

// Pending is an inbound connection waiting to be accepted.
type Pending struct {
	Remote netip.AddrPort
	Handle socket.Handle
}

// Queue is a bounded FIFO of pending connections for one port.
// Queues are created by a listener; the zero Queue is not usable.
type Queue struct {
	rb *ringbuffer.RingBuffer[Pending]
}

func newQueue(capacity int) Queue {
	return Queue{rb: ringbuffer.New[Pending](capacity)}
}

// Enqueue appends a pending connection. A full queue returns Exhausted,
// which the driver should treat as "reset the new attempt".
func (q *Queue) Enqueue(handle socket.Handle, remote netip.AddrPort) error {
	if q.rb.IsFull() {
		return errors.Exhausted(errors.PhaseListener, "pending connection queue")
	}
	return q.rb.EnqueueOne(Pending{Handle: handle, Remote: remote})
}

// Dequeue removes and returns the oldest pending connection.
func (q *Queue) Dequeue() (Pending, error) {
	if q.rb.IsEmpty() {
		return Pending{}, errors.Exhausted(errors.PhaseListener, "no pending connection")
	}
	return q.rb.DequeueOne()
}

// Peek returns the oldest pending connection without removing it.
func (q *Queue) Peek() (Pending, error) {
	if q.rb.IsEmpty() {
		return Pending{}, errors.Exhausted(errors.PhaseListener, "no pending connection")
	}
	return q.rb.PeekOne()
}

func (q *Queue) Len() int      { return q.rb.Len() }
func (q *Queue) Capacity() int { return q.rb.Capacity() }
func (q *Queue) IsEmpty() bool { return q.rb.IsEmpty() }
func (q *Queue) IsFull() bool  { return q.rb.IsFull() }

// Retain drops every pending connection keep rejects, preserving the
// order of the rest, and returns how many were dropped.
func (q *Queue) Retain(keep func(Pending) bool) int {
	dropped := 0
	for range q.rb.Len() {
		p, err := q.rb.DequeueOne()
		if err != nil {
			break
		}
		if !keep(p) {
			dropped++
			continue
		}
		// a slot was just freed
		_ = q.rb.EnqueueOne(p)
	}
	return dropped
}

// Clear drops every pending connection.
func (q *Queue) Clear() { q.rb.Clear() }
