package ringbuffer

import (
	"github.com/wippyai/netsock/errors"
)

// RingBuffer is a fixed-capacity circular buffer.
//
// Storage is allocated once by New (or supplied by the caller through
// FromStorage); no operation allocates afterwards. Requests larger than the
// free space or the buffered data are truncated, never rejected.
//
// Data is held as a single logical run starting at readAt. A run that
// crosses the physical end of storage is visible as two contiguous spans.
type RingBuffer[T any] struct {
	storage []T
	readAt  int
	length  int
}

// New creates an empty ring buffer holding at most capacity elements.
func New[T any](capacity int) *RingBuffer[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &RingBuffer[T]{storage: make([]T, capacity)}
}

// FromStorage creates an empty ring buffer backed by storage.
// The buffer takes ownership of the slice.
func FromStorage[T any](storage []T) *RingBuffer[T] {
	return &RingBuffer[T]{storage: storage}
}

// Capacity returns the maximum number of elements the buffer can hold.
func (r *RingBuffer[T]) Capacity() int { return len(r.storage) }

// Len returns the number of buffered elements.
func (r *RingBuffer[T]) Len() int { return r.length }

// Window returns the number of elements that can be enqueued before the buffer is full.
func (r *RingBuffer[T]) Window() int { return len(r.storage) - r.length }

// ContiguousWindow returns the number of elements that can be enqueued in
// one span, without wrapping.
func (r *RingBuffer[T]) ContiguousWindow() int {
	return min(r.Window(), len(r.storage)-r.idx(r.readAt+r.length))
}

// IsEmpty reports whether the buffer holds no elements.
func (r *RingBuffer[T]) IsEmpty() bool { return r.length == 0 }

// IsFull reports whether the buffer has no free space.
func (r *RingBuffer[T]) IsFull() bool { return r.length == len(r.storage) }

// Clear discards all buffered elements.
func (r *RingBuffer[T]) Clear() {
	clear(r.storage)
	r.readAt = 0
	r.length = 0
}

func (r *RingBuffer[T]) idx(i int) int {
	if len(r.storage) == 0 {
		return 0
	}
	return i % len(r.storage)
}

// EnqueueOne appends a single element.
func (r *RingBuffer[T]) EnqueueOne(v T) error {
	if r.IsFull() {
		return errors.Exhausted(errors.PhaseBuffer, "buffer full")
	}
	r.storage[r.idx(r.readAt+r.length)] = v
	r.length++
	return nil
}

// DequeueOne removes and returns the oldest element.
func (r *RingBuffer[T]) DequeueOne() (T, error) {
	var zero T
	if r.IsEmpty() {
		return zero, errors.Exhausted(errors.PhaseBuffer, "buffer empty")
	}
	v := r.storage[r.readAt]
	r.storage[r.readAt] = zero
	r.readAt = r.idx(r.readAt + 1)
	r.length--
	return v, nil
}

// PeekOne returns the oldest element without removing it.
func (r *RingBuffer[T]) PeekOne() (T, error) {
	if r.IsEmpty() {
		var zero T
		return zero, errors.Exhausted(errors.PhaseBuffer, "buffer empty")
	}
	return r.storage[r.readAt], nil
}

// EnqueueManyWith calls f with the largest contiguous free span and commits
// as many elements as f reports having written. The count is clamped to the
// span, and the committed count is returned.
func (r *RingBuffer[T]) EnqueueManyWith(f func(buf []T) int) int {
	if r.length == 0 {
		// Empty: rewind so the whole storage is one contiguous span.
		r.readAt = 0
	}

	writeAt := r.idx(r.readAt + r.length)
	maxSize := min(r.Window(), len(r.storage)-writeAt)
	n := clamp(f(r.storage[writeAt:writeAt+maxSize:writeAt+maxSize]), maxSize)
	r.length += n
	return n
}

// EnqueueMany reserves up to size contiguous elements and returns them for
// the caller to fill. The returned slice may be shorter than size.
func (r *RingBuffer[T]) EnqueueMany(size int) []T {
	var out []T
	r.EnqueueManyWith(func(buf []T) int {
		n := clamp(size, len(buf))
		out = buf[:n]
		return n
	})
	return out
}

// EnqueueSlice copies as many elements of data as fit and returns the count.
// A short count is backpressure, not an error.
func (r *RingBuffer[T]) EnqueueSlice(data []T) int {
	n := r.EnqueueManyWith(func(buf []T) int {
		return copy(buf, data)
	})
	rest := data[n:]
	m := r.EnqueueManyWith(func(buf []T) int {
		return copy(buf, rest)
	})
	return n + m
}

// DequeueManyWith calls f with the largest contiguous readable span and
// removes as many elements as f reports having consumed, clamped to the span.
func (r *RingBuffer[T]) DequeueManyWith(f func(buf []T) int) int {
	maxSize := min(r.length, len(r.storage)-r.readAt)
	n := clamp(f(r.storage[r.readAt:r.readAt+maxSize:r.readAt+maxSize]), maxSize)
	r.readAt = r.idx(r.readAt + n)
	r.length -= n
	return n
}

// DequeueManyWithWrapping calls f with the readable data as up to two spans.
// b is nil unless the data crosses the physical end of storage, in which
// case a followed by b is the full buffered run. Removes as many elements as
// f reports having consumed, clamped to Len.
func (r *RingBuffer[T]) DequeueManyWithWrapping(f func(a, b []T) int) int {
	first := min(r.length, len(r.storage)-r.readAt)
	a := r.storage[r.readAt : r.readAt+first : r.readAt+first]

	var b []T
	if rest := r.length - first; rest > 0 {
		b = r.storage[:rest:rest]
	}

	n := clamp(f(a, b), r.length)
	r.readAt = r.idx(r.readAt + n)
	r.length -= n
	return n
}

// DequeueMany removes up to size contiguous elements and returns them.
// The returned slice aliases storage and is valid until the next enqueue.
func (r *RingBuffer[T]) DequeueMany(size int) []T {
	var out []T
	r.DequeueManyWith(func(buf []T) int {
		n := clamp(size, len(buf))
		out = buf[:n]
		return n
	})
	return out
}

// DequeueSlice copies up to len(out) elements into out, removes them and
// returns the count.
func (r *RingBuffer[T]) DequeueSlice(out []T) int {
	n := r.DequeueManyWith(func(buf []T) int {
		return copy(out, buf)
	})
	rest := out[n:]
	m := r.DequeueManyWith(func(buf []T) int {
		return copy(rest, buf)
	})
	return n + m
}

// GetAllocated returns a view of up to size buffered elements starting
// offset elements past the read position, without removing them. The view is
// limited to the first contiguous run; use ReadAllocated or
// DequeueManyWithWrapping to cross the wrap. Callers must not write through
// the returned slice.
func (r *RingBuffer[T]) GetAllocated(offset, size int) []T {
	if offset < 0 || size <= 0 || offset >= r.length {
		return r.storage[:0:0]
	}

	start := r.idx(r.readAt + offset)
	size = min(size, r.length-offset, len(r.storage)-start)
	return r.storage[start : start+size : start+size]
}

// ReadAllocated copies up to len(out) buffered elements starting offset
// elements past the read position, crossing the wrap if needed, without
// removing them.
func (r *RingBuffer[T]) ReadAllocated(offset int, out []T) int {
	n := copy(out, r.GetAllocated(offset, len(out)))
	m := copy(out[n:], r.GetAllocated(offset+n, len(out)-n))
	return n + m
}

// DequeueAllocated discards up to count buffered elements and returns the
// number discarded.
func (r *RingBuffer[T]) DequeueAllocated(count int) int {
	n := clamp(count, r.length)
	r.readAt = r.idx(r.readAt + n)
	r.length -= n
	return n
}

func clamp(n, limit int) int {
	if n < 0 {
		return 0
	}
	if n > limit {
		return limit
	}
	return n
}
