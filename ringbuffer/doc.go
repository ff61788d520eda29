// Package ringbuffer provides a fixed-capacity circular buffer for staging
// inbound bytes (and small records such as pending connections) without
// allocating after construction.
//
// Besides element and slice copies, the buffer hands out its storage
// directly for zero-copy parsing:
//
//	rb := ringbuffer.New[byte](512)
//	rb.EnqueueSlice(payload)
//
//	// consume one line if a full one is buffered
//	rb.DequeueManyWithWrapping(func(a, b []byte) int {
//		return parseLine(a, b)
//	})
//
// Writes larger than Window and reads larger than Len are truncated; the
// returned counts are the only signal.
package ringbuffer
