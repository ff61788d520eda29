package socket

import (
	"github.com/wippyai/netsock/errors"
)

// Ref is an exclusive lease on one socket in a Set.
//
// While any Ref from a Set is outstanding, the Set refuses Add, Remove,
// Reassign and Prune, and Recycle does nothing. Release must be called
// once the caller is done; it is safe to call more than once.
type Ref[T Socket] struct {
	value T
	set   *Set
	index int
	gen   uint32
}

// Value returns the leased socket.
func (r *Ref[T]) Value() T { return r.value }

// Handle returns the leased socket's handle. A zero Ref has handle 0.
func (r *Ref[T]) Handle() Handle {
	var zero T
	if any(r.value) == any(zero) {
		return 0
	}
	return r.value.Handle()
}

// Release ends the lease.
func (r *Ref[T]) Release() {
	if r.set != nil {
		r.set.release(r.index, r.gen)
		r.set = nil
	}
}

// Downcast converts a lease on a generic socket into a lease on its
// concrete type. On a type mismatch the lease is released and a
// TypeMismatch error returned.
func Downcast[T Concrete](ref Ref[Socket]) (Ref[T], error) {
	if ref.set == nil || ref.value == nil {
		return Ref[T]{}, errors.Illegal(errors.PhaseSet, "released or zero lease")
	}
	v, ok := ref.value.(T)
	if !ok {
		got := ref.value.Type()
		ref.Release()
		return Ref[T]{}, errors.TypeMismatch(typeOf[T]().String(), got.String())
	}
	return Ref[T]{value: v, set: ref.set, index: ref.index, gen: ref.gen}, nil
}

// With leases the socket at handle as T for the duration of fn.
// The lease is released when fn returns, including on panic.
func With[T Concrete](s *Set, handle Handle, fn func(T) error) error {
	ref, err := Get[T](s, handle)
	if err != nil {
		return err
	}
	defer ref.Release()
	return fn(ref.Value())
}
