package socket

import (
	"slices"
	"time"

	"github.com/wippyai/netsock/errors"
)

// Set is a fixed-capacity arena of sockets addressed by Handle.
//
// Capacity is fixed at construction and slots never grow. Handles are
// carried by the sockets themselves, so a slot index and a handle are
// unrelated. A Set is not safe for concurrent use.
type Set struct {
	entries   []entry
	observers []Observer
	leases    int
}

type entry struct {
	socket Socket
	gen    uint32
	leased bool
}

// NewSet creates a set with room for capacity sockets.
func NewSet(capacity int) *Set {
	return &Set{entries: make([]entry, max(capacity, 0))}
}

func (s *Set) Capacity() int { return len(s.entries) }

// Len returns the number of sockets in the set.
func (s *Set) Len() int {
	n := 0
	for i := range s.entries {
		if s.entries[i].socket != nil {
			n++
		}
	}
	return n
}

func (s *Set) IsEmpty() bool { return s.Len() == 0 }

// Subscribe registers o for lifecycle events.
func (s *Set) Subscribe(o Observer) {
	s.observers = append(s.observers, o)
}

// Unsubscribe removes o. Observers are compared with ==, so o must be
// of a comparable type such as a pointer.
func (s *Set) Unsubscribe(o Observer) {
	s.observers = slices.DeleteFunc(s.observers, func(x Observer) bool { return x == o })
}

func (s *Set) notify(e Event) {
	for _, o := range s.observers {
		o.OnSocketEvent(e)
	}
}

func (s *Set) find(handle Handle) int {
	for i := range s.entries {
		if sock := s.entries[i].socket; sock != nil && sock.Handle() == handle {
			return i
		}
	}
	return -1
}

func (s *Set) checkUnleased(op string) error {
	if s.leases > 0 {
		return errors.New(errors.PhaseSet, errors.KindIllegal).
			Detail("%s with %d outstanding lease(s)", op, s.leases).
			Build()
	}
	return nil
}

// Add places sock in the first free slot and returns its handle.
func (s *Set) Add(sock Socket) (Handle, error) {
	if sock == nil || sock.meta() == nil {
		return 0, errors.Illegal(errors.PhaseSet, "nil socket")
	}
	if err := s.checkUnleased("add"); err != nil {
		return 0, err
	}
	m := sock.meta()
	if m.attached() {
		return 0, errors.New(errors.PhaseSet, errors.KindIllegal).
			Value(m.handle).
			Detail("socket %d already belongs to a set", m.handle).
			Build()
	}
	if s.find(m.handle) >= 0 {
		return 0, errors.DuplicateSocket(m.handle)
	}

	for i := range s.entries {
		e := &s.entries[i]
		if e.socket != nil {
			continue
		}
		e.socket = sock
		m.owner = s
		s.notify(Event{Type: EventAdded, Handle: m.handle, Socket: sock.Type()})
		return m.handle, nil
	}
	return 0, errors.SocketSetFull(len(s.entries))
}

// GetSocket leases the socket at handle.
func (s *Set) GetSocket(handle Handle) (Ref[Socket], error) {
	i := s.find(handle)
	if i < 0 {
		return Ref[Socket]{}, errors.InvalidSocket(handle)
	}
	e := &s.entries[i]
	if e.leased {
		return Ref[Socket]{}, errors.New(errors.PhaseSet, errors.KindIllegal).
			Value(handle).
			Detail("socket %d is already leased", handle).
			Build()
	}
	e.leased = true
	e.gen++
	s.leases++
	return Ref[Socket]{value: e.socket, set: s, index: i, gen: e.gen}, nil
}

// Get leases the socket at handle as its concrete type.
// A socket of a different type yields a TypeMismatch error.
func Get[T Concrete](s *Set, handle Handle) (Ref[T], error) {
	ref, err := s.GetSocket(handle)
	if err != nil {
		return Ref[T]{}, err
	}
	return Downcast[T](ref)
}

func (s *Set) release(index int, gen uint32) {
	e := &s.entries[index]
	if !e.leased || e.gen != gen {
		return
	}
	e.leased = false
	s.leases--
}

// SocketType reports the type of the socket at handle.
func (s *Set) SocketType(handle Handle) (Type, bool) {
	i := s.find(handle)
	if i < 0 {
		return 0, false
	}
	return s.entries[i].socket.Type(), true
}

// Remove detaches and returns the socket at handle.
func (s *Set) Remove(handle Handle) (Socket, error) {
	if err := s.checkUnleased("remove"); err != nil {
		return nil, err
	}
	i := s.find(handle)
	if i < 0 {
		return nil, errors.InvalidSocket(handle)
	}
	return s.detach(i, EventRemoved), nil
}

func (s *Set) detach(i int, ev EventType) Socket {
	e := &s.entries[i]
	sock := e.socket
	e.socket = nil
	sock.meta().owner = nil
	s.notify(Event{Type: ev, Handle: sock.Handle(), Socket: sock.Type()})
	return sock
}

// Prune removes every socket.
func (s *Set) Prune() error {
	if err := s.checkUnleased("prune"); err != nil {
		return err
	}
	for i := range s.entries {
		if s.entries[i].socket != nil {
			s.detach(i, EventPruned)
		}
	}
	return nil
}

// Recycle removes the first socket whose read timeout has expired at now
// and reports whether one was removed. It does nothing while a lease is
// outstanding.
func (s *Set) Recycle(now time.Time) bool {
	if s.leases > 0 {
		return false
	}
	for i := range s.entries {
		if sock := s.entries[i].socket; sock != nil && sock.Recycle(now) {
			s.detach(i, EventRecycled)
			return true
		}
	}
	return false
}

// Reassign renumbers the socket at from to to.
func (s *Set) Reassign(from, to Handle) error {
	if err := s.checkUnleased("reassign"); err != nil {
		return err
	}
	i := s.find(from)
	if i < 0 {
		return errors.InvalidSocket(from)
	}
	if from == to {
		return nil
	}
	if s.find(to) >= 0 {
		return errors.DuplicateSocket(to)
	}
	sock := s.entries[i].socket
	sock.meta().update(to)
	s.notify(Event{Type: EventReassigned, Handle: to, Previous: from, Socket: sock.Type()})
	return nil
}

// Each calls fn for every socket in slot order until fn returns false.
// fn must not add or remove sockets.
func (s *Set) Each(fn func(Handle, Socket) bool) {
	for i := range s.entries {
		if sock := s.entries[i].socket; sock != nil {
			if !fn(sock.Handle(), sock) {
				return
			}
		}
	}
}

// EachRef leases every socket in turn and calls fn with the lease until
// fn returns false. Sockets already leased elsewhere are skipped. Each
// lease ends when fn returns.
func (s *Set) EachRef(fn func(Handle, *Ref[Socket]) bool) {
	for i := range s.entries {
		e := &s.entries[i]
		if e.socket == nil || e.leased {
			continue
		}
		ref, err := s.GetSocket(e.socket.Handle())
		if err != nil {
			continue
		}
		if !visit(fn, &ref) {
			return
		}
	}
}

func visit(fn func(Handle, *Ref[Socket]) bool, ref *Ref[Socket]) bool {
	defer ref.Release()
	return fn(ref.Handle(), ref)
}

// Snapshot appends the status of every socket to dst.
func (s *Set) Snapshot(dst []Status) []Status {
	for i := range s.entries {
		e := &s.entries[i]
		if e.socket == nil {
			continue
		}
		st := e.socket.status()
		st.Leased = e.leased
		dst = append(dst, st)
	}
	return dst
}
