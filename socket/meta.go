package socket

// Handle identifies a socket within one Set.
// Zero is a valid handle, not a sentinel.
type Handle uint8

// Meta is the per-socket identity record embedded in every socket.
//
// It holds things only code outside the socket cares about but that are
// more conveniently stored inside it.
type Meta struct {
	// owner is the set the socket is attached to, nil while detached.
	owner  *Set
	handle Handle
}

// Handle returns the socket's handle.
func (m *Meta) Handle() Handle { return m.handle }

func (m *Meta) update(handle Handle) {
	m.handle = handle
}

func (m *Meta) attached() bool { return m.owner != nil }

func (m *Meta) emit(e Event) {
	if m.owner != nil {
		m.owner.notify(e)
	}
}
