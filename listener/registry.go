package listener

import (
	"github.com/wippyai/netsock/errors"
	"github.com/wippyai/netsock/socket"
)

// registry maps bound handles to ports and each port to its queue.
// Every binding owns a preallocated queue, so a port has a queue exactly
// while some handle is bound to it.
type registry struct {
	bindings []binding
}

type binding struct {
	queue  Queue
	port   uint16
	handle socket.Handle
	used   bool
}

func newRegistry(n, l int) registry {
	r := registry{bindings: make([]binding, max(n, 0))}
	for i := range r.bindings {
		r.bindings[i].queue = newQueue(max(l, 0))
	}
	return r
}

func (r *registry) byHandle(handle socket.Handle) int {
	for i := range r.bindings {
		if b := &r.bindings[i]; b.used && b.handle == handle {
			return i
		}
	}
	return -1
}

func (r *registry) byPort(port uint16) int {
	for i := range r.bindings {
		if b := &r.bindings[i]; b.used && b.port == port {
			return i
		}
	}
	return -1
}

func (r *registry) bind(handle socket.Handle, port uint16) error {
	if r.byHandle(handle) >= 0 {
		return errors.Listener("handle %d already bound", handle)
	}
	if i := r.byPort(port); i >= 0 {
		return errors.Listener("port %d already bound to handle %d", port, r.bindings[i].handle)
	}
	for i := range r.bindings {
		b := &r.bindings[i]
		if b.used {
			continue
		}
		b.used = true
		b.handle = handle
		b.port = port
		b.queue.Clear()
		return nil
	}
	return errors.Listener("listener full (%d bindings)", len(r.bindings))
}

func (r *registry) unbind(handle socket.Handle) error {
	i := r.byHandle(handle)
	if i < 0 {
		return errors.Listener("handle %d not bound", handle)
	}
	b := &r.bindings[i]
	b.used = false
	b.queue.Clear()
	return nil
}

func (r *registry) incoming(port uint16) (*Queue, bool) {
	i := r.byPort(port)
	if i < 0 {
		return nil, false
	}
	return &r.bindings[i].queue, true
}

func (r *registry) queue(handle socket.Handle) (*Queue, error) {
	i := r.byHandle(handle)
	if i < 0 {
		return nil, errors.NotBound(handle)
	}
	return &r.bindings[i].queue, nil
}

func (r *registry) port(handle socket.Handle) (uint16, error) {
	i := r.byHandle(handle)
	if i < 0 {
		return 0, errors.NotBound(handle)
	}
	return r.bindings[i].port, nil
}

func (r *registry) available(handle socket.Handle) (bool, error) {
	q, err := r.queue(handle)
	if err != nil {
		return false, err
	}
	return !q.IsEmpty(), nil
}

func (r *registry) next(handle socket.Handle) (Pending, error) {
	q, err := r.queue(handle)
	if err != nil {
		return Pending{}, err
	}
	return q.Dequeue()
}

func (r *registry) handles() []socket.Handle {
	var hs []socket.Handle
	for i := range r.bindings {
		if b := &r.bindings[i]; b.used {
			hs = append(hs, b.handle)
		}
	}
	return hs
}

func (r *registry) retain(keep func(Pending) bool) int {
	dropped := 0
	for i := range r.bindings {
		if b := &r.bindings[i]; b.used {
			dropped += b.queue.Retain(keep)
		}
	}
	return dropped
}
