package listener

import (
	"net/netip"

	"github.com/wippyai/netsock/socket"
)

// UDPListener tracks UDP server ports and the remote peers that reached them.
type UDPListener struct {
	reg registry
}

// NewUDPListener creates a listener with room for n bound handles, each
// queueing up to l remote peers.
func NewUDPListener(n, l int) *UDPListener {
	return &UDPListener{reg: newRegistry(n, l)}
}

func (u *UDPListener) Bind(handle socket.Handle, port uint16) error {
	return u.reg.bind(handle, port)
}

// Unbind releases handle's port and drops its queue.
func (u *UDPListener) Unbind(handle socket.Handle) error {
	return u.reg.unbind(handle)
}

func (u *UDPListener) Incoming(port uint16) (*Queue, bool) {
	return u.reg.incoming(port)
}

// IsPortBound reports whether port is a UDP server port.
func (u *UDPListener) IsPortBound(port uint16) bool {
	return u.reg.byPort(port) >= 0
}

// IsBound reports whether handle is a UDP server socket.
func (u *UDPListener) IsBound(handle socket.Handle) bool {
	return u.reg.byHandle(handle) >= 0
}

func (u *UDPListener) Handles() []socket.Handle { return u.reg.handles() }

// Retain drops every queued peer keep rejects and returns how many were
// dropped.
func (u *UDPListener) Retain(keep func(Pending) bool) int {
	return u.reg.retain(keep)
}

func (u *UDPListener) Available(handle socket.Handle) (bool, error) {
	return u.reg.available(handle)
}

// Port returns the port handle is bound to.
func (u *UDPListener) Port(handle socket.Handle) (uint16, error) {
	return u.reg.port(handle)
}

// PeekRemote returns the oldest queued peer for handle without removing it.
func (u *UDPListener) PeekRemote(handle socket.Handle) (Pending, error) {
	q, err := u.reg.queue(handle)
	if err != nil {
		return Pending{}, err
	}
	return q.Peek()
}

// GetRemote removes and returns the oldest queued peer for handle.
func (u *UDPListener) GetRemote(handle socket.Handle) (Pending, error) {
	return u.reg.next(handle)
}

// GetOutgoing consumes the head of handle's queue only if its remote is
// exactly addr, and returns the queued connection handle. A mismatched
// head stays queued.
func (u *UDPListener) GetOutgoing(handle socket.Handle, addr netip.AddrPort) (socket.Handle, bool) {
	q, err := u.reg.queue(handle)
	if err != nil {
		return 0, false
	}
	head, err := q.Peek()
	if err != nil || head.Remote != addr {
		return 0, false
	}
	if _, err := q.Dequeue(); err != nil {
		return 0, false
	}
	return head.Handle, true
}
