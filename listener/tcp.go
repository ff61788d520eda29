package listener

import (
	"github.com/wippyai/netsock/socket"
)

// TCPListener queues inbound TCP connections per bound server port.
type TCPListener struct {
	reg registry
}

// NewTCPListener creates a listener with room for n bound handles, each
// queueing up to l pending connections.
func NewTCPListener(n, l int) *TCPListener {
	return &TCPListener{reg: newRegistry(n, l)}
}

// Bind binds the server socket handle to port.
func (t *TCPListener) Bind(handle socket.Handle, port uint16) error {
	return t.reg.bind(handle, port)
}

// Unbind releases handle's port and drops its pending connections.
func (t *TCPListener) Unbind(handle socket.Handle) error {
	return t.reg.unbind(handle)
}

// IsBound reports whether handle is a TCP server socket.
func (t *TCPListener) IsBound(handle socket.Handle) bool {
	return t.reg.byHandle(handle) >= 0
}

// Handles returns the bound server handles.
func (t *TCPListener) Handles() []socket.Handle { return t.reg.handles() }

// Retain drops every queued connection keep rejects, across all ports,
// and returns how many were dropped.
func (t *TCPListener) Retain(keep func(Pending) bool) int {
	return t.reg.retain(keep)
}

// Incoming returns the pending queue for port, for the driver to push
// arriving connections into.
func (t *TCPListener) Incoming(port uint16) (*Queue, bool) {
	return t.reg.incoming(port)
}

// Available reports whether a connection is waiting for handle.
func (t *TCPListener) Available(handle socket.Handle) (bool, error) {
	return t.reg.available(handle)
}

// Accept removes and returns the oldest pending connection for handle.
func (t *TCPListener) Accept(handle socket.Handle) (Pending, error) {
	return t.reg.next(handle)
}
