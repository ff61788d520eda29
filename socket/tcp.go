package socket

import (
	"net/netip"
	"time"

	"github.com/wippyai/netsock/errors"
	"github.com/wippyai/netsock/ringbuffer"
)

// TCPStateKind enumerates the TCP socket states.
type TCPStateKind uint8

const (
	TCPStateCreated TCPStateKind = iota
	TCPStateWaitingForConnect
	TCPStateConnected
	TCPStateShutdownForWrite
)

func (k TCPStateKind) String() string {
	switch k {
	case TCPStateCreated:
		return "created"
	case TCPStateWaitingForConnect:
		return "waiting_for_connect"
	case TCPStateConnected:
		return "connected"
	case TCPStateShutdownForWrite:
		return "shutdown_for_write"
	default:
		return "unknown"
	}
}

// TCPState is a TCP socket state and the data that state carries.
// Remote is set for WaitingForConnect and Connected, Since for
// ShutdownForWrite.
type TCPState struct {
	Since  time.Time
	Remote netip.AddrPort
	Kind   TCPStateKind
}

func TCPCreated() TCPState { return TCPState{Kind: TCPStateCreated} }

func TCPWaitingForConnect(remote netip.AddrPort) TCPState {
	return TCPState{Kind: TCPStateWaitingForConnect, Remote: remote}
}

func TCPConnected(remote netip.AddrPort) TCPState {
	return TCPState{Kind: TCPStateConnected, Remote: remote}
}

func TCPShutdownForWrite(since time.Time) TCPState {
	return TCPState{Kind: TCPStateShutdownForWrite, Since: since}
}

func (s TCPState) String() string { return s.Kind.String() }

// TCPSocket is a modem-side TCP socket.
//
// Bytes read off the modem are pushed into its receive buffer with
// RxEnqueueSlice and drained by the application with the Recv family.
type TCPSocket struct {
	ident         Meta
	state         TCPState
	lastCheck     time.Time
	rx            *ringbuffer.RingBuffer[byte]
	checkInterval time.Duration
	readTimeout   time.Duration
	availableData int
	checked       bool
}

// NewTCPSocket creates a socket in the Created state with DefaultConfig.
func NewTCPSocket(handle Handle) *TCPSocket {
	return newTCPSocket(handle, DefaultConfig())
}

// NewTCPSocketWithConfig creates a socket in the Created state.
func NewTCPSocketWithConfig(handle Handle, cfg Config) (*TCPSocket, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newTCPSocket(handle, cfg), nil
}

func newTCPSocket(handle Handle, cfg Config) *TCPSocket {
	return &TCPSocket{
		ident:         Meta{handle: handle},
		state:         TCPCreated(),
		rx:            ringbuffer.New[byte](cfg.BufferSize),
		checkInterval: cfg.CheckInterval,
		readTimeout:   cfg.ReadTimeout,
	}
}

func (s *TCPSocket) meta() *Meta {
	if s == nil {
		return nil
	}
	return &s.ident
}

func (s *TCPSocket) Handle() Handle { return s.ident.handle }
func (s *TCPSocket) Type() Type     { return TypeTCP }
func (s *TCPSocket) State() TCPState {
	return s.state
}

// SetState moves the socket to state.
func (s *TCPSocket) SetState(state TCPState) {
	prev := s.state
	s.state = state
	s.ident.emit(Event{
		Type:   EventStateChanged,
		Handle: s.ident.handle,
		Socket: TypeTCP,
		From:   prev.String(),
		To:     state.String(),
	})
}

// UpdateHandle changes the handle of a detached socket.
// Sockets inside a Set are renumbered with Set.Reassign.
func (s *TCPSocket) UpdateHandle(handle Handle) error {
	if s.ident.attached() {
		return errors.Illegal(errors.PhaseSocket, "socket is in a set, use Set.Reassign")
	}
	s.ident.update(handle)
	return nil
}

// Endpoint returns the remote endpoint while connecting or connected.
func (s *TCPSocket) Endpoint() (netip.AddrPort, bool) {
	switch s.state.Kind {
	case TCPStateWaitingForConnect, TCPStateConnected:
		return s.state.Remote, true
	default:
		return netip.AddrPort{}, false
	}
}

func (s *TCPSocket) IsConnected() bool { return s.state.Kind == TCPStateConnected }

func (s *TCPSocket) AvailableData() int     { return s.availableData }
func (s *TCPSocket) SetAvailableData(n int) { s.availableData = n }

// RecvQueue is the number of bytes buffered for the application.
func (s *TCPSocket) RecvQueue() int { return s.rx.Len() }

func (s *TCPSocket) RxEnqueueSlice(data []byte) int { return s.rx.EnqueueSlice(data) }
func (s *TCPSocket) RxWindow() int                  { return s.rx.Window() }

// MayRecv reports whether the receive half is open. Data already
// buffered stays readable in any state.
func (s *TCPSocket) MayRecv() bool {
	switch s.state.Kind {
	case TCPStateConnected, TCPStateShutdownForWrite:
		return true
	default:
		return !s.rx.IsEmpty()
	}
}

// CanRecv reports whether the receive half is open and the buffer has room.
func (s *TCPSocket) CanRecv() bool {
	return s.MayRecv() && !s.rx.IsFull()
}

// Recv passes the next contiguous run of buffered bytes to f and
// dequeues as many as f reports consumed.
func (s *TCPSocket) Recv(f func(buf []byte) int) (int, error) {
	if !s.MayRecv() {
		return 0, s.illegal("recv")
	}
	return s.rx.DequeueManyWith(f), nil
}

// RecvWrapping passes all buffered bytes to f as up to two slices.
// b is nil unless the buffered data wraps.
func (s *TCPSocket) RecvWrapping(f func(a, b []byte) int) (int, error) {
	if !s.MayRecv() {
		return 0, s.illegal("recv")
	}
	return s.rx.DequeueManyWithWrapping(f), nil
}

// RecvSlice dequeues into buf, crossing the buffer wrap if needed.
func (s *TCPSocket) RecvSlice(buf []byte) (int, error) {
	if !s.MayRecv() {
		return 0, s.illegal("recv")
	}
	return s.rx.DequeueSlice(buf), nil
}

// Peek returns up to size buffered bytes without dequeuing them.
// Only the first contiguous run is returned.
func (s *TCPSocket) Peek(size int) ([]byte, error) {
	if !s.MayRecv() {
		return nil, s.illegal("peek")
	}
	return s.rx.GetAllocated(0, size), nil
}

// PeekSlice copies buffered bytes into buf without dequeuing them.
func (s *TCPSocket) PeekSlice(buf []byte) (int, error) {
	if !s.MayRecv() {
		return 0, s.illegal("peek")
	}
	return s.rx.ReadAllocated(0, buf), nil
}

func (s *TCPSocket) Recycle(now time.Time) bool {
	if s.readTimeout <= 0 || s.state.Kind != TCPStateShutdownForWrite {
		return false
	}
	return !now.Before(s.state.Since) && now.Sub(s.state.Since) >= s.readTimeout
}

func (s *TCPSocket) ClosedByRemote(now time.Time) {
	s.SetState(TCPShutdownForWrite(now))
	s.availableData = 0
}

// ShouldUpdateAvailableData is only ever true while connected.
// A clock that went backwards counts as due.
func (s *TCPSocket) ShouldUpdateAvailableData(now time.Time) bool {
	if !s.IsConnected() {
		return false
	}
	if !pollDue(s.checked, s.lastCheck, now, s.checkInterval) {
		return false
	}
	s.lastCheck = now
	s.checked = true
	return true
}

func (s *TCPSocket) status() Status {
	return Status{
		Handle:        uint8(s.ident.handle),
		Type:          TypeTCP.String(),
		State:         s.state.String(),
		Buffered:      s.rx.Len(),
		Window:        s.rx.Window(),
		AvailableData: s.availableData,
	}
}

func (s *TCPSocket) illegal(op string) error {
	return errors.New(errors.PhaseSocket, errors.KindIllegal).
		Value(s.ident.handle).
		Detail("%s on tcp socket %d in state %s", op, s.ident.handle, s.state).
		Build()
}

func pollDue(checked bool, last, now time.Time, interval time.Duration) bool {
	return !checked || now.Before(last) || now.Sub(last) >= interval
}
