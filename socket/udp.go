package socket

import (
	"net/netip"
	"time"

	"github.com/wippyai/netsock/errors"
	"github.com/wippyai/netsock/ringbuffer"
)

// UDPState is the modem-side state of a UDP socket.
type UDPState uint8

const (
	UDPStateClosed UDPState = iota
	UDPStateEstablished
)

func (s UDPState) String() string {
	switch s {
	case UDPStateClosed:
		return "closed"
	case UDPStateEstablished:
		return "established"
	default:
		return "unknown"
	}
}

// UDPSocket is a modem-side UDP socket.
type UDPSocket struct {
	ident         Meta
	closedAt      time.Time
	lastCheck     time.Time
	rx            *ringbuffer.RingBuffer[byte]
	endpoint      netip.AddrPort
	checkInterval time.Duration
	readTimeout   time.Duration
	availableData int
	state         UDPState
	open          bool
	closed        bool
	checked       bool
}

// NewUDPSocket creates an unbound socket with DefaultConfig.
func NewUDPSocket(handle Handle) *UDPSocket {
	return newUDPSocket(handle, DefaultConfig())
}

// NewUDPSocketWithConfig creates an unbound socket.
func NewUDPSocketWithConfig(handle Handle, cfg Config) (*UDPSocket, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newUDPSocket(handle, cfg), nil
}

func newUDPSocket(handle Handle, cfg Config) *UDPSocket {
	return &UDPSocket{
		ident:         Meta{handle: handle},
		rx:            ringbuffer.New[byte](cfg.BufferSize),
		checkInterval: cfg.CheckInterval,
		readTimeout:   cfg.ReadTimeout,
	}
}

func (s *UDPSocket) meta() *Meta {
	if s == nil {
		return nil
	}
	return &s.ident
}

func (s *UDPSocket) Handle() Handle  { return s.ident.handle }
func (s *UDPSocket) Type() Type      { return TypeUDP }
func (s *UDPSocket) State() UDPState { return s.state }

func (s *UDPSocket) SetState(state UDPState) {
	prev := s.state
	s.state = state
	s.ident.emit(Event{
		Type:   EventStateChanged,
		Handle: s.ident.handle,
		Socket: TypeUDP,
		From:   prev.String(),
		To:     state.String(),
	})
}

// UpdateHandle changes the handle of a detached socket.
// Sockets inside a Set are renumbered with Set.Reassign.
func (s *UDPSocket) UpdateHandle(handle Handle) error {
	if s.ident.attached() {
		return errors.Illegal(errors.PhaseSocket, "socket is in a set, use Set.Reassign")
	}
	s.ident.update(handle)
	return nil
}

// Bind opens the socket on endpoint. Binding an open socket is Illegal
// and port zero is Unaddressable.
func (s *UDPSocket) Bind(endpoint netip.AddrPort) error {
	if s.open {
		return errors.New(errors.PhaseSocket, errors.KindIllegal).
			Value(s.ident.handle).
			Detail("udp socket %d already bound to %s", s.ident.handle, s.endpoint).
			Build()
	}
	if endpoint.Port() == 0 {
		return errors.Unaddressable(errors.PhaseSocket, endpoint)
	}
	s.endpoint = endpoint
	s.open = true
	return nil
}

// Close unbinds the socket. Buffered data is kept.
func (s *UDPSocket) Close() {
	s.endpoint = netip.AddrPort{}
	s.open = false
}

func (s *UDPSocket) IsOpen() bool { return s.open }

// Endpoint returns the bound endpoint.
func (s *UDPSocket) Endpoint() (netip.AddrPort, bool) {
	return s.endpoint, s.open
}

func (s *UDPSocket) AvailableData() int     { return s.availableData }
func (s *UDPSocket) SetAvailableData(n int) { s.availableData = n }

func (s *UDPSocket) RecvQueue() int { return s.rx.Len() }

func (s *UDPSocket) RxEnqueueSlice(data []byte) int { return s.rx.EnqueueSlice(data) }
func (s *UDPSocket) RxWindow() int                  { return s.rx.Window() }

// CanRecv reports whether the receive buffer has room.
func (s *UDPSocket) CanRecv() bool { return !s.rx.IsFull() }

func (s *UDPSocket) Recv(f func(buf []byte) int) (int, error) {
	if !s.open {
		return 0, s.illegal("recv")
	}
	return s.rx.DequeueManyWith(f), nil
}

func (s *UDPSocket) RecvWrapping(f func(a, b []byte) int) (int, error) {
	if !s.open {
		return 0, s.illegal("recv")
	}
	return s.rx.DequeueManyWithWrapping(f), nil
}

func (s *UDPSocket) RecvSlice(buf []byte) (int, error) {
	if !s.open {
		return 0, s.illegal("recv")
	}
	return s.rx.DequeueSlice(buf), nil
}

func (s *UDPSocket) Peek(size int) ([]byte, error) {
	if !s.open {
		return nil, s.illegal("peek")
	}
	return s.rx.GetAllocated(0, size), nil
}

func (s *UDPSocket) PeekSlice(buf []byte) (int, error) {
	if !s.open {
		return 0, s.illegal("peek")
	}
	return s.rx.ReadAllocated(0, buf), nil
}

func (s *UDPSocket) Recycle(now time.Time) bool {
	if s.readTimeout <= 0 || !s.closed {
		return false
	}
	return !now.Before(s.closedAt) && now.Sub(s.closedAt) >= s.readTimeout
}

func (s *UDPSocket) ClosedByRemote(now time.Time) {
	s.closedAt = now
	s.closed = true
	s.availableData = 0
}

// ShouldUpdateAvailableData follows the TCP rule without the
// connected gate.
func (s *UDPSocket) ShouldUpdateAvailableData(now time.Time) bool {
	if !pollDue(s.checked, s.lastCheck, now, s.checkInterval) {
		return false
	}
	s.lastCheck = now
	s.checked = true
	return true
}

func (s *UDPSocket) status() Status {
	return Status{
		Handle:        uint8(s.ident.handle),
		Type:          TypeUDP.String(),
		State:         s.state.String(),
		Buffered:      s.rx.Len(),
		Window:        s.rx.Window(),
		AvailableData: s.availableData,
	}
}

func (s *UDPSocket) illegal(op string) error {
	return errors.New(errors.PhaseSocket, errors.KindIllegal).
		Value(s.ident.handle).
		Detail("%s on unbound udp socket %d", op, s.ident.handle).
		Build()
}
