package socket

import (
	"time"
)

// Type names the concrete kind of a socket.
type Type uint8

const (
	TypeUDP Type = iota
	TypeTCP
)

func (t Type) String() string {
	switch t {
	case TypeUDP:
		return "udp"
	case TypeTCP:
		return "tcp"
	default:
		return "unknown"
	}
}

// Socket is the closed set of socket kinds a Set can hold.
// Only *TCPSocket and *UDPSocket implement it.
type Socket interface {
	Handle() Handle
	Type() Type

	// AvailableData is the number of bytes the modem reported as
	// waiting to be read.
	AvailableData() int
	SetAvailableData(n int)

	// RxEnqueueSlice appends received bytes, returning how many fit.
	RxEnqueueSlice(data []byte) int
	// RxWindow is the free space in the receive buffer.
	RxWindow() int
	CanRecv() bool

	// Recycle reports whether the socket was closed by the remote
	// longer than its read timeout ago.
	Recycle(now time.Time) bool
	// ClosedByRemote records a remote close at now and clears
	// AvailableData.
	ClosedByRemote(now time.Time)
	// ShouldUpdateAvailableData reports whether a poll is due at now and
	// if so records now as the last poll.
	ShouldUpdateAvailableData(now time.Time) bool

	meta() *Meta
	status() Status
}

// Concrete is satisfied by the socket types that can be borrowed from a Set.
type Concrete interface {
	*TCPSocket | *UDPSocket
	Socket
}

func typeOf[T Concrete]() Type {
	var zero T
	switch any(zero).(type) {
	case *TCPSocket:
		return TypeTCP
	default:
		return TypeUDP
	}
}
