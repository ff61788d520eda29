// Package socket holds the modem-side socket state machines and the
// fixed-capacity Set that owns them.
//
// A modem driver reads bytes from the device and pushes them into a
// socket's receive buffer; the application drains them through the Recv
// family. Sockets are addressed by Handle, a small integer assigned by
// the modem.
//
// # Ownership
//
// The Set owns its sockets. Callers borrow one with Get or GetSocket,
// which return an exclusive Ref:
//
//	ref, err := socket.Get[*socket.TCPSocket](set, h)
//	if err != nil {
//	    return err
//	}
//	defer ref.Release()
//	n, err := ref.Value().RecvSlice(buf)
//
// While any Ref is outstanding the Set refuses structural changes.
// With wraps the borrow and release around a callback.
//
// # Time
//
// Nothing in this package reads a clock. Operations that depend on time
// take a time.Time from the caller.
//
// # Observation
//
// Subscribe an Observer to receive lifecycle events. LogObserver writes
// them to a zap logger.
package socket
