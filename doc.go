// Package netsock is the socket storage core for a cellular modem driver.
//
// The modem owns the network stack; this module keeps the host-side view of
// its sockets: a fixed-capacity set addressed by modem-assigned handles, a
// receive ring buffer per socket, the TCP and UDP state machines, and the
// listener queues that hold inbound connections until the application
// accepts them. Nothing allocates after construction, nothing blocks, and
// time is always supplied by the caller.
//
// # Architecture Overview
//
//	netsock/
//	├── ringbuffer/      Generic fixed-capacity circular buffer
//	├── socket/          TCP/UDP sockets, the Set arena and exclusive leases
//	├── listener/        Per-port pending-connection registries
//	├── driver/          Simulated modem wiring the pieces together
//	├── errors/          Structured error types
//	└── cmd/netsock-sim/ Script and TUI front end for the driver
//
// # Quick Start
//
//	set := socket.NewSet(4)
//	h, err := set.Add(socket.NewTCPSocket(0))
//	if err != nil {
//	    return err
//	}
//
//	ref, err := socket.Get[*socket.TCPSocket](set, h)
//	if err != nil {
//	    return err
//	}
//	defer ref.Release()
//	ref.Value().SetState(socket.TCPConnected(remote))
//
// # Thread Safety
//
// None of the types are safe for concurrent use. The core is meant to be
// driven from one goroutine, the way the modem driver's poll loop runs.
//
// # Eviction
//
// A socket closed by the remote keeps its buffered data for the configured
// read timeout. Set.Recycle, called from the periodic tick, removes one
// expired socket per call.
package netsock
