// Package listener provides the port registries that hold inbound
// connections until the application accepts them.
//
// The driver finds the queue for the port a connection arrived on and
// pushes it:
//
//	q, ok := l.Incoming(port)
//	if !ok || q.Enqueue(connHandle, remote) != nil {
//	    // reset the new attempt
//	}
//
// The application then drains it by server handle with Accept (TCP) or
// GetRemote (UDP). All capacity is allocated by the constructors.
package listener
