// Package errors provides structured error types for netsock.
//
// Errors are categorized by Phase (which layer failed) and Kind (error category).
// Kinds form a small closed set shared by every layer: exhausted, illegal,
// unaddressable, timer, timeout, socket_closed, bad_length, not_bound,
// socket_set_full, invalid_socket, duplicate_socket, listener and invalid_config.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseSocket, errors.KindIllegal).
//		Value(handle).
//		Detail("recv on socket %d before connect", handle).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidSocket(handle)
//	err := errors.SocketSetFull(8)
//
// Match by Kind with the package sentinels, independent of the phase:
//
//	if errors.Is(err, nserrors.ErrSocketSetFull) {
//		// retry later
//	}
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
