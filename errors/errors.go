package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which layer produced the error
type Phase string

const (
	PhaseBuffer   Phase = "buffer"   // ring buffer operations
	PhaseSocket   Phase = "socket"   // per-socket state machines
	PhaseSet      Phase = "set"      // socket set arena
	PhaseListener Phase = "listener" // port registries
	PhaseConfig   Phase = "config"   // configuration validation
)

// Kind categorizes the error
type Kind string

const (
	KindExhausted       Kind = "exhausted"
	KindIllegal         Kind = "illegal"
	KindUnaddressable   Kind = "unaddressable"
	KindTimer           Kind = "timer"
	KindTimeout         Kind = "timeout"
	KindSocketClosed    Kind = "socket_closed"
	KindBadLength       Kind = "bad_length"
	KindNotBound        Kind = "not_bound"
	KindSocketSetFull   Kind = "socket_set_full"
	KindInvalidSocket   Kind = "invalid_socket"
	KindDuplicateSocket Kind = "duplicate_socket"
	KindListener        Kind = "listener"
	KindInvalidConfig   Kind = "invalid_config"
)

// Sentinels match any error of the same Kind regardless of Phase.
var (
	ErrExhausted       = &Error{Kind: KindExhausted}
	ErrIllegal         = &Error{Kind: KindIllegal}
	ErrUnaddressable   = &Error{Kind: KindUnaddressable}
	ErrTimer           = &Error{Kind: KindTimer}
	ErrTimeout         = &Error{Kind: KindTimeout}
	ErrSocketClosed    = &Error{Kind: KindSocketClosed}
	ErrBadLength       = &Error{Kind: KindBadLength}
	ErrNotBound        = &Error{Kind: KindNotBound}
	ErrSocketSetFull   = &Error{Kind: KindSocketSetFull}
	ErrInvalidSocket   = &Error{Kind: KindInvalidSocket}
	ErrDuplicateSocket = &Error{Kind: KindDuplicateSocket}
	ErrListener        = &Error{Kind: KindListener}
	ErrInvalidConfig   = &Error{Kind: KindInvalidConfig}
)

// Error is the structured error type used throughout netsock
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target without a Phase matches on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Exhausted creates an error for an empty or full buffer or queue
func Exhausted(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindExhausted,
		Detail: what,
	}
}

// Illegal creates an error for an operation not permitted in the current state
func Illegal(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIllegal,
		Detail: detail,
	}
}

// TypeMismatch creates an illegal-operation error for a failed downcast
func TypeMismatch(want, got string) *Error {
	return &Error{
		Phase:  PhaseSet,
		Kind:   KindIllegal,
		Detail: fmt.Sprintf("socket is %s, not %s", got, want),
	}
}

// Unaddressable creates an error for an endpoint that cannot be used
func Unaddressable(phase Phase, endpoint any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnaddressable,
		Detail: fmt.Sprintf("endpoint %v is not addressable", endpoint),
		Value:  endpoint,
	}
}

// InvalidSocket creates an error for an unknown handle
func InvalidSocket(handle any) *Error {
	return &Error{
		Phase:  PhaseSet,
		Kind:   KindInvalidSocket,
		Detail: fmt.Sprintf("no socket with handle %v", handle),
		Value:  handle,
	}
}

// DuplicateSocket creates an error for a handle collision
func DuplicateSocket(handle any) *Error {
	return &Error{
		Phase:  PhaseSet,
		Kind:   KindDuplicateSocket,
		Detail: fmt.Sprintf("handle %v already in use", handle),
		Value:  handle,
	}
}

// SocketSetFull creates an error for an arena at capacity
func SocketSetFull(capacity int) *Error {
	return &Error{
		Phase:  PhaseSet,
		Kind:   KindSocketSetFull,
		Detail: fmt.Sprintf("all %d slots occupied", capacity),
		Value:  capacity,
	}
}

// NotBound creates an error for a handle with no listener binding
func NotBound(handle any) *Error {
	return &Error{
		Phase:  PhaseListener,
		Kind:   KindNotBound,
		Detail: fmt.Sprintf("handle %v is not bound", handle),
		Value:  handle,
	}
}

// Listener creates a listener bind/unbind/capacity error
func Listener(detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  PhaseListener,
		Kind:   KindListener,
		Detail: detail,
	}
}

// InvalidConfig wraps configuration validation failures
func InvalidConfig(cause error) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindInvalidConfig,
		Detail: "invalid socket configuration",
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
