package socket

// EventType identifies a socket lifecycle event.
type EventType uint8

const (
	EventAdded EventType = iota
	EventRemoved
	EventRecycled
	EventPruned
	EventReassigned
	EventStateChanged
)

func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventRemoved:
		return "removed"
	case EventRecycled:
		return "recycled"
	case EventPruned:
		return "pruned"
	case EventReassigned:
		return "reassigned"
	case EventStateChanged:
		return "state_changed"
	default:
		return "unknown"
	}
}

// Event describes one lifecycle change of a socket in a Set.
type Event struct {
	// From and To are state names, set for EventStateChanged.
	From string
	To   string
	// Handle is the socket's handle after the event.
	Handle Handle
	// Previous is the handle before an EventReassigned.
	Previous Handle
	Socket   Type
	Type     EventType
}

// Observer receives socket lifecycle events from a Set.
// Observers run synchronously inside the operation that caused the event
// and must not call back into the Set.
type Observer interface {
	OnSocketEvent(Event)
}
