package socket

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the socket package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the socket package's logger.
// This must be called before any LogObserver is created.
func SetLogger(l *zap.Logger) {
	logger = l
}

// LogObserver writes Set events to a zap logger.
type LogObserver struct {
	log *zap.Logger
}

// NewLogObserver creates an observer logging to l, or to Logger() when l is nil.
func NewLogObserver(l *zap.Logger) *LogObserver {
	if l == nil {
		l = Logger()
	}
	return &LogObserver{log: l.Named("socket")}
}

// OnSocketEvent implements Observer.
func (o *LogObserver) OnSocketEvent(e Event) {
	handle := zap.Uint8("handle", uint8(e.Handle))
	kind := zap.Stringer("socket", e.Socket)

	switch e.Type {
	case EventAdded:
		o.log.Debug("socket added", handle, kind)
	case EventRemoved:
		o.log.Debug("socket removed", handle, kind)
	case EventRecycled:
		o.log.Info("socket recycled", handle, kind)
	case EventPruned:
		o.log.Info("socket pruned", handle, kind)
	case EventReassigned:
		o.log.Debug("socket reassigned", handle, kind,
			zap.Uint8("previous", uint8(e.Previous)))
	case EventStateChanged:
		o.log.Debug("state change", handle, kind,
			zap.String("from", e.From),
			zap.String("to", e.To))
	default:
		o.log.Warn("unknown socket event", handle, kind,
			zap.Stringer("event", e.Type))
	}
}
