package socket

import (
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/wippyai/netsock/errors"
)

const (
	// DefaultBufferSize is the default receive buffer size in bytes.
	DefaultBufferSize = 2048

	// MaxBufferSize bounds a single receive buffer (1 MB).
	MaxBufferSize = 1 << 20

	// DefaultCheckInterval is how often available data is re-polled.
	DefaultCheckInterval = 15 * time.Second

	// DefaultReadTimeout is the grace period after a remote close before
	// the socket becomes eligible for recycling.
	DefaultReadTimeout = 15 * time.Second
)

// Config holds per-socket tunables.
type Config struct {
	// BufferSize is the receive buffer capacity in bytes.
	BufferSize int
	// CheckInterval is the minimum time between available-data polls.
	CheckInterval time.Duration
	// ReadTimeout is how long unread data survives a remote close.
	// Zero disables recycling.
	ReadTimeout time.Duration
}

// DefaultConfig returns the configuration used by NewTCPSocket and NewUDPSocket.
func DefaultConfig() Config {
	return Config{
		BufferSize:    DefaultBufferSize,
		CheckInterval: DefaultCheckInterval,
		ReadTimeout:   DefaultReadTimeout,
	}
}

// Validate reports every problem with c at once.
func (c Config) Validate() error {
	var err error

	if c.BufferSize <= 0 {
		err = multierr.Append(err, fmt.Errorf("buffer size must be positive, got %d", c.BufferSize))
	} else if c.BufferSize > MaxBufferSize {
		err = multierr.Append(err, fmt.Errorf("buffer size %d exceeds maximum %d", c.BufferSize, MaxBufferSize))
	}
	if c.CheckInterval < 0 {
		err = multierr.Append(err, fmt.Errorf("check interval must not be negative, got %s", c.CheckInterval))
	}
	if c.ReadTimeout < 0 {
		err = multierr.Append(err, fmt.Errorf("read timeout must not be negative, got %s", c.ReadTimeout))
	}

	if err != nil {
		return errors.InvalidConfig(err)
	}
	return nil
}
