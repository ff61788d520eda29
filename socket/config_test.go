package socket

import (
	stderrors "errors"
	"testing"
	"time"

	"go.uber.org/multierr"

	"github.com/wippyai/netsock/errors"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		problems int
	}{
		{"default", func(*Config) {}, 0},
		{"zero timers", func(c *Config) { c.CheckInterval, c.ReadTimeout = 0, 0 }, 0},
		{"zero buffer", func(c *Config) { c.BufferSize = 0 }, 1},
		{"huge buffer", func(c *Config) { c.BufferSize = MaxBufferSize + 1 }, 1},
		{"negative interval", func(c *Config) { c.CheckInterval = -time.Second }, 1},
		{"everything wrong", func(c *Config) {
			c.BufferSize = -1
			c.CheckInterval = -1
			c.ReadTimeout = -1
		}, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()

			if tc.problems == 0 {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !stderrors.Is(err, errors.ErrInvalidConfig) {
				t.Fatalf("Validate() = %v, want InvalidConfig", err)
			}
			if got := len(multierr.Errors(stderrors.Unwrap(err))); got != tc.problems {
				t.Errorf("got %d problems, want %d: %v", got, tc.problems, err)
			}
		})
	}
}

func TestNewSocketWithConfig_Rejects(t *testing.T) {
	cfg := Config{BufferSize: 0}
	if _, err := NewTCPSocketWithConfig(0, cfg); err == nil {
		t.Error("NewTCPSocketWithConfig accepted a zero buffer")
	}
	if _, err := NewUDPSocketWithConfig(0, cfg); err == nil {
		t.Error("NewUDPSocketWithConfig accepted a zero buffer")
	}
}
