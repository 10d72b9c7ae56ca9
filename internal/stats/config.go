package stats

import (
	"fmt"
	"time"
)

// Config defines configuration for the cycle stats collector
type Config struct {
	// Inbox configuration
	InboxBufferSize  int           `toml:"inbox_buffer_size"`
	InboxSendTimeout time.Duration `toml:"inbox_send_timeout"`

	// Length of one reporting period
	PeriodDuration time.Duration `toml:"period_duration"`
}

// DefaultConfig returns default stats collector configuration
func DefaultConfig() Config {
	return Config{
		InboxBufferSize:  256,
		InboxSendTimeout: time.Second,
		PeriodDuration:   15 * time.Minute,
	}
}

// Validate reports whether the configuration is usable
func (c Config) Validate() error {
	if c.InboxBufferSize <= 0 {
		return fmt.Errorf("InboxBufferSize must be positive, got %d", c.InboxBufferSize)
	}
	if c.InboxSendTimeout <= 0 {
		return fmt.Errorf("InboxSendTimeout must be positive, got %v", c.InboxSendTimeout)
	}
	if c.PeriodDuration <= 0 {
		return fmt.Errorf("PeriodDuration must be positive, got %v", c.PeriodDuration)
	}
	return nil
}
