package recorder

import (
	"fmt"
	"time"
)

// Config defines how cycle results are buffered before they are written
type Config struct {
	// Maximum buffered results before Record starts failing
	MaxBuffered int `toml:"max_buffered"`

	// Channel buffer size between the buffer and the writer goroutine
	ChannelSize int `toml:"channel_size"`

	// Flush when either the buffer reaches FlushThreshold or FlushInterval passes
	FlushThreshold int           `toml:"flush_threshold"`
	FlushInterval  time.Duration `toml:"flush_interval"`
}

// DefaultConfig returns recorder defaults sized for a handful of accounts
func DefaultConfig() Config {
	return Config{
		MaxBuffered:    1000,
		ChannelSize:    64,
		FlushThreshold: 16,
		FlushInterval:  5 * time.Second,
	}
}

// Validate reports whether the configuration is usable
func (c Config) Validate() error {
	return validateConfig(c)
}

// validateConfig validates recorder configuration and returns error if invalid
func validateConfig(config Config) error {
	if config.MaxBuffered <= 0 {
		return fmt.Errorf("MaxBuffered must be positive, got %d", config.MaxBuffered)
	}
	if config.ChannelSize <= 0 {
		return fmt.Errorf("ChannelSize must be positive, got %d", config.ChannelSize)
	}
	if config.FlushThreshold <= 0 {
		return fmt.Errorf("FlushThreshold must be positive, got %d", config.FlushThreshold)
	}
	if config.FlushThreshold > config.MaxBuffered {
		return fmt.Errorf("FlushThreshold (%d) must not exceed MaxBuffered (%d)", config.FlushThreshold, config.MaxBuffered)
	}
	if config.FlushInterval <= 0 {
		return fmt.Errorf("FlushInterval must be positive, got %v", config.FlushInterval)
	}
	return nil
}
