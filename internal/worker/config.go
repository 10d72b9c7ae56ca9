package worker

import (
	"fmt"
	"time"
)

// Config defines the worker's queue and pool settings
type Config struct {
	// Number of dispatched commands that may wait for a free worker
	QueueSize int `toml:"queue_size"`

	// Number of commands processed in parallel
	Concurrency int `toml:"concurrency"`

	// How long Dispatch waits for room in a full queue
	SendTimeout time.Duration `toml:"send_timeout"`

	// Upper bound on a single command's execution
	PerformTimeout time.Duration `toml:"perform_timeout"`
}

// DefaultConfig returns the worker defaults
func DefaultConfig() Config {
	return Config{
		QueueSize:      64,
		Concurrency:    2,
		SendTimeout:    5 * time.Second,
		PerformTimeout: 4 * time.Minute,
	}
}

// validateConfig validates worker configuration and returns error if invalid
func validateConfig(config Config) error {
	if config.QueueSize <= 0 {
		return fmt.Errorf("QueueSize must be positive, got %d", config.QueueSize)
	}
	if config.Concurrency <= 0 {
		return fmt.Errorf("Concurrency must be positive, got %d", config.Concurrency)
	}
	if config.SendTimeout <= 0 {
		return fmt.Errorf("SendTimeout must be positive, got %v", config.SendTimeout)
	}
	if config.PerformTimeout <= 0 {
		return fmt.Errorf("PerformTimeout must be positive, got %v", config.PerformTimeout)
	}
	return nil
}

// Validate reports whether the configuration is usable
func (c Config) Validate() error {
	return validateConfig(c)
}
