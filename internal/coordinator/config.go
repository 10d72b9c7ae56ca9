package coordinator

import (
	"fmt"
	"time"
)

// Config bounds how long a cycle waits for the worker
type Config struct {
	// Number of wait rounds before the cycle gives up
	WaitIterations int `toml:"wait_iterations"`

	// Length of one wait round
	WaitUnit time.Duration `toml:"wait_unit"`
}

// DefaultConfig waits up to 10 rounds of 30 seconds
func DefaultConfig() Config {
	return Config{
		WaitIterations: 10,
		WaitUnit:       30 * time.Second,
	}
}

// MaxWait is the worst-case time a cycle blocks after dispatch
func (c Config) MaxWait() time.Duration {
	return time.Duration(c.WaitIterations) * c.WaitUnit
}

// Validate reports whether the configuration is usable
func (c Config) Validate() error {
	return validateConfig(c)
}

func validateConfig(config Config) error {
	if config.WaitIterations <= 0 {
		return fmt.Errorf("WaitIterations must be positive, got %d", config.WaitIterations)
	}
	if config.WaitUnit <= 0 {
		return fmt.Errorf("WaitUnit must be positive, got %v", config.WaitUnit)
	}
	return nil
}
