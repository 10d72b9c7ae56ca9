package trigger

import (
	"fmt"

	"github.com/livinlefevreloca/syncbridge/internal/cron"
)

// Config defines when cycles run and how fast they start
type Config struct {
	// Cron expression for periodic runs
	Schedule string `toml:"schedule"`

	// Token bucket for cycle starts; zero or negative disables pacing
	MaxCyclesPerSecond float64 `toml:"max_cycles_per_second"`
	Burst              int     `toml:"burst"`

	// Cycles allowed to wait on the worker at the same time
	Concurrency int `toml:"concurrency"`
}

// DefaultConfig runs every 15 minutes, one cycle at a time
func DefaultConfig() Config {
	return Config{
		Schedule:           "*/15 * * * *",
		MaxCyclesPerSecond: 1,
		Burst:              1,
		Concurrency:        1,
	}
}

// Validate reports whether the configuration is usable
func (c Config) Validate() error {
	return validateConfig(c)
}

func validateConfig(config Config) error {
	if _, err := cron.Parse(config.Schedule); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	if config.Concurrency <= 0 {
		return fmt.Errorf("Concurrency must be positive, got %d", config.Concurrency)
	}
	if config.MaxCyclesPerSecond > 0 && config.Burst <= 0 {
		return fmt.Errorf("Burst must be positive when pacing is enabled, got %d", config.Burst)
	}
	return nil
}
