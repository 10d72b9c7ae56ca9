package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "syncbridge.db", cfg.Database.DSN)
	assert.Equal(t, 10, cfg.Coordinator.WaitIterations)
	assert.Equal(t, 30*time.Second, cfg.Coordinator.WaitUnit)
	assert.Equal(t, "*/15 * * * *", cfg.Trigger.Schedule)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
[database]
dsn = "/var/lib/syncbridge/state.db"
max_open_conns = 8

[coordinator]
wait_iterations = 4
wait_unit = "15s"

[worker]
concurrency = 3
perform_timeout = "2m"

[trigger]
schedule = "@hourly"
max_cycles_per_second = 0.5
burst = 2

[recorder]
flush_interval = "500ms"

[stats]
period_duration = "1h"

[logging]
level = "debug"
format = "json"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/syncbridge/state.db", cfg.Database.DSN)
	assert.Equal(t, 8, cfg.Database.MaxOpenConns)
	assert.Equal(t, 4, cfg.Coordinator.WaitIterations)
	assert.Equal(t, 15*time.Second, cfg.Coordinator.WaitUnit)
	assert.Equal(t, 3, cfg.Worker.Concurrency)
	assert.Equal(t, 2*time.Minute, cfg.Worker.PerformTimeout)
	assert.Equal(t, "@hourly", cfg.Trigger.Schedule)
	assert.Equal(t, 0.5, cfg.Trigger.MaxCyclesPerSecond)
	assert.Equal(t, 500*time.Millisecond, cfg.Recorder.FlushInterval)
	assert.Equal(t, time.Hour, cfg.Stats.PeriodDuration)
	assert.Equal(t, "json", cfg.Logging.Format)

	// untouched keys keep their defaults
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, 64, cfg.Worker.QueueSize)
	assert.Equal(t, 16, cfg.Recorder.FlushThreshold)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile_Errors(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/config.toml")
	assert.Error(t, err)

	_, err = LoadFromFile(writeConfig(t, "[database\n"))
	assert.Error(t, err)

	_, err = LoadFromFile(writeConfig(t, "[coordinator]\nwait_iteratons = 3\n"))
	assert.ErrorContains(t, err, "coordinator.wait_iteratons")
}

func TestLoadConfig_NoFile(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty driver", func(c *Config) { c.Database.Driver = "" }},
		{"unsupported driver", func(c *Config) { c.Database.Driver = "postgres" }},
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }},
		{"zero wait iterations", func(c *Config) { c.Coordinator.WaitIterations = 0 }},
		{"zero wait unit", func(c *Config) { c.Coordinator.WaitUnit = 0 }},
		{"zero worker concurrency", func(c *Config) { c.Worker.Concurrency = 0 }},
		{"bad schedule", func(c *Config) { c.Trigger.Schedule = "every day" }},
		{"zero recorder channel", func(c *Config) { c.Recorder.ChannelSize = 0 }},
		{"zero stats period", func(c *Config) { c.Stats.PeriodDuration = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := LoggingConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "account", "alice")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"account":"alice"`)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))

	_, err = LoggingConfig{Level: "loud", Format: "text"}.NewLogger(&buf)
	assert.Error(t, err)
	_, err = LoggingConfig{Level: "info", Format: "yaml"}.NewLogger(&buf)
	assert.Error(t, err)
}
