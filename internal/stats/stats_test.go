package stats

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livinlefevreloca/syncbridge/internal/coordinator"
	"github.com/livinlefevreloca/syncbridge/internal/testutil"
)

type memoryReporter struct {
	mu      sync.Mutex
	periods []Period
	err     error
}

func (r *memoryReporter) Report(p Period) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.periods = append(r.periods, p)
	return r.err
}

func (r *memoryReporter) all() []Period {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Period, len(r.periods))
	copy(out, r.periods)
	return out
}

func result(status coordinator.CycleStatus, took time.Duration, io int) coordinator.CycleResult {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return coordinator.CycleResult{
		Account:    "alice",
		Status:     status,
		IOFailures: io,
		StartedAt:  start,
		FinishedAt: start.Add(took),
	}
}

func testConfig() Config {
	return Config{
		InboxBufferSize:  16,
		InboxSendTimeout: 100 * time.Millisecond,
		PeriodDuration:   time.Hour,
	}
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.InboxBufferSize = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.InboxSendTimeout = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.PeriodDuration = -time.Second
	assert.Error(t, cfg.Validate())
}

func TestNewCollector_RequiresReporter(t *testing.T) {
	_, err := NewCollector(testConfig(), nil, testutil.NewTestLogger().Logger())
	assert.Error(t, err)
}

func TestCollector_StopReportsAggregatedPeriod(t *testing.T) {
	reporter := &memoryReporter{}
	c, err := NewCollector(testConfig(), reporter, testutil.NewTestLogger().Logger())
	require.NoError(t, err)
	c.Start()

	require.NoError(t, c.Record(result(coordinator.CycleCompleted, 10*time.Millisecond, 0)))
	require.NoError(t, c.Record(result(coordinator.CycleCompleted, 30*time.Millisecond, 1)))
	require.NoError(t, c.Record(result(coordinator.CycleTimedOut, 20*time.Millisecond, 0)))

	require.NoError(t, c.Stop())

	periods := reporter.all()
	require.Len(t, periods, 1)
	p := periods[0]
	assert.Equal(t, 3, p.Cycles)
	assert.Equal(t, 2, p.ByStatus[coordinator.CycleCompleted])
	assert.Equal(t, 1, p.ByStatus[coordinator.CycleTimedOut])
	assert.Equal(t, 1, p.IOFailures)
	assert.Equal(t, 10*time.Millisecond, p.MinDuration)
	assert.Equal(t, 30*time.Millisecond, p.MaxDuration)
	assert.Equal(t, 20*time.Millisecond, p.AvgDuration)
	assert.Contains(t, p.ID, "period-")
	assert.Equal(t, 1, c.Reported())
}

func TestCollector_EmptyPeriodNotReported(t *testing.T) {
	reporter := &memoryReporter{}
	c, err := NewCollector(testConfig(), reporter, testutil.NewTestLogger().Logger())
	require.NoError(t, err)
	c.Start()

	require.NoError(t, c.Stop())
	assert.Empty(t, reporter.all())
	assert.Equal(t, 0, c.Reported())
}

func TestCollector_ReportsEachPeriod(t *testing.T) {
	cfg := testConfig()
	cfg.PeriodDuration = 50 * time.Millisecond

	reporter := &memoryReporter{}
	c, err := NewCollector(cfg, reporter, testutil.NewTestLogger().Logger())
	require.NoError(t, err)
	c.Start()
	defer c.Stop()

	require.NoError(t, c.Record(result(coordinator.CycleCompleted, time.Millisecond, 0)))
	require.True(t, testutil.WaitFor(t, func() bool { return len(reporter.all()) == 1 }, time.Second))

	require.NoError(t, c.Record(result(coordinator.CycleInterrupted, time.Millisecond, 0)))
	require.True(t, testutil.WaitFor(t, func() bool { return len(reporter.all()) == 2 }, time.Second))

	periods := reporter.all()
	assert.Equal(t, 1, periods[0].ByStatus[coordinator.CycleCompleted])
	assert.Equal(t, 1, periods[1].ByStatus[coordinator.CycleInterrupted])
	assert.False(t, periods[1].StartTime.Before(periods[0].EndTime))
}

func TestCollector_StopIsIdempotent(t *testing.T) {
	reporter := &memoryReporter{err: errors.New("boom")}
	c, err := NewCollector(testConfig(), reporter, testutil.NewTestLogger().Logger())
	require.NoError(t, err)
	c.Start()

	require.NoError(t, c.Record(result(coordinator.CycleCompleted, time.Millisecond, 0)))
	assert.Error(t, c.Stop())
	assert.NoError(t, c.Stop())

	assert.Error(t, c.Record(result(coordinator.CycleCompleted, time.Millisecond, 0)))
}

func TestLogReporter(t *testing.T) {
	logger := testutil.NewTestLogger()
	r := LogReporter{Logger: logger.Logger()}

	require.NoError(t, r.Report(Period{ID: "period-1", Cycles: 2}))

	entries := logger.GetEntriesByLevel("INFO")
	require.Len(t, entries, 1)
	assert.Equal(t, "sync cycle stats", entries[0].Message)
}

func TestCalculateMinMaxAvgDuration(t *testing.T) {
	minDur, maxDur, avgDur := calculateMinMaxAvgDuration(nil)
	assert.Zero(t, minDur)
	assert.Zero(t, maxDur)
	assert.Zero(t, avgDur)

	minDur, maxDur, avgDur = calculateMinMaxAvgDuration([]time.Duration{3, 1, 2})
	assert.Equal(t, time.Duration(1), minDur)
	assert.Equal(t, time.Duration(3), maxDur)
	assert.Equal(t, time.Duration(2), avgDur)
}
