// Package stats aggregates finished sync cycles into fixed reporting periods.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/livinlefevreloca/syncbridge/internal/coordinator"
	"github.com/livinlefevreloca/syncbridge/internal/inbox"
)

// Period is the summary of every cycle that finished within one period
type Period struct {
	ID        string
	StartTime time.Time
	EndTime   time.Time

	Cycles   int
	ByStatus map[coordinator.CycleStatus]int

	AuthFailures  int
	IOFailures    int
	ParseFailures int

	MinDuration time.Duration
	MaxDuration time.Duration
	AvgDuration time.Duration
}

// Reporter receives each non-empty period when it closes
type Reporter interface {
	Report(p Period) error
}

// LogReporter writes periods to a structured logger
type LogReporter struct {
	Logger *slog.Logger
}

// Report implements Reporter
func (r LogReporter) Report(p Period) error {
	r.Logger.Info("sync cycle stats",
		"period", p.ID,
		"start", p.StartTime,
		"end", p.EndTime,
		"cycles", p.Cycles,
		"completed", p.ByStatus[coordinator.CycleCompleted],
		"timed_out", p.ByStatus[coordinator.CycleTimedOut],
		"auth_failures", p.AuthFailures,
		"io_failures", p.IOFailures,
		"parse_failures", p.ParseFailures,
		"min_duration", p.MinDuration,
		"max_duration", p.MaxDuration,
		"avg_duration", p.AvgDuration)
	return nil
}

// Collector receives cycle results over an inbox and reports one Period per
// PeriodDuration. It implements the trigger's sink interface.
type Collector struct {
	config   Config
	inbox    *inbox.Inbox[coordinator.CycleResult]
	reporter Reporter
	logger   *slog.Logger

	// mu protects the fields below
	mu          sync.Mutex
	periodStart time.Time
	acc         *accumulator
	reported    int

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	now func() time.Time
}

// NewCollector creates a collector. Call Start before recording.
func NewCollector(config Config, reporter Reporter, logger *slog.Logger) (*Collector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if reporter == nil {
		return nil, fmt.Errorf("reporter must not be nil")
	}

	return &Collector{
		config:   config,
		inbox:    inbox.New[coordinator.CycleResult]("stats", config.InboxBufferSize, config.InboxSendTimeout, logger),
		reporter: reporter,
		logger:   logger,
		acc:      newAccumulator(),
		done:     make(chan struct{}),
		now:      time.Now,
	}, nil
}

// Start begins the collection loop
func (c *Collector) Start() {
	c.mu.Lock()
	c.periodStart = c.now()
	c.mu.Unlock()

	c.wg.Add(1)
	go c.run()
}

// Record queues a finished cycle
func (c *Collector) Record(result coordinator.CycleResult) error {
	return c.inbox.Send(context.Background(), result)
}

// Stop drains queued results, reports the last period and waits for the loop
func (c *Collector) Stop() error {
	var stopErr error
	c.stopOnce.Do(func() {
		close(c.done)
		c.inbox.Close()
		c.wg.Wait()

		// drain what the loop did not get to
		for {
			result, ok := c.inbox.TryReceive()
			if !ok {
				break
			}
			c.add(result)
		}

		stopErr = c.flush()
	})
	return stopErr
}

// Reported returns the number of periods handed to the reporter
func (c *Collector) Reported() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reported
}

func (c *Collector) run() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PeriodDuration)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return

		case <-ticker.C:
			if err := c.flush(); err != nil {
				c.logger.Error("stats report failed", "error", err)
			}

		default:
			result, ok := c.inbox.TryReceive()
			if !ok {
				time.Sleep(10 * time.Millisecond)
				continue
			}
			c.add(result)
		}
	}
}

func (c *Collector) add(result coordinator.CycleResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.acc.add(result)
}

// flush reports the current period if it saw any cycle and starts a new one
func (c *Collector) flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	end := c.now()
	acc := c.acc
	start := c.periodStart

	c.acc = newAccumulator()
	c.periodStart = end

	if acc.cycles == 0 {
		return nil
	}

	c.reported++
	return c.reporter.Report(acc.period(generatePeriodID(start), start, end))
}

type accumulator struct {
	cycles        int
	byStatus      map[coordinator.CycleStatus]int
	authFailures  int
	ioFailures    int
	parseFailures int
	durations     []time.Duration
}

func newAccumulator() *accumulator {
	return &accumulator{byStatus: make(map[coordinator.CycleStatus]int)}
}

func (a *accumulator) add(r coordinator.CycleResult) {
	a.cycles++
	a.byStatus[r.Status]++
	a.authFailures += r.AuthFailures
	a.ioFailures += r.IOFailures
	a.parseFailures += r.ParseFailures
	a.durations = append(a.durations, r.Duration())
}

func (a *accumulator) period(id string, start, end time.Time) Period {
	minDur, maxDur, avgDur := calculateMinMaxAvgDuration(a.durations)
	return Period{
		ID:            id,
		StartTime:     start,
		EndTime:       end,
		Cycles:        a.cycles,
		ByStatus:      a.byStatus,
		AuthFailures:  a.authFailures,
		IOFailures:    a.ioFailures,
		ParseFailures: a.parseFailures,
		MinDuration:   minDur,
		MaxDuration:   maxDur,
		AvgDuration:   avgDur,
	}
}

// generatePeriodID generates a period ID based on the period start
func generatePeriodID(t time.Time) string {
	return fmt.Sprintf("period-%d", t.Unix())
}

func calculateMinMaxAvgDuration(values []time.Duration) (min, max, avg time.Duration) {
	if len(values) == 0 {
		return 0, 0, 0
	}

	min = values[0]
	max = values[0]
	var sum time.Duration

	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}

	avg = sum / time.Duration(len(values))
	return min, max, avg
}
