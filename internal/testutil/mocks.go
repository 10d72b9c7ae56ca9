package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/livinlefevreloca/syncbridge/internal/command"
)

// MockGateway stands in for the worker in coordinator and trigger tests.
// It records every dispatched envelope and can complete it through OnDispatch.
type MockGateway struct {
	mu          sync.Mutex
	available   bool
	dispatchErr error
	dispatched  []*command.Envelope
	checks      int

	// OnDispatch runs on its own goroutine after a successful dispatch
	OnDispatch func(e *command.Envelope)
}

func NewMockGateway() *MockGateway {
	return &MockGateway{
		available:  true,
		dispatched: make([]*command.Envelope, 0),
	}
}

func (m *MockGateway) SetAvailable(available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.available = available
}

func (m *MockGateway) SetDispatchError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatchErr = err
}

func (m *MockGateway) IsAvailable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks++
	return m.available
}

func (m *MockGateway) Dispatch(ctx context.Context, e *command.Envelope) error {
	m.mu.Lock()
	if m.dispatchErr != nil {
		err := m.dispatchErr
		m.mu.Unlock()
		return err
	}
	m.dispatched = append(m.dispatched, e.Clone())
	hook := m.OnDispatch
	m.mu.Unlock()

	if hook != nil {
		go hook(e.Clone())
	}
	return nil
}

func (m *MockGateway) Dispatched() []*command.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*command.Envelope, len(m.dispatched))
	copy(result, m.dispatched)
	return result
}

func (m *MockGateway) CountDispatched() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dispatched)
}

func (m *MockGateway) CountAvailabilityChecks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checks
}

// MockReadiness is a controllable application context
type MockReadiness struct {
	mu          sync.Mutex
	ready       bool
	readyOnInit bool
	initErr     error
	initCalls   int
}

// NewMockReadiness returns a context that becomes ready on Initialize
func NewMockReadiness() *MockReadiness {
	return &MockReadiness{readyOnInit: true}
}

func (m *MockReadiness) SetInitError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initErr = err
	m.readyOnInit = false
}

func (m *MockReadiness) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initCalls++
	if m.initErr != nil {
		return m.initErr
	}
	if m.readyOnInit {
		m.ready = true
	}
	return nil
}

func (m *MockReadiness) IsReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

func (m *MockReadiness) InitCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initCalls
}

// MockClock is a manually advanced clock for code that takes a now func
type MockClock struct {
	mu      sync.Mutex
	current time.Time
}

func NewMockClock(start time.Time) *MockClock {
	return &MockClock{
		current: start,
	}
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}

// TestLogger provides a logger that captures logs for testing
type TestLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

type LogEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

func NewTestLogger() *TestLogger {
	return &TestLogger{
		entries: make([]LogEntry, 0),
	}
}

func (l *TestLogger) Debug(msg string, fields ...interface{}) {
	l.log("DEBUG", msg, fields...)
}

func (l *TestLogger) Info(msg string, fields ...interface{}) {
	l.log("INFO", msg, fields...)
}

func (l *TestLogger) Warn(msg string, fields ...interface{}) {
	l.log("WARN", msg, fields...)
}

func (l *TestLogger) Error(msg string, fields ...interface{}) {
	l.log("ERROR", msg, fields...)
}

func (l *TestLogger) log(level, msg string, fields ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := LogEntry{
		Level:   level,
		Message: msg,
		Fields:  make(map[string]interface{}),
	}

	for i := 0; i < len(fields); i += 2 {
		if i+1 < len(fields) {
			key := fmt.Sprintf("%v", fields[i])
			entry.Fields[key] = fields[i+1]
		}
	}

	l.entries = append(l.entries, entry)
}

func (l *TestLogger) GetEntriesByLevel(level string) []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := make([]LogEntry, 0)
	for _, entry := range l.entries {
		if entry.Level == level {
			result = append(result, entry)
		}
	}
	return result
}

func (l *TestLogger) HasError() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, entry := range l.entries {
		if entry.Level == "ERROR" {
			return true
		}
	}
	return false
}

func (l *TestLogger) HasWarning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, entry := range l.entries {
		if entry.Level == "WARN" {
			return true
		}
	}
	return false
}

// Logger returns a *slog.Logger that writes to this TestLogger
func (l *TestLogger) Logger() *slog.Logger {
	return slog.New(&testLogHandler{logger: l})
}

// testLogHandler implements slog.Handler for TestLogger
type testLogHandler struct {
	logger *TestLogger
	attrs  []slog.Attr
	groups []string
}

func (h *testLogHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (h *testLogHandler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String()
	msg := r.Message

	// Collect all attributes
	fields := make([]interface{}, 0, r.NumAttrs()*2)
	r.Attrs(func(a slog.Attr) bool {
		fields = append(fields, a.Key, a.Value.Any())
		return true
	})

	// Add handler-level attributes
	for _, attr := range h.attrs {
		fields = append(fields, attr.Key, attr.Value.Any())
	}

	h.logger.log(level, msg, fields...)
	return nil
}

func (h *testLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)
	return &testLogHandler{
		logger: h.logger,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *testLogHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups[len(h.groups)] = name
	return &testLogHandler{
		logger: h.logger,
		attrs:  h.attrs,
		groups: newGroups,
	}
}

// WaitFor waits for a condition to be true with timeout
func WaitFor(t TestingT, condition func() bool, timeout time.Duration, msgAndArgs ...interface{}) bool {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		if condition() {
			return true
		}

		select {
		case <-ticker.C:
			if time.Now().After(deadline) {
				t.Errorf("timeout waiting for condition: %v", msgAndArgs)
				return false
			}
		}
	}
}

// TestingT is a minimal interface for testing
type TestingT interface {
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}
