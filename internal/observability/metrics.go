package observability

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics aggregates chat turn and tool call counters.
type Metrics struct {
	turnTotal     atomic.Int64
	turnFailed    atomic.Int64
	turnFallback  atomic.Int64
	totalDuration atomic.Int64 // milliseconds

	mu    sync.Mutex
	tools map[string]*toolMetrics
}

type toolMetrics struct {
	calls    atomic.Int64
	failures atomic.Int64
}

// NewMetrics creates an empty metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{tools: make(map[string]*toolMetrics)}
}

var globalMetrics = NewMetrics()

// GlobalMetrics returns the process-wide metrics instance.
func GlobalMetrics() *Metrics {
	return globalMetrics
}

// RecordTurn records a finished chat turn.
func (m *Metrics) RecordTurn(duration time.Duration, failed bool) {
	m.turnTotal.Add(1)
	m.totalDuration.Add(duration.Milliseconds())
	if failed {
		m.turnFailed.Add(1)
	}
}

// RecordFallback records a turn that ran out of iterations.
func (m *Metrics) RecordFallback() {
	m.turnFallback.Add(1)
}

// RecordToolCall records one tool invocation.
func (m *Metrics) RecordToolCall(name string, success bool) {
	tm := m.tool(name)
	tm.calls.Add(1)
	if !success {
		tm.failures.Add(1)
	}
}

func (m *Metrics) tool(name string) *toolMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	tm, ok := m.tools[name]
	if !ok {
		tm = &toolMetrics{}
		m.tools[name] = tm
	}
	return tm
}

// Reset clears all counters.
func (m *Metrics) Reset() {
	m.turnTotal.Store(0)
	m.turnFailed.Store(0)
	m.turnFallback.Store(0)
	m.totalDuration.Store(0)

	m.mu.Lock()
	m.tools = make(map[string]*toolMetrics)
	m.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the counters.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	s := &MetricsSnapshot{
		TurnTotal:    m.turnTotal.Load(),
		TurnFailed:   m.turnFailed.Load(),
		TurnFallback: m.turnFallback.Load(),
		Tools:        []ToolSnapshot{},
	}
	if s.TurnTotal > 0 {
		s.AverageDurationMs = m.totalDuration.Load() / s.TurnTotal
	}

	m.mu.Lock()
	for name, tm := range m.tools {
		s.Tools = append(s.Tools, ToolSnapshot{
			Name:     name,
			Calls:    tm.calls.Load(),
			Failures: tm.failures.Load(),
		})
	}
	m.mu.Unlock()
	sort.Slice(s.Tools, func(i, j int) bool { return s.Tools[i].Name < s.Tools[j].Name })
	return s
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	TurnTotal         int64          `json:"turn_total"`
	TurnFailed        int64          `json:"turn_failed"`
	TurnFallback      int64          `json:"turn_fallback"`
	AverageDurationMs int64          `json:"average_duration_ms"`
	Tools             []ToolSnapshot `json:"tools"`
}

type ToolSnapshot struct {
	Name     string `json:"name"`
	Calls    int64  `json:"calls"`
	Failures int64  `json:"failures"`
}

// SuccessRate returns the share of turns that did not fail, as a percentage.
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.TurnTotal == 0 {
		return 100.0
	}
	return float64(s.TurnTotal-s.TurnFailed) / float64(s.TurnTotal) * 100.0
}
