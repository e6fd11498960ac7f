package app

import (
	"sync/atomic"
	"time"

	"github.com/dshills/parsedit/internal/syntax/highlight"
)

// Metrics tracks render timing and pipeline counters.
type Metrics struct {
	// Render timing
	renderCount   atomic.Uint64
	renderTotalNs atomic.Int64
	renderMaxNs   atomic.Int64
	lastRenderNs  atomic.Int64

	// Pipeline counters
	lines         atomic.Int64
	passes        atomic.Int64
	shortCircuits atomic.Int64
	classified    atomic.Int64

	// Definition reloads
	reloads        atomic.Uint64
	reloadFailures atomic.Uint64

	// Start time for uptime calculation
	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordRender records the duration of one highlight-and-draw cycle and the
// pipeline counters it produced.
func (m *Metrics) RecordRender(duration time.Duration, stats highlight.Stats) {
	ns := duration.Nanoseconds()

	m.renderCount.Add(1)
	m.renderTotalNs.Add(ns)
	m.lastRenderNs.Store(ns)

	for {
		old := m.renderMaxNs.Load()
		if ns <= old {
			break
		}
		if m.renderMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}

	m.lines.Add(int64(stats.Lines))
	m.passes.Add(int64(stats.Passes))
	m.shortCircuits.Add(int64(stats.ShortCircuits))
	m.classified.Add(int64(stats.Classified))
}

// RecordReload records a definition reload and whether it failed.
func (m *Metrics) RecordReload(err error) {
	m.reloads.Add(1)
	if err != nil {
		m.reloadFailures.Add(1)
	}
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	renderCount := m.renderCount.Load()

	var avgRenderNs int64
	if renderCount > 0 {
		avgRenderNs = m.renderTotalNs.Load() / int64(renderCount)
	}

	return MetricsSnapshot{
		Uptime:         time.Since(m.startTime),
		RenderCount:    renderCount,
		AvgRenderNs:    avgRenderNs,
		MaxRenderNs:    m.renderMaxNs.Load(),
		LastRenderNs:   m.lastRenderNs.Load(),
		Lines:          m.lines.Load(),
		Passes:         m.passes.Load(),
		ShortCircuits:  m.shortCircuits.Load(),
		Classified:     m.classified.Load(),
		Reloads:        m.reloads.Load(),
		ReloadFailures: m.reloadFailures.Load(),
	}
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.renderCount.Store(0)
	m.renderTotalNs.Store(0)
	m.renderMaxNs.Store(0)
	m.lastRenderNs.Store(0)
	m.lines.Store(0)
	m.passes.Store(0)
	m.shortCircuits.Store(0)
	m.classified.Store(0)
	m.reloads.Store(0)
	m.reloadFailures.Store(0)
	m.startTime = time.Now()
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime         time.Duration
	RenderCount    uint64
	AvgRenderNs    int64
	MaxRenderNs    int64
	LastRenderNs   int64
	Lines          int64
	Passes         int64
	ShortCircuits  int64
	Classified     int64
	Reloads        uint64
	ReloadFailures uint64
}

// PassesPerLine returns the mean number of pipeline passes per line.
func (s MetricsSnapshot) PassesPerLine() float64 {
	if s.Lines == 0 {
		return 0
	}
	return float64(s.Passes) / float64(s.Lines)
}

// Fields returns the snapshot as structured log fields.
func (s MetricsSnapshot) Fields() map[string]any {
	return map[string]any{
		"uptime":          s.Uptime.String(),
		"renders":         s.RenderCount,
		"avg_render":      time.Duration(s.AvgRenderNs).String(),
		"max_render":      time.Duration(s.MaxRenderNs).String(),
		"lines":           s.Lines,
		"passes_per_line": s.PassesPerLine(),
		"short_circuits":  s.ShortCircuits,
		"classified":      s.Classified,
		"reloads":         s.Reloads,
		"reload_failures": s.ReloadFailures,
	}
}
