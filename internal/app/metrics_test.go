package app

import (
	"errors"
	"testing"
	"time"

	"github.com/dshills/parsedit/internal/syntax/highlight"
)

func TestMetricsRecordRender(t *testing.T) {
	m := NewMetrics()

	m.RecordRender(2*time.Millisecond, highlight.Stats{Lines: 10, Passes: 40, ShortCircuits: 3, Classified: 120})
	m.RecordRender(4*time.Millisecond, highlight.Stats{Lines: 10, Passes: 60, Classified: 80})

	snap := m.Snapshot()
	if snap.RenderCount != 2 {
		t.Errorf("RenderCount = %d, want 2", snap.RenderCount)
	}
	if snap.AvgRenderNs != (3 * time.Millisecond).Nanoseconds() {
		t.Errorf("AvgRenderNs = %d, want 3ms", snap.AvgRenderNs)
	}
	if snap.MaxRenderNs != (4 * time.Millisecond).Nanoseconds() {
		t.Errorf("MaxRenderNs = %d, want 4ms", snap.MaxRenderNs)
	}
	if snap.LastRenderNs != (4 * time.Millisecond).Nanoseconds() {
		t.Errorf("LastRenderNs = %d, want 4ms", snap.LastRenderNs)
	}
	if snap.Lines != 20 || snap.Passes != 100 || snap.ShortCircuits != 3 || snap.Classified != 200 {
		t.Errorf("counters = %+v", snap)
	}
	if got := snap.PassesPerLine(); got != 5 {
		t.Errorf("PassesPerLine = %v, want 5", got)
	}
}

func TestMetricsRecordReload(t *testing.T) {
	m := NewMetrics()
	m.RecordReload(nil)
	m.RecordReload(errors.New("bad"))
	m.RecordReload(nil)

	snap := m.Snapshot()
	if snap.Reloads != 3 || snap.ReloadFailures != 1 {
		t.Errorf("reloads/failures = %d/%d, want 3/1", snap.Reloads, snap.ReloadFailures)
	}
}

func TestMetricsReset(t *testing.T) {
	m := NewMetrics()
	m.RecordRender(time.Millisecond, highlight.Stats{Lines: 1, Passes: 13})
	m.RecordReload(nil)
	m.Reset()

	snap := m.Snapshot()
	if snap.RenderCount != 0 || snap.Lines != 0 || snap.Reloads != 0 || snap.MaxRenderNs != 0 {
		t.Errorf("after Reset = %+v", snap)
	}
	if snap.PassesPerLine() != 0 {
		t.Errorf("PassesPerLine on empty metrics = %v", snap.PassesPerLine())
	}
}

func TestMetricsSnapshotFields(t *testing.T) {
	m := NewMetrics()
	m.RecordRender(time.Millisecond, highlight.Stats{Lines: 2, Passes: 6})

	fields := m.Snapshot().Fields()
	for _, key := range []string{"uptime", "renders", "avg_render", "max_render", "lines", "passes_per_line", "reloads"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("Fields() missing %q", key)
		}
	}
	if fields["passes_per_line"] != 3.0 {
		t.Errorf("passes_per_line = %v, want 3", fields["passes_per_line"])
	}
}
