package meminfo

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Delta is the change of each field relative to the baseline snapshot.
type Delta struct {
	NativeHeapMB  float64 `json:"native_heap_mb"`
	UnknownMB     float64 `json:"unknown_mb"`
	TotalMB       float64 `json:"total_mb"`
	UnreachableMB float64 `json:"unreachable_mb"`
}

// Severity classifies native heap growth.
type Severity string

const (
	SeverityNone     Severity = ""
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Thresholds configures growth warnings, in megabytes of native heap growth.
type Thresholds struct {
	WarnMB     float64
	CriticalMB float64
}

// DefaultThresholds matches the limits used during leak hunting.
var DefaultThresholds = Thresholds{WarnMB: 10, CriticalMB: 20}

// Status is a point-in-time view of the tracker.
type Status struct {
	Started  time.Time `json:"started"`
	Samples  int       `json:"samples"`
	Baseline *Snapshot `json:"baseline,omitempty"`
	Latest   *Snapshot `json:"latest,omitempty"`
	Delta    *Delta    `json:"delta,omitempty"`
}

// Tracker keeps the first snapshot as a baseline and reports drift from it.
// It is safe for concurrent use.
type Tracker struct {
	mu         sync.RWMutex
	started    time.Time
	thresholds Thresholds
	baseline   *Snapshot
	latest     *Snapshot
	samples    int
}

// NewTracker creates a tracker whose elapsed time counts from started.
func NewTracker(started time.Time, thresholds Thresholds) *Tracker {
	return &Tracker{started: started, thresholds: thresholds}
}

// Observe records a snapshot and returns its delta from the baseline. The
// first observed snapshot becomes the baseline.
func (t *Tracker) Observe(snap Snapshot) Delta {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.baseline == nil {
		base := snap
		t.baseline = &base
	}
	latest := snap
	t.latest = &latest
	t.samples++

	return diff(snap, *t.baseline)
}

// Severity classifies the native heap growth in d.
func (t *Tracker) Severity(d Delta) Severity {
	switch {
	case d.NativeHeapMB > t.thresholds.CriticalMB:
		return SeverityCritical
	case d.NativeHeapMB > t.thresholds.WarnMB:
		return SeverityWarning
	}
	return SeverityNone
}

// Status returns a copy of the tracker state.
func (t *Tracker) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	st := Status{Started: t.started, Samples: t.samples}
	if t.baseline != nil {
		base, latest := *t.baseline, *t.latest
		d := diff(latest, base)
		st.Baseline, st.Latest, st.Delta = &base, &latest, &d
	}
	return st
}

// FormatLine renders the live status line for snap.
func (t *Tracker) FormatLine(snap Snapshot, d Delta) string {
	elapsed := snap.Taken.Sub(t.started).Seconds()
	return fmt.Sprintf("[%6.0fs] Native: %6.1fMB (%+5.1f) | Unknown: %6.1fMB (%+5.1f) | "+
		"Total: %6.1fMB (%+5.1f) | Unreachable: %4.1fMB (%+4.1f)",
		elapsed,
		snap.NativeHeapMB, d.NativeHeapMB,
		snap.UnknownMB, d.UnknownMB,
		snap.TotalMB, d.TotalMB,
		snap.UnreachableMB, d.UnreachableMB,
	)
}

// FormatWarning renders the growth warning for a severity, or "" for none.
func (t *Tracker) FormatWarning(s Severity) string {
	switch s {
	case SeverityCritical:
		return fmt.Sprintf("WARNING: Native Heap increased by >%gMB!", t.thresholds.CriticalMB)
	case SeverityWarning:
		return fmt.Sprintf("WARNING: Native Heap increased by >%gMB", t.thresholds.WarnMB)
	}
	return ""
}

// Summary renders the report printed when monitoring stops.
func (t *Tracker) Summary(stopped time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stopped after %.0f seconds\n", stopped.Sub(t.started).Seconds())

	st := t.Status()
	if st.Delta == nil {
		return b.String()
	}

	fmt.Fprintf(&b, "Native Heap change: %+.1f MB\n", st.Delta.NativeHeapMB)
	fmt.Fprintf(&b, "Unknown change: %+.1f MB\n", st.Delta.UnknownMB)
	fmt.Fprintf(&b, "Total change: %+.1f MB\n", st.Delta.TotalMB)
	fmt.Fprintf(&b, "Unreachable change: %+.1f MB\n", st.Delta.UnreachableMB)
	return b.String()
}

func diff(cur, base Snapshot) Delta {
	return Delta{
		NativeHeapMB:  cur.NativeHeapMB - base.NativeHeapMB,
		UnknownMB:     cur.UnknownMB - base.UnknownMB,
		TotalMB:       cur.TotalMB - base.TotalMB,
		UnreachableMB: cur.UnreachableMB - base.UnreachableMB,
	}
}
