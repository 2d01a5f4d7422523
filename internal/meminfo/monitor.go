package meminfo

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/deeeed/expo-audio-stream/internal/metrics"
)

// Monitor polls a Sampler on a fixed interval and prints drift to out.
type Monitor struct {
	sampler  *Sampler
	tracker  *Tracker
	interval time.Duration
	out      io.Writer
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewMonitor creates a monitor. m may be nil when metrics are not exported.
func NewMonitor(sampler *Sampler, tracker *Tracker, interval time.Duration, out io.Writer,
	logger *zap.Logger, m *metrics.Metrics) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		sampler:  sampler,
		tracker:  tracker,
		interval: interval,
		out:      out,
		logger:   logger,
		metrics:  m,
	}
}

// Tracker returns the tracker fed by the monitor.
func (m *Monitor) Tracker() *Tracker {
	return m.tracker
}

// Run samples immediately and then on every tick until ctx is cancelled.
// Failed samples are logged and skipped.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for ctx.Err() == nil {
		m.poll(ctx)

		select {
		case <-ctx.Done():
		case <-ticker.C:
		}
	}
}

func (m *Monitor) poll(ctx context.Context) {
	start := time.Now()
	snap, err := m.sampler.Sample(ctx)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		if ctx.Err() != nil {
			return
		}
		m.logger.Warn("Memory sample failed",
			zap.String("package", m.sampler.Package()),
			zap.Error(err),
		)
		if m.metrics != nil {
			m.metrics.RecordSampleFailure(elapsed)
		}
		return
	}

	delta := m.tracker.Observe(snap)
	if m.metrics != nil {
		m.metrics.RecordSample(snap.NativeHeapMB, snap.UnknownMB, snap.TotalMB,
			snap.UnreachableMB, delta.NativeHeapMB, elapsed)
	}

	fmt.Fprint(m.out, "\r"+m.tracker.FormatLine(snap, delta))

	severity := m.tracker.Severity(delta)
	if severity == SeverityNone {
		return
	}
	fmt.Fprint(m.out, "\n"+m.tracker.FormatWarning(severity)+"\n")
	if m.metrics != nil {
		m.metrics.RecordGrowthWarning(string(severity))
	}
}
