package debounce

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/gopace/pkg/gate"
	"github.com/vnykmshr/gopace/pkg/metrics"
)

const policyLabel = "debounce"

// MetricsDebouncer wraps a Debouncer with Prometheus metrics collection.
type MetricsDebouncer struct {
	inner    Debouncer
	name     string
	registry *metrics.Registry
	enabled  bool

	stats *gate.Stats

	mu        sync.Mutex
	lastSnap  gate.Snapshot
	sinceExec int64
}

// NewWithMetrics creates a new trailing-edge Debouncer with metrics enabled.
func NewWithMetrics(fn gate.Func, delay time.Duration, name string) Debouncer {
	// Use a separate registry for each metrics-enabled component to avoid conflicts
	registry := prometheus.NewRegistry()
	config := metrics.Config{
		Enabled:  true,
		Registry: registry,
	}

	return NewWithConfigAndMetrics(fn, Config{Delay: delay}, name, config)
}

// NewWithConfigAndMetrics creates a new Debouncer with custom config and metrics.
// If config.Stats is nil, the wrapper installs its own collector; a shared
// collector also updated outside this wrapper will skew the exported deltas.
func NewWithConfigAndMetrics(fn gate.Func, config Config, name string, metricsConfig metrics.Config) Debouncer {
	if !metricsConfig.Enabled {
		return NewWithConfig(fn, config)
	}

	registry := metrics.DefaultRegistry
	if metricsConfig.Registry != nil {
		registry = metrics.NewRegistry(metricsConfig.Registry)
	}

	if config.Stats == nil {
		config.Stats = &gate.Stats{}
	}

	// Time the callable itself so the histogram covers leading, trailing
	// and flushed fires alike.
	timed := func(args ...interface{}) {
		start := time.Now()
		fn(args...)
		registry.GateExecutionDuration.WithLabelValues(policyLabel, name).
			Observe(time.Since(start).Seconds())
	}

	return &MetricsDebouncer{
		inner:    NewWithConfig(timed, config),
		name:     name,
		registry: registry,
		enabled:  true,
		stats:    config.Stats,
	}
}

// Invoke routes one call attempt through the debounce policy.
func (md *MetricsDebouncer) Invoke(args ...interface{}) {
	md.inner.Invoke(args...)
	md.sync()
}

// Cancel discards any pending fire.
func (md *MetricsDebouncer) Cancel() {
	md.inner.Cancel()
	md.sync()
}

// Flush executes a pending fire immediately with the latest captured arguments.
func (md *MetricsDebouncer) Flush() {
	md.inner.Flush()
	md.sync()
}

// CallCount returns the number of Invoke attempts since creation.
func (md *MetricsDebouncer) CallCount() int64 {
	return md.inner.CallCount()
}

// Pending reports whether a fire is currently armed.
func (md *MetricsDebouncer) Pending() bool {
	return md.inner.Pending()
}

// SetDelay changes the quiet-period length.
func (md *MetricsDebouncer) SetDelay(d time.Duration) {
	md.inner.SetDelay(d)
}

// Delay returns the current quiet-period length.
func (md *MetricsDebouncer) Delay() time.Duration {
	return md.inner.Delay()
}

// Immediate reports whether leading-edge firing is enabled.
func (md *MetricsDebouncer) Immediate() bool {
	return md.inner.Immediate()
}

// EnableMetrics enables metrics collection.
func (md *MetricsDebouncer) EnableMetrics(config metrics.Config) error {
	md.enabled = config.Enabled

	if config.Registry != nil {
		md.registry = metrics.NewRegistry(config.Registry)
	}

	return nil
}

// DisableMetrics disables metrics collection.
func (md *MetricsDebouncer) DisableMetrics() {
	md.enabled = false
}

// MetricsEnabled returns true if metrics are currently enabled.
func (md *MetricsDebouncer) MetricsEnabled() bool {
	return md.enabled
}

// sync exports the counter deltas accumulated since the previous operation.
// Timer-driven fires happen off the operation path, so their deltas are
// exported on the next operation through this wrapper.
func (md *MetricsDebouncer) sync() {
	if !md.enabled {
		return
	}

	md.mu.Lock()
	defer md.mu.Unlock()

	snap := md.stats.Snapshot()
	prev := md.lastSnap
	md.lastSnap = snap

	labels := []string{policyLabel, md.name}
	if d := snap.Invocations - prev.Invocations; d > 0 {
		md.registry.GateInvocations.WithLabelValues(labels...).Add(float64(d))
		md.sinceExec += d
	}
	if d := snap.Executions - prev.Executions; d > 0 {
		md.registry.GateExecutions.WithLabelValues(labels...).Add(float64(d))
		md.registry.GateBurstSize.WithLabelValues(labels...).Observe(float64(md.sinceExec) / float64(d))
		md.sinceExec = 0
	}
	if d := snap.Suppressed - prev.Suppressed; d > 0 {
		md.registry.GateSuppressed.WithLabelValues(labels...).Add(float64(d))
	}
	if d := snap.Cancels - prev.Cancels; d > 0 {
		md.registry.GateCancels.WithLabelValues(labels...).Add(float64(d))
	}
	if d := snap.Flushes - prev.Flushes; d > 0 {
		md.registry.GateFlushes.WithLabelValues(labels...).Add(float64(d))
	}

	pending := 0.0
	if md.inner.Pending() {
		pending = 1.0
	}
	md.registry.GatePending.WithLabelValues(labels...).Set(pending)
}
