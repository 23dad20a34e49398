package throttle

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/gopace/pkg/gate"
	"github.com/vnykmshr/gopace/pkg/metrics"
)

const policyLabel = "throttle"

// MetricsThrottler wraps a Throttler with Prometheus metrics collection.
type MetricsThrottler struct {
	inner    Throttler
	name     string
	registry *metrics.Registry
	enabled  bool

	stats *gate.Stats

	mu        sync.Mutex
	lastSnap  gate.Snapshot
	sinceExec int64
}

// NewWithMetrics creates a new Throttler with metrics enabled.
func NewWithMetrics(fn gate.Func, delay time.Duration, name string) Throttler {
	// Use a separate registry for each metrics-enabled component to avoid conflicts
	registry := prometheus.NewRegistry()
	config := metrics.Config{
		Enabled:  true,
		Registry: registry,
	}

	return NewWithConfigAndMetrics(fn, DefaultConfig(delay), name, config)
}

// NewWithConfigAndMetrics creates a new Throttler with custom config and metrics.
// If config.Stats is nil, the wrapper installs its own collector; a shared
// collector also updated outside this wrapper will skew the exported deltas.
func NewWithConfigAndMetrics(fn gate.Func, config Config, name string, metricsConfig metrics.Config) Throttler {
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

	return &MetricsThrottler{
		inner:    NewWithConfig(timed, config),
		name:     name,
		registry: registry,
		enabled:  true,
		stats:    config.Stats,
	}
}

// Invoke routes one call attempt through the throttle policy.
func (mt *MetricsThrottler) Invoke(args ...interface{}) {
	mt.inner.Invoke(args...)
	mt.sync()
}

// Cancel discards any pending trailing fire.
func (mt *MetricsThrottler) Cancel() {
	mt.inner.Cancel()
	mt.sync()
}

// Flush executes a pending trailing fire immediately.
func (mt *MetricsThrottler) Flush() {
	mt.inner.Flush()
	mt.sync()
}

// CallCount returns the number of Invoke attempts since creation.
func (mt *MetricsThrottler) CallCount() int64 {
	return mt.inner.CallCount()
}

// Pending reports whether a trailing fire is currently armed.
func (mt *MetricsThrottler) Pending() bool {
	return mt.inner.Pending()
}

// SetDelay changes the window length.
func (mt *MetricsThrottler) SetDelay(d time.Duration) {
	mt.inner.SetDelay(d)
}

// Delay returns the current window length.
func (mt *MetricsThrottler) Delay() time.Duration {
	return mt.inner.Delay()
}

// Leading reports whether leading-edge firing is enabled.
func (mt *MetricsThrottler) Leading() bool {
	return mt.inner.Leading()
}

// Trailing reports whether trailing-edge firing is enabled.
func (mt *MetricsThrottler) Trailing() bool {
	return mt.inner.Trailing()
}

// EnableMetrics enables metrics collection.
func (mt *MetricsThrottler) EnableMetrics(config metrics.Config) error {
	mt.enabled = config.Enabled

	if config.Registry != nil {
		mt.registry = metrics.NewRegistry(config.Registry)
	}

	return nil
}

// DisableMetrics disables metrics collection.
func (mt *MetricsThrottler) DisableMetrics() {
	mt.enabled = false
}

// MetricsEnabled returns true if metrics are currently enabled.
func (mt *MetricsThrottler) MetricsEnabled() bool {
	return mt.enabled
}

// sync exports the counter deltas accumulated since the previous operation.
func (mt *MetricsThrottler) sync() {
	if !mt.enabled {
		return
	}

	mt.mu.Lock()
	defer mt.mu.Unlock()

	snap := mt.stats.Snapshot()
	prev := mt.lastSnap
	mt.lastSnap = snap

	labels := []string{policyLabel, mt.name}
	if d := snap.Invocations - prev.Invocations; d > 0 {
		mt.registry.GateInvocations.WithLabelValues(labels...).Add(float64(d))
		mt.sinceExec += d
	}
	if d := snap.Executions - prev.Executions; d > 0 {
		mt.registry.GateExecutions.WithLabelValues(labels...).Add(float64(d))
		// Attempts collapsed into the executions that just happened.
		mt.registry.GateBurstSize.WithLabelValues(labels...).Observe(float64(mt.sinceExec) / float64(d))
		mt.sinceExec = 0
	}
	if d := snap.Suppressed - prev.Suppressed; d > 0 {
		mt.registry.GateSuppressed.WithLabelValues(labels...).Add(float64(d))
	}
	if d := snap.Cancels - prev.Cancels; d > 0 {
		mt.registry.GateCancels.WithLabelValues(labels...).Add(float64(d))
	}
	if d := snap.Flushes - prev.Flushes; d > 0 {
		mt.registry.GateFlushes.WithLabelValues(labels...).Add(float64(d))
	}

	pending := 0.0
	if mt.inner.Pending() {
		pending = 1.0
	}
	mt.registry.GatePending.WithLabelValues(labels...).Set(pending)
}
