// Package metrics provides Prometheus instrumentation for gopace components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for gopace components.
type Registry struct {
	// Gate Metrics
	GateInvocations       *prometheus.CounterVec
	GateExecutions        *prometheus.CounterVec
	GateSuppressed        *prometheus.CounterVec
	GateCancels           *prometheus.CounterVec
	GateFlushes           *prometheus.CounterVec
	GatePending           *prometheus.GaugeVec
	GateExecutionDuration *prometheus.HistogramVec
	GateBurstSize         *prometheus.HistogramVec

	// Sweeper Metrics
	SweepRuns    *prometheus.CounterVec
	SweepFlushed *prometheus.CounterVec

	// Distributed Coalescer Metrics
	CoalescerClaims   *prometheus.CounterVec
	CoalescerExtended *prometheus.CounterVec
	CoalescerErrors   *prometheus.CounterVec
}

// DefaultRegistry is the default metrics registry used by gopace components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		// Gate Metrics
		GateInvocations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopace",
				Subsystem: "gate",
				Name:      "invocations_total",
				Help:      "Total number of Invoke attempts",
			},
			[]string{"policy", "gate_name"},
		),

		GateExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopace",
				Subsystem: "gate",
				Name:      "executions_total",
				Help:      "Total number of underlying-callable executions",
			},
			[]string{"policy", "gate_name"},
		),

		GateSuppressed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopace",
				Subsystem: "gate",
				Name:      "suppressed_total",
				Help:      "Total number of call attempts dropped by the policy",
			},
			[]string{"policy", "gate_name"},
		),

		GateCancels: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopace",
				Subsystem: "gate",
				Name:      "cancels_total",
				Help:      "Total number of discarded pending executions",
			},
			[]string{"policy", "gate_name"},
		),

		GateFlushes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopace",
				Subsystem: "gate",
				Name:      "flushes_total",
				Help:      "Total number of forced pending executions",
			},
			[]string{"policy", "gate_name"},
		),

		GatePending: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "gopace",
				Subsystem: "gate",
				Name:      "pending",
				Help:      "Whether a deferred execution is currently armed (0 or 1)",
			},
			[]string{"policy", "gate_name"},
		),

		GateExecutionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gopace",
				Subsystem: "gate",
				Name:      "execution_duration_seconds",
				Help:      "Time spent executing the wrapped callable",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"policy", "gate_name"},
		),

		GateBurstSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gopace",
				Subsystem: "gate",
				Name:      "burst_size",
				Help:      "Number of Invoke attempts collapsed into one execution",
				Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
			},
			[]string{"policy", "gate_name"},
		),

		// Sweeper Metrics
		SweepRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopace",
				Subsystem: "sweep",
				Name:      "runs_total",
				Help:      "Total number of sweep passes",
			},
			[]string{"sweeper_name"},
		),

		SweepFlushed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopace",
				Subsystem: "sweep",
				Name:      "flushed_total",
				Help:      "Total number of pending executions forced by sweeps",
			},
			[]string{"sweeper_name"},
		),

		// Distributed Coalescer Metrics
		CoalescerClaims: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopace",
				Subsystem: "coalescer",
				Name:      "claims_total",
				Help:      "Total number of burst leading-edge claims won",
			},
			[]string{"coalescer_name"},
		),

		CoalescerExtended: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopace",
				Subsystem: "coalescer",
				Name:      "extended_total",
				Help:      "Total number of quiet-period extensions on active bursts",
			},
			[]string{"coalescer_name"},
		),

		CoalescerErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopace",
				Subsystem: "coalescer",
				Name:      "errors_total",
				Help:      "Total number of coordination backend errors",
			},
			[]string{"coalescer_name"},
		),
	}
}
