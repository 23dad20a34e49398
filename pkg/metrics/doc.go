// Package metrics provides Prometheus instrumentation for gopace components.
//
// # Overview
//
// The metrics package provides automatic instrumentation for:
//   - Gate invokers (invocations, executions, suppressions, cancels, flushes)
//   - Pending-timer state and execution latency
//   - Sweep passes and the pending executions they force
//   - Distributed burst coalescing (claims, extensions, backend errors)
//
// # Quick Start
//
// Enable metrics by using the metrics-enabled constructors:
//
//	// Throttler with metrics
//	th := throttle.NewWithMetrics(fn, 100*time.Millisecond, "scroll")
//
//	// Debouncer with metrics
//	db := debounce.NewWithMetrics(fn, 300*time.Millisecond, "search_input")
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation:
//
//	registry := prometheus.NewRegistry()
//	config := metrics.Config{
//		Enabled:  true,
//		Registry: registry,
//	}
//
//	th := throttle.NewWithConfigAndMetrics(
//		fn,
//		throttle.DefaultConfig(100*time.Millisecond),
//		"scroll",
//		config,
//	)
//
// All metrics carry the "gopace" namespace and identify the instrumented
// component through the policy and name labels.
package metrics
