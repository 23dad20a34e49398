package debounce

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/gopace/pkg/metrics"
)

// Example_metricsBasic demonstrates metrics collection for a debounced callback.
func Example_metricsBasic() {
	// Create a separate registry to avoid conflicts
	customRegistry := prometheus.NewRegistry()
	metricsConfig := metrics.Config{
		Enabled:  true,
		Registry: customRegistry,
	}

	executed := 0
	d := NewWithConfigAndMetrics(func(args ...interface{}) {
		executed++
	}, Config{
		Delay: time.Minute,
	}, "search_input", metricsConfig)

	// A typing burst; nothing executes until the caller goes quiet
	d.Invoke("g")
	d.Invoke("go")
	d.Invoke("gopher")

	fmt.Printf("attempts: %d\n", d.CallCount())
	fmt.Printf("executed: %d\n", executed)

	// Flushing forces the pending execution and exports the counters
	d.Flush()
	fmt.Printf("executed after flush: %d\n", executed)

	// Output:
	// attempts: 3
	// executed: 0
	// executed after flush: 1
}

// Example_metricsConfiguration demonstrates enabled and disabled collection.
func Example_metricsConfiguration() {
	disabled := NewWithConfigAndMetrics(func(args ...interface{}) {}, Config{
		Delay: time.Minute,
	}, "disabled_gate", metrics.Config{Enabled: false})
	defer disabled.Cancel()

	customRegistry := prometheus.NewRegistry()
	enabled := NewWithConfigAndMetrics(func(args ...interface{}) {}, Config{
		Delay: time.Minute,
	}, "enabled_gate", metrics.Config{Enabled: true, Registry: customRegistry})
	defer enabled.Cancel()

	disabled.Invoke()
	enabled.Invoke()

	if md, ok := enabled.(*MetricsDebouncer); ok {
		fmt.Printf("Enabled gate has metrics: %v\n", md.MetricsEnabled())
	}
	if md, ok := disabled.(*MetricsDebouncer); ok {
		fmt.Printf("Disabled gate has metrics: %v\n", md.MetricsEnabled())
	} else {
		fmt.Println("Disabled gate has metrics: false")
	}

	// Output:
	// Enabled gate has metrics: true
	// Disabled gate has metrics: false
}
