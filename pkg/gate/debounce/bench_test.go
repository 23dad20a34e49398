package debounce

import (
	"testing"
	"time"

	"github.com/vnykmshr/gopace/internal/testutil"
)

// mustNewSafe creates a new debouncer or panics on error (for benchmarks only)
func mustNewSafe(delay time.Duration) Debouncer {
	d, err := NewSafe(func(args ...interface{}) {}, delay)
	if err != nil {
		panic(err)
	}
	return d
}

// BenchmarkInvoke measures the rearm cost of back-to-back calls
func BenchmarkInvoke(b *testing.B) {
	d := mustNewSafe(time.Hour) // never fires during the run

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Invoke()
	}
	b.StopTimer()
	d.Cancel()
}

// BenchmarkInvokeParallel measures contended Invoke throughput
func BenchmarkInvokeParallel(b *testing.B) {
	d := mustNewSafe(time.Hour)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			d.Invoke()
		}
	})
	b.StopTimer()
	d.Cancel()
}

// BenchmarkInvokeWithArgs measures argument capture overhead
func BenchmarkInvokeWithArgs(b *testing.B) {
	b.ReportAllocs()

	d := mustNewSafe(time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Invoke("query", i)
	}
	b.StopTimer()
	d.Cancel()
}

// BenchmarkImmediateLeading measures leading-edge executions with a mock
// clock advanced past the quiet period on every call
func BenchmarkImmediateLeading(b *testing.B) {
	clock := testutil.NewMockClock(time.Now())
	d := NewWithConfig(func(args ...interface{}) {}, Config{
		Delay:     time.Millisecond,
		Immediate: true,
		Clock:     clock,
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Invoke()
		clock.Advance(time.Millisecond)
	}
}

// BenchmarkPending measures the cost of the state probe
func BenchmarkPending(b *testing.B) {
	d := mustNewSafe(time.Hour)
	d.Invoke()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Pending()
	}
	b.StopTimer()
	d.Cancel()
}
