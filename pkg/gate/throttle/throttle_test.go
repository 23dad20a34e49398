package throttle

import (
	"testing"
	"time"

	"github.com/vnykmshr/gopace/internal/testutil"
	"github.com/vnykmshr/gopace/pkg/gate"
)

func TestNewSafe(t *testing.T) {
	noop := func(args ...interface{}) {}

	tests := []struct {
		name      string
		fn        gate.Func
		delay     time.Duration
		wantError bool
	}{
		{"valid parameters", noop, 100 * time.Millisecond, false},
		{"one nanosecond delay", noop, time.Nanosecond, false},
		{"nil fn", nil, 100 * time.Millisecond, true},
		{"zero delay", noop, 0, true},
		{"negative delay", noop, -time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th, err := NewSafe(tt.fn, tt.delay)
			if tt.wantError {
				if err == nil {
					t.Error("expected error for invalid parameters")
				}
				if th != nil {
					t.Error("expected nil throttler on error")
				}
			} else {
				testutil.AssertNoError(t, err)
				testutil.AssertEqual(t, th.Delay(), tt.delay)
				testutil.AssertEqual(t, th.Leading(), true)
				testutil.AssertEqual(t, th.Trailing(), true)
			}
		})
	}
}

func TestNewPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("New with zero delay should panic")
		}
	}()
	New(func(args ...interface{}) {}, 0)
}

func TestLeadingFire(t *testing.T) {
	clock := testutil.NewMockClock(time.Now())
	rec := testutil.NewCallRecorder()

	th := NewWithConfig(rec.Fn(), Config{
		Delay:    100 * time.Millisecond,
		Leading:  true,
		Trailing: true,
		Clock:    clock,
	})

	th.Invoke("first")

	testutil.AssertEqual(t, rec.Count(), 1)
	testutil.AssertEqual(t, rec.Call(0)[0].(string), "first")
	testutil.AssertEqual(t, th.Pending(), false)
}

// Calls at t=0,30,60,90,120ms against a 100ms window: the t=0 call fires on
// the leading edge, the t=30 call arms the trailing fire and is the one
// replayed when the window closes, and the t=60/90 calls are dropped.
func TestWindowCollapse(t *testing.T) {
	clock := testutil.NewMockClock(time.Now())
	rec := testutil.NewCallRecorder()

	th := NewWithConfig(rec.Fn(), Config{
		Delay:    100 * time.Millisecond,
		Leading:  true,
		Trailing: true,
		Clock:    clock,
	})

	th.Invoke("t0")
	for _, step := range []string{"t30", "t60", "t90", "t120"} {
		clock.Advance(30 * time.Millisecond)
		th.Invoke(step)
	}

	// Leading fire at t=0, trailing fire at t=100 replaying the call
	// that armed the timer (t=30), and a fresh trailing arm from t=120.
	testutil.AssertEqual(t, rec.Count(), 2)
	testutil.AssertEqual(t, rec.Call(0)[0].(string), "t0")
	testutil.AssertEqual(t, rec.Call(1)[0].(string), "t30")
	testutil.AssertEqual(t, th.Pending(), true)
	testutil.AssertEqual(t, th.CallCount(), int64(5))
}

func TestRateBound(t *testing.T) {
	clock := testutil.NewMockClock(time.Now())
	rec := testutil.NewCallRecorder()

	const delay = 100 * time.Millisecond
	th := NewWithConfig(rec.Fn(), Config{
		Delay:    delay,
		Leading:  true,
		Trailing: true,
		Clock:    clock,
	})

	// 5ms apart for 400ms total
	const total = 400 * time.Millisecond
	const step = 5 * time.Millisecond
	th.Invoke(0)
	for elapsed := step; elapsed <= total; elapsed += step {
		clock.Advance(step)
		th.Invoke(elapsed)
	}

	// At most ceil(total/delay)+1 executions
	bound := int(total/delay) + 1
	if total%delay != 0 {
		bound++
	}
	if rec.Count() > bound {
		t.Errorf("executions = %d, want <= %d", rec.Count(), bound)
	}
}

func TestTrailingDisabled(t *testing.T) {
	clock := testutil.NewMockClock(time.Now())
	rec := testutil.NewCallRecorder()

	th := NewWithConfig(rec.Fn(), Config{
		Delay:   100 * time.Millisecond,
		Leading: true,
		Clock:   clock,
	})

	th.Invoke("a")
	clock.Advance(30 * time.Millisecond)
	th.Invoke("b")
	clock.Advance(200 * time.Millisecond)

	// Only the leading fire; "b" was inside the window with no trailing
	testutil.AssertEqual(t, rec.Count(), 1)
	testutil.AssertEqual(t, th.Pending(), false)

	// A call after the window fires immediately again
	th.Invoke("c")
	testutil.AssertEqual(t, rec.Count(), 2)
	testutil.AssertEqual(t, rec.Call(1)[0].(string), "c")
}

func TestLeadingDisabled(t *testing.T) {
	clock := testutil.NewMockClock(time.Now())
	rec := testutil.NewCallRecorder()

	th := NewWithConfig(rec.Fn(), Config{
		Delay:    100 * time.Millisecond,
		Trailing: true,
		Clock:    clock,
	})

	// First call opens the window instead of firing
	th.Invoke("a")
	testutil.AssertEqual(t, rec.Count(), 0)
	testutil.AssertEqual(t, th.Pending(), true)

	clock.Advance(100 * time.Millisecond)
	testutil.AssertEqual(t, rec.Count(), 1)
	testutil.AssertEqual(t, rec.Call(0)[0].(string), "a")

	// After the trailing fire the window resets, so the next burst
	// behaves like the first one
	clock.Advance(time.Second)
	th.Invoke("b")
	testutil.AssertEqual(t, rec.Count(), 1)
	clock.Advance(100 * time.Millisecond)
	testutil.AssertEqual(t, rec.Count(), 2)
	testutil.AssertEqual(t, rec.Call(1)[0].(string), "b")
}

func TestCancelSuppresses(t *testing.T) {
	clock := testutil.NewMockClock(time.Now())
	rec := testutil.NewCallRecorder()

	th := NewWithConfig(rec.Fn(), Config{
		Delay:    100 * time.Millisecond,
		Leading:  true,
		Trailing: true,
		Clock:    clock,
	})

	th.Invoke("lead")
	clock.Advance(30 * time.Millisecond)
	th.Invoke("trail")
	testutil.AssertEqual(t, th.Pending(), true)

	th.Cancel()
	testutil.AssertEqual(t, th.Pending(), false)

	clock.Advance(time.Second)
	testutil.AssertEqual(t, rec.Count(), 1)

	// Cancel also resets the window; the next call fires leading again
	th.Invoke("fresh")
	testutil.AssertEqual(t, rec.Count(), 2)
	testutil.AssertEqual(t, rec.Call(1)[0].(string), "fresh")
}

func TestCancelWithoutPending(t *testing.T) {
	clock := testutil.NewMockClock(time.Now())
	rec := testutil.NewCallRecorder()

	th := NewWithConfig(rec.Fn(), Config{
		Delay:    100 * time.Millisecond,
		Leading:  true,
		Trailing: true,
		Clock:    clock,
	})

	// No-op, no panic
	th.Cancel()
	testutil.AssertEqual(t, rec.Count(), 0)
}

func TestFlushForces(t *testing.T) {
	clock := testutil.NewMockClock(time.Now())
	rec := testutil.NewCallRecorder()

	th := NewWithConfig(rec.Fn(), Config{
		Delay:    100 * time.Millisecond,
		Leading:  true,
		Trailing: true,
		Clock:    clock,
	})

	th.Invoke("lead")
	clock.Advance(30 * time.Millisecond)
	th.Invoke("trail")

	th.Flush()

	// Flush replays the captured trailing call synchronously
	testutil.AssertEqual(t, rec.Count(), 2)
	testutil.AssertEqual(t, rec.Call(1)[0].(string), "trail")
	testutil.AssertEqual(t, th.Pending(), false)

	// The armed timer must not fire a second time
	clock.Advance(time.Second)
	testutil.AssertEqual(t, rec.Count(), 2)

	// Flush with nothing pending is a no-op
	th.Flush()
	testutil.AssertEqual(t, rec.Count(), 2)
}

func TestFlushClosesWindow(t *testing.T) {
	clock := testutil.NewMockClock(time.Now())
	rec := testutil.NewCallRecorder()

	th := NewWithConfig(rec.Fn(), Config{
		Delay:    100 * time.Millisecond,
		Leading:  true,
		Trailing: true,
		Clock:    clock,
	})

	th.Invoke("lead")
	clock.Advance(30 * time.Millisecond)
	th.Invoke("trail")
	th.Flush()

	// The flush opened a new window at t=30; a call inside it arms
	// instead of firing
	clock.Advance(30 * time.Millisecond)
	th.Invoke("after")
	testutil.AssertEqual(t, rec.Count(), 2)
	testutil.AssertEqual(t, th.Pending(), true)
}

func TestCallCount(t *testing.T) {
	clock := testutil.NewMockClock(time.Now())
	rec := testutil.NewCallRecorder()

	th := NewWithConfig(rec.Fn(), Config{
		Delay:    100 * time.Millisecond,
		Leading:  true,
		Trailing: true,
		Clock:    clock,
	})

	const calls = 17
	for i := 0; i < calls; i++ {
		th.Invoke(i)
		clock.Advance(time.Millisecond)
	}

	// Attempts are counted independently of executions
	testutil.AssertEqual(t, th.CallCount(), int64(calls))
	if rec.Count() >= calls {
		t.Errorf("executions = %d, want fewer than %d", rec.Count(), calls)
	}
}

func TestClockBackward(t *testing.T) {
	start := time.Now()
	clock := testutil.NewMockClock(start)
	rec := testutil.NewCallRecorder()

	th := NewWithConfig(rec.Fn(), Config{
		Delay:    100 * time.Millisecond,
		Leading:  true,
		Trailing: true,
		Clock:    clock,
	})

	th.Invoke("a")
	testutil.AssertEqual(t, rec.Count(), 1)

	// Clock jumps backward; remaining exceeds the window and the call
	// fires immediately
	clock.Set(start.Add(-time.Hour))
	th.Invoke("b")
	testutil.AssertEqual(t, rec.Count(), 2)
	testutil.AssertEqual(t, rec.Call(1)[0].(string), "b")
}

func TestSetDelay(t *testing.T) {
	clock := testutil.NewMockClock(time.Now())
	rec := testutil.NewCallRecorder()

	th := NewWithConfig(rec.Fn(), Config{
		Delay:    100 * time.Millisecond,
		Leading:  true,
		Trailing: true,
		Clock:    clock,
	})

	th.SetDelay(50 * time.Millisecond)
	testutil.AssertEqual(t, th.Delay(), 50*time.Millisecond)

	defer func() {
		if r := recover(); r == nil {
			t.Error("SetDelay(0) should panic")
		}
	}()
	th.SetDelay(0)
}

func TestReentrantCancel(t *testing.T) {
	clock := testutil.NewMockClock(time.Now())

	var th Throttler
	fired := 0
	th = NewWithConfig(func(args ...interface{}) {
		fired++
		// Must not deadlock: the callable runs outside the lock
		th.Cancel()
	}, Config{
		Delay:    100 * time.Millisecond,
		Leading:  true,
		Trailing: true,
		Clock:    clock,
	})

	th.Invoke("a")
	testutil.AssertEqual(t, fired, 1)

	clock.Advance(30 * time.Millisecond)
	th.Invoke("b")
	clock.Advance(100 * time.Millisecond)
	testutil.AssertEqual(t, fired, 2)
}

func TestStatsCollection(t *testing.T) {
	clock := testutil.NewMockClock(time.Now())
	stats := &gate.Stats{}
	rec := testutil.NewCallRecorder()

	th := NewWithConfig(rec.Fn(), Config{
		Delay:    100 * time.Millisecond,
		Leading:  true,
		Trailing: true,
		Clock:    clock,
		Stats:    stats,
	})

	th.Invoke("lead") // executes
	clock.Advance(10 * time.Millisecond)
	th.Invoke("arm") // arms trailing
	clock.Advance(10 * time.Millisecond)
	th.Invoke("drop") // suppressed
	th.Flush()        // forces the armed call
	clock.Advance(10 * time.Millisecond)
	th.Invoke("arm2") // arms again
	th.Cancel()       // discards

	snap := stats.Snapshot()
	testutil.AssertEqual(t, snap.Invocations, int64(4))
	testutil.AssertEqual(t, snap.Executions, int64(2))
	testutil.AssertEqual(t, snap.Suppressed, int64(1))
	testutil.AssertEqual(t, snap.Flushes, int64(1))
	testutil.AssertEqual(t, snap.Cancels, int64(1))
}

func TestConcurrentAccess(t *testing.T) {
	th := New(func(args ...interface{}) {}, time.Millisecond)

	done := make(chan bool)
	const numGoroutines = 10
	const callsPerGoroutine = 100

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer func() { done <- true }()
			for j := 0; j < callsPerGoroutine; j++ {
				th.Invoke(j)
				th.Pending()
				th.Delay()
			}
		}()
	}

	for i := 0; i < numGoroutines; i++ {
		<-done
	}

	testutil.AssertEqual(t, th.CallCount(), int64(numGoroutines*callsPerGoroutine))
	th.Cancel()
}
