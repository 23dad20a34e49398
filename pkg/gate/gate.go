package gate

import "time"

// Func is a callable wrapped by an invoker. Arguments are captured at call
// time and replayed when the policy decides to execute. Go closures carry
// their receiver, so there is no separate invocation context.
type Func func(args ...interface{})

// Invoker is the controlled wrapper returned by the policy constructors.
// It owns the invocation state for exactly one wrapped callable; state is
// never shared between invokers.
type Invoker interface {
	// Invoke routes one call attempt through the policy. The wrapped
	// callable may fire synchronously, fire later from a timer, or not
	// fire at all for this attempt.
	Invoke(args ...interface{})

	// Cancel discards any pending deferred execution. It is a no-op when
	// nothing is pending.
	Cancel()

	// Flush forces a pending deferred execution to run now, replaying the
	// captured call. It is a no-op when nothing is pending.
	Flush()

	// CallCount returns the number of Invoke attempts since creation,
	// independent of how many resulted in execution.
	CallCount() int64

	// Pending reports whether a deferred execution is currently armed.
	Pending() bool
}

// Timer is an armed deferred execution. Stop reports whether the timer was
// still pending; a false return means it already fired or was stopped.
type Timer interface {
	Stop() bool
}

// Clock provides the current time and timer scheduling. It can be mocked
// for testing.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock implements Clock using the system time and time.AfterFunc.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules f to run after d on its own goroutine.
func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return systemTimer{time.AfterFunc(d, f)}
}

type systemTimer struct {
	t *time.Timer
}

func (st systemTimer) Stop() bool {
	return st.t.Stop()
}
