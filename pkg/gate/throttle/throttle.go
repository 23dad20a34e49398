package throttle

import (
	"time"
)

// Invoke routes one call attempt through the throttle policy.
//
// If the current window has elapsed (or the clock moved backward), the call
// fires immediately. Otherwise, with trailing enabled and no timer pending,
// this call's arguments are captured and a trailing fire is armed for the
// remainder of the window. Calls landing while the timer is pending are
// suppressed; they do not rearm the timer or replace the captured arguments.
func (t *throttler) Invoke(args ...interface{}) {
	t.calls.Add(1)
	t.stats.RecordInvocation()

	t.mu.Lock()
	now := t.clock.Now()

	// With leading disabled, the first call of a fresh window opens the
	// window instead of firing.
	if t.last.IsZero() && !t.leading {
		t.last = now
	}

	var remaining time.Duration
	if t.last.IsZero() {
		remaining = 0
	} else {
		remaining = t.delay - now.Sub(t.last)
	}

	// remaining > delay means the clock went backward; treat it the same
	// as an elapsed window.
	if remaining <= 0 || remaining > t.delay {
		t.clearTimerLocked()
		t.last = now
		t.mu.Unlock()

		t.stats.RecordExecution()
		t.fn(args...)
		return
	}

	if t.timer == nil && t.trailing {
		t.armed = args
		t.gen++
		gen := t.gen
		t.timer = t.clock.AfterFunc(remaining, func() { t.fire(gen) })
		t.mu.Unlock()
		return
	}

	t.mu.Unlock()
	t.stats.RecordSuppression()
}

// fire is the trailing timer callback.
func (t *throttler) fire(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || t.timer == nil {
		// Cancelled, flushed, or superseded after this callback was
		// already scheduled to run.
		t.mu.Unlock()
		return
	}
	t.timer = nil
	args := t.armed
	t.armed = nil

	if t.leading {
		t.last = t.clock.Now()
	} else {
		// Reset to "never" so the next call starts a fresh window.
		t.last = time.Time{}
	}
	t.mu.Unlock()

	t.stats.RecordExecution()
	t.fn(args...)
}

// Cancel discards any pending trailing fire and resets the window, so the
// next call can fire on the leading edge again. No-op when nothing is
// pending beyond the window reset.
func (t *throttler) Cancel() {
	t.mu.Lock()
	cancelled := t.timer != nil
	t.clearTimerLocked()
	t.last = time.Time{}
	t.mu.Unlock()

	if cancelled {
		t.stats.RecordCancel()
	}
}

// Flush executes a pending trailing fire immediately, replaying the captured
// arguments, and closes the window at the flush time. No-op when nothing is
// pending.
func (t *throttler) Flush() {
	t.mu.Lock()
	if t.timer == nil {
		t.mu.Unlock()
		return
	}
	args := t.armed
	t.clearTimerLocked()
	t.last = t.clock.Now()
	t.mu.Unlock()

	t.stats.RecordFlush()
	t.stats.RecordExecution()
	t.fn(args...)
}

// CallCount returns the number of Invoke attempts since creation.
func (t *throttler) CallCount() int64 {
	return t.calls.Load()
}

// Pending reports whether a trailing fire is currently armed.
func (t *throttler) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

// SetDelay changes the window length. It panics if d is not positive.
func (t *throttler) SetDelay(d time.Duration) {
	if d <= 0 {
		panic("throttle: delay must be positive")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.delay = d
}

// Delay returns the current window length.
func (t *throttler) Delay() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.delay
}

// Leading reports whether leading-edge firing is enabled.
func (t *throttler) Leading() bool {
	return t.leading
}

// Trailing reports whether trailing-edge firing is enabled.
func (t *throttler) Trailing() bool {
	return t.trailing
}

// clearTimerLocked stops and clears a pending timer, invalidating any
// callback already scheduled. Caller must hold t.mu.
func (t *throttler) clearTimerLocked() {
	if t.timer == nil {
		return
	}
	t.timer.Stop()
	t.timer = nil
	t.armed = nil
	t.gen++
}
