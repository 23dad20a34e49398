package debounce

import (
	"time"
)

// Invoke routes one call attempt through the debounce policy.
//
// Every call cancels the previous quiet-period timer and arms a new one, so
// the callable fires only once the caller stays quiet for Delay. The fire
// replays this latest call's arguments. With Immediate set, a call starting
// a fresh burst executes synchronously instead and the armed timer's expiry
// is a no-op that merely closes the burst.
func (d *debouncer) Invoke(args ...interface{}) {
	d.calls.Add(1)
	d.stats.RecordInvocation()

	d.mu.Lock()
	now := d.clock.Now()

	fresh := d.timer == nil
	d.clearTimerLocked()

	if fresh {
		d.burstStart = now
	}
	d.latest = args

	// A burst that keeps resetting the quiet period can defer the fire
	// forever; MaxWait caps that.
	if !d.immediate && d.maxWait > 0 && now.Sub(d.burstStart) >= d.maxWait {
		d.latest = nil
		d.burstStart = time.Time{}
		d.mu.Unlock()

		d.stats.RecordExecution()
		d.fn(args...)
		return
	}

	leading := d.immediate && fresh

	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(gen) })
	d.mu.Unlock()

	if leading {
		d.stats.RecordExecution()
		d.fn(args...)
	}
}

// fire is the quiet-period timer callback.
func (d *debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	args := d.latest
	d.latest = nil
	d.burstStart = time.Time{}
	immediate := d.immediate
	d.mu.Unlock()

	if immediate {
		// Leading edge already fired when the burst started; this expiry
		// only marks the burst as over.
		d.stats.RecordSuppression()
		return
	}

	d.stats.RecordExecution()
	d.fn(args...)
}

// Cancel discards any pending fire. No-op when nothing is pending.
func (d *debouncer) Cancel() {
	d.mu.Lock()
	cancelled := d.timer != nil
	d.clearTimerLocked()
	d.burstStart = time.Time{}
	d.mu.Unlock()

	if cancelled {
		d.stats.RecordCancel()
	}
}

// Flush executes a pending fire immediately with the latest captured
// arguments. For an immediate-mode debouncer the leading edge already
// executed, so Flush only closes the burst. No-op when nothing is pending.
func (d *debouncer) Flush() {
	d.mu.Lock()
	if d.timer == nil {
		d.mu.Unlock()
		return
	}
	args := d.latest
	d.clearTimerLocked()
	d.burstStart = time.Time{}
	immediate := d.immediate
	d.mu.Unlock()

	if immediate {
		return
	}

	d.stats.RecordFlush()
	d.stats.RecordExecution()
	d.fn(args...)
}

// CallCount returns the number of Invoke attempts since creation.
func (d *debouncer) CallCount() int64 {
	return d.calls.Load()
}

// Pending reports whether a fire is currently armed.
func (d *debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// SetDelay changes the quiet-period length. It panics if d is not positive.
func (d *debouncer) SetDelay(delay time.Duration) {
	if delay <= 0 {
		panic("debounce: delay must be positive")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delay = delay
}

// Delay returns the current quiet-period length.
func (d *debouncer) Delay() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.delay
}

// Immediate reports whether leading-edge firing is enabled.
func (d *debouncer) Immediate() bool {
	return d.immediate
}

// clearTimerLocked stops and clears a pending timer, invalidating any
// callback already scheduled. Caller must hold d.mu.
func (d *debouncer) clearTimerLocked() {
	if d.timer == nil {
		return
	}
	d.timer.Stop()
	d.timer = nil
	d.latest = nil
	d.gen++
}
