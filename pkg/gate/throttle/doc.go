/*
Package throttle bounds how often a wrapped callable can execute.

A throttler guarantees at most one execution per delay window regardless of
how often Invoke is called. The first call of a window fires on the leading
edge (unless disabled); calls landing inside an open window arm a single
trailing timer that replays the call which armed it once the window closes.

Basic usage:

	th := throttle.New(renderFrame, 100*time.Millisecond)
	for ev := range scrollEvents {
		th.Invoke(ev)
	}

Edge behavior is configured independently:

	// Trailing only: the first burst call waits a full window
	th := throttle.NewWithConfig(fn, throttle.Config{
		Delay:    100 * time.Millisecond,
		Trailing: true,
	})

	// Leading only: bursts never produce a trailing fire
	th := throttle.NewWithConfig(fn, throttle.Config{
		Delay:   100 * time.Millisecond,
		Leading: true,
	})

The trailing fire replays the arguments of the call that armed the timer.
Calls arriving while the timer is pending are counted but otherwise dropped;
they neither rearm the timer nor update the captured arguments.

Flush executes a pending trailing fire immediately with its captured
arguments. Cancel discards it and resets the window so the next call can
fire on the leading edge again.

A throttler is safe for concurrent use. The wrapped callable always runs
outside the throttler's lock, so it may call Cancel or Flush on its own
invoker without deadlocking.
*/
package throttle
