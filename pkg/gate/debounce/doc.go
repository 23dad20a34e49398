/*
Package debounce defers a wrapped callable until its caller goes quiet.

A debouncer collapses a burst of calls into a single execution. Every call
resets the quiet-period clock; the callable fires only after Delay elapses
with no further calls, replaying the most recent call's arguments.

Basic usage:

	d := debounce.New(saveDraft, 300*time.Millisecond)
	for ev := range keystrokes {
		d.Invoke(ev)
	}

With Immediate enabled, only the leading edge of a burst fires: the first
call executes synchronously and subsequent calls merely extend the quiet
period, whose eventual expiry is a no-op.

MaxWait bounds how long a never-quiet caller can starve the callable: once
a burst has been running for MaxWait, the debouncer fires with the latest
arguments even though calls keep arriving. Zero disables the bound. MaxWait
only applies to trailing (non-immediate) debouncers.

Flush executes the pending fire immediately with the latest captured
arguments. Cancel discards it. Both are no-ops when nothing is pending.

A debouncer is safe for concurrent use. The wrapped callable always runs
outside the debouncer's lock, so it may call Cancel or Flush on its own
invoker without deadlocking.
*/
package debounce
