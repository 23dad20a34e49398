/*
Package gate defines the shared surface for call-rate limited invokers.

An invoker wraps a callable behind a timing policy. Callers route every
high-frequency event through Invoke; the policy decides whether the wrapped
callable fires now, fires later, or is suppressed. Two policies implement
this surface:

  - throttle: at most one execution per delay window (pkg/gate/throttle)
  - debounce: one execution after a quiet period (pkg/gate/debounce)

The package also provides the Clock and Timer abstractions both policies
schedule against, and a Stats collector that replaces free-floating counters
with an explicit object callers pass into the invoker they want observed.

Basic usage:

	th := throttle.New(onScroll, 100*time.Millisecond)
	for ev := range scrollEvents {
		th.Invoke(ev)
	}

All invokers are safe for concurrent use. Cancel and Flush may be called at
any time, including from inside the wrapped callable itself.
*/
package gate
