/*
Package gopace provides call-rate limiting for high-frequency callbacks with
debounce and throttle policies.

Policies (pkg/gate):
  - debounce: Collapse call bursts, executing once the caller goes quiet
  - throttle: Bound execution rate to at most once per window
  - sweep: Cron-scheduled flushing of pending executions
  - distributed: Cross-instance burst coalescing with Redis

Supporting packages:
  - pkg/gate: Shared Invoker contract, Clock abstraction, Stats collection
  - pkg/metrics: Prometheus metrics for gate activity

Example usage:

	import (
		"github.com/vnykmshr/gopace/pkg/gate/debounce"
		"github.com/vnykmshr/gopace/pkg/gate/throttle"
	)

	save := debounce.New(persistDraft, 500*time.Millisecond)
	scroll := throttle.New(renderViewport, 100*time.Millisecond)

	// Calls are attempts, not executions; the policy decides what runs
	save.Invoke(draftID)
	scroll.Invoke(offset)

Every wrapper accepts calls with Invoke, reports armed work with Pending,
counts attempts with CallCount, and supports Cancel and Flush for pending
executions. Wrappers are safe for concurrent use and keep their state
process-local; see pkg/gate/distributed when the same event fans out to
multiple instances.
*/
package gopace
