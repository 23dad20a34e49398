package gate

import "sync/atomic"

// Stats collects invocation counters for one or more invokers. It replaces
// module-scope counters with an explicit collector passed by reference via
// each policy's Config. A nil *Stats is valid and records nothing.
type Stats struct {
	invocations atomic.Int64
	executions  atomic.Int64
	suppressed  atomic.Int64
	cancels     atomic.Int64
	flushes     atomic.Int64
}

// Snapshot is a point-in-time copy of collected counters.
type Snapshot struct {
	// Invocations counts Invoke attempts.
	Invocations int64

	// Executions counts actual underlying-callable executions.
	Executions int64

	// Suppressed counts Invoke attempts that neither fired nor armed a
	// timer, plus trailing fires intentionally skipped by a policy.
	Suppressed int64

	// Cancels counts Cancel calls that discarded a pending execution.
	Cancels int64

	// Flushes counts Flush calls that forced a pending execution.
	Flushes int64
}

// RecordInvocation notes one Invoke attempt.
func (s *Stats) RecordInvocation() {
	if s == nil {
		return
	}
	s.invocations.Add(1)
}

// RecordExecution notes one execution of the wrapped callable.
func (s *Stats) RecordExecution() {
	if s == nil {
		return
	}
	s.executions.Add(1)
}

// RecordSuppression notes one call attempt or trailing fire that was dropped.
func (s *Stats) RecordSuppression() {
	if s == nil {
		return
	}
	s.suppressed.Add(1)
}

// RecordCancel notes one discarded pending execution.
func (s *Stats) RecordCancel() {
	if s == nil {
		return
	}
	s.cancels.Add(1)
}

// RecordFlush notes one forced pending execution.
func (s *Stats) RecordFlush() {
	if s == nil {
		return
	}
	s.flushes.Add(1)
}

// Snapshot returns a consistent-enough copy of the counters. Counters are
// read individually; callers needing exact cross-counter consistency should
// quiesce the invokers first.
func (s *Stats) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	return Snapshot{
		Invocations: s.invocations.Load(),
		Executions:  s.executions.Load(),
		Suppressed:  s.suppressed.Load(),
		Cancels:     s.cancels.Load(),
		Flushes:     s.flushes.Load(),
	}
}
