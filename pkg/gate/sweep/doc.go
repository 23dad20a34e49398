// Package sweep provides cron-scheduled maintenance for debounced and
// throttled callables.
//
// A debouncer defers work until its caller goes quiet, and a throttler can
// hold a trailing execution for a full rate window. Both are open-ended: a
// sufficiently busy caller keeps deferring. A Sweeper closes that gap by
// flushing (or cancelling) pending executions on fixed cron schedules, so
// deferred work still lands at operational boundaries.
//
// # Quick Start
//
//	d := debounce.New(writeCheckpoint, 5*time.Second)
//
//	s := sweep.New()
//	s.Register("checkpoint", "@every 1m", d)
//	s.Start()
//	defer s.Stop()
//
//	// Burst-driven writes are debounced, but a checkpoint is forced out
//	// at least once a minute regardless of activity.
//
// # Cron Format
//
// Schedules use the 6-field format with seconds ("0 30 * * * *" for half
// past every hour) plus the @hourly, @daily and @every descriptors. Use
// ValidateSpec to check an expression before registering it.
//
// # Actions
//
// The default pass action flushes pending work. RegisterWithOptions selects
// CancelPending instead for state that goes stale rather than late, such as
// a pending UI refresh after its data source disappears.
package sweep
