package testutil

import (
	"sync"
	"time"

	"github.com/vnykmshr/gopace/pkg/gate"
)

// MockClock implements gate.Clock for testing with controllable time.
// Timers armed through AfterFunc fire synchronously from Advance, in
// deadline order, on the goroutine calling Advance. This keeps policy
// tests deterministic without real delays.
type MockClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*mockTimer
}

type mockTimer struct {
	clock    *MockClock
	deadline time.Time
	f        func()
	fired    bool
	stopped  bool
}

// Stop implements gate.Timer. It reports whether the timer was still
// pending when stopped.
func (mt *mockTimer) Stop() bool {
	mt.clock.mu.Lock()
	defer mt.clock.mu.Unlock()

	if mt.fired || mt.stopped {
		return false
	}
	mt.stopped = true
	mt.clock.remove(mt)
	return true
}

// NewMockClock creates a new MockClock starting at the given time.
// If zero time is provided, uses current time.
func NewMockClock(start time.Time) *MockClock {
	if start.IsZero() {
		start = time.Now()
	}
	return &MockClock{now: start}
}

// Now returns the current mock time.
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc arms a timer that fires when the mock clock advances past d.
func (m *MockClock) AfterFunc(d time.Duration, f func()) gate.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	mt := &mockTimer{
		clock:    m,
		deadline: m.now.Add(d),
		f:        f,
	}
	if d <= 0 {
		// Immediate timers still fire from the next Advance, matching
		// the asynchrony of time.AfterFunc.
		mt.deadline = m.now
	}
	m.timers = append(m.timers, mt)
	return mt
}

// Advance moves the mock clock forward by the given duration, firing due
// timers in deadline order. Timer callbacks run with the clock unlocked,
// so they may arm new timers or read Now.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)

	for {
		mt := m.nextDue(target)
		if mt == nil {
			break
		}
		if mt.deadline.After(m.now) {
			m.now = mt.deadline
		}
		mt.fired = true
		m.remove(mt)

		m.mu.Unlock()
		mt.f()
		m.mu.Lock()
	}

	m.now = target
	m.mu.Unlock()
}

// Set sets the mock clock to a specific time without firing timers.
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// PendingTimers returns the number of armed, unfired timers.
func (m *MockClock) PendingTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// nextDue returns the earliest timer with deadline <= target, or nil.
// Caller must hold m.mu.
func (m *MockClock) nextDue(target time.Time) *mockTimer {
	var due *mockTimer
	for _, mt := range m.timers {
		if mt.deadline.After(target) {
			continue
		}
		if due == nil || mt.deadline.Before(due.deadline) {
			due = mt
		}
	}
	return due
}

// remove deletes a timer from the armed list. Caller must hold m.mu.
func (m *MockClock) remove(mt *mockTimer) {
	for i, existing := range m.timers {
		if existing == mt {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}

// CallRecorder captures argument lists passed to a wrapped callable so
// tests can assert which invocations actually executed.
type CallRecorder struct {
	mu    sync.Mutex
	calls [][]interface{}
}

// NewCallRecorder creates an empty CallRecorder.
func NewCallRecorder() *CallRecorder {
	return &CallRecorder{}
}

// Fn returns a gate.Func that records each execution's arguments.
func (r *CallRecorder) Fn() gate.Func {
	return func(args ...interface{}) {
		r.mu.Lock()
		defer r.mu.Unlock()
		recorded := make([]interface{}, len(args))
		copy(recorded, args)
		r.calls = append(r.calls, recorded)
	}
}

// Count returns the number of recorded executions.
func (r *CallRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Call returns the argument list of the i-th recorded execution.
func (r *CallRecorder) Call(i int) []interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[i]
}

// Last returns the argument list of the most recent execution, or nil if
// nothing executed.
func (r *CallRecorder) Last() []interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}

// Reset clears recorded executions.
func (r *CallRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
