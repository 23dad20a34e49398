package throttle

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/vnykmshr/gopace/pkg/common/errors"
	"github.com/vnykmshr/gopace/pkg/gate"
)

// Throttler wraps a callable so it executes at most once per delay window.
// It supports independent leading-edge and trailing-edge firing.
type Throttler interface {
	gate.Invoker

	// SetDelay changes the window length. It applies from the next window
	// boundary computation; a pending trailing timer keeps its deadline.
	SetDelay(d time.Duration)

	// Delay returns the current window length.
	Delay() time.Duration

	// Leading reports whether the first call of a window fires immediately.
	Leading() bool

	// Trailing reports whether calls inside a window arm a trailing fire.
	Trailing() bool
}

// Config holds configuration options for creating a new Throttler.
type Config struct {
	// Delay is the window length. Must be positive.
	Delay time.Duration

	// Leading fires the first call of a window immediately.
	Leading bool

	// Trailing arms one deferred fire for calls landing inside a window.
	// The deferred fire replays the call that armed it.
	Trailing bool

	// Clock provides time and timer scheduling. If nil, gate.SystemClock
	// is used.
	Clock gate.Clock

	// Stats, if non-nil, receives invocation counters for this throttler.
	Stats *gate.Stats
}

// DefaultConfig returns a Config with the conventional edge behavior:
// leading and trailing both enabled.
func DefaultConfig(delay time.Duration) Config {
	return Config{
		Delay:    delay,
		Leading:  true,
		Trailing: true,
		Clock:    gate.SystemClock{},
	}
}

// throttler implements the Throttler interface.
type throttler struct {
	fn       gate.Func
	leading  bool
	trailing bool
	clock    gate.Clock
	stats    *gate.Stats

	mu    sync.Mutex
	delay time.Duration
	last  time.Time  // zero means "never executed"
	timer gate.Timer // at most one pending trailing fire
	armed []interface{}
	gen   uint64 // invalidates stale timer callbacks

	calls atomic.Int64
}

// New creates a Throttler with leading and trailing edges enabled.
// It panics on invalid parameters; use NewSafe in production code.
func New(fn gate.Func, delay time.Duration) Throttler {
	t, err := NewWithConfigSafe(fn, DefaultConfig(delay))
	if err != nil {
		panic(err)
	}
	return t
}

// NewWithConfig creates a Throttler with custom configuration.
// It panics on invalid parameters; use NewWithConfigSafe in production code.
func NewWithConfig(fn gate.Func, config Config) Throttler {
	t, err := NewWithConfigSafe(fn, config)
	if err != nil {
		panic(err)
	}
	return t
}

// NewSafe creates a Throttler with leading and trailing edges enabled,
// returning an error instead of panicking on invalid parameters.
func NewSafe(fn gate.Func, delay time.Duration) (Throttler, error) {
	return NewWithConfigSafe(fn, DefaultConfig(delay))
}

// NewWithConfigSafe creates a Throttler with custom configuration, returning
// an error instead of panicking on invalid parameters.
func NewWithConfigSafe(fn gate.Func, config Config) (Throttler, error) {
	if fn == nil {
		return nil, errors.NewValidationError("throttle", "fn", nil, "cannot be nil").
			WithHint("provide the callable to wrap")
	}
	if config.Delay <= 0 {
		return nil, errors.NewValidationError("throttle", "delay", config.Delay, "must be positive").
			WithHint("a zero window would fire on every call; call fn directly instead")
	}
	if config.Clock == nil {
		config.Clock = gate.SystemClock{}
	}

	return &throttler{
		fn:       fn,
		delay:    config.Delay,
		leading:  config.Leading,
		trailing: config.Trailing,
		clock:    config.Clock,
		stats:    config.Stats,
	}, nil
}
