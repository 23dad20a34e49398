package debounce

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/vnykmshr/gopace/pkg/common/errors"
	"github.com/vnykmshr/gopace/pkg/gate"
)

// Debouncer wraps a callable so it executes only after a quiet period with
// no further calls, collapsing each burst into a single execution.
type Debouncer interface {
	gate.Invoker

	// SetDelay changes the quiet-period length. It applies from the next
	// call; a pending timer keeps its deadline.
	SetDelay(d time.Duration)

	// Delay returns the current quiet-period length.
	Delay() time.Duration

	// Immediate reports whether bursts fire on their leading edge.
	Immediate() bool
}

// Config holds configuration options for creating a new Debouncer.
type Config struct {
	// Delay is the quiet-period length. Must be positive.
	Delay time.Duration

	// Immediate fires the first call of a burst synchronously and
	// suppresses the trailing fire.
	Immediate bool

	// MaxWait bounds how long a continuously-resetting burst can defer
	// execution. Once a burst has run for MaxWait, the debouncer fires
	// with the latest arguments. Zero disables the bound. Ignored when
	// Immediate is set (the leading fire already happened).
	MaxWait time.Duration

	// Clock provides time and timer scheduling. If nil, gate.SystemClock
	// is used.
	Clock gate.Clock

	// Stats, if non-nil, receives invocation counters for this debouncer.
	Stats *gate.Stats
}

// debouncer implements the Debouncer interface.
type debouncer struct {
	fn        gate.Func
	immediate bool
	maxWait   time.Duration
	clock     gate.Clock
	stats     *gate.Stats

	mu         sync.Mutex
	delay      time.Duration
	timer      gate.Timer // at most one pending quiet-period timer
	latest     []interface{}
	burstStart time.Time
	gen        uint64 // invalidates stale timer callbacks

	calls atomic.Int64
}

// New creates a trailing-edge Debouncer. It panics on invalid parameters;
// use NewSafe in production code.
func New(fn gate.Func, delay time.Duration) Debouncer {
	d, err := NewWithConfigSafe(fn, Config{Delay: delay})
	if err != nil {
		panic(err)
	}
	return d
}

// NewWithConfig creates a Debouncer with custom configuration.
// It panics on invalid parameters; use NewWithConfigSafe in production code.
func NewWithConfig(fn gate.Func, config Config) Debouncer {
	d, err := NewWithConfigSafe(fn, config)
	if err != nil {
		panic(err)
	}
	return d
}

// NewSafe creates a trailing-edge Debouncer, returning an error instead of
// panicking on invalid parameters.
func NewSafe(fn gate.Func, delay time.Duration) (Debouncer, error) {
	return NewWithConfigSafe(fn, Config{Delay: delay})
}

// NewWithConfigSafe creates a Debouncer with custom configuration, returning
// an error instead of panicking on invalid parameters.
func NewWithConfigSafe(fn gate.Func, config Config) (Debouncer, error) {
	if fn == nil {
		return nil, errors.NewValidationError("debounce", "fn", nil, "cannot be nil").
			WithHint("provide the callable to wrap")
	}
	if config.Delay <= 0 {
		return nil, errors.NewValidationError("debounce", "delay", config.Delay, "must be positive").
			WithHint("a zero quiet period would fire on every call; call fn directly instead")
	}
	if config.MaxWait < 0 {
		return nil, errors.NewValidationError("debounce", "maxWait", config.MaxWait, "cannot be negative").
			WithHint("use 0 to disable the wait bound")
	}
	if config.MaxWait > 0 && config.MaxWait < config.Delay {
		return nil, errors.NewValidationError("debounce", "maxWait", config.MaxWait, "cannot be shorter than delay").
			WithHint("a bound below the quiet period would override it on every burst")
	}
	if config.Clock == nil {
		config.Clock = gate.SystemClock{}
	}

	return &debouncer{
		fn:        fn,
		delay:     config.Delay,
		immediate: config.Immediate,
		maxWait:   config.MaxWait,
		clock:     config.Clock,
		stats:     config.Stats,
	}, nil
}
