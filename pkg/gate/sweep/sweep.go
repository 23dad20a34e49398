package sweep

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	gperrors "github.com/vnykmshr/gopace/pkg/common/errors"
	"github.com/vnykmshr/gopace/pkg/common/validation"
	"github.com/vnykmshr/gopace/pkg/gate"
	"github.com/vnykmshr/gopace/pkg/metrics"
)

// Action selects what a sweep pass does to a registered invoker.
type Action int

const (
	// FlushPending forces any pending execution to run now.
	FlushPending Action = iota

	// CancelPending discards any pending execution.
	CancelPending
)

// Sweeper periodically applies maintenance actions to registered invokers on
// cron schedules. The usual use is flushing debounced work at hard deadlines
// (end of a batch window, top of the hour) so a busy burst cannot defer it
// past an operational boundary.
type Sweeper interface {
	// Register schedules a flush of the invoker on the given cron spec.
	// Supports the standard 6-field format with seconds plus descriptors:
	//   "0 * * * * *"   - Every minute
	//   "0 0 */2 * * *" - Every 2 hours
	//   "@hourly"       - Every hour
	//   "@every 30s"    - Every 30 seconds
	Register(id string, spec string, inv gate.Invoker) error

	// RegisterWithOptions schedules a sweep with explicit options.
	RegisterWithOptions(id string, spec string, inv gate.Invoker, options Options) error

	// Deregister removes a registered sweep. It reports whether the id was
	// registered.
	Deregister(id string) bool

	// Next returns the next sweep time for a registered id.
	Next(id string) (time.Time, error)

	// List returns all registered sweeps.
	List() []Entry

	// Start begins running sweeps in their own goroutine.
	Start()

	// Stop stops scheduling new sweep passes. The returned context is done
	// once in-flight passes complete.
	Stop() context.Context
}

// Options configures a registered sweep.
type Options struct {
	// Action applied on each pass (defaults to FlushPending)
	Action Action

	// OnSweep is called after a pass that found pending work
	OnSweep func(id string)
}

// Entry describes a registered sweep.
type Entry struct {
	ID     string
	Spec   string
	Action Action
	Next   time.Time
}

// Config holds sweeper configuration.
type Config struct {
	// Name labels this sweeper in exported metrics
	Name string

	// Location is the timezone for cron evaluation (defaults to time.Local)
	Location *time.Location

	// Metrics enables Prometheus collection of sweep activity
	Metrics metrics.Config
}

// New creates a sweeper with default configuration.
func New() Sweeper {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a sweeper with custom configuration.
func NewWithConfig(config Config) Sweeper {
	if config.Name == "" {
		config.Name = "default"
	}
	if config.Location == nil {
		config.Location = time.Local
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

	var registry *metrics.Registry
	if config.Metrics.Enabled {
		registry = metrics.DefaultRegistry
		if config.Metrics.Registry != nil {
			registry = metrics.NewRegistry(config.Metrics.Registry)
		}
	}

	return &sweeper{
		config:   config,
		runner:   cron.New(cron.WithParser(parser), cron.WithLocation(config.Location)),
		entries:  make(map[string]*entry),
		registry: registry,
	}
}

// ValidateSpec validates a cron spec without registering it.
func ValidateSpec(spec string) error {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(spec); err != nil {
		return gperrors.NewValidationError("sweep", "spec", spec, err.Error()).
			WithHint("use a 6-field cron expression with seconds, or a descriptor like @hourly or @every 30s")
	}
	return nil
}

type entry struct {
	id      string
	spec    string
	inv     gate.Invoker
	options Options
	cronID  cron.EntryID
}

type sweeper struct {
	config   Config
	runner   *cron.Cron
	registry *metrics.Registry // nil when collection is disabled

	mu      sync.Mutex
	entries map[string]*entry
}

func (s *sweeper) Register(id string, spec string, inv gate.Invoker) error {
	return s.RegisterWithOptions(id, spec, inv, Options{})
}

func (s *sweeper) RegisterWithOptions(id string, spec string, inv gate.Invoker, options Options) error {
	if err := validation.ValidateNotEmpty("sweep", "id", id); err != nil {
		return err
	}
	if inv == nil {
		return validation.ValidateNotNil("sweep", "invoker", nil)
	}
	if err := ValidateSpec(spec); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[id]; exists {
		return gperrors.NewOperationError("sweep", "register", gperrors.ErrDuplicateID).
			WithContext("id " + id)
	}

	e := &entry{id: id, spec: spec, inv: inv, options: options}
	cronID, err := s.runner.AddFunc(spec, func() { s.runEntry(e) })
	if err != nil {
		// Spec already validated; AddFunc only fails on parser disagreement
		return gperrors.NewValidationError("sweep", "spec", spec, err.Error())
	}
	e.cronID = cronID
	s.entries[id] = e

	return nil
}

func (s *sweeper) Deregister(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entries[id]
	if !exists {
		return false
	}
	s.runner.Remove(e.cronID)
	delete(s.entries, id)
	return true
}

func (s *sweeper) Next(id string) (time.Time, error) {
	s.mu.Lock()
	e, exists := s.entries[id]
	s.mu.Unlock()

	if !exists {
		return time.Time{}, gperrors.NewOperationError("sweep", "next", gperrors.ErrInvalidConfiguration).
			WithContext("id " + id)
	}

	return s.runner.Entry(e.cronID).Next, nil
}

func (s *sweeper) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, Entry{
			ID:     e.id,
			Spec:   e.spec,
			Action: e.options.Action,
			Next:   s.runner.Entry(e.cronID).Next,
		})
	}
	return out
}

func (s *sweeper) Start() {
	s.runner.Start()
}

func (s *sweeper) Stop() context.Context {
	return s.runner.Stop()
}

// runEntry performs one sweep pass over a registered invoker.
func (s *sweeper) runEntry(e *entry) {
	if s.registry != nil {
		s.registry.SweepRuns.WithLabelValues(s.config.Name).Inc()
	}

	if !e.inv.Pending() {
		return
	}

	switch e.options.Action {
	case CancelPending:
		e.inv.Cancel()
	default:
		e.inv.Flush()
		if s.registry != nil {
			s.registry.SweepFlushed.WithLabelValues(s.config.Name).Inc()
		}
	}
	if e.options.OnSweep != nil {
		e.options.OnSweep(e.id)
	}
}
