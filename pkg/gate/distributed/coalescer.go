package distributed

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vnykmshr/gopace/pkg/gate"
	"github.com/vnykmshr/gopace/pkg/metrics"
)

// Coalescer collapses bursts of the same named event across multiple
// application instances using Redis as the coordination backend. Exactly one
// instance owns each burst and executes the callable; occurrences seen by
// other instances extend the burst's quiet period instead.
type Coalescer interface {
	// Invoke routes one occurrence of the named event through the
	// cross-instance policy. The callable runs only when this occurrence
	// starts a fresh burst.
	Invoke(ctx context.Context, event string, args ...interface{}) error

	// Owned reports whether this instance currently owns the named burst.
	Owned(ctx context.Context, event string) (bool, error)

	// Release ends the named burst early if this instance owns it, so the
	// next occurrence leads a fresh burst.
	Release(ctx context.Context, event string) error

	// Stats returns coordination statistics aggregated across instances.
	Stats(ctx context.Context) (*Stats, error)

	// Reset clears all coordination state (useful for testing).
	Reset(ctx context.Context) error

	// Close deregisters this instance and releases resources.
	Close() error
}

// Stats holds coalescer statistics aggregated in Redis.
type Stats struct {
	Claims          int64
	Extended        int64
	Released        int64
	ActiveInstances []string
}

// Config holds configuration for the Redis-backed coalescer.
type Config struct {
	// Redis client for coordination
	Redis redis.UniversalClient

	// Key is the Redis key prefix for this coalescer
	Key string

	// Quiet is the burst quiet period; a burst ends once no instance has
	// seen the event for this long
	Quiet time.Duration

	// Fn is the callable executed by the instance that leads a burst
	Fn gate.Func

	// InstanceID uniquely identifies this application instance
	InstanceID string

	// FallbackToLocal routes occurrences through Local when Redis is
	// unavailable instead of failing them
	FallbackToLocal bool

	// Local gates occurrences process-locally when Redis is unavailable
	// (if FallbackToLocal is true)
	Local gate.Invoker

	// RedisTimeout is the timeout for Redis operations
	RedisTimeout time.Duration

	// KeyTTL is how long registry and stats keys should live (defaults to 1 hour)
	KeyTTL time.Duration

	// Metrics enables Prometheus collection of coordination outcomes
	Metrics metrics.Config
}

// DefaultConfig returns a default coalescer configuration.
func DefaultConfig() Config {
	return Config{
		InstanceID:      generateInstanceID(),
		FallbackToLocal: true,
		RedisTimeout:    500 * time.Millisecond,
		KeyTTL:          time.Hour,
	}
}

// New creates a new Redis-backed burst coalescer.
func New(config Config) (Coalescer, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	config = applyConfigDefaults(config)

	return newRedisCoalescer(config)
}

// validateConfig validates the coalescer configuration.
func validateConfig(config Config) error {
	if config.Redis == nil {
		return &ConfigError{"redis client is required"}
	}
	if config.Key == "" {
		return &ConfigError{"key is required"}
	}
	if config.Quiet <= 0 {
		return &ConfigError{"quiet period must be positive"}
	}
	if config.Fn == nil {
		return &ConfigError{"fn is required"}
	}
	if config.FallbackToLocal && config.Local == nil {
		return &ConfigError{"local invoker is required when fallback is enabled"}
	}
	return nil
}

// applyConfigDefaults sets default values for unspecified config fields.
func applyConfigDefaults(config Config) Config {
	if config.InstanceID == "" {
		config.InstanceID = generateInstanceID()
	}
	if config.RedisTimeout == 0 {
		config.RedisTimeout = 500 * time.Millisecond
	}
	if config.KeyTTL == 0 {
		config.KeyTTL = time.Hour
	}
	return config
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "distributed coalescer config error: " + e.Message
}

// RedisError represents a Redis operation error.
type RedisError struct {
	Operation string
	Err       error
}

func (e *RedisError) Error() string {
	return "redis error in " + e.Operation + ": " + e.Err.Error()
}

func (e *RedisError) Unwrap() error {
	return e.Err
}
