package distributed

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/vnykmshr/gopace/pkg/metrics"
)

// redisCoalescer implements cross-instance burst coalescing using Redis.
type redisCoalescer struct {
	config   Config
	keys     map[string]string
	registry *metrics.Registry // nil when collection is disabled

	// Lua scripts for atomic burst operations
	claimScript   *redis.Script
	releaseScript *redis.Script
}

// newRedisCoalescer creates a new Redis-backed coalescer and registers the
// instance.
func newRedisCoalescer(config Config) (Coalescer, error) {
	rc := &redisCoalescer{
		config: config,
		keys:   redisKeys(config.Key),
	}

	if config.Metrics.Enabled {
		rc.registry = metrics.DefaultRegistry
		if config.Metrics.Registry != nil {
			rc.registry = metrics.NewRegistry(config.Metrics.Registry)
		}
	}

	rc.claimScript = redis.NewScript(luaClaimBurst)
	rc.releaseScript = redis.NewScript(luaReleaseBurst)

	if err := rc.initialize(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to initialize coalescer: %w", err)
	}

	return rc, nil
}

// initialize sets up the instance registry and stats in Redis.
func (rc *redisCoalescer) initialize(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, rc.config.RedisTimeout)
	defer cancel()

	pipe := rc.config.Redis.Pipeline()

	pipe.HSetNX(ctx, rc.keys["stats"], "claims", 0)
	pipe.HSetNX(ctx, rc.keys["stats"], "extended", 0)
	pipe.HSetNX(ctx, rc.keys["stats"], "released", 0)
	pipe.Expire(ctx, rc.keys["stats"], rc.config.KeyTTL)

	pipe.SAdd(ctx, rc.keys["instances"], rc.config.InstanceID)
	pipe.Expire(ctx, rc.keys["instances"], rc.config.KeyTTL)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return &RedisError{"initialize", err}
	}

	return nil
}

// burstKey returns the Redis key holding ownership of the named burst.
func (rc *redisCoalescer) burstKey(event string) string {
	return rc.keys["bursts"] + ":" + event
}

// Invoke routes one occurrence of the named event. The occurrence that
// claims the burst key executes the callable on this instance; every other
// occurrence extends the burst's quiet period.
func (rc *redisCoalescer) Invoke(ctx context.Context, event string, args ...interface{}) error {
	opCtx, cancel := context.WithTimeout(ctx, rc.config.RedisTimeout)
	defer cancel()

	result, err := rc.claimScript.Run(opCtx, rc.config.Redis, []string{
		rc.burstKey(event),
		rc.keys["stats"],
	},
		rc.config.InstanceID,
		rc.config.Quiet.Milliseconds(),
	).Result()

	if err != nil {
		if rc.registry != nil {
			rc.registry.CoalescerErrors.WithLabelValues(rc.config.Key).Inc()
		}
		if rc.config.FallbackToLocal && rc.config.Local != nil {
			// Degrade to process-local gating rather than dropping or
			// duplicating the event.
			rc.config.Local.Invoke(args...)
			return nil
		}
		return &RedisError{"claim", err}
	}

	claimed, ok := result.(int64)
	if ok && claimed == 1 {
		if rc.registry != nil {
			rc.registry.CoalescerClaims.WithLabelValues(rc.config.Key).Inc()
		}
		rc.config.Fn(args...)
		return nil
	}
	if rc.registry != nil {
		rc.registry.CoalescerExtended.WithLabelValues(rc.config.Key).Inc()
	}
	return nil
}

// Owned reports whether this instance holds the named burst key.
func (rc *redisCoalescer) Owned(ctx context.Context, event string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, rc.config.RedisTimeout)
	defer cancel()

	owner, err := rc.config.Redis.Get(ctx, rc.burstKey(event)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, &RedisError{"owned", err}
	}
	return owner == rc.config.InstanceID, nil
}

// Release deletes the named burst key if this instance owns it.
func (rc *redisCoalescer) Release(ctx context.Context, event string) error {
	ctx, cancel := context.WithTimeout(ctx, rc.config.RedisTimeout)
	defer cancel()

	err := rc.releaseScript.Run(ctx, rc.config.Redis, []string{
		rc.burstKey(event),
		rc.keys["stats"],
	},
		rc.config.InstanceID,
	).Err()

	if err != nil && err != redis.Nil {
		return &RedisError{"release", err}
	}
	return nil
}

// Stats returns coordination statistics aggregated across instances.
func (rc *redisCoalescer) Stats(ctx context.Context) (*Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, rc.config.RedisTimeout)
	defer cancel()

	pipe := rc.config.Redis.Pipeline()
	statsCmd := pipe.HGetAll(ctx, rc.keys["stats"])
	instancesCmd := pipe.SMembers(ctx, rc.keys["instances"])

	_, err := pipe.Exec(ctx)
	if err != nil && err != redis.Nil {
		return nil, &RedisError{"stats", err}
	}

	statsMap := statsCmd.Val()
	claims, _ := strconv.ParseInt(statsMap["claims"], 10, 64)
	extended, _ := strconv.ParseInt(statsMap["extended"], 10, 64)
	released, _ := strconv.ParseInt(statsMap["released"], 10, 64)

	return &Stats{
		Claims:          claims,
		Extended:        extended,
		Released:        released,
		ActiveInstances: instancesCmd.Val(),
	}, nil
}

// Reset clears the registry, stats and burst keys.
func (rc *redisCoalescer) Reset(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, rc.config.RedisTimeout)
	defer cancel()

	// Burst keys are namespaced under a single prefix; scan and delete them
	// along with the fixed keys.
	iter := rc.config.Redis.Scan(ctx, 0, rc.keys["bursts"]+":*", 100).Iterator()
	keys := []string{rc.keys["stats"], rc.keys["instances"]}
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return &RedisError{"reset", err}
	}

	if err := rc.config.Redis.Del(ctx, keys...).Err(); err != nil {
		return &RedisError{"reset", err}
	}

	return rc.initialize(ctx)
}

// Close deregisters this instance.
func (rc *redisCoalescer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), rc.config.RedisTimeout)
	defer cancel()

	return rc.config.Redis.SRem(ctx, rc.keys["instances"], rc.config.InstanceID).Err()
}

// Lua script claiming burst ownership. The first occurrence of a quiet event
// sets the burst key and leads; later occurrences extend the quiet period.
const luaClaimBurst = `
-- KEYS[1]: burst key
-- KEYS[2]: stats key
-- ARGV[1]: instance id
-- ARGV[2]: quiet period (milliseconds)

local burst_key = KEYS[1]
local stats_key = KEYS[2]

local instance = ARGV[1]
local quiet_ms = tonumber(ARGV[2])

if redis.call('SET', burst_key, instance, 'NX', 'PX', quiet_ms) then
    redis.call('HINCRBY', stats_key, 'claims', 1)
    return 1 -- claimed, caller leads the burst
end

-- Burst in progress somewhere; push its end out by the quiet period
redis.call('PEXPIRE', burst_key, quiet_ms)
redis.call('HINCRBY', stats_key, 'extended', 1)
return 0
`

// Lua script releasing a burst, owner check included.
const luaReleaseBurst = `
-- KEYS[1]: burst key
-- KEYS[2]: stats key
-- ARGV[1]: instance id

local owner = redis.call('GET', KEYS[1])
if owner == ARGV[1] then
    redis.call('DEL', KEYS[1])
    redis.call('HINCRBY', KEYS[2], 'released', 1)
    return 1
end
return 0
`
