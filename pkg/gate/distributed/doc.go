// Package distributed provides cross-instance burst coalescing using Redis
// as the coordination backend.
//
// A process-local debouncer or throttler only sees the calls made inside its
// own process. When the same external event (a webhook, a cache invalidation,
// a config change) fans out to every instance of a service, each instance
// would react once. This package collapses those reactions: exactly one
// instance claims each burst and runs the callable, and every other
// occurrence extends the burst's quiet period instead.
//
// # Overview
//
// Ownership is a single Redis key per event name, claimed atomically with
// SET NX PX. The claim TTL is the quiet period; occurrences that lose the
// claim push the TTL out, so a burst ends only after the whole cluster has
// been quiet for the configured duration. Both paths run as one Lua script,
// so claim and extension are atomic under concurrent instances.
//
// # Quick Start
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//
//	config := distributed.DefaultConfig()
//	config.Redis = rdb
//	config.Key = "cache_invalidation"
//	config.Quiet = 2 * time.Second
//	config.Fn = func(args ...interface{}) {
//		rebuildCache(args[0].(string))
//	}
//	config.Local = debounce.New(config.Fn, 2*time.Second)
//
//	c, err := distributed.New(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer c.Close()
//
//	ctx := context.Background()
//	c.Invoke(ctx, "users-table", "users")
//
// # Multiple Instances
//
// Every instance creates its own Coalescer with the same Key and a distinct
// InstanceID (generated automatically when left empty). Whichever instance
// sees the first occurrence of a quiet event leads the burst; the rest stay
// silent for that burst.
//
// # Fallback Strategy
//
// With FallbackToLocal enabled, occurrences are routed through the Local
// invoker when Redis is unreachable. Each instance then gates the event
// process-locally, which can mean one execution per instance during the
// outage but never a dropped event.
//
// # Relationship to pkg/gate
//
// The Coalescer coordinates burst ownership only. Timers, captured
// arguments and call counts stay process-local in the debounce and throttle
// packages; nothing in this package shares that state across instances.
package distributed
