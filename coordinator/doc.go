/*
Package coordinator is the public entry point for hostname resolution. A Coordinator
combines one resolver.Strategy with a cache.Cache and makes sure that concurrent callers
asking for the same hostname share a single strategy call.

The flow for each Resolve is: normalize the hostname, return a cached answer if one is
live, otherwise join (or start) the pending lookup for that hostname. The pending lookup
re-checks the cache, calls the strategy and, on success, stores the answer with its TTL.
Errors are never cached. Every caller that joined a pending lookup sees exactly the same
outcome, but each receives its own copy of the address set.

Strategies run under the Coordinator's lifetime context rather than any caller's context.
A caller which gives up only stops waiting; the lookup carries on and still populates the
cache for whoever asks next. Close cancels the lifetime context.

There are no retries at this layer. Retry and fallback policy belongs to the strategy, in
particular resolver.Failover.
*/
package coordinator
