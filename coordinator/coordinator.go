package coordinator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/markdingo/hostresolve/cache"
	"github.com/markdingo/hostresolve/log"
	"github.com/markdingo/hostresolve/lookup"
	"github.com/markdingo/hostresolve/resolver"
)

// DefaultTTL is used for answers which do not carry a TTL of their own.
const DefaultTTL = 60 * time.Second

// ErrClosed is the cause of the Network error returned by Resolve after Close.
var ErrClosed = errors.New("coordinator closed")

// Coordinator is safe for concurrent use. Construct with New.
type Coordinator struct {
	strategy   resolver.Strategy
	cache      *cache.Cache
	defaultTTL time.Duration
	maxTTL     time.Duration // Zero means no clamp

	pending singleflight.Group // Keyed by lookup.Hostname

	ctx    context.Context // Lifetime of the Coordinator. Strategies run under this.
	cancel context.CancelFunc
	closed atomic.Bool

	mu    sync.Mutex // Protects stats
	stats Stats
}

// Option modifies a Coordinator at construction.
type Option func(*Coordinator)

// WithCache supplies a pre-configured cache. The default is cache.New().
func WithCache(c *cache.Cache) Option {
	return func(t *Coordinator) {
		if c != nil {
			t.cache = c
		}
	}
}

// WithDefaultTTL sets the TTL used for answers which lack one. Negative values are
// ignored. Zero means answers without a TTL are never cached.
func WithDefaultTTL(d time.Duration) Option {
	return func(t *Coordinator) {
		if d >= 0 {
			t.defaultTTL = d
		}
	}
}

// WithMaxTTL limits how long any answer is cached. Zero means no limit.
func WithMaxTTL(d time.Duration) Option {
	return func(t *Coordinator) {
		if d >= 0 {
			t.maxTTL = d
		}
	}
}

// New creates a Coordinator which resolves with s.
func New(s resolver.Strategy, opts ...Option) *Coordinator {
	t := &Coordinator{strategy: s, defaultTTL: DefaultTTL}
	for _, o := range opts {
		o(t)
	}
	if t.cache == nil {
		t.cache = cache.New()
	}
	t.ctx, t.cancel = context.WithCancel(context.Background())

	return t
}

// Name returns the name of the underlying Strategy.
func (t *Coordinator) Name() string {
	return t.strategy.Name()
}

// Cache returns the cache used by the Coordinator.
func (t *Coordinator) Cache() *cache.Cache {
	return t.cache
}

func (t *Coordinator) count(f func(*Stats)) {
	t.mu.Lock()
	f(&t.stats)
	t.mu.Unlock()
}

// Resolve returns the addresses for hostname, from the cache if possible, otherwise from
// the strategy. All resolution failures are *lookup.Error. If ctx is done before the
// result arrives, ctx.Err() is returned and the lookup continues in the background.
func (t *Coordinator) Resolve(ctx context.Context, hostname string) (lookup.AddressSet, error) {
	t.count(func(s *Stats) { s.Requests++ })

	host, err := lookup.NewHostname(hostname)
	if err != nil {
		t.count(func(s *Stats) { s.BadNames++ })
		return nil, err
	}

	if t.closed.Load() {
		t.count(func(s *Stats) { s.Closed++ })
		return nil, lookup.NewError(lookup.Network, host, ErrClosed)
	}

	if addrs, ok := t.cache.Get(host); ok {
		t.count(func(s *Stats) { s.Hits++ })
		if log.IfDebug() {
			log.Debugf("coord:hit %s %s", host, addrs)
		}
		return addrs, nil
	}

	ch := t.pending.DoChan(string(host), func() (interface{}, error) {
		return t.lookup(host)
	})
	t.count(func(s *Stats) { s.Misses++; s.Waiting++ })
	defer t.count(func(s *Stats) { s.Waiting-- })

	select {
	case r := <-ch:
		if r.Shared {
			t.count(func(s *Stats) { s.Shared++ })
		}
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(lookup.AddressSet).Clone(), nil

	case <-ctx.Done():
		t.count(func(s *Stats) { s.Abandoned++ })
		if log.IfDebug() {
			log.Debugf("coord:abandon %s %s", host, ctx.Err())
		}
		return nil, ctx.Err()
	}
}

// lookup is the body of a pending lookup. It is only ever running once per hostname.
func (t *Coordinator) lookup(host lookup.Hostname) (interface{}, error) {
	// A previous pending lookup may have completed between the caller's cache miss and
	// the creation of this one.
	if addrs, ok := t.cache.Get(host); ok {
		t.count(func(s *Stats) { s.Rechecks++ })
		return addrs, nil
	}

	t.count(func(s *Stats) { s.Calls++ })
	ans, err := t.strategy.Resolve(t.ctx, host)
	if err == nil && len(ans.Addrs) == 0 {
		err = lookup.NewError(lookup.NotFound, host, nil)
	}
	if err != nil {
		le := resolver.Classify(host, err)
		t.count(func(s *Stats) { s.failed(le) })
		if log.IfDebug() {
			log.Debugf("coord:fail %s %s", host, le)
		}
		return nil, le
	}

	ttl := t.ttlFor(ans)
	t.cache.Put(host, ans.Addrs, ttl)
	t.count(func(s *Stats) { s.Successes++ })
	if log.IfDebug() {
		log.Debugf("coord:store %s %s ttl=%s", host, ans.Addrs, ttl)
	}

	return ans.Addrs, nil
}

// ttlFor returns the cache lifetime of ans.
func (t *Coordinator) ttlFor(ans lookup.Answer) time.Duration {
	ttl := t.defaultTTL
	if ans.HasTTL {
		ttl = ans.TTL
	}
	if t.maxTTL > 0 && ttl > t.maxTTL {
		ttl = t.maxTTL
	}

	return ttl
}

// Forget removes any cached answer for hostname. A pending lookup is unaffected.
func (t *Coordinator) Forget(hostname string) error {
	host, err := lookup.NewHostname(hostname)
	if err != nil {
		return err
	}
	t.cache.Remove(host)

	return nil
}

// Flush empties the cache.
func (t *Coordinator) Flush() {
	t.cache.Flush()
}

// Stats returns a copy of the current statistics.
func (t *Coordinator) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// Close cancels all in-flight strategy calls. Their waiters receive whatever error the
// strategy returns on cancellation. Subsequent calls to Resolve fail with a Network error
// wrapping ErrClosed. Close is idempotent.
func (t *Coordinator) Close() {
	if t.closed.Swap(true) {
		return
	}
	t.cancel()
	log.Minor("Coordinator ", t.strategy.Name(), " closed")
}
