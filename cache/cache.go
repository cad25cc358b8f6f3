/*
Package cache holds recent successful resolutions keyed by hostname. Entries live for the
TTL supplied when they were stored and are removed when found expired by Get, by the
opportunistic per-shard sweep run from Put, or by an explicit Sweep.

The cache is split into shards selected by a keyed SipHash of the hostname so that
different hostnames rarely contend for the same lock. Entries are immutable once stored;
a refresh replaces the whole entry under the shard lock so no reader ever sees a partial
update.
*/
package cache

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"

	"github.com/dchest/siphash"

	"github.com/markdingo/hostresolve/lookup"
)

const (
	defaultShards        = 16
	defaultSweepInterval = time.Minute
)

type entry struct {
	addrs    lookup.AddressSet
	ttl      time.Duration
	inserted time.Time
}

func (t *entry) expired(now time.Time) bool {
	return now.After(t.inserted.Add(t.ttl))
}

type shard struct {
	mu        sync.Mutex
	entries   map[lookup.Hostname]*entry
	nextSweep time.Time
}

// Cache is safe for concurrent use. Construct with New.
type Cache struct {
	k0, k1        uint64 // siphash keys
	shards        []*shard
	now           func() time.Time
	sweepInterval time.Duration
}

// Option modifies a Cache at construction.
type Option func(*Cache)

// WithShards sets the number of shards. Values < 1 are ignored.
func WithShards(n int) Option {
	return func(t *Cache) {
		if n > 0 {
			t.shards = make([]*shard, n)
		}
	}
}

// WithClock replaces time.Now, mostly for tests which need to move time along.
func WithClock(now func() time.Time) Option {
	return func(t *Cache) {
		if now != nil {
			t.now = now
		}
	}
}

// WithSweepInterval sets the minimum time between opportunistic sweeps of a shard.
func WithSweepInterval(d time.Duration) Option {
	return func(t *Cache) {
		if d > 0 {
			t.sweepInterval = d
		}
	}
}

// New creates an empty cache ready for use.
func New(opts ...Option) *Cache {
	t := &Cache{
		shards:        make([]*shard, defaultShards),
		now:           time.Now,
		sweepInterval: defaultSweepInterval,
	}
	for _, o := range opts {
		o(t)
	}

	var b [16]byte
	rand.Read(b[:]) // Failure leaves zero keys which still distribute, just predictably
	t.k0 = binary.LittleEndian.Uint64(b[:8])
	t.k1 = binary.LittleEndian.Uint64(b[8:])

	start := t.now()
	for ix := range t.shards {
		t.shards[ix] = &shard{
			entries:   make(map[lookup.Hostname]*entry),
			nextSweep: start.Add(t.sweepInterval),
		}
	}

	return t
}

func (t *Cache) shardFor(h lookup.Hostname) *shard {
	sum := siphash.Hash(t.k0, t.k1, []byte(h))
	return t.shards[sum%uint64(len(t.shards))]
}

// Get returns a copy of the live address set for h. Expired entries are removed and
// reported as absent.
func (t *Cache) Get(h lookup.Hostname) (lookup.AddressSet, bool) {
	s := t.shardFor(h)
	now := t.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[h]
	if !ok {
		return nil, false
	}
	if e.expired(now) {
		delete(s.entries, h)
		return nil, false
	}

	return e.addrs.Clone(), true
}

// Put inserts or replaces the entry for h. A zero TTL or an empty address set means "do
// not cache" and removes any existing entry. Negative TTLs are treated as zero.
func (t *Cache) Put(h lookup.Hostname, addrs lookup.AddressSet, ttl time.Duration) {
	s := t.shardFor(h)
	now := t.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if ttl <= 0 || len(addrs) == 0 {
		delete(s.entries, h)
	} else {
		s.entries[h] = &entry{addrs: addrs.Clone(), ttl: ttl, inserted: now}
	}

	if now.After(s.nextSweep) {
		s.sweep(now)
		s.nextSweep = now.Add(t.sweepInterval)
	}
}

// Remove deletes any entry for h.
func (t *Cache) Remove(h lookup.Hostname) {
	s := t.shardFor(h)
	s.mu.Lock()
	delete(s.entries, h)
	s.mu.Unlock()
}

// Sweep removes all expired entries and returns how many were removed.
func (t *Cache) Sweep() (removed int) {
	now := t.now()
	for _, s := range t.shards {
		s.mu.Lock()
		removed += s.sweep(now)
		s.nextSweep = now.Add(t.sweepInterval)
		s.mu.Unlock()
	}

	return
}

// Flush removes every entry.
func (t *Cache) Flush() {
	for _, s := range t.shards {
		s.mu.Lock()
		s.entries = make(map[lookup.Hostname]*entry)
		s.mu.Unlock()
	}
}

// Len returns the number of entries held, including any expired entries not yet swept.
func (t *Cache) Len() (n int) {
	for _, s := range t.shards {
		s.mu.Lock()
		n += len(s.entries)
		s.mu.Unlock()
	}

	return
}

// sweep is called with s.mu held.
func (s *shard) sweep(now time.Time) (removed int) {
	for h, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, h)
			removed++
		}
	}

	return
}
