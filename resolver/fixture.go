package resolver

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/miekg/dns"

	"github.com/markdingo/hostresolve/lookup"
)

// Fixture is a Strategy which answers from a pre-registered mapping of hostname to
// AddressSet. It never touches the network so it is deterministic and suited to tests and
// offline use. Unregistered hostnames fail with NotFound.
//
// Fixture answers have no TTL unless SetTTL has been called, so the coordinator fallback
// TTL normally applies.
type Fixture struct {
	mu      sync.RWMutex
	entries map[lookup.Hostname]lookup.AddressSet
	ttl     time.Duration
	hasTTL  bool
}

// NewFixture creates an empty Fixture.
func NewFixture() *Fixture {
	return &Fixture{entries: make(map[lookup.Hostname]lookup.AddressSet)}
}

func (t *Fixture) Name() string {
	return "fixture"
}

// Register adds or replaces the addresses for name. At least one address is required.
func (t *Fixture) Register(name string, addrs ...string) error {
	h, err := lookup.NewHostname(name)
	if err != nil {
		return err
	}
	as, err := lookup.ParseAddressSet(addrs...)
	if err != nil {
		return fmt.Errorf("fixture %s: %w", h, err)
	}

	return t.RegisterSet(h, as)
}

// RegisterSet is Register for callers which already have a Hostname and AddressSet.
func (t *Fixture) RegisterSet(h lookup.Hostname, as lookup.AddressSet) error {
	if len(as) == 0 {
		return fmt.Errorf("fixture %s: no addresses", h)
	}
	t.mu.Lock()
	t.entries[h] = as.Clone()
	t.mu.Unlock()

	return nil
}

// SetTTL makes all subsequent answers carry ttl. Zero means "do not cache".
func (t *Fixture) SetTTL(ttl time.Duration) {
	t.mu.Lock()
	t.ttl = ttl
	t.hasTTL = true
	t.mu.Unlock()
}

// Len returns the number of registered hostnames.
func (t *Fixture) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

func (t *Fixture) Resolve(ctx context.Context, host lookup.Hostname) (lookup.Answer, error) {
	t.mu.RLock()
	as, ok := t.entries[host]
	ans := lookup.Answer{Addrs: as.Clone(), TTL: t.ttl, HasTTL: t.hasTTL}
	t.mu.RUnlock()

	if !ok {
		err := lookup.NewError(lookup.NotFound, host, fmt.Errorf("no fixture"))
		LogStrategy(t.Name(), host, lookup.Answer{}, err)
		return lookup.Answer{}, err
	}
	LogStrategy(t.Name(), host, ans, nil)

	return ans, nil
}

// LoadFile registers every A and AAAA RR found in the zone-file formatted file at path.
// Multiple RRs for the same name accumulate in file order. RR TTLs are ignored. Any
// other RR type is an error as is a syntax error.
//
// An example file:
//
//	;; Comments and blank lines are ignored
//	$ORIGIN example.net.
//	www   IN A    192.0.2.1
//	www   IN AAAA 2001:db8::1
//	known.test. IN A 1.2.3.4
func (t *Fixture) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return t.Load(f, path)
}

// Load is LoadFile for an io.Reader. name is only used in error messages.
func (t *Fixture) Load(r io.Reader, name string) error {
	parser := dns.NewZoneParser(r, "", name)
	parser.SetDefaultTTL(60) // ZoneParser needs this in case $TTL is absent

	loaded := make(map[lookup.Hostname]lookup.AddressSet)
	var order []lookup.Hostname
	for rr, ok := parser.Next(); ok; rr, ok = parser.Next() {
		var addrs lookup.AddressSet
		switch rrt := rr.(type) {
		case *dns.A:
			addrs = lookup.FromIPs(rrt.A)
		case *dns.AAAA:
			addrs = lookup.FromIPs(rrt.AAAA)
		default:
			return fmt.Errorf("%s: %s is not an A or AAAA RR", name, rr.Header().Name)
		}
		h, err := lookup.NewHostname(rr.Header().Name)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if _, ok := loaded[h]; !ok {
			order = append(order, h)
		}
		loaded[h] = append(loaded[h], addrs...)
	}
	if err := parser.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	for _, h := range order {
		if err := t.RegisterSet(h, loaded[h]); err != nil {
			return err
		}
	}

	return nil
}
