package coordinator

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/markdingo/hostresolve/cache"
	"github.com/markdingo/hostresolve/log"
	"github.com/markdingo/hostresolve/lookup"
	"github.com/markdingo/hostresolve/mock"
	"github.com/markdingo/hostresolve/resolver"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (t *fakeClock) Now() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now
}

func (t *fakeClock) Advance(d time.Duration) {
	t.mu.Lock()
	t.now = t.now.Add(d)
	t.mu.Unlock()
}

// waitFor polls cond until it is true or a generous deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func mustSet(t *testing.T, addrs ...string) lookup.AddressSet {
	t.Helper()
	as, err := lookup.ParseAddressSet(addrs...)
	if err != nil {
		t.Fatal("Setup error", err)
	}
	return as
}

func TestIdempotence(t *testing.T) {
	c := mock.NewCapability(0)
	exp := mustSet(t, "192.0.2.1", "2001:db8::1")
	c.Set("www.example.net.", mock.CapabilityResponse{
		Answer: lookup.Answer{Addrs: exp, TTL: time.Minute, HasTTL: true}})

	co := New(resolver.NewNetwork(c, time.Second))
	defer co.Close()

	for ix, name := range []string{"www.example.net", "WWW.Example.NET.", "www.example.net"} {
		got, err := co.Resolve(context.Background(), name)
		if err != nil {
			t.Fatal(ix, "Unexpected error", err)
		}
		if diff := cmp.Diff(exp.Strings(), got.Strings()); diff != "" {
			t.Error(ix, "Mismatch (-want +got):\n", diff)
		}
	}
	if c.Total() != 1 {
		t.Error("Expected exactly one capability call, not", c.Total())
	}
	st := co.Stats()
	if st.Requests != 3 || st.Hits != 2 || st.Misses != 1 || st.Calls != 1 || st.Successes != 1 {
		t.Error("Stats wrong", st.String())
	}
}

func TestDeduplication(t *testing.T) {
	c := mock.NewCapability(0)
	c.SetDefault(mock.CapabilityResponse{Block: true,
		Answer: lookup.Answer{Addrs: mustSet(t, "192.0.2.5"), TTL: time.Minute, HasTTL: true}})
	defer c.Release()

	co := New(resolver.NewNetwork(c, 10*time.Second))
	defer co.Close()

	const callers = 20
	var wg sync.WaitGroup
	results := make([]lookup.AddressSet, callers)
	errs := make([]error, callers)
	for ix := 0; ix < callers; ix++ {
		wg.Add(1)
		go func(ix int) {
			defer wg.Done()
			results[ix], errs[ix] = co.Resolve(context.Background(), "dedup.test")
		}(ix)
	}

	waitFor(t, "all callers to join", func() bool { return co.Stats().Waiting == callers })
	c.Release()
	wg.Wait()

	if c.Calls("dedup.test.") != 1 {
		t.Error("Expected one capability invocation, got", c.Calls("dedup.test."))
	}
	for ix := 0; ix < callers; ix++ {
		if errs[ix] != nil {
			t.Error(ix, "Unexpected error", errs[ix])
			continue
		}
		if results[ix].String() != "192.0.2.5" {
			t.Error(ix, "Expected 192.0.2.5, got", results[ix])
		}
	}

	// Each caller gets its own copy
	results[0][0] = mustSet(t, "198.51.100.1")[0]
	if results[1].String() != "192.0.2.5" {
		t.Error("Callers share an address set", results[1])
	}

	st := co.Stats()
	if st.Calls != 1 || st.Waiting != 0 || st.Shared != callers {
		t.Error("Stats wrong", st.String())
	}
}

func TestDeduplicatedFailure(t *testing.T) {
	c := mock.NewCapability(0)
	c.SetDefault(mock.CapabilityResponse{Block: true,
		Err: &net.DNSError{Err: "no such host", IsNotFound: true}})
	defer c.Release()

	co := New(resolver.NewNetwork(c, 10*time.Second))
	defer co.Close()

	const callers = 5
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for ix := 0; ix < callers; ix++ {
		wg.Add(1)
		go func(ix int) {
			defer wg.Done()
			_, errs[ix] = co.Resolve(context.Background(), "nx.test")
		}(ix)
	}
	waitFor(t, "all callers to join", func() bool { return co.Stats().Waiting == callers })
	c.Release()
	wg.Wait()

	for ix := 1; ix < callers; ix++ {
		if errs[ix] != errs[0] {
			t.Error(ix, "Expected identical error, got", errs[ix], errs[0])
		}
	}
	if !errors.Is(errs[0], lookup.ErrNotFound) {
		t.Error("Expected NotFound, got", errs[0])
	}
	if c.Total() != 1 {
		t.Error("Expected one capability invocation, got", c.Total())
	}
}

func TestExpiry(t *testing.T) {
	clock := newFakeClock()
	c := mock.NewCapability(0)
	c.SetDefault(mock.CapabilityResponse{
		Answer: lookup.Answer{Addrs: mustSet(t, "192.0.2.9"), TTL: 30 * time.Second, HasTTL: true}})

	co := New(resolver.NewNetwork(c, time.Second), WithCache(cache.New(cache.WithClock(clock.Now))))
	defer co.Close()

	testCases := []struct {
		advance time.Duration
		calls   int
	}{
		{0, 1},
		{29 * time.Second, 1},
		{time.Second, 1}, // Exactly at TTL is still live
		{time.Second, 2},
		{time.Second, 2},
	}
	for ix, tc := range testCases {
		clock.Advance(tc.advance)
		_, err := co.Resolve(context.Background(), "expire.test")
		if err != nil {
			t.Fatal(ix, "Unexpected error", err)
		}
		if c.Total() != tc.calls {
			t.Error(ix, "Expected", tc.calls, "got", c.Total())
		}
	}
}

func TestTTLSelection(t *testing.T) {
	testCases := []struct {
		ans     lookup.Answer
		opts    []Option
		advance time.Duration
		calls   int // After the second Resolve
	}{
		{lookup.Answer{}, nil, 59 * time.Second, 1},                                           // Default 60s
		{lookup.Answer{}, nil, 61 * time.Second, 2},                                           // Default 60s
		{lookup.Answer{}, []Option{WithDefaultTTL(5 * time.Second)}, 4 * time.Second, 1},      // Fallback
		{lookup.Answer{}, []Option{WithDefaultTTL(5 * time.Second)}, 6 * time.Second, 2},      // Fallback
		{lookup.Answer{}, []Option{WithDefaultTTL(0)}, 0, 2},                                  // Never cache
		{lookup.Answer{TTL: 0, HasTTL: true}, nil, 0, 2},                                      // Zero TTL
		{lookup.Answer{TTL: time.Hour, HasTTL: true}, nil, 59 * time.Minute, 1},               // Answer TTL
		{lookup.Answer{TTL: time.Hour, HasTTL: true}, []Option{WithMaxTTL(10 * time.Second)}, // Clamped
			11 * time.Second, 2},
		{lookup.Answer{TTL: 5 * time.Second, HasTTL: true}, []Option{WithMaxTTL(10 * time.Second)},
			6 * time.Second, 2},
	}

	for ix, tc := range testCases {
		clock := newFakeClock()
		c := mock.NewCapability(0)
		ans := tc.ans
		ans.Addrs = mustSet(t, "192.0.2.10")
		c.SetDefault(mock.CapabilityResponse{Answer: ans})
		opts := append([]Option{WithCache(cache.New(cache.WithClock(clock.Now)))}, tc.opts...)
		co := New(resolver.NewNetwork(c, time.Second), opts...)

		co.Resolve(context.Background(), "ttl.test")
		clock.Advance(tc.advance)
		_, err := co.Resolve(context.Background(), "ttl.test")
		if err != nil {
			t.Error(ix, "Unexpected error", err)
		}
		if c.Total() != tc.calls {
			t.Error(ix, "Expected", tc.calls, "calls, got", c.Total())
		}
		co.Close()
	}
}

func TestFixtureStrategy(t *testing.T) {
	f := resolver.NewFixture()
	f.Register("known.test", "1.2.3.4")
	co := New(f)
	defer co.Close()

	for ix := 0; ix < 2; ix++ {
		got, err := co.Resolve(context.Background(), "known.test")
		if err != nil {
			t.Fatal(ix, "Unexpected error", err)
		}
		if got.String() != "1.2.3.4" {
			t.Error(ix, "Expected 1.2.3.4, got", got)
		}
		_, err = co.Resolve(context.Background(), "unknown.test")
		if !errors.Is(err, lookup.ErrNotFound) {
			t.Error(ix, "Expected NotFound, got", err)
		}
	}

	// Errors are not cached so unknown.test is tried each time. known.test is cached.

	st := co.Stats()
	if st.Calls != 3 || st.NotFounds != 2 || st.Hits != 1 {
		t.Error("Stats wrong", st.String())
	}
	if co.Name() != "fixture" {
		t.Error("Wrong name", co.Name())
	}
}

func TestFailoverStrategy(t *testing.T) {
	c := mock.NewCapability(0)
	c.SetDefault(mock.CapabilityResponse{Err: errors.New("connection refused")})
	f := resolver.NewFixture()
	f.Register("both.test", "192.0.2.77")

	co := New(resolver.NewFailover(resolver.NewNetwork(c, time.Second), f))
	defer co.Close()

	got, err := co.Resolve(context.Background(), "both.test")
	if err != nil {
		t.Fatal("Network error surfaced", err)
	}
	if got.String() != "192.0.2.77" {
		t.Error("Expected fixture answer, got", got)
	}
	if c.Total() != 1 {
		t.Error("Network should have been tried first", c.Total())
	}

	_, err = co.Resolve(context.Background(), "neither.test")
	if !errors.Is(err, lookup.ErrNotFound) {
		t.Error("Expected the last error (fixture NotFound), got", err)
	}
}

func TestTimeoutLateJoiner(t *testing.T) {
	c := mock.NewCapability(1)
	c.SetDefault(mock.CapabilityResponse{Block: true, IgnoreCancel: true})
	defer c.Release()

	const timeout = 300 * time.Millisecond
	co := New(resolver.NewNetwork(c, timeout))
	defer co.Close()

	var wg sync.WaitGroup
	var errA, errB error
	var elapsedB time.Duration
	start := time.Now()
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errA = co.Resolve(context.Background(), "stuck.test")
	}()
	<-c.Started()
	go func() {
		defer wg.Done()
		_, errB = co.Resolve(context.Background(), "stuck.test")
		elapsedB = time.Since(start)
	}()
	waitFor(t, "late joiner", func() bool { return co.Stats().Waiting == 2 })
	wg.Wait()
	elapsed := time.Since(start)

	for ix, err := range []error{errA, errB} {
		if !errors.Is(err, lookup.ErrTimeout) {
			t.Error(ix, "Expected Timeout, got", err)
		}
	}
	if elapsedB > 5*timeout || elapsed > 5*timeout {
		t.Error("Late joiner not bounded by the original deadline", elapsedB, elapsed)
	}
	if c.Total() != 1 {
		t.Error("Expected one capability invocation, got", c.Total())
	}
}

func TestAbandonment(t *testing.T) {
	c := mock.NewCapability(1)
	c.SetDefault(mock.CapabilityResponse{Block: true,
		Answer: lookup.Answer{Addrs: mustSet(t, "192.0.2.33"), TTL: time.Minute, HasTTL: true}})
	defer c.Release()

	co := New(resolver.NewNetwork(c, 10*time.Second))
	defer co.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-c.Started()
		cancel()
	}()
	_, err := co.Resolve(ctx, "leave.test")
	if !errors.Is(err, context.Canceled) {
		t.Fatal("Expected context.Canceled, got", err)
	}
	if lookup.KindOf(err) != 0 {
		t.Error("Abandonment should not be a lookup.Error", err)
	}

	c.Release()
	waitFor(t, "background completion", func() bool { return co.Stats().Successes == 1 })

	got, err := co.Resolve(context.Background(), "leave.test")
	if err != nil || got.String() != "192.0.2.33" {
		t.Error("Abandoned lookup did not populate cache", got, err)
	}
	if c.Total() != 1 {
		t.Error("Expected one capability invocation, got", c.Total())
	}
	st := co.Stats()
	if st.Abandoned != 1 || st.Hits != 1 {
		t.Error("Stats wrong", st.String())
	}
}

func TestErrorsNotCached(t *testing.T) {
	c := mock.NewCapability(0)
	c.Set("flaky.test.", mock.CapabilityResponse{Err: errors.New("connection refused")})

	co := New(resolver.NewNetwork(c, time.Second))
	defer co.Close()

	_, err := co.Resolve(context.Background(), "flaky.test")
	if !errors.Is(err, lookup.ErrNetwork) {
		t.Error("Expected Network, got", err)
	}

	c.Set("flaky.test.", mock.CapabilityResponse{
		Answer: lookup.Answer{Addrs: mustSet(t, "192.0.2.44")}})
	got, err := co.Resolve(context.Background(), "flaky.test")
	if err != nil || got.String() != "192.0.2.44" {
		t.Error("Previous failure was cached", got, err)
	}
	if c.Total() != 2 {
		t.Error("Expected two capability calls, got", c.Total())
	}
}

func TestMalformedHostname(t *testing.T) {
	c := mock.NewCapability(0)
	co := New(resolver.NewNetwork(c, time.Second))
	defer co.Close()

	for ix, name := range []string{"", ".", "bad name.test", "a..b", strings.Repeat("x", 64) + ".test"} {
		_, err := co.Resolve(context.Background(), name)
		if !errors.Is(err, lookup.ErrMalformed) {
			t.Error(ix, "Expected Malformed for", name, "got", err)
		}
	}
	if c.Total() != 0 {
		t.Error("Capability should not be called for malformed names")
	}
	if st := co.Stats(); st.BadNames != 5 {
		t.Error("BadNames wrong", st.String())
	}
}

func TestForgetFlush(t *testing.T) {
	f := resolver.NewFixture()
	f.Register("a.test", "192.0.2.1")
	f.Register("b.test", "192.0.2.2")
	co := New(f)
	defer co.Close()

	co.Resolve(context.Background(), "a.test")
	co.Resolve(context.Background(), "b.test")
	if co.Cache().Len() != 2 {
		t.Fatal("Expected two cache entries, got", co.Cache().Len())
	}
	if err := co.Forget("A.TEST."); err != nil {
		t.Error("Unexpected Forget error", err)
	}
	if co.Cache().Len() != 1 {
		t.Error("Forget did not remove entry", co.Cache().Len())
	}
	if err := co.Forget("bad name"); !errors.Is(err, lookup.ErrMalformed) {
		t.Error("Expected Malformed from Forget, got", err)
	}
	co.Flush()
	if co.Cache().Len() != 0 {
		t.Error("Flush did not empty cache", co.Cache().Len())
	}
}

func TestClose(t *testing.T) {
	out := &mock.IOWriter{}
	log.SetOut(out)
	log.SetLevel(log.MinorLevel)
	defer log.SetLevel(log.SilentLevel)

	c := mock.NewCapability(1)
	c.SetDefault(mock.CapabilityResponse{Block: true})
	defer c.Release()

	co := New(resolver.NewNetwork(c, time.Minute))
	var inflight error
	done := make(chan struct{})
	go func() {
		_, inflight = co.Resolve(context.Background(), "inflight.test")
		close(done)
	}()
	<-c.Started()
	co.Close()
	co.Close()
	<-done

	if !errors.Is(inflight, lookup.ErrNetwork) {
		t.Error("In-flight lookup should fail with Network, got", inflight)
	}

	_, err := co.Resolve(context.Background(), "after.test")
	if !errors.Is(err, lookup.ErrNetwork) || !errors.Is(err, ErrClosed) {
		t.Error("Expected Network(ErrClosed), got", err)
	}
	if c.Total() != 1 {
		t.Error("Closed coordinator called capability", c.Total())
	}

	if strings.Count(out.String(), "closed") != 1 {
		t.Error("Expected one close log line, got", out.String())
	}
}

func TestStats(t *testing.T) {
	a := Stats{Requests: 1, Hits: 2, Timeouts: 3, Networks: 4, Waiting: 1}
	b := Stats{Requests: 10, NotFounds: 5, Malformed: 6}
	a.Add(&b)
	if a.Requests != 11 || a.Failures() != 18 {
		t.Error("Add wrong", a.String())
	}
	exp := "req=11/0/0 cache=2/0/0 shared=0 calls=0 ok=0 fail=3/5/6/4 gone=0 wait=1"
	if a.String() != exp {
		t.Error("Expected", exp, "got", a.String())
	}
}
