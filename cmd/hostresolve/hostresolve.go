package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/qdm12/gosettings/reader"

	"github.com/markdingo/hostresolve/config"
	"github.com/markdingo/hostresolve/coordinator"
	"github.com/markdingo/hostresolve/log"
	"github.com/markdingo/hostresolve/lookup"
)

// The hostResolve container exists so that most of the "main" functionality can be
// delegated to support functions and help keep the flow of main() nice and clean.
type hostResolve struct {
	opts     *options
	settings config.Settings

	coord   *coordinator.Coordinator
	compare *coordinator.Coordinator // nil unless --compare

	done chan struct{} // Closed when Run returns
	sig  chan os.Signal

	startTime time.Time
	failures  int // Lookups which returned an error. Only accessed by the lookup go-routine.
}

func newHostResolve(opts *options) *hostResolve {
	t := &hostResolve{
		opts: opts,
		done: make(chan struct{}),
		sig:  make(chan os.Signal, 1),
	}
	if t.opts == nil {
		t.opts = newOptions()
	}

	return t
}

// Done is closed once Run has returned.
func (t *hostResolve) Done() <-chan struct{} {
	return t.done
}

// readLogLevel sets the logging options from HOSTRESOLVE_LOG_LEVEL unless any --log-*
// option was given on the command line.
func (t *hostResolve) readLogLevel(r *reader.Reader) error {
	set := t.opts.set
	if set["log-major"] || set["log-minor"] || set["log-debug"] {
		return nil
	}
	v := r.Get("HOSTRESOLVE_LOG_LEVEL")
	if v == nil {
		return nil
	}
	level, err := log.ParseLevel(*v)
	if err != nil {
		return fmt.Errorf("HOSTRESOLVE_LOG_LEVEL: %w", err)
	}
	t.opts.logMajorFlag = level >= log.MajorLevel
	t.opts.logMinorFlag = level >= log.MinorLevel
	t.opts.logDebugFlag = level >= log.DebugLevel

	return nil
}

// buildSettings starts with the reader's settings, normally from the environment, then
// applies any resolution flags present on the command line.
func (t *hostResolve) buildSettings(r *reader.Reader) error {
	var s config.Settings
	err := s.Read(r)
	if err != nil {
		return err
	}

	set := t.opts.set
	if set["strategy"] {
		s.Strategy = t.opts.strategy
	}
	if set["failover"] {
		s.Failover = t.opts.failover
	}
	if set["transport"] {
		s.Transport = t.opts.transport
	}
	if set["server"] {
		s.Servers = t.opts.servers
	}
	if set["timeout"] {
		s.DefaultTimeout = t.opts.timeout
	}
	if set["ttl"] {
		ttl := t.opts.ttl
		s.DefaultTTL = &ttl
	}
	if set["max-ttl"] {
		maxTTL := t.opts.maxTTL
		s.MaxTTL = &maxTTL
	}
	if set["fixture-file"] {
		s.FixtureFile = t.opts.fixtureFile
	}
	if set["cache-shards"] {
		s.CacheShards = t.opts.cacheShards
	}
	if set["fixture"] {
		s.Fixtures, err = parseFixtures(t.opts.fixtures)
		if err != nil {
			return err
		}
	}

	s.SetDefaults()
	if err = s.Validate(); err != nil {
		return err
	}
	t.settings = s

	return nil
}

// parseFixtures converts "hostname=address[,address]" entries into a map. Repeated
// hostnames accumulate addresses.
func parseFixtures(entries []string) (map[string][]string, error) {
	m := make(map[string][]string)
	for _, e := range entries {
		host, addrs, ok := strings.Cut(e, "=")
		if !ok || len(host) == 0 || len(addrs) == 0 {
			return nil, fmt.Errorf("--fixture '%s' is not hostname=address[,address]", e)
		}
		m[host] = append(m[host], strings.Split(addrs, ",")...)
	}

	return m, nil
}

// buildCoordinators constructs the main Coordinator and, with --compare, the fixture
// Coordinator which mirrors the main one.
func (t *hostResolve) buildCoordinators() (err error) {
	t.coord, err = config.New(t.settings)
	if err != nil {
		return err
	}
	log.Minor("Strategy: ", t.coord.Name())

	if !t.opts.compareFlag {
		return nil
	}

	cs := t.settings
	cs.Strategy = config.StrategyFixture
	if len(cs.Fixtures) == 0 && len(cs.FixtureFile) == 0 {
		cs.Fixtures = make(map[string][]string)
		for _, h := range t.opts.hosts {
			if hn, err := lookup.NewHostname(h); err == nil { // Bad names fail in the main lookup
				cs.Fixtures[hn.String()] = []string{compareAddress}
			}
		}
	}
	t.compare, err = config.New(cs)
	if err != nil {
		t.coord.Close()
		return fmt.Errorf("--compare: %w", err)
	}

	return nil
}

func (t *hostResolve) coordinators() []*coordinator.Coordinator {
	if t.compare != nil {
		return []*coordinator.Coordinator{t.coord, t.compare}
	}

	return []*coordinator.Coordinator{t.coord}
}

func (t *hostResolve) close() {
	for _, c := range t.coordinators() {
		c.Close()
	}
}
