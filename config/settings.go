package config

import (
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/qdm12/gosettings"
	"github.com/qdm12/gotree"

	"github.com/markdingo/hostresolve/coordinator"
	"github.com/markdingo/hostresolve/lookup"
	"github.com/markdingo/hostresolve/resolver"
)

// Strategy and Transport names accepted by Settings.
const (
	StrategyNetwork  = "network"
	StrategyFixture  = "fixture"
	StrategyFailover = "failover"

	TransportSystem   = "system"
	TransportExchange = "exchange"
)

const (
	defaultCacheShards = 16
	minTimeout         = 10 * time.Millisecond
)

// Settings describe a Coordinator and the strategies beneath it. Zero values are replaced
// by SetDefaults. Pointer fields distinguish "not set" from an explicit zero.
type Settings struct {
	Strategy       string
	Failover       []string // Ordered members when Strategy is failover
	Transport      string   // Capability used by the network strategy
	Servers        []string // host[:port]. Empty means the system configuration.
	DefaultTimeout time.Duration
	DefaultTTL     *time.Duration // Zero means answers lacking a TTL are not cached
	MaxTTL         *time.Duration // Zero means no clamp
	Fixtures       map[string][]string
	FixtureFile    string
	CacheShards    int
}

func (s *Settings) SetDefaults() {
	s.Strategy = gosettings.DefaultComparable(s.Strategy, StrategyNetwork)
	s.Failover = gosettings.DefaultSlice(s.Failover, []string{StrategyNetwork, StrategyFixture})
	s.Transport = gosettings.DefaultComparable(s.Transport, TransportSystem)
	s.Servers = gosettings.DefaultSlice(s.Servers, []string{})
	s.DefaultTimeout = gosettings.DefaultComparable(s.DefaultTimeout, resolver.DefaultTimeout)
	s.DefaultTTL = gosettings.DefaultPointer(s.DefaultTTL, coordinator.DefaultTTL)
	s.MaxTTL = gosettings.DefaultPointer(s.MaxTTL, 0)
	s.CacheShards = gosettings.DefaultComparable(s.CacheShards, defaultCacheShards)
	if s.Fixtures == nil {
		s.Fixtures = make(map[string][]string)
	}
}

var (
	ErrStrategyUnknown  = errors.New("strategy is unknown")
	ErrFailoverEmpty    = errors.New("failover has no members")
	ErrFailoverMember   = errors.New("failover member is not valid")
	ErrTransportUnknown = errors.New("transport is unknown")
	ErrServersMissing   = errors.New("exchange transport needs at least one server")
	ErrServersTooMany   = errors.New("system transport accepts at most one server")
	ErrServerInvalid    = errors.New("server address is not valid")
	ErrTimeoutTooLow    = errors.New("timeout is too low")
	ErrTTLNegative      = errors.New("ttl is negative")
	ErrCacheShards      = errors.New("cache shards must be at least one")
	ErrFixtureEmpty     = errors.New("fixture has no addresses")
	ErrFixtureHost      = errors.New("fixture hostname is not valid")
	ErrFixtureDuplicate = errors.New("fixture hostname is duplicated")
)

// Validate checks a Settings which has had SetDefaults applied.
func (s Settings) Validate() (err error) {
	switch s.Strategy {
	case StrategyNetwork, StrategyFixture:
	case StrategyFailover:
		if len(s.Failover) == 0 {
			return ErrFailoverEmpty
		}
		for _, m := range s.Failover {
			if m != StrategyNetwork && m != StrategyFixture {
				return fmt.Errorf("%w: %q must be %s or %s",
					ErrFailoverMember, m, StrategyNetwork, StrategyFixture)
			}
		}
	default:
		return fmt.Errorf("%w: %q", ErrStrategyUnknown, s.Strategy)
	}

	switch s.Transport {
	case TransportSystem:
		if len(s.Servers) > 1 {
			return fmt.Errorf("%w: %d given", ErrServersTooMany, len(s.Servers))
		}
	case TransportExchange:
		if len(s.Servers) == 0 && s.usesNetwork() {
			return ErrServersMissing
		}
	default:
		return fmt.Errorf("%w: %q", ErrTransportUnknown, s.Transport)
	}

	for _, server := range s.Servers {
		host, _, err := net.SplitHostPort(hostPort(server))
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrServerInvalid, server, err)
		}
		if host == "" {
			return fmt.Errorf("%w: %q has no host", ErrServerInvalid, server)
		}
	}

	if s.DefaultTimeout < minTimeout {
		return fmt.Errorf("%w: %s is below the minimum %s",
			ErrTimeoutTooLow, s.DefaultTimeout, minTimeout)
	}

	if *s.DefaultTTL < 0 {
		return fmt.Errorf("%w: default %s", ErrTTLNegative, *s.DefaultTTL)
	}
	if *s.MaxTTL < 0 {
		return fmt.Errorf("%w: max %s", ErrTTLNegative, *s.MaxTTL)
	}

	if s.CacheShards < 1 {
		return fmt.Errorf("%w: %d", ErrCacheShards, s.CacheShards)
	}

	hosts := make([]string, 0, len(s.Fixtures))
	for host := range s.Fixtures {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts) // So errors are deterministic
	seen := make(map[lookup.Hostname]string)
	for _, host := range hosts {
		h, err := lookup.NewHostname(host)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrFixtureHost, err)
		}
		if prev, ok := seen[h]; ok {
			return fmt.Errorf("%w: %q and %q are both %s", ErrFixtureDuplicate, prev, host, h)
		}
		seen[h] = host
		if len(s.Fixtures[host]) == 0 {
			return fmt.Errorf("%w: %s", ErrFixtureEmpty, host)
		}
	}

	return nil
}

// usesNetwork returns true if any strategy needs a Capability.
func (s Settings) usesNetwork() bool {
	if s.Strategy == StrategyNetwork {
		return true
	}
	if s.Strategy == StrategyFailover {
		for _, m := range s.Failover {
			if m == StrategyNetwork {
				return true
			}
		}
	}

	return false
}

// hostPort adds the default DNS port if server lacks one.
func hostPort(server string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}

	return net.JoinHostPort(strings.Trim(server, "[]"), "53")
}

func (s Settings) String() string {
	return s.ToLinesNode().String()
}

func (s Settings) ToLinesNode() *gotree.Node {
	node := gotree.New("Resolution settings:")
	if s.Strategy == StrategyFailover {
		node.Appendf("Strategy: %s(%s)", s.Strategy, strings.Join(s.Failover, ", "))
	} else {
		node.Appendf("Strategy: %s", s.Strategy)
	}

	if s.usesNetwork() {
		netNode := node.Appendf("Network")
		netNode.Appendf("Transport: %s", s.Transport)
		if len(s.Servers) == 0 {
			netNode.Appendf("Servers: system configuration")
		} else {
			serversNode := netNode.Appendf("Servers")
			for _, server := range s.Servers {
				serversNode.Appendf("%s", hostPort(server))
			}
		}
		netNode.Appendf("Timeout: %s", s.DefaultTimeout)
	}

	if s.Strategy != StrategyNetwork {
		fixNode := node.Appendf("Fixtures")
		if len(s.FixtureFile) > 0 {
			fixNode.Appendf("File: %s", s.FixtureFile)
		}
		hosts := make([]string, 0, len(s.Fixtures))
		for host := range s.Fixtures {
			hosts = append(hosts, host)
		}
		sort.Strings(hosts)
		for _, host := range hosts {
			fixNode.Appendf("%s: %s", host, strings.Join(s.Fixtures[host], ", "))
		}
	}

	cacheNode := node.Appendf("Cache")
	cacheNode.Appendf("Shards: %d", s.CacheShards)
	cacheNode.Appendf("Default TTL: %s", ttlString(s.DefaultTTL, "do not cache"))
	cacheNode.Appendf("Max TTL: %s", ttlString(s.MaxTTL, "no limit"))

	return node
}

func ttlString(d *time.Duration, zero string) string {
	if d == nil || *d == 0 {
		return zero
	}

	return d.String()
}
