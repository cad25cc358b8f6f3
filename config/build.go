package config

import (
	"fmt"
	"sort"

	"github.com/markdingo/hostresolve/cache"
	"github.com/markdingo/hostresolve/coordinator"
	"github.com/markdingo/hostresolve/resolver"
)

// New applies defaults to s, validates it and constructs the Coordinator it describes.
func New(s Settings) (*coordinator.Coordinator, error) {
	s.SetDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}

	strategy, err := s.BuildStrategy()
	if err != nil {
		return nil, err
	}

	c := cache.New(cache.WithShards(s.CacheShards))

	return coordinator.New(strategy,
		coordinator.WithCache(c),
		coordinator.WithDefaultTTL(*s.DefaultTTL),
		coordinator.WithMaxTTL(*s.MaxTTL)), nil
}

// BuildStrategy constructs the Strategy named by s.Strategy. s must be validated.
func (s Settings) BuildStrategy() (resolver.Strategy, error) {
	if s.Strategy != StrategyFailover {
		return s.buildOne(s.Strategy)
	}

	var members []resolver.Strategy
	for _, name := range s.Failover {
		st, err := s.buildOne(name)
		if err != nil {
			return nil, err
		}
		members = append(members, st)
	}

	return resolver.NewFailover(members...), nil
}

func (s Settings) buildOne(name string) (resolver.Strategy, error) {
	switch name {
	case StrategyNetwork:
		return resolver.NewNetwork(s.capability(), s.DefaultTimeout), nil
	case StrategyFixture:
		return s.BuildFixture()
	}

	return nil, fmt.Errorf("%w: %q", ErrStrategyUnknown, name)
}

func (s Settings) capability() resolver.Capability {
	if s.Transport == TransportExchange {
		servers := make([]string, 0, len(s.Servers))
		for _, server := range s.Servers {
			servers = append(servers, hostPort(server))
		}
		return resolver.NewExchange(servers...)
	}

	if len(s.Servers) == 1 {
		return resolver.NewSystemForServer(hostPort(s.Servers[0]), s.DefaultTimeout)
	}

	return resolver.NewSystem(nil)
}

// BuildFixture constructs a Fixture from FixtureFile, if set, then Fixtures. A hostname in
// both takes the Fixtures addresses.
func (s Settings) BuildFixture() (*resolver.Fixture, error) {
	f := resolver.NewFixture()
	if len(s.FixtureFile) > 0 {
		if err := f.LoadFile(s.FixtureFile); err != nil {
			return nil, err
		}
	}

	hosts := make([]string, 0, len(s.Fixtures))
	for host := range s.Fixtures {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts) // So errors are deterministic
	for _, host := range hosts {
		if err := f.Register(host, s.Fixtures[host]...); err != nil {
			return nil, fmt.Errorf("fixture %s: %w", host, err)
		}
	}

	return f, nil
}
