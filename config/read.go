package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/qdm12/gosettings/reader"
)

// Read fills s from the reader's sources, normally the environment. Keys are prefixed
// with HOSTRESOLVE_. Keys which are not set leave the corresponding field unchanged.
func (s *Settings) Read(r *reader.Reader) (err error) {
	if v := r.Get("HOSTRESOLVE_STRATEGY"); v != nil {
		s.Strategy = *v
	}
	if v := r.CSV("HOSTRESOLVE_FAILOVER"); v != nil {
		s.Failover = v
	}
	if v := r.Get("HOSTRESOLVE_TRANSPORT"); v != nil {
		s.Transport = *v
	}
	if v := r.CSV("HOSTRESOLVE_SERVERS"); v != nil {
		s.Servers = v
	}
	if v := r.Get("HOSTRESOLVE_FIXTURE_FILE", reader.ForceLowercase(false)); v != nil {
		s.FixtureFile = *v
	}

	if v := r.Get("HOSTRESOLVE_TIMEOUT"); v != nil {
		s.DefaultTimeout, err = time.ParseDuration(*v)
		if err != nil {
			return fmt.Errorf("HOSTRESOLVE_TIMEOUT: %w", err)
		}
	}
	if s.DefaultTTL, err = readDurationPtr(r, "HOSTRESOLVE_TTL", s.DefaultTTL); err != nil {
		return err
	}
	if s.MaxTTL, err = readDurationPtr(r, "HOSTRESOLVE_MAX_TTL", s.MaxTTL); err != nil {
		return err
	}

	if v := r.Get("HOSTRESOLVE_CACHE_SHARDS"); v != nil {
		s.CacheShards, err = strconv.Atoi(*v)
		if err != nil {
			return fmt.Errorf("HOSTRESOLVE_CACHE_SHARDS: %w", err)
		}
	}

	return nil
}

func readDurationPtr(r *reader.Reader, key string, existing *time.Duration) (*time.Duration, error) {
	v := r.Get(key)
	if v == nil {
		return existing, nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}

	return &d, nil
}
