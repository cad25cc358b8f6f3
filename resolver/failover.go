package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/markdingo/hostresolve/lookup"
)

// Failover is a Strategy which tries each of its strategies in order until one succeeds.
// If all fail, the error from the last one is returned; earlier errors are only logged.
// Failover is where retry policy lives as the coordinator never retries.
type Failover struct {
	strategies []Strategy
	name       string
}

// NewFailover creates a Failover Strategy. The strategies are tried in the order given.
func NewFailover(strategies ...Strategy) *Failover {
	names := make([]string, 0, len(strategies))
	for _, s := range strategies {
		names = append(names, s.Name())
	}

	return &Failover{strategies: strategies,
		name: "failover(" + strings.Join(names, ",") + ")"}
}

func (t *Failover) Name() string {
	return t.name
}

func (t *Failover) Resolve(ctx context.Context, host lookup.Hostname) (lookup.Answer, error) {
	var lastErr error = lookup.NewError(lookup.NotFound, host, fmt.Errorf("no strategies"))
	for _, s := range t.strategies {
		if err := ctx.Err(); err != nil {
			lastErr = contextError(host, err)
			break
		}
		ans, err := s.Resolve(ctx, host)
		if err == nil {
			LogStrategy(t.name, host, ans, nil)
			return ans, nil
		}
		lastErr = Classify(host, err) // Should already be a *lookup.Error
	}

	LogStrategy(t.name, host, lookup.Answer{}, lastErr)

	return lookup.Answer{}, lastErr
}
