package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/markdingo/hostresolve/lookup"
)

// Network is the Strategy which delegates to a Capability. Each call is bounded by timeout
// after which Network returns a Timeout error and cancels the Capability's context. A
// Capability which ignores cancellation is left to finish in the background and its
// result is discarded.
type Network struct {
	c       Capability
	timeout time.Duration
	name    string
}

// NewNetwork creates a Network Strategy. A timeout <= 0 gets DefaultTimeout.
func NewNetwork(c Capability, timeout time.Duration) *Network {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	name := "network"
	if s, ok := c.(fmt.Stringer); ok {
		name += "(" + s.String() + ")"
	}

	return &Network{c: c, timeout: timeout, name: name}
}

func (t *Network) Name() string {
	return t.name
}

// Timeout returns the per-call bound.
func (t *Network) Timeout() time.Duration {
	return t.timeout
}

type capabilityResult struct {
	ans lookup.Answer
	err error
}

func (t *Network) Resolve(ctx context.Context, host lookup.Hostname) (lookup.Answer, error) {
	ctxWithTO, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	ch := make(chan capabilityResult, 1) // Buffered so an abandoned go-routine can exit
	go func() {
		ans, err := t.c.LookupIPAddr(ctxWithTO, host.FQDN(), t.timeout)
		ch <- capabilityResult{ans: ans, err: err}
	}()

	var res capabilityResult
	select {
	case res = <-ch:
	case <-ctxWithTO.Done():
		err := contextError(host, ctxWithTO.Err())
		LogStrategy(t.name, host, lookup.Answer{}, err)
		return lookup.Answer{}, err
	}

	if res.err != nil {
		err := Classify(host, res.err)
		if err.Kind != lookup.Timeout && errors.Is(ctxWithTO.Err(), context.DeadlineExceeded) {
			err = lookup.NewError(lookup.Timeout, host, res.err) // Capability reported our deadline as something else
		}
		LogStrategy(t.name, host, lookup.Answer{}, err)
		return lookup.Answer{}, err
	}

	if len(res.ans.Addrs) == 0 {
		err := lookup.NewError(lookup.NotFound, host, fmt.Errorf("empty address set"))
		LogStrategy(t.name, host, lookup.Answer{}, err)
		return lookup.Answer{}, err
	}

	LogStrategy(t.name, host, res.ans, nil)

	return res.ans, nil
}

// contextError converts a done context into a lookup error. A deadline is a Timeout,
// anything else, such as the coordinator closing, is a Network error.
func contextError(host lookup.Hostname, err error) *lookup.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return lookup.NewError(lookup.Timeout, host, err)
	}

	return lookup.NewError(lookup.Network, host, err)
}
