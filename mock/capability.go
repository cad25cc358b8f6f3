package mock

import (
	"context"
	"sync"
	"time"

	"github.com/markdingo/hostresolve/lookup"
)

// CapabilityResponse is what a Capability returns for a given hostname.
type CapabilityResponse struct {
	Answer lookup.Answer
	Err    error

	Block        bool // Wait for Release() before responding
	IgnoreCancel bool // When blocking, keep waiting even if ctx is done
}

// Capability is a controllable replacement for resolver.Capability. Responses are set per
// FQDN and every call is counted so tests can check de-duplication. Hostnames without a
// response get the default set by SetDefault.
type Capability struct {
	mu        sync.Mutex
	responses map[string]*CapabilityResponse
	dflt      CapabilityResponse
	calls     map[string]int
	total     int
	release   chan struct{}
	started   chan string
}

// NewCapability creates an empty Capability. If startedDepth is > 0, the name of each
// lookup is sent to Started() as it begins, so tests can synchronize with in-flight calls.
func NewCapability(startedDepth int) *Capability {
	t := &Capability{
		responses: make(map[string]*CapabilityResponse),
		calls:     make(map[string]int),
		release:   make(chan struct{}),
	}
	if startedDepth > 0 {
		t.started = make(chan string, startedDepth)
	}

	return t
}

// Set the response for fqdn.
func (t *Capability) Set(fqdn string, r CapabilityResponse) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.responses[fqdn] = &r
}

// SetDefault sets the response for names without a specific response.
func (t *Capability) SetDefault(r CapabilityResponse) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dflt = r
}

// Started returns the channel which receives each looked up name. It is nil if
// NewCapability was called with startedDepth of zero.
func (t *Capability) Started() <-chan string {
	return t.started
}

// Release unblocks all current and future blocked calls.
func (t *Capability) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	select {
	case <-t.release:
	default:
		close(t.release)
	}
}

// Calls returns the number of lookups for fqdn.
func (t *Capability) Calls(fqdn string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls[fqdn]
}

// Total returns the number of lookups for all names.
func (t *Capability) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

func (t *Capability) LookupIPAddr(ctx context.Context, host string, timeout time.Duration) (lookup.Answer, error) {
	t.mu.Lock()
	t.calls[host]++
	t.total++
	r, ok := t.responses[host]
	if !ok {
		r = &t.dflt
	}
	resp := *r
	release := t.release
	t.mu.Unlock()

	if t.started != nil {
		select {
		case t.started <- host:
		default: // Test isn't interested in this many
		}
	}

	if resp.Block {
		if resp.IgnoreCancel {
			<-release
		} else {
			select {
			case <-release:
			case <-ctx.Done():
				return lookup.Answer{}, ctx.Err()
			}
		}
	}

	resp.Answer.Addrs = resp.Answer.Addrs.Clone()

	return resp.Answer, resp.Err
}
