package coordinator

import (
	"fmt"

	"github.com/markdingo/hostresolve/lookup"
)

// Stats are cumulative counters for a Coordinator apart from Waiting which is the number
// of callers currently waiting on a pending lookup.
type Stats struct {
	Requests int // Calls to Resolve
	BadNames int // Hostnames rejected before lookup
	Closed   int // Calls after Close

	Hits     int // Served from cache
	Misses   int
	Rechecks int // Cache hits found by a pending lookup before calling the strategy
	Shared   int // Results delivered to a caller which shared the pending lookup

	Calls     int // Strategy invocations
	Successes int
	Timeouts  int
	NotFounds int
	Malformed int
	Networks  int

	Abandoned int // Callers whose context was done before the result arrived
	Waiting   int
}

// Add accumulates from into t. Useful when reporting across multiple Coordinators.
func (t *Stats) Add(from *Stats) {
	t.Requests += from.Requests
	t.BadNames += from.BadNames
	t.Closed += from.Closed
	t.Hits += from.Hits
	t.Misses += from.Misses
	t.Rechecks += from.Rechecks
	t.Shared += from.Shared
	t.Calls += from.Calls
	t.Successes += from.Successes
	t.Timeouts += from.Timeouts
	t.NotFounds += from.NotFounds
	t.Malformed += from.Malformed
	t.Networks += from.Networks
	t.Abandoned += from.Abandoned
	t.Waiting += from.Waiting
}

// Failures is the total of all strategy failures.
func (t *Stats) Failures() int {
	return t.Timeouts + t.NotFounds + t.Malformed + t.Networks
}

// failed increments the counter matching the kind of err.
func (t *Stats) failed(err error) {
	switch lookup.KindOf(err) {
	case lookup.Timeout:
		t.Timeouts++
	case lookup.NotFound:
		t.NotFounds++
	case lookup.Malformed:
		t.Malformed++
	default:
		t.Networks++
	}
}

func (t *Stats) String() string {
	return fmt.Sprintf("req=%d/%d/%d cache=%d/%d/%d shared=%d calls=%d ok=%d fail=%d/%d/%d/%d gone=%d wait=%d",
		t.Requests, t.BadNames, t.Closed,
		t.Hits, t.Misses, t.Rechecks, t.Shared,
		t.Calls, t.Successes,
		t.Timeouts, t.NotFounds, t.Malformed, t.Networks,
		t.Abandoned, t.Waiting)
}
