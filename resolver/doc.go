/*
Package resolver defines the Strategy interface consumed by the coordinator along with the
three supplied strategies:

	Network  - delegates to a Capability with a bounded timeout
	Fixture  - answers from a pre-registered hostname to address mapping
	Failover - tries an ordered list of strategies until one succeeds

A Capability is an adapter over an external DNS stack. System wraps net.Resolver and
Exchange talks directly to nominated servers with github.com/miekg/dns, which has the
advantage of returning TTLs.

All strategies return *lookup.Error on failure so the coordinator can pass errors to
callers verbatim.
*/
package resolver
