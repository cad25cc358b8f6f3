package lookup

import (
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"
)

// AddressSet is an ordered list of IPv4 and IPv6 addresses. The order is that returned by
// the resolver.
type AddressSet []netip.Addr

// ParseAddressSet converts textual addresses into an AddressSet. IPv4-mapped IPv6
// addresses are unmapped.
func ParseAddressSet(addrs ...string) (AddressSet, error) {
	as := make(AddressSet, 0, len(addrs))
	for _, s := range addrs {
		a, err := netip.ParseAddr(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("address '%s': %w", s, err)
		}
		as = append(as, a.Unmap())
	}

	return as, nil
}

// FromIPs converts net.IPs as returned by miekg and net.Resolver. Unparseable entries are
// silently dropped.
func FromIPs(ips ...net.IP) AddressSet {
	as := make(AddressSet, 0, len(ips))
	for _, ip := range ips {
		if a, ok := netip.AddrFromSlice(ip); ok {
			as = append(as, a.Unmap())
		}
	}

	return as
}

// Clone returns a copy which shares nothing with the original. A nil set clones to nil.
func (t AddressSet) Clone() AddressSet {
	if t == nil {
		return nil
	}
	c := make(AddressSet, len(t))
	copy(c, t)

	return c
}

// Equal returns true if both sets contain the same addresses in the same order.
func (t AddressSet) Equal(o AddressSet) bool {
	if len(t) != len(o) {
		return false
	}
	for ix := range t {
		if t[ix] != o[ix] {
			return false
		}
	}

	return true
}

// Strings returns the textual form of each address.
func (t AddressSet) Strings() []string {
	ar := make([]string, 0, len(t))
	for _, a := range t {
		ar = append(ar, a.String())
	}

	return ar
}

func (t AddressSet) String() string {
	return strings.Join(t.Strings(), ",")
}

// Answer is a successful strategy result. HasTTL is false when the strategy has no TTL
// knowledge, in which case the coordinator applies its fallback TTL. A TTL of zero with
// HasTTL set means "do not cache".
type Answer struct {
	Addrs  AddressSet
	TTL    time.Duration
	HasTTL bool
}
