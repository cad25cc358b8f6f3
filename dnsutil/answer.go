package dnsutil

import (
	"net"

	"github.com/miekg/dns"
)

// MaxCNAMEChain limits how many CNAMEs AddressRRs follows from the query name.
const MaxCNAMEChain = 8

// AddressRRs extracts the A and AAAA addresses owned by qname, or by a CNAME target
// reached from qname, in the order presented. minTTL is the smallest TTL across the
// accepted address RRs and the CNAMEs followed to reach them. RRs owned by any other name
// are ignored. found is false if there are no acceptable address RRs, in which case
// minTTL is meaningless.
func AddressRRs(qname string, rrs []dns.RR) (ips []net.IP, minTTL uint32, found bool) {
	owners := map[string]bool{}
	owner := dns.CanonicalName(qname)
	owners[owner] = true
	var cnameTTL uint32
	var chained bool
	for hops := 0; hops < MaxCNAMEChain; hops++ {
		next := ""
		for _, rr := range rrs {
			if cn, ok := rr.(*dns.CNAME); ok && dns.CanonicalName(cn.Hdr.Name) == owner {
				next = dns.CanonicalName(cn.Target)
				if !chained || cn.Hdr.Ttl < cnameTTL {
					cnameTTL = cn.Hdr.Ttl
				}
				chained = true
				break
			}
		}
		if len(next) == 0 || owners[next] { // End of chain or a loop
			break
		}
		owners[next] = true
		owner = next
	}

	for _, rr := range rrs {
		if !owners[dns.CanonicalName(rr.Header().Name)] {
			continue
		}
		var ip net.IP
		switch rrt := rr.(type) {
		case *dns.A:
			ip = rrt.A
		case *dns.AAAA:
			ip = rrt.AAAA
		default:
			continue
		}
		if ip == nil {
			continue
		}
		ttl := rr.Header().Ttl
		if !found || ttl < minTTL {
			minTTL = ttl
		}
		found = true
		ips = append(ips, ip)
	}

	if found && chained && cnameTTL < minTTL {
		minTTL = cnameTTL
	}

	return
}
