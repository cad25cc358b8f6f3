package resolver

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/markdingo/hostresolve/dnsutil"
	"github.com/markdingo/hostresolve/log"
	"github.com/markdingo/hostresolve/lookup"
)

// System is a Capability backed by net.Resolver or anything which looks like it. It never
// supplies a TTL as net.Resolver doesn't expose them.
type System struct {
	r    IPAddrLookuper
	name string
}

// NewSystem creates a System Capability. A nil r uses net.DefaultResolver.
func NewSystem(r IPAddrLookuper) *System {
	if r == nil {
		r = net.DefaultResolver
	}

	return &System{r: r, name: "system"}
}

// NewSystemForServer creates a System Capability which uses the pure-go resolver to query
// address rather than the servers in resolv.conf. address may omit the port.
func NewSystemForServer(address string, dialTimeout time.Duration) *System {
	address = withPort(address)
	dialer := net.Dialer{Timeout: dialTimeout}
	r := &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
			return dialer.DialContext(ctx, network, address)
		},
	}

	return &System{r: r, name: "system@" + address}
}

func (t *System) String() string {
	return t.name
}

func (t *System) LookupIPAddr(ctx context.Context, host string, timeout time.Duration) (lookup.Answer, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, time.Now().Add(timeout))
		defer cancel()
	}

	addrs, err := t.r.LookupIPAddr(ctx, host)
	if log.IfDebug() {
		LogIP(host, addrs, t.name, err)
	}
	if err != nil {
		return lookup.Answer{}, err
	}

	ips := make([]net.IP, 0, len(addrs))
	for _, a := range addrs {
		ips = append(ips, a.IP)
	}

	return lookup.Answer{Addrs: lookup.FromIPs(ips...)}, nil
}

// withPort coerces a service onto address if it hasn't got one.
func withPort(address string) string {
	if _, _, err := net.SplitHostPort(address); err != nil {
		return net.JoinHostPort(strings.Trim(address, "[]"), dnsutil.DefaultService)
	}

	return address
}
