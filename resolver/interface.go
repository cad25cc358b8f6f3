package resolver

import (
	"context"
	"net"
	"time"

	"github.com/markdingo/hostresolve/dnsutil"
	"github.com/markdingo/hostresolve/lookup"
)

const (
	DefaultTimeout = 5 * time.Second // Applies to each Network strategy call

	defaultSingleExchangeTimeout = 2 * time.Second
	defaultQueryTries            = 2 // Total number of exchange attempts per server
)

// Capability is the external DNS stack which turns a hostname into addresses. This package
// supplies two: System, backed by net.Resolver, and Exchange, backed by github.com/miekg/dns.
//
// Implementations return raw errors from their underlying stack. Mapping those errors to
// lookup.Kinds is the job of the Network strategy via Classify.
//
// timeout is advisory: implementations which can bound their own work should do so, but
// the Network strategy enforces the bound regardless via ctx and by abandoning the call.
// Implementations must be safe for concurrent use.
type Capability interface {
	LookupIPAddr(ctx context.Context, host string, timeout time.Duration) (lookup.Answer, error)
}

// IPAddrLookuper is the subset of net.Resolver used by the System Capability. It exists so
// test resolvers such as github.com/foxcpp/go-mockdns can stand in for net.Resolver.
type IPAddrLookuper interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// Strategy is a concrete resolution implementation. Network, Fixture and Failover are the
// supplied variants.
//
// Resolve returns an Answer with a non-empty AddressSet or a *lookup.Error. Strategies
// must be safe for concurrent use. Name is used in log and stats output.
type Strategy interface {
	Resolve(ctx context.Context, host lookup.Hostname) (lookup.Answer, error)
	Name() string
}

// ExchangeConfig expresses the settings passed to miekg via a Client struct. Only the ones
// relevant to hostresolve have been transferred across. It's defined as an interface
// rather than a struct to enforce the use of NewExchangeConfig which sets defaults.
type ExchangeConfig interface {
	Net() string
	UDPSize() uint16
	setNet(s string)
}

type exchangeConfig struct {
	net     string
	udpSize uint16
}

func (t *exchangeConfig) Net() string     { return t.net }
func (t *exchangeConfig) UDPSize() uint16 { return t.udpSize }
func (t *exchangeConfig) setNet(s string) { t.net = s }

func NewExchangeConfig() *exchangeConfig {
	return &exchangeConfig{net: dnsutil.UDPNetwork, udpSize: dnsutil.MaxUDPSize}
}
