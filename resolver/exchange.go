package resolver

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/markdingo/hostresolve/dnsutil"
	"github.com/markdingo/hostresolve/log"
	"github.com/markdingo/hostresolve/lookup"
)

// RcodeError is returned by Exchange when a response was received but it cannot produce
// addresses. NoData is set for a NOERROR response with no address RRs.
type RcodeError struct {
	Server string
	Rcode  int
	NoData bool
}

func (t *RcodeError) Error() string {
	if t.NoData {
		return "no address records from " + t.Server
	}

	return dnsutil.RcodeToString(t.Rcode) + " from " + t.Server
}

// definitive is true if another server is unlikely to give a different answer.
func (t *RcodeError) definitive() bool {
	return t.NoData || t.Rcode == dns.RcodeNameError
}

// Exchange is a Capability which sends A and AAAA queries directly to a list of servers
// with github.com/miekg/dns. Servers are tried in order until one provides a definitive
// answer. Unlike System, Exchange reports the minimum TTL of the address RRs.
type Exchange struct {
	servers []string

	// Currently these timeout and retry values cannot be changed from the defaults.
	singleExchangeTimeout time.Duration
	queryTries            int
}

// NewExchange creates an Exchange Capability for servers, each of which is a host or
// host:port. A server without a port gets port 53.
func NewExchange(servers ...string) *Exchange {
	t := &Exchange{
		singleExchangeTimeout: defaultSingleExchangeTimeout,
		queryTries:            defaultQueryTries,
	}
	for _, s := range servers {
		t.servers = append(t.servers, withPort(s))
	}

	return t
}

func (t *Exchange) String() string {
	return "exchange@" + strings.Join(t.servers, ",")
}

func (t *Exchange) LookupIPAddr(ctx context.Context, host string, timeout time.Duration) (lookup.Answer, error) {
	if len(t.servers) == 0 {
		return lookup.Answer{}, fmt.Errorf("exchange has no servers configured")
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, time.Now().Add(timeout))
		defer cancel()
	}

	fqdn := dns.Fqdn(host)
	var err error
	for _, server := range t.servers {
		var ans lookup.Answer
		ans, err = t.lookupServer(ctx, fqdn, server)
		if err == nil {
			return ans, nil
		}
		if re, ok := err.(*RcodeError); ok && re.definitive() {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}

	return lookup.Answer{}, err
}

// lookupServer issues the A and AAAA queries in parallel to a single server. If either
// query produces addresses they are returned even if the other failed, the same as
// net.Resolver does. A addresses precede AAAA addresses.
func (t *Exchange) lookupServer(ctx context.Context, fqdn, server string) (lookup.Answer, error) {
	qTypes := []uint16{dns.TypeA, dns.TypeAAAA}
	type result struct {
		r   *dns.Msg
		err error
	}
	results := make([]result, len(qTypes))
	done := make(chan struct{}, len(qTypes))
	for ix, qType := range qTypes {
		go func(ix int, qType uint16) {
			q := dns.Question{Name: fqdn, Qtype: qType, Qclass: dns.ClassINET}
			r, _, err := t.FullExchange(ctx, NewExchangeConfig(), q, server, fqdn)
			results[ix] = result{r, err}
			done <- struct{}{}
		}(ix, qType)
	}
	for range qTypes {
		<-done
	}

	var ips []net.IP
	var minTTL uint32
	var found bool
	var firstErr error
	nxDomain := 0
	for _, res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		switch res.r.Rcode {
		case dns.RcodeSuccess:
		case dns.RcodeNameError:
			nxDomain++
			continue
		default:
			if firstErr == nil {
				firstErr = &RcodeError{Server: server, Rcode: res.r.Rcode}
			}
			continue
		}
		rrIPs, ttl, ok := dnsutil.AddressRRs(fqdn, res.r.Answer)
		if !ok {
			continue
		}
		if !found || ttl < minTTL {
			minTTL = ttl
		}
		found = true
		ips = append(ips, rrIPs...)
	}

	switch {
	case found:
		return lookup.Answer{Addrs: lookup.FromIPs(ips...),
			TTL: time.Duration(minTTL) * time.Second, HasTTL: true}, nil
	case nxDomain > 0:
		return lookup.Answer{}, &RcodeError{Server: server, Rcode: dns.RcodeNameError}
	case firstErr != nil:
		return lookup.Answer{}, firstErr
	}

	return lookup.Answer{}, &RcodeError{Server: server, NoData: true}
}

// SingleExchange is a shim for the github.com/miekg/dns ExchangeContext function which
// makes a single exchange attempt with the server; no retries, no fallback to TCP. The
// dns.Msg must contain exactly one question. logName is only used to identify the
// exchange in debug output.
func (t *Exchange) SingleExchange(ctx context.Context, c ExchangeConfig, q *dns.Msg,
	server, logName string) (r *dns.Msg, rtt time.Duration, err error) {
	if len(q.Question) != 1 {
		err = fmt.Errorf("SingleExchange Message contains %d Question(s), expect one",
			len(q.Question))
		return
	}

	question := q.Question[0]
	client := &dns.Client{Timeout: t.singleExchangeTimeout}
	client.Net = c.Net()
	client.UDPSize = c.UDPSize()
	server = withPort(server)

	if log.IfDebug() {
		LogExchangeQ(client.Net, logName, server, question)
	}

	r, rtt, err = client.ExchangeContext(ctx, q, server)

	if log.IfDebug() {
		LogExchangeA(server, question, r, err)
	}

	return
}

// FullExchange is a wrapper around SingleExchange which handles retries and truncation. It
// also creates a fully-formed recursive query for SingleExchange. The caller's ctx bounds
// the whole exchange including retries and any TCP attempt.
func (t *Exchange) FullExchange(ctx context.Context, c ExchangeConfig, question dns.Question,
	server, logName string) (r *dns.Msg, rtt time.Duration, err error) {
	query := new(dns.Msg)
	query.Id = dns.Id()
	query.RecursionDesired = true
	query.SetEdns0(c.UDPSize(), false)
	query.Question = append(query.Question, question)

	for tries := 0; tries < t.queryTries; tries++ {
		c.setNet(dnsutil.UDPNetwork)
		r, rtt, err = t.SingleExchange(ctx, c, query, server, logName)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}

		// If truncated, try again with TCP
		if r.MsgHdr.Rcode == dns.RcodeSuccess && r.MsgHdr.Truncated {
			c.setNet(dnsutil.TCPNetwork)
			r, rtt, err = t.SingleExchange(ctx, c, query, server, logName)
			if err != nil {
				continue
			}
		}

		return
	}

	return // No valid response from the server
}
