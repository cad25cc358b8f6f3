package resolver

import (
	"net"
	"strings"

	"github.com/miekg/dns"

	"github.com/markdingo/hostresolve/dnsutil"
	"github.com/markdingo/hostresolve/log"
	"github.com/markdingo/hostresolve/lookup"
)

// LogIP logs results from a System lookup. Caller should test for log.IfDebug() prior to
// calling.
func LogIP(host string, addrs []net.IPAddr, note string, err error) {
	var s [5]string
	s[0] = "res:IP"
	s[1] = host
	if err != nil {
		s[3] = dnsutil.ShortenLookupError(err).Error()
	} else {
		var ar []string
		for _, a := range addrs {
			ar = append(ar, a.IP.String())
		}
		s[2] = strings.Join(ar, ",")
	}
	s[4] = note
	log.Debug(strings.Join(s[:], "#"))
}

// LogExchangeQ logs the question given to miekg.Exchange(). Caller should test for
// log.IfDebug() prior to calling.
func LogExchangeQ(net, logName, server string, q dns.Question) {
	log.Debugf("miekg Q:%s:%s/%s q=%s",
		net, logName, server, dnsutil.PrettyQuestion(q))
}

// LogExchangeA logs the answer returned by miekg.Exchange(). See above.
func LogExchangeA(server string, question dns.Question, r *dns.Msg, err error) {
	if err == nil {
		log.Debug("miekg A:", dnsutil.PrettyMsg1(r), " ans=", dnsutil.PrettyRRSet(r.Answer, true))
	} else {
		name := question.Name
		if h, herr := lookup.NewHostname(name); herr == nil {
			name = h.String()
		}
		log.Debugf("miekg E:%s/%s/%s %s",
			server, name,
			dnsutil.TypeToString(question.Qtype),
			dnsutil.ShortenLookupError(err).Error())
	}
}

// LogStrategy logs the outcome of a Strategy.Resolve at Debug level.
func LogStrategy(name string, host lookup.Hostname, ans lookup.Answer, err error) {
	if !log.IfDebug() {
		return
	}
	if err != nil {
		log.Debugf("strat:%s %s E:%s", name, host, err.Error())
		return
	}
	ttl := "-"
	if ans.HasTTL {
		ttl = ans.TTL.String()
	}
	log.Debugf("strat:%s %s A:%s ttl=%s", name, host, ans.Addrs, ttl)
}
