package dnsutil

import (
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// All Pretty* functions return a compact "pretty" version of various dns structures for
// debug logging. The standard String() is designed to be consistent with traditional dig
// output which is too verbose for a single log line.

// PrettyMsg1 returns a compact string representing the complete message.
func PrettyMsg1(m *dns.Msg) string {
	h := m.MsgHdr
	flags := []string{}
	if h.Response {
		flags = append(flags, "qr")
	}
	if h.Authoritative {
		flags = append(flags, "aa")
	}
	if h.Truncated {
		flags = append(flags, "tc")
	}
	if h.RecursionAvailable {
		flags = append(flags, "ra")
	}

	qTypes := make([]string, 0, len(m.Question))
	for _, q := range m.Question {
		qTypes = append(qTypes, TypeToString(q.Qtype))
	}

	return fmt.Sprintf("%d f=%s %s Q=%d-%s Ans=%d-%s Ns=%d-%s Extra=%d-%s",
		h.Id, strings.Join(flags, "+"), RcodeToString(h.Rcode),
		len(m.Question), strings.Join(qTypes, ","),
		len(m.Answer), rrTypes(m.Answer),
		len(m.Ns), rrTypes(m.Ns),
		len(m.Extra), rrTypes(m.Extra))
}

func rrTypes(rrs []dns.RR) string {
	ar := make([]string, 0, len(rrs))
	for _, rr := range rrs {
		ar = append(ar, TypeToString(rr.Header().Rrtype))
	}

	return strings.Join(ar, ",")
}

// PrettyQuestion returns a compact representation of the dns.Question
func PrettyQuestion(q dns.Question) string {
	return fmt.Sprintf("%s/%s %s",
		ClassToString(dns.Class(q.Qclass)),
		TypeToString(q.Qtype),
		q.Name)
}

func prettyHeader(hdr *dns.RR_Header, includeName bool) (s string) {
	if includeName {
		s = hdr.Name + " "
	}

	return s + fmt.Sprintf("%s/%s %d",
		ClassToString(dns.Class(hdr.Class)), TypeToString(hdr.Rrtype), hdr.Ttl)
}

// PrettyRR returns a compact representation of the single RR. Address and CNAME RRs get
// the compact form, anything else uses the general rendering offered by miekg.
func PrettyRR(rr dns.RR, includeName bool) string {
	switch rrt := rr.(type) {
	case *dns.A:
		return prettyHeader(&rrt.Hdr, includeName) + " " + rrt.A.String()
	case *dns.AAAA:
		return prettyHeader(&rrt.Hdr, includeName) + " " + rrt.AAAA.String()
	case *dns.CNAME:
		return prettyHeader(&rrt.Hdr, includeName) + " " + rrt.Target
	}

	return rr.String()
}

// PrettyRRSet returns a compact representation of the slice of RRs. Each RR is separated
// by a comma.
func PrettyRRSet(rrs []dns.RR, includeName bool) string {
	ar := make([]string, 0, len(rrs))
	for _, rr := range rrs {
		ar = append(ar, PrettyRR(rr, includeName))
	}

	return strings.Join(ar, ", ")
}
