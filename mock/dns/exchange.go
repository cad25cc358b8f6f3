package dns

import (
	"fmt"
	"sync"

	"github.com/miekg/dns"
)

// ExchangeResponse is the canned reply for one query type.
type ExchangeResponse struct {
	Ignore    bool // Never reply, to provoke client timeouts
	Truncated bool
	Rcode     int
	Answer    []dns.RR

	QueryCount int // Times ExchangeServer served this ExchangeResponse
}

// ExchangeServer is a dumb server which copies response values into the reply message
// according to the query type. It checks as little as possible. Query types without a
// response get a NOERROR reply with no answers.
type ExchangeServer struct {
	mu    sync.Mutex
	resp  map[uint16]*ExchangeResponse
	total int
}

// SetResponse sets the response for qType
func (t *ExchangeServer) SetResponse(qType uint16, r *ExchangeResponse) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.resp == nil {
		t.resp = make(map[uint16]*ExchangeResponse)
	}
	t.resp[qType] = r
}

// GetResponse returns a copy of the current response for qType, if any
func (t *ExchangeServer) GetResponse(qType uint16) *ExchangeResponse {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.resp[qType]
	if !ok {
		return nil
	}
	c := *r

	return &c
}

// Total returns the number of queries received across all query types
func (t *ExchangeServer) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// ServeDNS meets the interface definition for dns.Handler
func (t *ExchangeServer) ServeDNS(wtr dns.ResponseWriter, q *dns.Msg) {
	m := new(dns.Msg)
	if len(q.Question) != 1 {
		m.SetRcode(q, dns.RcodeFormatError)
		wtr.WriteMsg(m)
		return
	}

	t.mu.Lock()
	t.total++
	resp, ok := t.resp[q.Question[0].Qtype]
	if ok {
		resp.QueryCount++
	}
	var r ExchangeResponse
	if ok {
		r = *resp
	}
	t.mu.Unlock()

	if r.Ignore {
		return
	}

	m.SetRcode(q, r.Rcode)
	m.RecursionAvailable = true
	if r.Truncated {
		m.MsgHdr.Truncated = true
	} else if r.Rcode == dns.RcodeSuccess { // Only populate if rcode is good
		m.Answer = r.Answer
	}

	err := wtr.WriteMsg(m)
	if err != nil {
		fmt.Println("Alert: WriteMsg error:", err)
	}
}
