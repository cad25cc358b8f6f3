package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"testing"

	"github.com/miekg/dns"

	"github.com/markdingo/hostresolve/lookup"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	const host = lookup.Hostname("c.test")
	existing := lookup.NewError(lookup.Malformed, host, nil)

	testCases := []struct {
		err  error
		kind lookup.Kind
	}{
		{existing, lookup.Malformed},
		{context.DeadlineExceeded, lookup.Timeout},
		{fmt.Errorf("wrapped: %w", context.DeadlineExceeded), lookup.Timeout},
		{context.Canceled, lookup.Network},
		{&net.DNSError{Err: "no such host", IsNotFound: true}, lookup.NotFound},
		{&net.DNSError{Err: "no such host"}, lookup.NotFound},
		{&net.DNSError{Err: "i/o timeout", IsTimeout: true}, lookup.Timeout},
		{&net.DNSError{Err: "cannot unmarshal DNS message"}, lookup.Malformed},
		{&net.DNSError{Err: "server misbehaving"}, lookup.Network},
		{&RcodeError{Rcode: dns.RcodeNameError}, lookup.NotFound},
		{&RcodeError{NoData: true}, lookup.NotFound},
		{&RcodeError{Rcode: dns.RcodeFormatError}, lookup.Malformed},
		{&RcodeError{Rcode: dns.RcodeServerFailure}, lookup.Network},
		{dns.ErrShortRead, lookup.Malformed},
		{&net.OpError{Op: "read", Err: timeoutError{}}, lookup.Timeout},
		{&net.OpError{Op: "read", Err: os.ErrPermission}, lookup.Network},
		{errors.New("something else"), lookup.Network},
	}

	for ix, tc := range testCases {
		le := Classify(host, tc.err)
		if le == nil {
			t.Error(ix, "Classify returned nil for", tc.err)
			continue
		}
		if le.Kind != tc.kind {
			t.Error(ix, "Expected", tc.kind, "got", le.Kind, "for", tc.err)
		}
		if le != existing && !errors.Is(le, tc.err) {
			t.Error(ix, "Cause lost for", tc.err)
		}
	}

	if Classify(host, nil) != nil {
		t.Error("nil error should classify as nil")
	}
}

func TestRcodeErrorString(t *testing.T) {
	e := &RcodeError{Server: "192.0.2.53:53", Rcode: dns.RcodeServerFailure}
	if e.Error() != "SERVFAIL from 192.0.2.53:53" {
		t.Error("Wrong string", e.Error())
	}
	e = &RcodeError{Server: "192.0.2.53:53", NoData: true}
	if e.Error() != "no address records from 192.0.2.53:53" {
		t.Error("Wrong string", e.Error())
	}
}
