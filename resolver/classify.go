package resolver

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/miekg/dns"

	"github.com/markdingo/hostresolve/lookup"
)

// Classify maps an error from a Capability onto a *lookup.Error. An error which is already
// a *lookup.Error is returned as-is. A nil err returns nil.
func Classify(host lookup.Hostname, err error) *lookup.Error {
	if err == nil {
		return nil
	}

	var le *lookup.Error
	if errors.As(err, &le) {
		return le
	}

	var re *RcodeError
	if errors.As(err, &re) {
		switch {
		case re.definitive():
			return lookup.NewError(lookup.NotFound, host, err)
		case re.Rcode == dns.RcodeFormatError:
			return lookup.NewError(lookup.Malformed, host, err)
		}
		return lookup.NewError(lookup.Network, host, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return lookup.NewError(lookup.Timeout, host, err)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		switch {
		case dnsErr.IsNotFound:
			return lookup.NewError(lookup.NotFound, host, err)
		case dnsErr.IsTimeout:
			return lookup.NewError(lookup.Timeout, host, err)
		case strings.Contains(dnsErr.Err, "no such host"):
			return lookup.NewError(lookup.NotFound, host, err)
		case strings.Contains(dnsErr.Err, "cannot unmarshal"):
			return lookup.NewError(lookup.Malformed, host, err)
		}
		return lookup.NewError(lookup.Network, host, err)
	}

	// miekg returns *dns.Error for unpack failures and mismatched responses
	var miekgErr *dns.Error
	if errors.As(err, &miekgErr) {
		return lookup.NewError(lookup.Malformed, host, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return lookup.NewError(lookup.Timeout, host, err)
	}

	return lookup.NewError(lookup.Network, host, err)
}
