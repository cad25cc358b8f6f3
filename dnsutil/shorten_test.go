package dnsutil

import (
	"errors"
	"testing"
)

func TestShorten(t *testing.T) {
	testCases := []struct{ in, out string }{
		{"", ""},
		{"This should remain unchanged", ""},
		{"An embedded i/o timeout is a", "Timeout"},
		{"An embedded connection refused is a", "Connection refused"},
		{"lookup x.invalid on 127.0.0.53:53: no such host", "No such host"},
		{"lookup x on 10.0.0.1:53: server misbehaving", "Server misbehaving"},
	}

	e := ShortenLookupError(nil)
	if e != nil {
		t.Error("shorten created an error out of thin air!", e)
	}

	for ix, tc := range testCases {
		e = errors.New(tc.in)
		e = ShortenLookupError(e)
		exp := tc.out
		if len(exp) == 0 {
			exp = tc.in
		}
		got := e.Error()
		if exp != got {
			t.Error(ix, "Expected", exp, "Got", got)
		}
	}
}

func TestShortenUnwrap(t *testing.T) {
	orig := errors.New("read udp: i/o timeout")
	e := ShortenLookupError(orig)
	if !errors.Is(e, orig) {
		t.Error("Shortened error lost the original", e)
	}
}
