package lookup

import (
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// Hostname is a normalized lookup key: lower-case with no trailing dot. The zero value is
// not a valid Hostname; construct with NewHostname.
type Hostname string

// NewHostname normalizes and validates name. "WWW.Example.COM." and "www.example.com"
// produce the same Hostname. An empty or syntactically invalid name returns a Malformed
// *Error.
func NewHostname(name string) (Hostname, error) {
	name = strings.TrimSpace(name)
	if len(name) == 0 || name == "." {
		return "", &Error{Kind: Malformed, Host: name, Cause: fmt.Errorf("empty hostname")}
	}
	if _, ok := dns.IsDomainName(name); !ok {
		return "", &Error{Kind: Malformed, Host: name, Cause: fmt.Errorf("invalid hostname")}
	}

	n := strings.TrimSuffix(strings.ToLower(name), ".")
	for _, label := range strings.Split(n, ".") {
		if !validLabel(label) {
			return "", &Error{Kind: Malformed, Host: name,
				Cause: fmt.Errorf("invalid label '%s'", label)}
		}
	}

	return Hostname(n), nil
}

// validLabel accepts letters, digits, hyphen and underscore. IsDomainName only checks
// lengths and escapes so "bad host" gets past it.
func validLabel(l string) bool {
	if len(l) == 0 {
		return false
	}
	for _, c := range l {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}

	return true
}

// MustHostname is NewHostname which panics on error. Intended for tests and constant
// names.
func MustHostname(name string) Hostname {
	h, err := NewHostname(name)
	if err != nil {
		panic(err)
	}

	return h
}

// FQDN returns the fully qualified form with trailing dot, as needed for wire queries.
func (h Hostname) FQDN() string {
	return dns.Fqdn(string(h))
}

func (h Hostname) String() string {
	return string(h)
}
