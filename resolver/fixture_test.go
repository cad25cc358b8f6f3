package resolver

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/markdingo/hostresolve/lookup"
)

func TestFixtureDeterminism(t *testing.T) {
	f := NewFixture()
	if err := f.Register("known.test", "1.2.3.4"); err != nil {
		t.Fatal("Setup error", err)
	}

	for ix := 0; ix < 3; ix++ {
		ans, err := f.Resolve(context.Background(), lookup.MustHostname("known.test"))
		if err != nil {
			t.Fatal(ix, "Unexpected error", err)
		}
		if diff := cmp.Diff([]string{"1.2.3.4"}, ans.Addrs.Strings()); diff != "" {
			t.Error(ix, "known.test mismatch (-want +got):\n", diff)
		}
		if ans.HasTTL {
			t.Error("Fixture should not have a TTL by default")
		}

		_, err = f.Resolve(context.Background(), lookup.MustHostname("unknown.test"))
		if !errors.Is(err, lookup.ErrNotFound) {
			t.Error(ix, "Expected NotFound for unknown.test, got", err)
		}
	}
}

func TestFixtureRegister(t *testing.T) {
	f := NewFixture()
	if f.Name() != "fixture" {
		t.Error("Wrong name", f.Name())
	}
	testCases := []struct {
		name  string
		addrs []string
		ok    bool
	}{
		{"a.test", []string{"192.0.2.1"}, true},
		{"A.TEST.", []string{"192.0.2.2", "2001:db8::2"}, true}, // Replaces a.test
		{"bad name", []string{"192.0.2.1"}, false},
		{"b.test", []string{}, false},
		{"c.test", []string{"999.1.1.1"}, false},
	}
	for ix, tc := range testCases {
		err := f.Register(tc.name, tc.addrs...)
		if tc.ok && err != nil {
			t.Error(ix, "Unexpected error", err)
		}
		if !tc.ok && err == nil {
			t.Error(ix, "Expected an error return for", tc.name, tc.addrs)
		}
	}
	if f.Len() != 1 {
		t.Error("Expected one registration, not", f.Len())
	}

	ans, _ := f.Resolve(context.Background(), "a.test")
	if ans.Addrs.String() != "192.0.2.2,2001:db8::2" {
		t.Error("Replacement did not take", ans.Addrs)
	}

	// Caller modification of the answer must not leak back into the fixture

	ans.Addrs[0] = ans.Addrs[1]
	again, _ := f.Resolve(context.Background(), "a.test")
	if again.Addrs.String() != "192.0.2.2,2001:db8::2" {
		t.Error("Fixture modified via returned answer", again.Addrs)
	}

	f.SetTTL(0)
	ans, _ = f.Resolve(context.Background(), "a.test")
	if !ans.HasTTL || ans.TTL != 0 {
		t.Error("SetTTL(0) should produce a zero TTL", ans.HasTTL, ans.TTL)
	}
	f.SetTTL(time.Hour)
	ans, _ = f.Resolve(context.Background(), "a.test")
	if ans.TTL != time.Hour {
		t.Error("SetTTL(1h) not honoured", ans.TTL)
	}
}

func TestFixtureLoadFile(t *testing.T) {
	f := NewFixture()
	err := f.LoadFile("testdata/fixtures.zone")
	if err != nil {
		t.Fatal("LoadFile failed", err)
	}
	if f.Len() != 4 {
		t.Error("Expected 4 hostnames, got", f.Len())
	}

	testCases := []struct {
		host string
		exp  []string
	}{
		{"www.example.net", []string{"192.0.2.1", "2001:db8::1"}},
		{"mail.example.net", []string{"192.0.2.25"}},
		{"known.test", []string{"1.2.3.4"}},
		{"www.example.com", []string{"127.0.0.1"}},
	}
	for ix, tc := range testCases {
		ans, err := f.Resolve(context.Background(), lookup.MustHostname(tc.host))
		if err != nil {
			t.Error(ix, "Unexpected error", err)
			continue
		}
		if diff := cmp.Diff(tc.exp, ans.Addrs.Strings()); diff != "" {
			t.Error(ix, tc.host, "mismatch (-want +got):\n", diff)
		}
	}

	if err := f.LoadFile("testdata/does-not-exist"); err == nil {
		t.Error("Expected error from missing file")
	}
}

func TestFixtureLoadErrors(t *testing.T) {
	testCases := []struct {
		content string
		expect  string
	}{
		{"a.test. IN MX 10 mx.a.test.\n", "not an A or AAAA"},
		{"a.test. IN A not-an-address\n", "bad.zone"},
		{"a.test. IN A 192.0.2.1\nb.test. IN TXT \"x\"\n", "not an A or AAAA"},
	}

	for ix, tc := range testCases {
		f := NewFixture()
		err := f.Load(strings.NewReader(tc.content), "bad.zone")
		if err == nil {
			t.Error(ix, "Expected an error return")
			continue
		}
		if !strings.Contains(err.Error(), tc.expect) {
			t.Error(ix, "Error does not contain", tc.expect, "got", err)
		}
		if f.Len() != 0 {
			t.Error(ix, "Failed load should register nothing, got", f.Len())
		}
	}
}
