package publicip

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newEchoServer returns a test server answering every request with body and status.
func newEchoServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolve_FirstEndpointWins(t *testing.T) {
	first := newEchoServer(t, http.StatusOK, "1.2.3.4\n")
	second := newEchoServer(t, http.StatusOK, "5.6.7.8\n")

	r := NewResolver(WithEndpoints([]string{first.URL, second.URL}))

	addr, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if addr != "1.2.3.4" {
		t.Errorf("addr = %q, want %q", addr, "1.2.3.4")
	}
}

func TestResolve_FallsThroughFailures(t *testing.T) {
	down := newEchoServer(t, http.StatusServiceUnavailable, "")
	garbage := newEchoServer(t, http.StatusOK, "<html>blocked</html>")
	good := newEchoServer(t, http.StatusOK, "  9.9.9.9  ")

	r := NewResolver(WithEndpoints([]string{down.URL, garbage.URL, good.URL}))

	addr, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if addr != "9.9.9.9" {
		t.Errorf("addr = %q, want %q", addr, "9.9.9.9")
	}
}

func TestResolve_AllEndpointsFail(t *testing.T) {
	down := newEchoServer(t, http.StatusInternalServerError, "")

	r := NewResolver(WithEndpoints([]string{down.URL, down.URL}))

	_, err := r.Resolve(context.Background())
	if !errors.Is(err, ErrNoAddress) {
		t.Errorf("expected ErrNoAddress, got %v", err)
	}
}

func TestResolve_AcceptsIPv6(t *testing.T) {
	srv := newEchoServer(t, http.StatusOK, "2001:db8::1\n")

	r := NewResolver(WithEndpoints([]string{srv.URL}))

	addr, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if addr != "2001:db8::1" {
		t.Errorf("addr = %q, want %q", addr, "2001:db8::1")
	}
}

func TestResolve_CancelledContext(t *testing.T) {
	srv := newEchoServer(t, http.StatusOK, "1.2.3.4")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewResolver(WithEndpoints([]string{srv.URL}))

	_, err := r.Resolve(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestIsValid(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		// IPv4
		{"1.2.3.4", true},
		{"0.0.0.0", true},
		{"255.255.255.255", true},
		{"256.1.1.1", false},
		{"1.2.3", false},
		{"1.2.3.4.5", false},
		{"1.2.3.x", false},
		{"", false},

		// Four dot-separated parts are judged as IPv4 only.
		{"1.2.3.1000", false},

		// IPv6
		{"2001:db8::1", true},
		{"::1", true},
		{"::ffff:1.2.3.4", true}, // 4-in-6 is a valid v6 presentation
		{"2001:db8:::1", false},
		{"fe80::1%eth0", false}, // zoned addresses are not usable as record content
		{"not-an-ip", false},
		{"<html></html>", false},
	}

	for _, c := range cases {
		if got := IsValid(c.input); got != c.want {
			t.Errorf("IsValid(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}
