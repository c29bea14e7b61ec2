// Package publicip resolves the caller's current public IP address by
// querying a fixed ordered list of plain-text IP-echo services.
package publicip

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrNoAddress indicates no echo service returned a usable address.
var ErrNoAddress = errors.New("no public IP address could be determined")

// DefaultEndpoints are independent, interchangeable services that return the
// caller's address as plain text.
var DefaultEndpoints = []string{
	"https://api.ipify.org",
	"https://ipapi.co/ip",
	"https://checkip.amazonaws.com",
	"https://ifconfig.me/ip",
	"https://icanhazip.com",
	"https://ident.me",
}

const (
	endpointTimeout = 5 * time.Second

	// responseLimit caps how much of an echo response is read. A valid
	// body is a single address; anything longer is not worth keeping.
	responseLimit = 256
)

// Resolver queries echo endpoints in order and returns the first
// syntactically valid address.
type Resolver struct {
	endpoints []string
	client    *http.Client
	log       *zap.SugaredLogger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithEndpoints replaces the default endpoint list. Intended for testing.
func WithEndpoints(endpoints []string) Option {
	return func(r *Resolver) {
		r.endpoints = endpoints
	}
}

// WithHTTPClient replaces the HTTP client. Intended for testing.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		r.client = client
	}
}

// WithLogger sets the logger for per-endpoint failures.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(r *Resolver) {
		r.log = log
	}
}

// NewResolver returns a Resolver using the default endpoints.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		endpoints: DefaultEndpoints,
		client:    &http.Client{},
		log:       zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the current public IP address. Endpoints are tried in
// order; a transport error, non-2xx status, or malformed body moves on to
// the next endpoint. There are no retries here; retry policy belongs to
// the scheduling loop.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	for _, endpoint := range r.endpoints {
		addr, err := r.fetch(ctx, endpoint)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			r.log.Debugw("IP echo endpoint failed", "endpoint", endpoint, "error", err)
			continue
		}
		r.log.Debugw("resolved public IP", "endpoint", endpoint, "address", addr)
		return addr, nil
	}
	return "", ErrNoAddress
}

// fetch issues a single GET against one endpoint and validates the body.
func (r *Resolver) fetch(ctx context.Context, endpoint string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, endpointTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, responseLimit))
	if err != nil {
		return "", err
	}

	addr := strings.TrimSpace(string(body))
	if !IsValid(addr) {
		return "", fmt.Errorf("invalid address %q", addr)
	}
	return addr, nil
}
