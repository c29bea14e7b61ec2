// Package vultr implements a client for the Vultr v2 DNS API.
//
// All operations go over authenticated HTTPS with a bearer token and JSON
// bodies. Failed requests surface an *APIError carrying the provider's
// reported message when one was parseable, otherwise the transport error
// text; APIErrors additionally unwrap to the domain sentinel matching their
// HTTP status so callers can use errors.Is.
package vultr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"nathanbeddoewebdev/vultrdyn/internal/dns/domain"
)

const (
	defaultBaseURL = "https://api.vultr.com/v2"
	defaultTimeout = 30 * time.Second
)

// Compile-time check that Client satisfies domain.Provider.
var _ domain.Provider = (*Client)(nil)

// Client is a Vultr v2 API client scoped to DNS operations.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates a Client authenticated with the given API key.
func New(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

// APIError is a failed provider call. Message holds the provider's error
// envelope text when the response carried one, otherwise a generic HTTP
// status description.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vultr: %s (status %d)", e.Message, e.StatusCode)
}

// Unwrap maps the HTTP status onto the matching domain sentinel so that
// errors.Is(err, domain.ErrNotFound) and friends work on wrapped APIErrors.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrUnauthorized
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case http.StatusConflict:
		return domain.ErrConflict
	}
	return nil
}

// IsTTLError reports whether err is a provider rejection that mentions the
// record TTL. Vultr reports unacceptable TTLs as a plain 400 with a message,
// so string matching is the only available signal.
func IsTTLError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return strings.Contains(strings.ToLower(apiErr.Message), "ttl")
}

// vultrRecord maps to the Vultr DNS record object.
type vultrRecord struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Data     string `json:"data"`
	TTL      int    `json:"ttl"`
	Priority int    `json:"priority"`
}

// errorEnvelope is the JSON body Vultr returns on 4xx/5xx responses.
type errorEnvelope struct {
	Error string `json:"error"`
}

// do sends a request and decodes a successful response into out (when out is
// non-nil and the response has a body). Non-2xx responses become APIErrors.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("vultr: failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("vultr: failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("vultr: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("vultr: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var envelope errorEnvelope
		if json.Unmarshal(data, &envelope) == nil && envelope.Error != "" {
			apiErr.Message = envelope.Error
		}
		return apiErr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("vultr: failed to decode response: %w", err)
		}
	}
	return nil
}

// ListRecords returns all DNS records for the given domain.
func (c *Client) ListRecords(ctx context.Context, domainName string) ([]domain.Record, error) {
	var out struct {
		Records []vultrRecord `json:"records"`
	}
	if err := c.do(ctx, http.MethodGet, "/domains/"+domainName+"/records", nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list records for %q: %w", domainName, err)
	}

	records := make([]domain.Record, 0, len(out.Records))
	for _, r := range out.Records {
		records = append(records, toDomainRecord(r))
	}
	return records, nil
}

// GetRecord returns a single DNS record by its ID.
func (c *Client) GetRecord(ctx context.Context, domainName string, id string) (*domain.Record, error) {
	var out struct {
		Record vultrRecord `json:"record"`
	}
	if err := c.do(ctx, http.MethodGet, "/domains/"+domainName+"/records/"+id, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to get record %q for %q: %w", id, domainName, err)
	}

	rec := toDomainRecord(out.Record)
	return &rec, nil
}

// CreateRecord creates a new DNS record and returns the created record with
// its provider-assigned ID.
func (c *Client) CreateRecord(ctx context.Context, domainName string, opts domain.CreateRecordOpts) (*domain.Record, error) {
	type request struct {
		Name     string `json:"name"`
		Type     string `json:"type"`
		Data     string `json:"data"`
		TTL      int    `json:"ttl,omitempty"`
		Priority *int   `json:"priority,omitempty"`
	}

	body := request{
		Name: opts.Name,
		Type: string(opts.Type),
		Data: opts.Content,
		TTL:  opts.TTL,
	}
	if opts.Priority > 0 {
		body.Priority = &opts.Priority
	}

	var out struct {
		Record vultrRecord `json:"record"`
	}
	if err := c.do(ctx, http.MethodPost, "/domains/"+domainName+"/records", body, &out); err != nil {
		return nil, fmt.Errorf("failed to create record for %q: %w", domainName, err)
	}

	rec := toDomainRecord(out.Record)
	return &rec, nil
}

// UpdateRecord patches an existing DNS record. Only the non-zero fields of
// opts are sent, so the provider keeps the current value for everything else
// (notably the TTL, which reconciliation intentionally never touches on
// update).
func (c *Client) UpdateRecord(ctx context.Context, domainName string, id string, opts domain.UpdateRecordOpts) error {
	body := map[string]any{}
	if opts.Name != "" {
		body["name"] = opts.Name
	}
	if opts.Content != "" {
		body["data"] = opts.Content
	}
	if opts.TTL > 0 {
		body["ttl"] = opts.TTL
	}
	if opts.Priority > 0 {
		body["priority"] = opts.Priority
	}
	if len(body) == 0 {
		return nil
	}

	if err := c.do(ctx, http.MethodPatch, "/domains/"+domainName+"/records/"+id, body, nil); err != nil {
		return fmt.Errorf("failed to update record %q for %q: %w", id, domainName, err)
	}
	return nil
}

// DeleteRecord deletes a DNS record by its ID.
func (c *Client) DeleteRecord(ctx context.Context, domainName string, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/domains/"+domainName+"/records/"+id, nil, nil); err != nil {
		return fmt.Errorf("failed to delete record %q for %q: %w", id, domainName, err)
	}
	return nil
}

// VerifyAuth checks that the API key is valid and the API is reachable.
// It returns the account email for logging.
func (c *Client) VerifyAuth(ctx context.Context) (string, error) {
	var out struct {
		Account struct {
			Email string `json:"email"`
		} `json:"account"`
	}
	if err := c.do(ctx, http.MethodGet, "/account", nil, &out); err != nil {
		return "", fmt.Errorf("failed to verify API access: %w", err)
	}
	return out.Account.Email, nil
}

// toDomainRecord converts a Vultr API record to a domain.Record.
func toDomainRecord(r vultrRecord) domain.Record {
	return domain.Record{
		ID:       r.ID,
		Name:     r.Name,
		Type:     domain.RecordType(r.Type),
		Content:  r.Data,
		TTL:      r.TTL,
		Priority: r.Priority,
	}
}
