// Package services provides the DNS reconciliation layer.
//
// The Service type wraps a domain.Provider and adds record lookup by logical
// target (tolerating Vultr's inconsistent record-name representations) and
// the Ensure operation that drives a record to a desired address, including
// the TTL-consistency heuristics used when creating new records. Commands
// and the updater call the Service rather than the provider directly.
package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"nathanbeddoewebdev/vultrdyn/internal/dns/domain"
	"nathanbeddoewebdev/vultrdyn/internal/dns/vultr"
)

// fallbackTTLs are common TTL values tried in order when the provider
// rejects a record creation for a TTL-related reason.
var fallbackTTLs = []int{3600, 1800, 7200, 300, 600}

// Service is the DNS reconciliation logic. It sits between the updater and
// the provider.
type Service struct {
	provider domain.Provider
	log      *zap.SugaredLogger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for reconciliation decisions.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// New returns a Service backed by the given provider.
func New(provider domain.Provider, opts ...Option) *Service {
	svc := &Service{
		provider: provider,
		log:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// ListRecords returns all DNS records for the given domain.
func (s *Service) ListRecords(ctx context.Context, domainName string) ([]domain.Record, error) {
	domainName = normalizeDomain(domainName)
	if domainName == "" {
		return nil, fmt.Errorf("domain name is required")
	}
	return s.provider.ListRecords(ctx, domainName)
}

// DeleteRecord deletes a DNS record by domain and ID.
func (s *Service) DeleteRecord(ctx context.Context, domainName string, id string) error {
	domainName = normalizeDomain(domainName)
	if domainName == "" {
		return fmt.Errorf("domain name is required")
	}
	if id == "" {
		return fmt.Errorf("record ID is required")
	}
	return s.provider.DeleteRecord(ctx, domainName, id)
}

// FindRecord returns the record matching the logical (domain, subdomain,
// type) target, or nil when no record matches. Absence is not an error.
func (s *Service) FindRecord(ctx context.Context, domainName, subdomain string, recordType domain.RecordType) (*domain.Record, error) {
	domainName = normalizeDomain(domainName)
	subdomain = normalizeSubdomain(subdomain, domainName)

	records, err := s.provider.ListRecords(ctx, domainName)
	if err != nil {
		return nil, err
	}
	return findIn(records, domainName, subdomain, recordType), nil
}

// FindRecords returns every record of the given type whose raw name matches
// the logical target. More than one result means the domain carries duplicate
// records for the same name under different representations.
func (s *Service) FindRecords(ctx context.Context, domainName, subdomain string, recordType domain.RecordType) ([]domain.Record, error) {
	domainName = normalizeDomain(domainName)
	subdomain = normalizeSubdomain(subdomain, domainName)

	records, err := s.provider.ListRecords(ctx, domainName)
	if err != nil {
		return nil, err
	}

	candidates := candidateNames(domainName, subdomain)
	var matches []domain.Record
	for _, r := range records {
		if r.Type != recordType {
			continue
		}
		for _, name := range candidates {
			if r.Name == name {
				matches = append(matches, r)
				break
			}
		}
	}
	return matches, nil
}

// findIn returns the first record of the given type whose raw name is a
// member of the target's candidate-name set, or nil.
func findIn(records []domain.Record, domainName, subdomain string, recordType domain.RecordType) *domain.Record {
	candidates := candidateNames(domainName, subdomain)
	for i, r := range records {
		if r.Type != recordType {
			continue
		}
		for _, name := range candidates {
			if r.Name == name {
				return &records[i]
			}
		}
	}
	return nil
}

// EnsureAction describes what Ensure did to a target record.
type EnsureAction string

const (
	// ActionUnchanged means the record already held the desired value.
	ActionUnchanged EnsureAction = "unchanged"
	// ActionUpdated means an existing record's value was patched.
	ActionUpdated EnsureAction = "updated"
	// ActionCreated means a new record was created.
	ActionCreated EnsureAction = "created"
)

// EnsureResult reports the outcome of a single Ensure call.
type EnsureResult struct {
	// Action is what happened to the record.
	Action EnsureAction

	// PreviousValue is the record value before the call, empty when the
	// record did not exist.
	PreviousValue string

	// TTL is the TTL in effect after the call.
	TTL int

	// TTLOverridden is true when the effective TTL differs from the
	// target's configured TTL (existing record kept its TTL, the domain's
	// TTL convention was adopted, or a fallback TTL was needed).
	TTLOverridden bool
}

// Ensure drives the target's record to the desired address.
//
// An existing record with the desired value is left alone. An existing
// record with a different value gets its value patched and keeps its current
// TTL: the configured TTL only governs new records. When no record exists
// one is created, preferring the TTL already in use on the domain (the first
// listed record's) over the configured one so all records on a domain stay
// consistent.
func (s *Service) Ensure(ctx context.Context, target domain.Target, address string) (*EnsureResult, error) {
	domainName := normalizeDomain(target.Domain)
	subdomain := normalizeSubdomain(target.Subdomain, domainName)
	name := displayName(subdomain)

	records, err := s.provider.ListRecords(ctx, domainName)
	if err != nil {
		return nil, err
	}

	existing := findIn(records, domainName, subdomain, target.RecordType)
	if existing != nil {
		if existing.Content == address {
			s.log.Debugw("record already current",
				"record", name+"."+domainName, "address", address)
			return &EnsureResult{
				Action:        ActionUnchanged,
				PreviousValue: existing.Content,
				TTL:           existing.TTL,
				TTLOverridden: existing.TTL != target.TTL,
			}, nil
		}

		// Patch the value only. The record keeps its current TTL.
		if existing.TTL != target.TTL {
			s.log.Infow("keeping existing TTL instead of configured",
				"record", name+"."+domainName,
				"existing_ttl", existing.TTL, "configured_ttl", target.TTL)
		}
		err := s.provider.UpdateRecord(ctx, domainName, existing.ID, domain.UpdateRecordOpts{
			Content: address,
		})
		if err != nil {
			return nil, err
		}
		s.log.Infow("updated record",
			"record", name+"."+domainName,
			"old", existing.Content, "new", address, "ttl", existing.TTL)
		return &EnsureResult{
			Action:        ActionUpdated,
			PreviousValue: existing.Content,
			TTL:           existing.TTL,
			TTLOverridden: existing.TTL != target.TTL,
		}, nil
	}

	// No record yet. Prefer the TTL convention already in use on the domain.
	ttl := target.TTL
	if len(records) > 0 && records[0].TTL != ttl {
		s.log.Infow("adopting domain TTL for new record",
			"record", name+"."+domainName,
			"domain_ttl", records[0].TTL, "configured_ttl", ttl)
		ttl = records[0].TTL
	}

	created, err := s.createWithTTLFallback(ctx, domainName, subdomain, target.RecordType, address, ttl)
	if err != nil {
		return nil, err
	}
	s.log.Infow("created record",
		"record", name+"."+domainName, "address", address, "ttl", created.TTL)
	return &EnsureResult{
		Action:        ActionCreated,
		TTL:           created.TTL,
		TTLOverridden: created.TTL != target.TTL,
	}, nil
}

// createWithTTLFallback creates the record at the given TTL. When the
// provider rejects the creation for a TTL-related reason, common TTL values
// are tried in a fixed order, skipping the one already attempted. If none
// succeed the original failure is surfaced.
func (s *Service) createWithTTLFallback(ctx context.Context, domainName, subdomain string, recordType domain.RecordType, address string, ttl int) (*domain.Record, error) {
	// Vultr expects "@" for the root record on creation.
	opts := domain.CreateRecordOpts{
		Name:    displayName(subdomain),
		Type:    recordType,
		Content: address,
		TTL:     ttl,
	}

	created, err := s.provider.CreateRecord(ctx, domainName, opts)
	if err == nil {
		return created, nil
	}
	if !vultr.IsTTLError(err) {
		return nil, err
	}

	for _, fallback := range fallbackTTLs {
		if fallback == ttl {
			continue
		}
		s.log.Infow("retrying record creation with fallback TTL",
			"record", displayName(subdomain)+"."+domainName, "ttl", fallback)
		opts.TTL = fallback
		created, retryErr := s.provider.CreateRecord(ctx, domainName, opts)
		if retryErr == nil {
			return created, nil
		}
	}

	return nil, err
}
