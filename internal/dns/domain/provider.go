package domain

import "context"

// Provider is the record CRUD surface the reconciliation service drives.
// It is implemented by the Vultr client; tests substitute in-memory fakes.
type Provider interface {
	// ListRecords returns all DNS records for the given domain.
	ListRecords(ctx context.Context, domain string) ([]Record, error)

	// GetRecord returns a single DNS record by its ID.
	GetRecord(ctx context.Context, domain string, id string) (*Record, error)

	// CreateRecord creates a new DNS record and returns the created record.
	CreateRecord(ctx context.Context, domain string, opts CreateRecordOpts) (*Record, error)

	// UpdateRecord patches an existing DNS record by its ID. Only the
	// non-zero fields of opts are sent to the provider.
	UpdateRecord(ctx context.Context, domain string, id string, opts UpdateRecordOpts) error

	// DeleteRecord deletes a DNS record by its ID.
	DeleteRecord(ctx context.Context, domain string, id string) error
}
