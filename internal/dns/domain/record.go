package domain

// RecordType represents a DNS record type supported by the Vultr API.
type RecordType string

const (
	RecordTypeA     RecordType = "A"
	RecordTypeAAAA  RecordType = "AAAA"
	RecordTypeCNAME RecordType = "CNAME"
	RecordTypeNS    RecordType = "NS"
	RecordTypeMX    RecordType = "MX"
	RecordTypeSRV   RecordType = "SRV"
	RecordTypeTXT   RecordType = "TXT"
	RecordTypeCAA   RecordType = "CAA"
	RecordTypeSSHFP RecordType = "SSHFP"
)

// Record represents a single DNS record as held at the provider.
type Record struct {
	// ID is the provider-assigned record identifier.
	ID string `json:"id"`

	// Name is the record name exactly as the provider returned it. Vultr is
	// inconsistent here: a root record may come back as "", "@", the bare
	// domain, or the domain with a trailing dot. Callers should match names
	// through services.FindRecord rather than comparing directly.
	Name string `json:"name"`

	// Type is the DNS record type (A, AAAA, CNAME, etc.).
	Type RecordType `json:"type"`

	// Content is the record value (IP address, hostname, text, etc.).
	Content string `json:"content"`

	// TTL is the time-to-live in seconds.
	TTL int `json:"ttl"`

	// Priority is used for record types that support it (MX, SRV).
	// Zero means not applicable.
	Priority int `json:"priority"`
}

// Target is one configured (domain, subdomain, record type) triple to keep
// synchronized with the current public IP.
type Target struct {
	// Domain is the base domain registered at the provider (e.g. "example.com").
	Domain string `json:"domain"`

	// Subdomain is the record label. Empty means the root record.
	Subdomain string `json:"subdomain"`

	// RecordType is the kind of record to manage. Defaults to A.
	RecordType RecordType `json:"record_type"`

	// TTL is the time-to-live applied when a new record is created.
	// Existing records keep their current TTL on update.
	TTL int `json:"ttl"`
}

// FullName returns the fully-qualified name of the target
// (e.g. "blog.example.com", or "example.com" for a root target).
func (t Target) FullName() string {
	if t.Subdomain != "" {
		return t.Subdomain + "." + t.Domain
	}
	return t.Domain
}

// CreateRecordOpts holds the fields for creating a DNS record.
type CreateRecordOpts struct {
	Name     string
	Type     RecordType
	Content  string
	TTL      int
	Priority int
}

// UpdateRecordOpts holds the fields for patching a DNS record.
// Zero-valued fields are left unchanged at the provider.
type UpdateRecordOpts struct {
	Name     string
	Content  string
	TTL      int
	Priority int
}
