// Package config handles the persistent, human-editable configuration for
// vultrdyn.
//
// Configuration is stored as JSON at a path chosen by the operator (the
// --config flag, default "config.json"). The daemon polls the file's
// modification time and hot-reloads it without restarting.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"nathanbeddoewebdev/vultrdyn/internal/dns/domain"
)

// Defaults applied to fields left unset in the file.
const (
	DefaultRecordType    = domain.RecordTypeA
	DefaultTTL           = 300
	DefaultCheckInterval = 300 // seconds
	DefaultRetryInterval = 60  // seconds
	DefaultMaxRetries    = 3
)

// ErrInvalid is the root of all configuration validation failures.
var ErrInvalid = errors.New("invalid configuration")

// ValidationError describes a single rejected configuration field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: field %q: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is(err, ErrInvalid) match every validation failure.
func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Config is the full application configuration.
type Config struct {
	// APIKey is the Vultr API bearer token. May be empty when a token has
	// been stored in the OS keyring via "vultrdyn auth login".
	APIKey string `json:"api_key"`

	// Targets are the DNS records to keep synchronized, in update order.
	Targets []domain.Target `json:"domains"`

	// CheckInterval is the number of seconds between reconciliation cycles.
	CheckInterval int `json:"check_interval"`

	// RetryInterval is the extended backoff sleep, in seconds, applied after
	// MaxRetries consecutive failed cycles.
	RetryInterval int `json:"retry_interval"`

	// MaxRetries is the number of consecutive failed cycles tolerated
	// before the extended backoff kicks in.
	MaxRetries int `json:"max_retries"`
}

// CheckEvery returns CheckInterval as a duration.
func (c *Config) CheckEvery() time.Duration {
	return time.Duration(c.CheckInterval) * time.Second
}

// RetryAfter returns RetryInterval as a duration.
func (c *Config) RetryAfter() time.Duration {
	return time.Duration(c.RetryInterval) * time.Second
}

// Load reads, parses, and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: file %s not found: %w", path, err)
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w: %w", path, ErrInvalid, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills unset fields with their documented defaults.
func (c *Config) applyDefaults() {
	if c.CheckInterval <= 0 {
		c.CheckInterval = DefaultCheckInterval
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = DefaultRetryInterval
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	for i := range c.Targets {
		if c.Targets[i].RecordType == "" {
			c.Targets[i].RecordType = DefaultRecordType
		}
		if c.Targets[i].TTL <= 0 {
			c.Targets[i].TTL = DefaultTTL
		}
	}
}

// validTargetTypes are the record kinds a target may manage.
var validTargetTypes = map[domain.RecordType]bool{
	domain.RecordTypeA:    true,
	domain.RecordTypeAAAA: true,
}

func (c *Config) validate() error {
	if len(c.Targets) == 0 {
		return &ValidationError{Field: "domains", Reason: "at least one domain target is required"}
	}
	for i, t := range c.Targets {
		field := fmt.Sprintf("domains[%d]", i)
		if t.Domain == "" {
			return &ValidationError{Field: field + ".domain", Reason: "domain is required"}
		}
		if !validTargetTypes[t.RecordType] {
			return &ValidationError{
				Field:  field + ".record_type",
				Reason: fmt.Sprintf("unsupported record type %q (want A or AAAA)", t.RecordType),
			}
		}
	}
	return nil
}

// Save writes the config to path as indented JSON.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}
	return nil
}

// ModTime returns the config file's modification time, or the zero time when
// the file does not exist. The daemon compares successive values to detect
// edits during its sleep ticks.
func ModTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// Sample returns a template configuration suitable for writing out as
// config.sample.json.
func Sample() *Config {
	return &Config{
		APIKey: "YOUR_VULTR_API_KEY_HERE",
		Targets: []domain.Target{
			{Domain: "example.com", Subdomain: "", RecordType: domain.RecordTypeA, TTL: DefaultTTL},
			{Domain: "example.com", Subdomain: "blog", RecordType: domain.RecordTypeA, TTL: DefaultTTL},
		},
		CheckInterval: DefaultCheckInterval,
		RetryInterval: DefaultRetryInterval,
		MaxRetries:    DefaultMaxRetries,
	}
}
