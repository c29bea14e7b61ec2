// Package auth stores the Vultr API token in the OS keychain as an
// alternative to keeping it in the plaintext config file.
package auth

import "errors"

const (
	// ServiceName is the keychain service entry vultrdyn stores under.
	ServiceName = "vultrdyn"

	// TokenKey is the keychain account key for the Vultr API token.
	TokenKey = "vultr-api-key"
)

// ErrTokenNotFound indicates no token has been stored.
var ErrTokenNotFound = errors.New("auth token not found")

// Store holds the API token.
type Store interface {
	SetToken(token string) error
	GetToken() (string, error)
	DeleteToken() error
}

// DefaultStore returns the standard store backed by the OS keychain.
func DefaultStore() Store {
	return NewKeyringStore(ServiceName)
}

// ResolveAPIKey returns the API key from the config value when set,
// otherwise from the store. An empty string with a nil error never happens:
// a missing key surfaces ErrTokenNotFound.
func ResolveAPIKey(configured string, store Store) (string, error) {
	if configured != "" {
		return configured, nil
	}
	return store.GetToken()
}
