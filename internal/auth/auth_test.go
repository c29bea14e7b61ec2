package auth

import (
	"errors"
	"testing"
)

func TestMockStore_RoundTrip(t *testing.T) {
	store := NewMockStore()

	if _, err := store.GetToken(); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}

	if err := store.SetToken("secret"); err != nil {
		t.Fatalf("set: %v", err)
	}

	token, err := store.GetToken()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if token != "secret" {
		t.Errorf("token = %q, want %q", token, "secret")
	}

	if err := store.DeleteToken(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetToken(); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("expected ErrTokenNotFound after delete, got %v", err)
	}
	if err := store.DeleteToken(); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("expected ErrTokenNotFound on double delete, got %v", err)
	}
}

func TestResolveAPIKey_ConfigValueWins(t *testing.T) {
	store := NewMockStore()
	_ = store.SetToken("from-keyring")

	key, err := ResolveAPIKey("from-config", store)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if key != "from-config" {
		t.Errorf("key = %q, want the config value", key)
	}
}

func TestResolveAPIKey_FallsBackToStore(t *testing.T) {
	store := NewMockStore()
	_ = store.SetToken("from-keyring")

	key, err := ResolveAPIKey("", store)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if key != "from-keyring" {
		t.Errorf("key = %q, want the keyring value", key)
	}
}

func TestResolveAPIKey_NoKeyAnywhere(t *testing.T) {
	_, err := ResolveAPIKey("", NewMockStore())
	if !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("expected ErrTokenNotFound, got %v", err)
	}
}
