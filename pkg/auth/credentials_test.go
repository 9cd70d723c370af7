package auth

import (
	"errors"
	"testing"
	"time"
)

func TestCredentialManager(t *testing.T) {
	// Use mock manager for reliable testing
	manager, _ := NewMockManager()

	account := &Account{
		Label:             "research",
		ConsumerKey:       "test_consumer_key_12345",
		ConsumerSecret:    "test_consumer_secret_67890",
		AccessToken:       "test_access_token_11111",
		AccessTokenSecret: "test_access_token_secret_22222",
		LastModified:      time.Now(),
	}

	err := manager.Store(account)
	if err != nil {
		t.Errorf("Failed to store account: %v", err)
	}

	retrieved, err := manager.Retrieve("research")
	if err != nil {
		t.Fatalf("Failed to retrieve account: %v", err)
	}

	if retrieved.Label != account.Label {
		t.Errorf("Label mismatch: got %s, want %s", retrieved.Label, account.Label)
	}
	if retrieved.ConsumerKey != account.ConsumerKey {
		t.Errorf("ConsumerKey mismatch: got %s, want %s", retrieved.ConsumerKey, account.ConsumerKey)
	}
	if retrieved.AccessTokenSecret != account.AccessTokenSecret {
		t.Errorf("AccessTokenSecret mismatch: got %s, want %s", retrieved.AccessTokenSecret, account.AccessTokenSecret)
	}

	accounts, err := manager.List()
	if err != nil {
		t.Errorf("Failed to list accounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Errorf("Expected one account in list, got %d", len(accounts))
	}

	// Test sanitization
	sanitized := SanitizeAccount(account)
	if sanitized.ConsumerSecret == account.ConsumerSecret {
		t.Error("ConsumerSecret should be masked")
	}
	if sanitized.AccessTokenSecret == account.AccessTokenSecret {
		t.Error("AccessTokenSecret should be masked")
	}
	if sanitized.Label != account.Label {
		t.Error("Label should not be masked")
	}

	// Test deletion
	if err := manager.Delete("research"); err != nil {
		t.Errorf("Failed to delete account: %v", err)
	}
	if _, err := manager.Retrieve("research"); !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("Expected ErrCredentialsNotFound after delete, got %v", err)
	}
}

func TestStoreValidation(t *testing.T) {
	manager, _ := NewMockManager()

	incomplete := &Account{
		Label:       "broken",
		ConsumerKey: "only_a_consumer_key",
	}
	if err := manager.Store(incomplete); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}

	unlabeled := &Account{
		ConsumerKey:       "ck",
		ConsumerSecret:    "cs",
		AccessToken:       "at",
		AccessTokenSecret: "ats",
	}
	if err := manager.Store(unlabeled); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for missing label, got %v", err)
	}
}

func TestManagerStoreFallback(t *testing.T) {
	// First store fails, the manager falls through to the second
	failing := NewMockStore()
	failing.StoreError = errors.New("keychain locked")
	working := NewMockStore()

	manager := NewMockManagerWithStores(failing, working)

	account := &Account{
		Label:             "fallback",
		ConsumerKey:       "ck",
		ConsumerSecret:    "cs",
		AccessToken:       "at",
		AccessTokenSecret: "ats",
	}
	if err := manager.Store(account); err != nil {
		t.Fatalf("Expected store to fall back, got %v", err)
	}

	if !working.Exists("fallback") {
		t.Error("Expected account in the fallback store")
	}
}

func TestManagerRetrieveSearchesAllStores(t *testing.T) {
	first := NewMockStore()
	second := NewMockStore()
	manager := NewMockManagerWithStores(first, second)

	account := &Account{
		Label:             "deep",
		ConsumerKey:       "ck",
		ConsumerSecret:    "cs",
		AccessToken:       "at",
		AccessTokenSecret: "ats",
	}
	if err := second.Store(account); err != nil {
		t.Fatalf("Failed to seed second store: %v", err)
	}

	retrieved, err := manager.Retrieve("deep")
	if err != nil {
		t.Fatalf("Expected retrieve to search all stores: %v", err)
	}
	if retrieved.ConsumerKey != "ck" {
		t.Errorf("ConsumerKey mismatch: got %s", retrieved.ConsumerKey)
	}

	if _, err := manager.Retrieve("absent"); !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("Expected ErrCredentialsNotFound, got %v", err)
	}
}

func TestEnvironmentStore(t *testing.T) {
	t.Setenv("TWSNAP_CONSUMER_KEY", "env_ck")
	t.Setenv("TWSNAP_CONSUMER_SECRET", "env_cs")
	t.Setenv("TWSNAP_ACCESS_TOKEN", "env_at")
	t.Setenv("TWSNAP_ACCESS_TOKEN_SECRET", "env_ats")

	store := NewEnvironmentStore()

	account, err := store.Retrieve("")
	if err != nil {
		t.Fatalf("Failed to retrieve from environment: %v", err)
	}
	if account.Label != "env" {
		t.Errorf("Expected default label env, got %s", account.Label)
	}
	if account.ConsumerKey != "env_ck" || account.AccessTokenSecret != "env_ats" {
		t.Error("Environment values not mapped onto account")
	}

	// Read-only store
	if err := store.Store(account); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Expected ErrStoreUnavailable on Store, got %v", err)
	}
	if err := store.Delete("env"); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Expected ErrStoreUnavailable on Delete, got %v", err)
	}

	accounts, err := store.List()
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(accounts) != 1 {
		t.Errorf("Expected one environment account, got %d", len(accounts))
	}
}

func TestEnvironmentStoreIncomplete(t *testing.T) {
	t.Setenv("TWSNAP_CONSUMER_KEY", "env_ck")
	t.Setenv("TWSNAP_CONSUMER_SECRET", "")
	t.Setenv("TWSNAP_ACCESS_TOKEN", "")
	t.Setenv("TWSNAP_ACCESS_TOKEN_SECRET", "")

	store := NewEnvironmentStore()
	if _, err := store.Retrieve(""); !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("Expected ErrCredentialsNotFound for partial env, got %v", err)
	}
	if store.Exists("") {
		t.Error("Expected Exists to be false for partial env")
	}
}

func TestMaskString(t *testing.T) {
	if masked := maskString("abcdefghijkl"); masked == "abcdefghijkl" {
		t.Error("Expected long string to be masked")
	}
	if masked := maskString("short"); masked != "********" {
		t.Errorf("Expected short string to be fully masked, got %s", masked)
	}
}
