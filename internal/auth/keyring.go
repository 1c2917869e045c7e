package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	serviceName = "tdq"
	keyringUser = "api_token"
)

// Store handles token storage, preferring the system keychain.
type Store struct {
	useKeyring  bool
	fallbackDir string
}

// NewStore creates a token store. fallbackDir holds the plaintext token file
// when no keyring is available.
func NewStore(fallbackDir string) *Store {
	// Skip keyring for tests or when explicitly disabled
	if os.Getenv("TDQ_NO_KEYRING") != "" {
		return &Store{useKeyring: false, fallbackDir: fallbackDir}
	}

	// Test if keyring is available
	testKey := "tdq::test"
	err := keyring.Set(serviceName, testKey, "test")
	if err == nil {
		_ = keyring.Delete(serviceName, testKey) // Best-effort cleanup
		return &Store{useKeyring: true, fallbackDir: fallbackDir}
	}
	fmt.Fprintf(os.Stderr, "warning: system keyring unavailable, token stored in plaintext at %s\n",
		filepath.Join(fallbackDir, "token"))
	return &Store{useKeyring: false, fallbackDir: fallbackDir}
}

func (s *Store) tokenPath() string {
	return filepath.Join(s.fallbackDir, "token")
}

// Load retrieves the stored token. Returns "" if none is stored.
func (s *Store) Load() (string, error) {
	if s.useKeyring {
		tok, err := keyring.Get(serviceName, keyringUser)
		if err == keyring.ErrNotFound {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		return tok, nil
	}

	data, err := os.ReadFile(s.tokenPath())
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Save stores the token.
func (s *Store) Save(token string) error {
	if s.useKeyring {
		return keyring.Set(serviceName, keyringUser, token)
	}
	if err := os.MkdirAll(s.fallbackDir, 0700); err != nil {
		return err
	}
	return os.WriteFile(s.tokenPath(), []byte(token+"\n"), 0600)
}

// Delete removes the stored token. Missing tokens are not an error.
func (s *Store) Delete() error {
	if s.useKeyring {
		err := keyring.Delete(serviceName, keyringUser)
		if err == keyring.ErrNotFound {
			return nil
		}
		return err
	}
	err := os.Remove(s.tokenPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
