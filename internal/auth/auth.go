// Package auth provides API token storage and lookup.
//
// Tokens are resolved in priority order: TDQ_API_TOKEN environment variable,
// system keyring, plaintext fallback file under the config dir.
package auth

import (
	"context"
	"os"

	"github.com/tdq/tdq/internal/output"
)

// Manager resolves the API token for requests.
type Manager struct {
	store *Store
}

// NewManager creates a new auth manager backed by the given store.
func NewManager(store *Store) *Manager {
	return &Manager{store: store}
}

// AccessToken returns the API token to use for requests.
func (m *Manager) AccessToken(_ context.Context) (string, error) {
	if tok := os.Getenv("TDQ_API_TOKEN"); tok != "" {
		return tok, nil
	}
	tok, err := m.store.Load()
	if err != nil {
		return "", err
	}
	if tok == "" {
		return "", output.ErrAuth("Not authenticated")
	}
	return tok, nil
}

// Login stores the given token.
func (m *Manager) Login(token string) error {
	if token == "" {
		return output.ErrUsage("Token required")
	}
	return m.store.Save(token)
}

// Logout removes the stored token. The env var, if set, is untouched.
func (m *Manager) Logout() error {
	return m.store.Delete()
}

// Status reports where the active token comes from, without revealing it.
// Returns ("", false) when no token is available.
func (m *Manager) Status() (source string, ok bool) {
	if os.Getenv("TDQ_API_TOKEN") != "" {
		return "env", true
	}
	tok, err := m.store.Load()
	if err != nil || tok == "" {
		return "", false
	}
	if m.store.useKeyring {
		return "keyring", true
	}
	return "file", true
}
