package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdq/tdq/internal/output"
)

func newTestStore(t *testing.T) *Store {
	t.Setenv("TDQ_NO_KEYRING", "1")
	t.Setenv("TDQ_API_TOKEN", "")
	return NewStore(t.TempDir())
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)

	tok, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, store.Save("secret-123"))

	tok, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "secret-123", tok)

	// The fallback file must not be world-readable.
	fi, err := os.Stat(filepath.Join(store.fallbackDir, "token"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), fi.Mode().Perm())

	require.NoError(t, store.Delete())
	tok, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestStoreDeleteMissingToken(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Delete())
}

func TestManagerEnvTakesPrecedence(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save("stored-token"))
	t.Setenv("TDQ_API_TOKEN", "env-token")

	m := NewManager(store)
	tok, err := m.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "env-token", tok)

	source, ok := m.Status()
	assert.True(t, ok)
	assert.Equal(t, "env", source)
}

func TestManagerFallsBackToStore(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save("stored-token"))

	m := NewManager(store)
	tok, err := m.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stored-token", tok)

	source, ok := m.Status()
	assert.True(t, ok)
	assert.Equal(t, "file", source)
}

func TestManagerNotAuthenticated(t *testing.T) {
	m := NewManager(newTestStore(t))

	_, err := m.AccessToken(context.Background())
	require.Error(t, err)
	assert.Equal(t, output.CodeAuth, output.AsError(err).Code)

	_, ok := m.Status()
	assert.False(t, ok)
}

func TestManagerLoginRejectsEmptyToken(t *testing.T) {
	m := NewManager(newTestStore(t))
	err := m.Login("")
	require.Error(t, err)
	assert.Equal(t, output.CodeUsage, output.AsError(err).Code)
}
