package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// Cache stores GET response bodies keyed by URL+token, validated with ETags.
// Entries are JSON files under the cache dir; writes are guarded by a file
// lock so concurrent tdq processes don't corrupt entries.
type Cache struct {
	dir string
}

type cacheEntry struct {
	ETag string          `json:"etag"`
	Body json.RawMessage `json:"body"`
}

// lockTimeout is the maximum wait for the cache lock. On timeout the
// operation proceeds without locking; a lost cache write only costs a
// re-fetch.
const lockTimeout = 100 * time.Millisecond

// NewCache creates a response cache rooted at dir.
func NewCache(dir string) *Cache {
	return &Cache{dir: filepath.Join(dir, "responses")}
}

// Key derives a cache key from the URL and token. The token is mixed in so
// responses are never shared across identities.
func (c *Cache) Key(url, token string) string {
	sum := sha256.Sum256([]byte(url + "\x00" + token))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func (c *Cache) lockPath() string {
	return filepath.Join(c.dir, ".lock")
}

// GetETag returns the stored ETag for key, or "" if none.
func (c *Cache) GetETag(key string) string {
	entry := c.load(key)
	if entry == nil {
		return ""
	}
	return entry.ETag
}

// GetBody returns the stored body for key, or nil if none.
func (c *Cache) GetBody(key string) json.RawMessage {
	entry := c.load(key)
	if entry == nil {
		return nil
	}
	return entry.Body
}

func (c *Cache) load(key string) *cacheEntry {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil // Corrupt entry, treat as miss
	}
	return &entry
}

// Set stores a body and its ETag for key.
func (c *Cache) Set(key string, body []byte, etag string) error {
	if err := os.MkdirAll(c.dir, 0700); err != nil {
		return err
	}

	lock := c.acquireLock()
	if lock != nil {
		defer func() { _ = lock.Unlock() }()
	}

	entry := cacheEntry{ETag: etag, Body: body}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	// Write via temp file then rename for atomicity
	tmpPath := c.path(key) + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, c.path(key)); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// acquireLock obtains the cache lock, or nil on timeout (fail-open: brief
// race windows beat hanging the CLI on a stale lock).
func (c *Cache) acquireLock() *flock.Flock {
	fl := flock.New(c.lockPath())

	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, 10*time.Millisecond)
	if err != nil || !locked {
		return nil
	}
	return fl
}

// Clear removes all cached responses.
func (c *Cache) Clear() error {
	err := os.RemoveAll(c.dir)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
