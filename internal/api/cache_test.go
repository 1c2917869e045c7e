package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	cache := NewCache(t.TempDir())
	key := cache.Key("http://example.test/api/v1/tasks", "token")

	require.NoError(t, cache.Set(key, []byte(`{"a":1}`), `"etag-1"`))

	assert.Equal(t, `"etag-1"`, cache.GetETag(key))
	assert.Equal(t, json.RawMessage(`{"a":1}`), cache.GetBody(key))
}

func TestCacheMiss(t *testing.T) {
	cache := NewCache(t.TempDir())
	assert.Empty(t, cache.GetETag("nope"))
	assert.Nil(t, cache.GetBody("nope"))
}

func TestCacheKeyVariesByURLAndToken(t *testing.T) {
	cache := NewCache(t.TempDir())

	a := cache.Key("http://example.test/a", "t1")
	b := cache.Key("http://example.test/b", "t1")
	c := cache.Key("http://example.test/a", "t2")

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, cache.Key("http://example.test/a", "t1"))
}

func TestCacheClear(t *testing.T) {
	cache := NewCache(t.TempDir())
	key := cache.Key("http://example.test/a", "t")
	require.NoError(t, cache.Set(key, []byte(`{}`), `"e"`))

	require.NoError(t, cache.Clear())
	assert.Empty(t, cache.GetETag(key))
}

func TestCacheOverwrite(t *testing.T) {
	cache := NewCache(t.TempDir())
	key := cache.Key("http://example.test/a", "t")

	require.NoError(t, cache.Set(key, []byte(`{"v":1}`), `"e1"`))
	require.NoError(t, cache.Set(key, []byte(`{"v":2}`), `"e2"`))

	assert.Equal(t, `"e2"`, cache.GetETag(key))
	assert.Equal(t, json.RawMessage(`{"v":2}`), cache.GetBody(key))
}
