package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/channelintel/pricewire/internal/common"
)

func openTestCache(t *testing.T) *ResponseCache {
	t.Helper()
	cfg := common.CacheConfig{
		Enabled:  true,
		TTLHours: 1,
		Path:     t.TempDir(),
	}
	c, err := Open(cfg, common.GetLogger())
	require.NoError(t, err)
	require.NotNil(t, c)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestOpenDisabledReturnsNil(t *testing.T) {
	c, err := Open(common.CacheConfig{Enabled: false}, common.GetLogger())
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestSetAndGet(t *testing.T) {
	c := openTestCache(t)

	_, ok := c.Get("https://api.example.com/a")
	assert.False(t, ok)

	require.NoError(t, c.Set("https://api.example.com/a", []byte(`{"ok":true}`)))

	body, ok := c.Get("https://api.example.com/a")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"ok":true}`), body)

	hits, misses := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestSetOverwrites(t *testing.T) {
	c := openTestCache(t)

	require.NoError(t, c.Set("key", []byte("first")))
	require.NoError(t, c.Set("key", []byte("second")))

	body, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, []byte("second"), body)
}

func TestEntriesExpire(t *testing.T) {
	cfg := common.CacheConfig{Enabled: true, TTLHours: 1, Path: t.TempDir()}
	c, err := Open(cfg, common.GetLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	// Force an immediate TTL so expiry is observable in-test.
	c.ttl = time.Millisecond
	require.NoError(t, c.Set("short-lived", []byte("x")))
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("short-lived")
	assert.False(t, ok)
}
