// Package cache provides a content-addressed HTTP response cache backed
// by BadgerDB. Entries expire via TTL; the cache is advisory, never
// authoritative.
package cache

import (
	"crypto/sha256"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"

	"github.com/channelintel/pricewire/internal/common"
)

// ResponseCache stores raw API response bodies keyed by request URL.
// Writes are last-write-wins; readers may see entries up to TTL old.
type ResponseCache struct {
	db     *badger.DB
	ttl    time.Duration
	logger arbor.ILogger
	hits   atomic.Int64
	misses atomic.Int64
}

// Open creates or opens the cache at the configured path. Returns nil
// (no cache, no error) when caching is disabled.
func Open(cfg common.CacheConfig, logger arbor.ILogger) (*ResponseCache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	if err := os.MkdirAll(cfg.Path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	options := badger.DefaultOptions(cfg.Path)
	options.Logger = nil // Disable default badger logger to use arbor

	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open response cache: %w", err)
	}

	logger.Debug().
		Str("path", cfg.Path).
		Int("ttl_hours", cfg.TTLHours).
		Msg("Response cache opened")

	return &ResponseCache{
		db:     db,
		ttl:    time.Duration(cfg.TTLHours) * time.Hour,
		logger: logger,
	}, nil
}

func cacheKey(key string) []byte {
	sum := sha256.Sum256([]byte(key))
	return sum[:]
}

// Get returns the cached body for a key, if present and unexpired.
func (c *ResponseCache) Get(key string) ([]byte, bool) {
	var body []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(key))
		if err != nil {
			return err
		}
		body, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return body, true
}

// Set stores a body under the key with the configured TTL.
func (c *ResponseCache) Set(key string, body []byte) error {
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(cacheKey(key), body).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
}

// Stats returns the hit and miss counters for this process.
func (c *ResponseCache) Stats() (hits, misses int) {
	return int(c.hits.Load()), int(c.misses.Load())
}

// Close closes the underlying database.
func (c *ResponseCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}
