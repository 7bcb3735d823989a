// Package fetch implements the source fetchers: a forum listing client
// and a web-search client, with shared retry, rate-limit, and
// normalisation plumbing.
package fetch

import (
	"context"
	"errors"

	"github.com/channelintel/pricewire/internal/models"
)

// Sentinel classifications for per-source failures. The orchestrator
// logs permanent failures and continues with the remaining sources.
var (
	// ErrPermanentSource marks auth failures, non-retryable 4xx, and
	// schema drift in a third-party API.
	ErrPermanentSource = errors.New("permanent source failure")
	// ErrTransientSource marks failures that survived the retry budget.
	ErrTransientSource = errors.New("transient source failure")
)

// Stats describes one fetcher invocation.
type Stats struct {
	Source       string `json:"source"`
	Requests     int    `json:"requests"`
	ItemsFetched int    `json:"items_fetched"`
	Discarded    int    `json:"discarded"`
	CacheHits    int    `json:"cache_hits"`
	CacheMisses  int    `json:"cache_misses"`
}

// Fetcher is the contract every source implements. Fetch returns the
// items it collected even when it also returns an error; a per-source
// timeout surfaces as a partial result plus an error.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]models.RawItem, Stats, error)
}

// ResponseCache is the optional content-addressed HTTP response cache.
// A nil cache disables caching.
type ResponseCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, body []byte) error
}

func isPermanent(err error) bool {
	return errors.Is(err, ErrPermanentSource)
}
