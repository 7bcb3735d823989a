package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/channelintel/pricewire/internal/common"
	"github.com/channelintel/pricewire/internal/models"
	"github.com/channelintel/pricewire/internal/vendors"
)

// SearchFetcher collects articles from a Custom Search-style REST API.
type SearchFetcher struct {
	cfg     common.SearchConfig
	dict    *vendors.Dictionary
	client  *http.Client
	limiter *rate.Limiter
	retry   *RetryPolicy
	cache   ResponseCache
	logger  arbor.ILogger
	now     func() time.Time
}

// NewSearchFetcher creates a search fetcher. cache may be nil.
func NewSearchFetcher(cfg common.SearchConfig, requestTimeout time.Duration, dict *vendors.Dictionary, cache ResponseCache, logger arbor.ILogger) *SearchFetcher {
	return &SearchFetcher{
		cfg:     cfg,
		dict:    dict,
		client:  &http.Client{Timeout: requestTimeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
		retry:   NewRetryPolicy(),
		cache:   cache,
		logger:  logger,
		now:     time.Now,
	}
}

// Name implements Fetcher.
func (f *SearchFetcher) Name() string { return "search" }

type searchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// Fetch executes every configured query (with the {year} token
// resolved), plus per-vendor enhancement queries for tier-1 vendors,
// and merges results by normalised URL.
func (f *SearchFetcher) Fetch(ctx context.Context) ([]models.RawItem, Stats, error) {
	stats := Stats{Source: f.Name()}

	if f.cfg.APIKey == "" || f.cfg.EngineID == "" {
		return nil, stats, fmt.Errorf("search API key or engine id missing: %w", ErrPermanentSource)
	}

	now := f.now().UTC()
	queries := f.buildQueries(now)

	seen := make(map[string]bool)
	var items []models.RawItem
	var failures int
	var lastErr error

	for _, query := range queries {
		if err := f.limiter.Wait(ctx); err != nil {
			return items, stats, err
		}

		body, err := f.get(ctx, f.requestURL(query), &stats)
		if err != nil {
			if ctx.Err() != nil {
				return items, stats, ctx.Err()
			}
			if isPermanent(err) {
				return items, stats, fmt.Errorf("search query %q: %w", query, err)
			}
			failures++
			lastErr = err
			f.logger.Warn().Str("query", query).Err(err).Msg("Search query failed, continuing")
			continue
		}

		var parsed searchResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return items, stats, fmt.Errorf("search response schema drift for %q: %v: %w", query, err, ErrPermanentSource)
		}

		for _, result := range parsed.Items {
			link := NormalizeURL(result.Link)
			if link == "" || seen[link] {
				continue
			}
			seen[link] = true

			title := StripHTML(result.Title)
			snippet := StripHTML(result.Snippet)
			if title == "" && snippet == "" {
				stats.Discarded++
				continue
			}

			items = append(items, models.RawItem{
				SourceKind:       models.SourceKindSearch,
				SourceSubchannel: query,
				Title:            title,
				Body:             snippet,
				URL:              link,
				PostedAt:         now,
				ContentHash:      ContentHash(title, snippet),
			})
		}
	}

	stats.ItemsFetched = len(items)

	if len(items) == 0 && failures > 0 {
		return nil, stats, fmt.Errorf("all search queries failed (last: %v): %w", lastErr, ErrTransientSource)
	}

	f.logger.Info().
		Str("source", f.Name()).
		Int("queries", len(queries)).
		Int("items", len(items)).
		Int("failed_queries", failures).
		Msg("Search fetch complete")

	return items, stats, nil
}

// buildQueries resolves the {year} template and appends capped
// per-vendor pricing queries for tier-1 vendors.
func (f *SearchFetcher) buildQueries(now time.Time) []string {
	year := strconv.Itoa(now.Year())

	queries := make([]string, 0, len(f.cfg.Queries))
	seen := make(map[string]bool)
	for _, q := range f.cfg.Queries {
		resolved := strings.TrimSpace(strings.ReplaceAll(q, "{year}", year))
		if resolved == "" || seen[resolved] {
			continue
		}
		seen[resolved] = true
		queries = append(queries, resolved)
	}

	if f.cfg.EnhanceTier1 {
		added := 0
		for _, vendor := range f.dict.Canonicals() {
			if f.dict.Tier(vendor) != 1 {
				continue
			}
			if f.cfg.MaxEnhancementQueries > 0 && added >= f.cfg.MaxEnhancementQueries {
				break
			}
			enhanced := fmt.Sprintf("%q price increase %s", vendor, year)
			if seen[enhanced] {
				continue
			}
			seen[enhanced] = true
			queries = append(queries, enhanced)
			added++
		}
	}

	return queries
}

func (f *SearchFetcher) requestURL(query string) string {
	params := url.Values{}
	params.Set("key", f.cfg.APIKey)
	params.Set("cx", f.cfg.EngineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(f.cfg.ResultsPerQuery))
	if f.cfg.DateRestriction != "" {
		params.Set("dateRestrict", f.cfg.DateRestriction)
	}
	return f.cfg.BaseURL + "?" + params.Encode()
}

// get performs one cached, retried GET. The cache key excludes the API
// key so rotating credentials doesn't invalidate cached responses.
func (f *SearchFetcher) get(ctx context.Context, requestURL string, stats *Stats) ([]byte, error) {
	key := cacheKeyWithoutCredentials(requestURL)
	if f.cache != nil {
		if body, ok := f.cache.Get(key); ok {
			stats.CacheHits++
			return body, nil
		}
		stats.CacheMisses++
	}

	var body []byte
	status, err := f.retry.ExecuteWithRetry(ctx, f.logger, func() (int, error) {
		stats.Requests++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return 0, err
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return 0, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
		if err != nil {
			return resp.StatusCode, err
		}
		if resp.StatusCode != http.StatusOK {
			return resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		body = data
		return resp.StatusCode, nil
	})
	if err != nil {
		if status == http.StatusUnauthorized || status == http.StatusForbidden || status == http.StatusBadRequest {
			return nil, fmt.Errorf("status %d: %w", status, ErrPermanentSource)
		}
		return nil, err
	}

	if f.cache != nil {
		if cacheErr := f.cache.Set(key, body); cacheErr != nil {
			f.logger.Debug().Err(cacheErr).Msg("Response cache write failed")
		}
	}
	return body, nil
}

func cacheKeyWithoutCredentials(requestURL string) string {
	u, err := url.Parse(requestURL)
	if err != nil {
		return requestURL
	}
	query := u.Query()
	query.Del("key")
	u.RawQuery = query.Encode()
	return u.String()
}
