package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/channelintel/pricewire/internal/common"
	"github.com/channelintel/pricewire/internal/models"
	"github.com/channelintel/pricewire/internal/vendors"
)

// forumListings are the listing endpoints queried per sub-channel and
// merged before filtering.
var forumListings = []string{"hot", "new", "top", "rising"}

// ForumFetcher collects posts from Reddit-style JSON listing APIs.
type ForumFetcher struct {
	cfg     common.ForumConfig
	dict    *vendors.Dictionary
	matcher *vendors.Matcher
	client  *http.Client
	limiter *rate.Limiter
	retry   *RetryPolicy
	cache   ResponseCache
	logger  arbor.ILogger
	now     func() time.Time
}

// NewForumFetcher creates a forum fetcher with the configured rate
// limit and request timeout. cache may be nil.
func NewForumFetcher(cfg common.ForumConfig, requestTimeout time.Duration, dict *vendors.Dictionary, matcher *vendors.Matcher, cache ResponseCache, logger arbor.ILogger) *ForumFetcher {
	return &ForumFetcher{
		cfg:     cfg,
		dict:    dict,
		matcher: matcher,
		client:  &http.Client{Timeout: requestTimeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
		retry:   NewRetryPolicy(),
		cache:   cache,
		logger:  logger,
		now:     time.Now,
	}
}

// Name implements Fetcher.
func (f *ForumFetcher) Name() string { return "forum" }

// listing and post mirror the subset of the listing API schema we read.
type forumListing struct {
	Data struct {
		Children []struct {
			Data forumPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type forumPost struct {
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Permalink   string  `json:"permalink"`
	CreatedUTC  float64 `json:"created_utc"`
	Ups         int     `json:"ups"`
	NumComments int     `json:"num_comments"`
}

// Fetch iterates the configured sub-channels, merges the listings,
// applies the quality and recency filters, and returns plain-text items.
func (f *ForumFetcher) Fetch(ctx context.Context) ([]models.RawItem, Stats, error) {
	stats := Stats{Source: f.Name()}
	now := f.now().UTC()
	fallbackCutoff := now.Add(-time.Duration(f.cfg.FallbackWindowHours) * time.Hour)

	seen := make(map[string]bool)
	var collected []models.RawItem
	var failures int
	var lastErr error

	for _, sub := range f.cfg.SubChannels {
		for _, listing := range forumListings {
			if err := f.limiter.Wait(ctx); err != nil {
				return collected, stats, err
			}

			endpoint := fmt.Sprintf("%s/r/%s/%s.json?limit=100&raw_json=1", f.cfg.BaseURL, sub, listing)
			body, err := f.get(ctx, endpoint, &stats)
			if err != nil {
				if ctx.Err() != nil {
					return collected, stats, ctx.Err()
				}
				if isPermanent(err) {
					return collected, stats, fmt.Errorf("forum sub-channel %s: %w", sub, err)
				}
				failures++
				lastErr = err
				f.logger.Warn().
					Str("sub_channel", sub).
					Str("listing", listing).
					Err(err).
					Msg("Forum listing fetch failed, continuing")
				continue
			}

			var parsed forumListing
			if err := json.Unmarshal(body, &parsed); err != nil {
				return collected, stats, fmt.Errorf("forum listing schema drift for %s/%s: %v: %w", sub, listing, err, ErrPermanentSource)
			}

			for _, child := range parsed.Data.Children {
				item, ok := f.toItem(child.Data, sub, now, fallbackCutoff)
				if !ok {
					stats.Discarded++
					continue
				}
				if seen[item.URL] {
					continue
				}
				seen[item.URL] = true
				collected = append(collected, item)
			}
		}
	}

	items := f.applyWindow(collected, now)
	stats.ItemsFetched = len(items)

	if len(items) == 0 && failures > 0 {
		return nil, stats, fmt.Errorf("all forum listings failed (last: %v): %w", lastErr, ErrTransientSource)
	}

	f.logger.Info().
		Str("source", f.Name()).
		Int("collected", len(collected)).
		Int("selected", len(items)).
		Int("discarded", stats.Discarded).
		Int("failed_listings", failures).
		Msg("Forum fetch complete")

	return items, stats, nil
}

// toItem converts one post, applying the fetch-boundary filters.
func (f *ForumFetcher) toItem(post forumPost, sub string, now, fallbackCutoff time.Time) (models.RawItem, bool) {
	postedAt := time.Unix(int64(post.CreatedUTC), 0).UTC()
	if postedAt.After(now) || postedAt.Before(fallbackCutoff) {
		return models.RawItem{}, false
	}

	title := StripHTML(post.Title)
	body := post.Selftext
	if body == "[removed]" || body == "[deleted]" {
		body = ""
	}
	body = StripHTML(body)

	engagement := models.Engagement{Upvotes: post.Ups, Comments: post.NumComments}
	if engagement.Upvotes == 0 && engagement.Comments == 0 && body == "" {
		return models.RawItem{}, false
	}

	// Low-engagement posts survive only when a tier-1 vendor is in the
	// title.
	if engagement.Upvotes < f.cfg.MinUpvotes && engagement.Comments < f.cfg.MinComments {
		if !f.tier1InTitle(title) {
			return models.RawItem{}, false
		}
	}

	url := NormalizeURL(f.cfg.BaseURL + post.Permalink)
	if url == "" {
		return models.RawItem{}, false
	}

	return models.RawItem{
		SourceKind:       models.SourceKindForum,
		SourceSubchannel: sub,
		Title:            title,
		Body:             body,
		URL:              url,
		PostedAt:         postedAt,
		Engagement:       engagement,
		ContentHash:      ContentHash(title, body),
	}, true
}

func (f *ForumFetcher) tier1InTitle(title string) bool {
	for _, vendor := range f.matcher.Match(title).Vendors {
		if f.dict.Tier(vendor) == 1 {
			return true
		}
	}
	return false
}

// applyWindow keeps items inside the primary window, widening to the
// fallback window when the primary yield is below the threshold.
func (f *ForumFetcher) applyWindow(items []models.RawItem, now time.Time) []models.RawItem {
	primaryCutoff := now.Add(-time.Duration(f.cfg.WindowHours) * time.Hour)

	var primary []models.RawItem
	for _, item := range items {
		if !item.PostedAt.Before(primaryCutoff) {
			primary = append(primary, item)
		}
	}

	if len(primary) >= f.cfg.FallbackThreshold {
		return primary
	}

	if len(items) > len(primary) {
		f.logger.Info().
			Int("primary_window_items", len(primary)).
			Int("fallback_window_items", len(items)).
			Msg("Primary window below threshold, widening to fallback window")
	}
	return items
}

// get performs one cached, rate-limited, retried GET.
func (f *ForumFetcher) get(ctx context.Context, url string, stats *Stats) ([]byte, error) {
	key := NormalizeURL(url)
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
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return 0, err
		}
		req.Header.Set("User-Agent", "pricewire/"+common.GetVersion())

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
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
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
