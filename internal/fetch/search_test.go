package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/channelintel/pricewire/internal/common"
	"github.com/channelintel/pricewire/internal/models"
	"github.com/channelintel/pricewire/internal/vendors"
)

func searchConfig(baseURL string) common.SearchConfig {
	return common.SearchConfig{
		BaseURL:         baseURL,
		APIKey:          "test-key",
		EngineID:        "test-cx",
		Queries:         []string{`enterprise pricing increase {year}`},
		ResultsPerQuery: 10,
		DateRestriction: "d7",
		RatePerSec:      1000,
	}
}

func newSearchFetcher(t *testing.T, cfg common.SearchConfig) *SearchFetcher {
	t.Helper()
	f := NewSearchFetcher(cfg, 5*time.Second, vendors.Default(), nil, common.GetLogger())
	f.now = func() time.Time { return testNow }
	return f
}

func searchJSON(results ...[2]string) string {
	items := make([]map[string]string, len(results))
	for i, r := range results {
		items[i] = map[string]string{"title": r[0], "link": r[1], "snippet": "snippet for " + r[0]}
	}
	out, _ := json.Marshal(map[string]any{"items": items})
	return string(out)
}

func TestSearchFetchTemplatesYearAndNormalizes(t *testing.T) {
	var queries []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("q"))
		assert.Equal(t, "test-cx", r.URL.Query().Get("cx"))
		assert.Equal(t, "d7", r.URL.Query().Get("dateRestrict"))
		fmt.Fprint(w, searchJSON(
			[2]string{"Oracle raises support fees", "https://News.example.com/oracle?utm_source=rss"},
			[2]string{"Oracle raises support fees again", "https://news.example.com/oracle"},
		))
	}))
	defer server.Close()

	f := newSearchFetcher(t, searchConfig(server.URL))
	items, stats, err := f.Fetch(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, queries)
	assert.Equal(t, "enterprise pricing increase "+strconv.Itoa(testNow.Year()), queries[0])

	// Two results with equivalent URLs collapse to one
	require.Len(t, items, 1)
	assert.Equal(t, "https://news.example.com/oracle", items[0].URL)
	assert.Equal(t, models.SourceKindSearch, items[0].SourceKind)
	assert.Zero(t, items[0].Engagement.Upvotes)
	assert.Equal(t, 1, stats.ItemsFetched)
}

func TestSearchFetchEnhancementQueries(t *testing.T) {
	var queries []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("q"))
		fmt.Fprint(w, searchJSON())
	}))
	defer server.Close()

	cfg := searchConfig(server.URL)
	cfg.EnhanceTier1 = true
	cfg.MaxEnhancementQueries = 3

	f := newSearchFetcher(t, cfg)
	_, _, err := f.Fetch(context.Background())
	require.NoError(t, err)

	// Base query plus exactly three vendor enhancement queries
	require.Len(t, queries, 4)
	for _, q := range queries[1:] {
		assert.Contains(t, q, "price increase")
	}
}

func TestSearchFetchMissingCredentialsIsPermanent(t *testing.T) {
	cfg := searchConfig("http://unused.invalid")
	cfg.APIKey = ""

	f := newSearchFetcher(t, cfg)
	_, _, err := f.Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPermanentSource)
}

func TestSearchFetchBadRequestIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	f := newSearchFetcher(t, searchConfig(server.URL))
	_, _, err := f.Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPermanentSource)
}
