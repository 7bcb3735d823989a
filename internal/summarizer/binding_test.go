package summarizer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/channelintel/pricewire/internal/models"
)

func selectedItem(url, title, body string) models.ScoredItem {
	return models.ScoredItem{
		Item: models.RawItem{
			SourceKind: models.SourceKindForum,
			Title:      title,
			Body:       body,
			URL:        url,
			PostedAt:   time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC),
		},
		Score: models.Score{Urgency: models.UrgencyLow},
	}
}

func TestBindAssignsSequentialIDs(t *testing.T) {
	selected := []models.ScoredItem{
		selectedItem("https://a/1", "first", "body one"),
		selectedItem("https://a/2", "second", "body two"),
		selectedItem("https://a/3", "third", "body three"),
	}

	bound := Bind(selected, 500)
	require.Len(t, bound, 3)
	for i, b := range bound {
		assert.Equal(t, i+1, b.SourceID)
		assert.Equal(t, selected[i].Item.URL, b.Item.Item.URL)
	}
}

func TestBindExcerptTruncatesAtWordBoundary(t *testing.T) {
	body := strings.Repeat("vendor pricing update ", 100)
	bound := Bind([]models.ScoredItem{selectedItem("https://a/1", "t", body)}, 50)

	require.Len(t, bound, 1)
	excerpt := bound[0].Excerpt
	assert.LessOrEqual(t, len([]rune(excerpt)), 53) // 50 + ellipsis
	assert.True(t, strings.HasSuffix(excerpt, "..."))
	// Never cuts mid-word
	trimmed := strings.TrimSuffix(excerpt, "...")
	assert.True(t, strings.HasSuffix(trimmed, "vendor") ||
		strings.HasSuffix(trimmed, "pricing") ||
		strings.HasSuffix(trimmed, "update"))
}

func TestBindFallsBackToTitleForEmptyBody(t *testing.T) {
	bound := Bind([]models.ScoredItem{selectedItem("https://a/1", "Broadcom price hike", "  ")}, 500)
	require.Len(t, bound, 1)
	assert.Equal(t, "Broadcom price hike", bound[0].Excerpt)
}

func TestSourceRefsPreserveBinding(t *testing.T) {
	bound := Bind([]models.ScoredItem{
		selectedItem("https://a/1", "first", "b"),
		selectedItem("https://a/2", "second", "b"),
	}, 500)

	refs := SourceRefs(bound)
	require.Len(t, refs, 2)
	assert.Equal(t, 1, refs[0].SourceID)
	assert.Equal(t, "https://a/1", refs[0].URL)
	assert.Equal(t, 2, refs[1].SourceID)
	assert.Equal(t, "second", refs[1].Title)
}
