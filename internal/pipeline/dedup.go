package pipeline

import (
	"github.com/channelintel/pricewire/internal/fetch"
	"github.com/channelintel/pricewire/internal/models"
)

// Dedup collapses near-duplicate items. Items are grouped by normalised
// URL first, then by content hash. Within a group the survivor is the
// item with the highest engagement, falling back to the newest. Output
// preserves the position of each group's first occurrence, so the
// result is deterministic for a fixed input order.
func Dedup(items []models.RawItem) []models.RawItem {
	byURL := make(map[string]int)
	byHash := make(map[string]int)
	result := make([]models.RawItem, 0, len(items))

	for _, item := range items {
		url := fetch.NormalizeURL(item.URL)

		var existing int
		found := false
		if idx, ok := byURL[url]; ok {
			existing, found = idx, true
		} else if item.ContentHash != "" {
			if idx, ok := byHash[item.ContentHash]; ok {
				existing, found = idx, true
			}
		}

		if !found {
			idx := len(result)
			item.URL = url
			result = append(result, item)
			byURL[url] = idx
			if item.ContentHash != "" {
				byHash[item.ContentHash] = idx
			}
			continue
		}

		if prefer(item, result[existing]) {
			item.URL = url
			result[existing] = item
		}
	}

	return result
}

// prefer reports whether candidate should replace incumbent within a
// dedup group.
func prefer(candidate, incumbent models.RawItem) bool {
	cs, is := candidate.Engagement.Score(), incumbent.Engagement.Score()
	if cs != is {
		return cs > is
	}
	return candidate.PostedAt.After(incumbent.PostedAt)
}
