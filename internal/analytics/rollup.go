// Package analytics computes the vendor mention rollup over the
// selected item set.
package analytics

import (
	"sort"

	"github.com/channelintel/pricewire/internal/models"
	"github.com/channelintel/pricewire/internal/vendors"
)

// tierWeight scales a vendor's mention count by its market tier so the
// rollup surfaces strategically important vendors over long-tail noise.
func tierWeight(tier int) float64 {
	switch tier {
	case 1:
		return 3.0
	case 2:
		return 2.0
	case 3:
		return 1.5
	default:
		return 1.0
	}
}

// Rollup counts vendor mentions across the selected items. Each item
// contributes at most 1.0 credit per detected vendor. When a detected
// vendor is an acquisition target, its direct acquirer receives a 0.5
// co-credit for the item unless the acquirer was detected there itself,
// so post-acquisition chatter about the target still registers against
// the owner. Rows are weighted by tier and the top n are returned,
// ordered by weighted count descending, then vendor name.
func Rollup(selected []models.ScoredItem, dict *vendors.Dictionary, n int) []models.VendorMention {
	mentions := make(map[string]float64)

	for _, item := range selected {
		detected := make(map[string]bool, len(item.Score.VendorsDetected))
		for _, v := range item.Score.VendorsDetected {
			detected[v] = true
			mentions[v] += 1.0
		}
		for v := range detected {
			for _, acquirer := range dict.AcquirersOf(v) {
				if !detected[acquirer] {
					mentions[acquirer] += 0.5
				}
			}
		}
	}

	rows := make([]models.VendorMention, 0, len(mentions))
	for vendor, count := range mentions {
		tier := dict.Tier(vendor)
		rows = append(rows, models.VendorMention{
			Vendor:   vendor,
			Mentions: count,
			Tier:     tier,
			Weighted: count * tierWeight(tier),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Weighted != rows[j].Weighted {
			return rows[i].Weighted > rows[j].Weighted
		}
		return rows[i].Vendor < rows[j].Vendor
	})

	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}
