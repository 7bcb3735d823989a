package pipeline

import (
	"sort"

	"github.com/channelintel/pricewire/internal/common"
	"github.com/channelintel/pricewire/internal/models"
	"github.com/channelintel/pricewire/internal/patterns"
	"github.com/channelintel/pricewire/internal/scoring"
)

// Selector ranks scored items into at most K slots using the priority
// bucket hierarchy: business-critical, high engagement with relevance,
// high relevance, then remainder by total.
type Selector struct {
	cfg common.SelectorConfig
}

// NewSelector creates a selector with the given capacities.
func NewSelector(cfg common.SelectorConfig) *Selector {
	return &Selector{cfg: cfg}
}

// candidate carries the precomputed composite key for one item.
type candidate struct {
	item      models.ScoredItem
	composite float64
	selected  bool
}

// Select returns the chosen items in their final deterministic order.
// Within every bucket items are ordered by composite key
// (0.7*total + 0.3*normalised engagement), then posted_at descending,
// then url ascending. A low-relevance high-engagement item can never
// outrank a high-relevance item within a bucket because total dominates
// the composite.
func (s *Selector) Select(items []models.ScoredItem) []models.ScoredItem {
	if len(items) == 0 {
		return nil
	}

	maxEngagement := 0.0
	for _, item := range items {
		if e := item.Item.Engagement.Score(); e > maxEngagement {
			maxEngagement = e
		}
	}

	candidates := make([]*candidate, len(items))
	for i, item := range items {
		norm := 0.0
		if maxEngagement > 0 {
			norm = item.Item.Engagement.Score() / maxEngagement
		}
		candidates[i] = &candidate{
			item:      item,
			composite: 0.7*item.Score.Total + 0.3*norm,
		}
	}

	k := s.cfg.K
	selected := make([]models.ScoredItem, 0, k)

	take := func(capacity int, include func(*candidate) bool) {
		if capacity <= 0 || len(selected) >= k {
			return
		}
		var bucket []*candidate
		for _, c := range candidates {
			if !c.selected && include(c) {
				bucket = append(bucket, c)
			}
		}
		sortBucket(bucket)
		for _, c := range bucket {
			if capacity == 0 || len(selected) >= k {
				break
			}
			c.selected = true
			selected = append(selected, c.item)
			capacity--
		}
	}

	take(int(float64(k)*s.cfg.CriticalPct), s.isCritical)
	take(int(float64(k)*s.cfg.EngagementPct), s.isHighEngagement)
	take(int(float64(k)*s.cfg.RelevancePct), s.isHighRelevance)
	take(k-len(selected), func(*candidate) bool { return true })

	return selected
}

// isCritical matches business-impact language, partner-tier changes, or
// M&A audit signals.
func (s *Selector) isCritical(c *candidate) bool {
	if len(c.item.Score.MatchedTerms[patterns.CategoryBusinessImpact]) > 0 {
		return true
	}
	return c.item.Score.HasBoost(scoring.BoostPartnerTierChange) ||
		c.item.Score.HasBoost(scoring.BoostRelationshipChange) ||
		c.item.Score.HasBoost(scoring.BoostMAIntel)
}

func (s *Selector) isHighEngagement(c *candidate) bool {
	e := c.item.Item.Engagement
	if e.Upvotes < s.cfg.MinEngagementUpvotes && e.Comments < s.cfg.MinEngagementComs {
		return false
	}
	return c.item.Score.Total >= s.cfg.EngagementRelevance
}

func (s *Selector) isHighRelevance(c *candidate) bool {
	return c.item.Score.Total >= s.cfg.RelevanceThreshold
}

func sortBucket(bucket []*candidate) {
	sort.SliceStable(bucket, func(i, j int) bool {
		a, b := bucket[i], bucket[j]
		if a.composite != b.composite {
			return a.composite > b.composite
		}
		if !a.item.Item.PostedAt.Equal(b.item.Item.PostedAt) {
			return a.item.Item.PostedAt.After(b.item.Item.PostedAt)
		}
		return a.item.Item.URL < b.item.Item.URL
	})
}
