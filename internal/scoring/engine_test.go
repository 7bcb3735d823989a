package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/channelintel/pricewire/internal/common"
	"github.com/channelintel/pricewire/internal/models"
	"github.com/channelintel/pricewire/internal/patterns"
	"github.com/channelintel/pricewire/internal/vendors"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := common.NewDefaultConfig().Scoring
	table := patterns.Compile(patterns.DefaultKeywords(), nil)
	dict := vendors.Default()
	return NewEngine(cfg, table, vendors.NewMatcher(dict), dict)
}

func forumItem(title, body string, postedAt time.Time) models.RawItem {
	return models.RawItem{
		SourceKind:       models.SourceKindForum,
		SourceSubchannel: "msp",
		Title:            title,
		Body:             body,
		URL:              "https://forum.example/post/1",
		PostedAt:         postedAt,
	}
}

func TestScoreDeterminism(t *testing.T) {
	engine := newTestEngine(t)
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	item := forumItem(
		"VMware price increase lands for all partners",
		"Broadcom confirmed the licensing change, effective immediately. MSP margins take the hit.",
		now.Add(-3*time.Hour),
	)

	first := engine.Score(item, now)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, engine.Score(item, now))
	}
}

func TestScoringMonotonicity(t *testing.T) {
	engine := newTestEngine(t)
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	base := forumItem("vendor announcement", "nothing much happening here", now.Add(-2*time.Hour))
	withKeyword := base
	withKeyword.Body += " price increase"
	withMore := withKeyword
	withMore.Body += " supply shortage effective immediately"

	s0 := engine.Score(base, now).Total
	s1 := engine.Score(withKeyword, now).Total
	s2 := engine.Score(withMore, now).Total

	assert.GreaterOrEqual(t, s1, s0)
	assert.GreaterOrEqual(t, s2, s1)
}

func TestMSPMultiplierAppliedOnce(t *testing.T) {
	engine := newTestEngine(t)
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	one := forumItem("pricing news", "price increase hits every msp this year", now.Add(-2*time.Hour))
	two := one
	two.Body += " and every channel partner too"

	scoreOne := engine.Score(one, now)
	scoreTwo := engine.Score(two, now)

	require.Equal(t, 1.5, scoreOne.MultipliersApplied[MultiplierMSPContext])
	require.Equal(t, 1.5, scoreTwo.MultipliersApplied[MultiplierMSPContext])
	// Extra MSP-context phrases never compound the multiplier.
	assert.InDelta(t, scoreOne.Total, scoreTwo.Total, 1e-9)
}

func TestUrgencyClassification(t *testing.T) {
	engine := newTestEngine(t)
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		body string
		want models.Urgency
	}{
		{"urgency high phrase", "urgent: renewal pricing doubled", models.UrgencyHigh},
		{"deadline plus scale", "new terms by end of quarter for all partners", models.UrgencyHigh},
		{"deadline without scale", "new terms by end of quarter", models.UrgencyLow},
		{"urgency medium phrase", "promotion on bundle pricing", models.UrgencyMedium},
		{"nothing urgent", "a quiet retrospective", models.UrgencyLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := forumItem("note", tt.body, now.Add(-30*24*time.Hour))
			assert.Equal(t, tt.want, engine.Score(item, now).Urgency)
		})
	}
}

func TestRecencyBoost(t *testing.T) {
	engine := newTestEngine(t)
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	body := "plain text with no keyword hits at all"

	fresh := engine.Score(forumItem("x", body, now.Add(-3*time.Hour)), now)
	week := engine.Score(forumItem("x", body, now.Add(-3*24*time.Hour)), now)
	old := engine.Score(forumItem("x", body, now.Add(-30*24*time.Hour)), now)

	assert.Equal(t, 1.5, fresh.MultipliersApplied[BoostRecency])
	assert.Equal(t, 0.5, week.MultipliersApplied[BoostRecency])
	assert.NotContains(t, old.MultipliersApplied, BoostRecency)
	assert.Greater(t, fresh.Total, week.Total)
	assert.Greater(t, week.Total, old.Total)
}

func TestVendorScoreAndTier1Bonus(t *testing.T) {
	engine := newTestEngine(t)
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	tier1 := engine.Score(forumItem("x", "vmware changed something", now.Add(-40*24*time.Hour)), now)
	tier3 := engine.Score(forumItem("x", "netapp changed something", now.Add(-40*24*time.Hour)), now)

	assert.Equal(t, []string{"vmware"}, tier1.VendorsDetected)
	assert.Contains(t, tier1.MultipliersApplied, BoostTier1)
	assert.NotContains(t, tier3.MultipliersApplied, BoostTier1)
	assert.Greater(t, tier1.Total, tier3.Total)
}

func TestCloudSecurityPlatformBoost(t *testing.T) {
	engine := newTestEngine(t)
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	// Needs pricing AND cloud-security phrases together.
	noPricing := engine.Score(forumItem("x", "cnapp consolidation continues", now), now)
	assert.NotContains(t, noPricing.MultipliersApplied, BoostCloudSecurity)

	generic := engine.Score(forumItem("x", "cnapp price increase announced", now), now)
	assert.Equal(t, 3.0, generic.MultipliersApplied[BoostCloudSecurity])

	withVendor := engine.Score(forumItem("x", "crowdstrike cnapp price increase announced", now), now)
	assert.Equal(t, 4.0, withVendor.MultipliersApplied[BoostCloudSecurity])
}

func TestMABoost(t *testing.T) {
	engine := newTestEngine(t)
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		body string
		want float64
	}{
		{"no ma phrase", "vmware renewals are painful", 0},
		{"ma phrase without acquisition vendor", "acquisition rumors around zoom", 0},
		// vmware's acquirer broadcom is a consolidator: 3.0 + 2.0
		{"target of consolidator", "license audit wave hits vmware shops", 5.0},
		// both sides detected adds the pair component, capped at 6.5
		{"both sides detected", "post-acquisition license audit: broadcom squeezes vmware customers", 6.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := engine.Score(forumItem("x", tt.body, now.Add(-40*24*time.Hour)), now)
			if tt.want == 0 {
				assert.NotContains(t, score.MultipliersApplied, BoostMAIntel)
			} else {
				assert.Equal(t, tt.want, score.MultipliersApplied[BoostMAIntel])
			}
		})
	}
}

func TestPartnershipBoostCapped(t *testing.T) {
	engine := newTestEngine(t)
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	body := "partner program overhaul: partner tier change and direct sales only going forward"
	score := engine.Score(forumItem("x", body, now.Add(-40*24*time.Hour)), now)

	assert.Contains(t, score.MultipliersApplied, BoostPartnership)
	assert.Contains(t, score.MultipliersApplied, BoostPartnerTierChange)
	assert.Contains(t, score.MultipliersApplied, BoostRelationshipChange)
	// 2.0 + 4.0 + 3.0 exceeds the cap; contribution is limited to 8.0.
	assert.LessOrEqual(t, score.RevenueImpact.Competitive, 10.0)
}

func TestScoreTotalNeverNegative(t *testing.T) {
	engine := newTestEngine(t)
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	score := engine.Score(forumItem("", "", now.Add(-400*24*time.Hour)), now)
	assert.GreaterOrEqual(t, score.Total, 0.0)
}

func TestVMwareIncreaseScenario(t *testing.T) {
	engine := newTestEngine(t)
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	item := forumItem(
		"VMware 50% core-licensing increase from $50 to $76",
		"Urgent: the price increase is effective immediately for all partners on renewal.",
		now.Add(-3*time.Hour),
	)
	item.Engagement = models.Engagement{Upvotes: 120, Comments: 47}

	score := engine.Score(item, now)

	assert.Contains(t, score.VendorsDetected, "vmware")
	assert.NotEmpty(t, score.MatchedTerms[patterns.CategoryPricing])
	assert.NotEmpty(t, score.MatchedTerms[patterns.CategoryUrgencyHigh])
	assert.Equal(t, models.UrgencyHigh, score.Urgency)
	assert.Greater(t, score.Total, 7.0)
	assert.Greater(t, score.RevenueImpact.Immediate, 5.0)
}
