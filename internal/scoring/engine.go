// Package scoring implements the deterministic relevance model: keyword
// weights, vendor detection, domain boosts, urgency classification, and
// the five-axis revenue-impact decomposition.
package scoring

import (
	"time"

	"github.com/channelintel/pricewire/internal/common"
	"github.com/channelintel/pricewire/internal/models"
	"github.com/channelintel/pricewire/internal/patterns"
	"github.com/channelintel/pricewire/internal/vendors"
)

// Audit keys recorded in Score.MultipliersApplied when a boost or
// multiplier fires. The selector keys its critical bucket off these.
const (
	BoostTier1              = "tier1_bonus"
	BoostRecency            = "recency"
	BoostCloudSecurity      = "cloud_security_platform"
	BoostMAIntel            = "ma_intel"
	BoostPartnership        = "partnership"
	BoostPartnerTierChange  = "partner_tier_change"
	BoostRelationshipChange = "business_relationship_change"
	MultiplierMSPContext    = "msp_context"
)

// Engine scores items against a compiled pattern table and vendor
// dictionary. Read-only after construction; safe for concurrent use.
type Engine struct {
	cfg     common.ScoringConfig
	table   *patterns.Table
	matcher *vendors.Matcher
	dict    *vendors.Dictionary
}

// NewEngine builds a scoring engine. The table and dictionary must not
// be mutated afterwards.
func NewEngine(cfg common.ScoringConfig, table *patterns.Table, matcher *vendors.Matcher, dict *vendors.Dictionary) *Engine {
	return &Engine{cfg: cfg, table: table, matcher: matcher, dict: dict}
}

// Score computes the full score for one item. The result is a pure
// function of the item, the pattern table, the dictionary, and the
// configured constants.
func (e *Engine) Score(item models.RawItem, now time.Time) models.Score {
	text := item.Title + "\n" + item.Body
	matches := e.table.Match(text)
	vendorResult := e.matcher.Match(text)

	applied := make(map[string]float64)
	sum := 0.0

	// 1. Keyword weights, capped per category.
	sum += capped(float64(len(matches[patterns.CategoryPricing]))*e.cfg.PricingWeight, e.cfg.PricingCap)
	sum += capped(float64(len(matches[patterns.CategoryUrgencyHigh]))*e.cfg.UrgencyHighWeight, e.cfg.UrgencyHighCap)
	sum += capped(float64(len(matches[patterns.CategoryUrgencyMedium]))*e.cfg.UrgencyMediumWeight, e.cfg.UrgencyMediumCap)
	for _, category := range []string{patterns.CategorySupply, patterns.CategoryStrategy, patterns.CategoryTechnology} {
		sum += capped(float64(len(matches[category]))*e.cfg.SupportingWeight, e.cfg.SupportingCap)
	}

	// 2. Vendor detection.
	sum += capped(float64(len(vendorResult.Vendors))*e.cfg.VendorWeight, e.cfg.VendorCap)
	for _, v := range vendorResult.Vendors {
		if e.dict.Tier(v) == 1 {
			sum += e.cfg.Tier1Bonus
			applied[BoostTier1] = e.cfg.Tier1Bonus
			break
		}
	}

	// 3. Recency.
	age := now.Sub(item.PostedAt)
	switch {
	case age >= 0 && age <= 24*time.Hour:
		sum += e.cfg.RecencyDayBoost
		applied[BoostRecency] = e.cfg.RecencyDayBoost
	case age > 24*time.Hour && age <= 7*24*time.Hour:
		sum += e.cfg.RecencyWeekBoost
		applied[BoostRecency] = e.cfg.RecencyWeekBoost
	}

	// 4. Cloud-security platform boost.
	cloudBoost := 0.0
	if len(matches[patterns.CategoryCloudSecurity]) > 0 && len(matches[patterns.CategoryPricing]) > 0 {
		cloudBoost = e.cfg.CloudSecurityBoost
		for _, v := range vendorResult.Vendors {
			if e.dict.IsCloudSecurity(v) {
				cloudBoost += e.cfg.CloudSecurityVendorBoost
				break
			}
		}
		sum += cloudBoost
		applied[BoostCloudSecurity] = cloudBoost
	}

	// 5. M&A intelligence boost.
	maBoost := e.maBoost(matches, vendorResult.Vendors)
	if maBoost > 0 {
		sum += maBoost
		applied[BoostMAIntel] = maBoost
	}

	// 6. Partnership boost.
	partnershipBoost := 0.0
	if len(matches[patterns.CategoryPartnership]) > 0 {
		partnershipBoost += e.cfg.PartnershipBoost
		applied[BoostPartnership] = e.cfg.PartnershipBoost
	}
	if len(matches[patterns.CategoryPartnerTierChange]) > 0 {
		partnershipBoost += e.cfg.PartnerTierChangeBoost
		applied[BoostPartnerTierChange] = e.cfg.PartnerTierChangeBoost
	}
	if len(matches[patterns.CategoryRelationshipChange]) > 0 {
		partnershipBoost += e.cfg.RelationshipChangeBoost
		applied[BoostRelationshipChange] = e.cfg.RelationshipChangeBoost
	}
	if partnershipBoost > e.cfg.PartnershipCap {
		partnershipBoost = e.cfg.PartnershipCap
	}
	sum += partnershipBoost

	// 7. MSP context multiplier, applied once after all additions.
	if len(matches[patterns.CategoryMSPContext]) > 0 {
		sum *= e.cfg.MSPMultiplier
		applied[MultiplierMSPContext] = e.cfg.MSPMultiplier
	}

	// 8. Urgency classification. The medium threshold reads the
	// pre-revenue total.
	urgency := e.classifyUrgency(matches, sum)

	// 9. Revenue-impact model.
	impact := e.revenueImpact(matches, vendorResult.Vendors, item.Engagement, cloudBoost, maBoost, partnershipBoost, urgency)
	w := e.cfg.RevenueWeights
	sum += w.Immediate*impact.Immediate +
		w.Margin*impact.Margin +
		w.Competitive*impact.Competitive +
		w.Strategic*impact.Strategic +
		w.Urgency*impact.Urgency

	if sum < 0 {
		sum = 0
	}

	matched := make(map[string][]string)
	for _, category := range patterns.ScoredCategories {
		if hits := matches[category]; len(hits) > 0 {
			matched[category] = hits
		}
	}

	return models.Score{
		Total:              sum,
		Urgency:            urgency,
		MatchedTerms:       matched,
		VendorsDetected:    vendorResult.Vendors,
		RevenueImpact:      impact,
		MultipliersApplied: applied,
	}
}

// maBoost fires when post-acquisition or audit language co-occurs with
// a vendor on either side of a known acquisition edge.
func (e *Engine) maBoost(matches map[string][]string, detected []string) float64 {
	if len(matches[patterns.CategoryMAIntel]) == 0 {
		return 0
	}

	involved := false
	consolidator := false
	bothSides := false

	detectedSet := make(map[string]bool, len(detected))
	for _, v := range detected {
		detectedSet[v] = true
	}

	for _, v := range detected {
		if !e.dict.InAcquisition(v) {
			continue
		}
		involved = true
		for _, acquirer := range e.dict.AcquirersOf(v) {
			if e.dict.IsConsolidator(acquirer) {
				consolidator = true
			}
			if detectedSet[acquirer] {
				bothSides = true
			}
		}
		if e.dict.IsConsolidator(v) {
			consolidator = true
		}
	}

	if !involved {
		return 0
	}

	boost := e.cfg.MABoost
	if consolidator {
		boost += e.cfg.MAConsolidatorBoost
	}
	if bothSides {
		boost += e.cfg.MAPairBoost
	}
	if boost > e.cfg.MACap {
		boost = e.cfg.MACap
	}
	return boost
}

func (e *Engine) classifyUrgency(matches map[string][]string, preRevenueTotal float64) models.Urgency {
	if len(matches[patterns.CategoryUrgencyHigh]) > 0 {
		return models.UrgencyHigh
	}
	if len(matches[patterns.CategoryTimeDeadline]) > 0 && len(matches[patterns.CategoryScale]) > 0 {
		return models.UrgencyHigh
	}
	if len(matches[patterns.CategoryUrgencyMedium]) > 0 || preRevenueTotal >= e.cfg.MediumUrgencyThreshold {
		return models.UrgencyMedium
	}
	return models.UrgencyLow
}

// revenueImpact maps category matches, vendor hits, engagement, and the
// fired boosts onto the five [0,10] axes.
func (e *Engine) revenueImpact(matches map[string][]string, detected []string, engagement models.Engagement, cloudBoost, maBoost, partnershipBoost float64, urgency models.Urgency) models.RevenueImpact {
	immediate := 2.5*float64(len(matches[patterns.CategoryPricing])) +
		3.0*float64(len(matches[patterns.CategoryUrgencyHigh]))
	if bump := engagement.Score() / 100; bump > 0 {
		if bump > 2 {
			bump = 2
		}
		immediate += bump
	}

	margin := 2.0*float64(len(matches[patterns.CategorySupply])) +
		1.5*float64(len(detected)) +
		cloudBoost

	competitive := partnershipBoost + maBoost

	strategic := 2.5 * float64(len(matches[patterns.CategoryStrategy])+len(matches[patterns.CategoryTechnology]))

	urgencyAxis := 1.0
	switch urgency {
	case models.UrgencyHigh:
		urgencyAxis = 10.0
	case models.UrgencyMedium:
		urgencyAxis = 5.0
	}

	return models.RevenueImpact{
		Immediate:   clamp10(immediate),
		Margin:      clamp10(margin),
		Competitive: clamp10(competitive),
		Strategic:   clamp10(strategic),
		Urgency:     urgencyAxis,
	}
}

func capped(value, cap float64) float64 {
	if value > cap {
		return cap
	}
	return value
}

func clamp10(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
