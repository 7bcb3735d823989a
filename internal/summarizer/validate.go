package summarizer

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/channelintel/pricewire/internal/models"
	"github.com/channelintel/pricewire/internal/vendors"
)

var (
	markerRe   = regexp.MustCompile(`\[SOURCE_ID:(\d+)\]`)
	currencyRe = regexp.MustCompile(`[$€£]\s?\d[\d,]*(\.\d+)?[kKmMbB]?`)
	percentRe  = regexp.MustCompile(`\d+(\.\d+)?\s?%`)
	// Explicit counts: a number attached to something countable, so bare
	// years and product names (365, S4) don't register as quantifiers.
	countRe = regexp.MustCompile(`(?i)\b\d[\d,]*(?:\.\d+)?\s?(?:k|m|million|thousand)?\s+(?:customers|users|seats|licen[sc]es|subscriptions|devices|endpoints|partners|resellers|tenants|hosts|vms|servers|employees|sites)\b`)
)

var validRoles = map[string]models.Role{
	"pricing":     models.RolePricing,
	"procurement": models.RoleProcurement,
	"strategy":    models.RoleStrategy,
}

// validateInsights enforces citation integrity on the raw model output.
// Insights with no citations, citations outside the bound range, or an
// unknown role are dropped rather than repaired; the dropped count is
// surfaced in run stats. Surviving insights get a priority floored at
// what the cited sources support and a derived confidence level.
func validateInsights(raw []llmInsight, bound []BoundItem, matcher *vendors.Matcher, dict *vendors.Dictionary) (insights []models.Insight, dropped int) {
	byID := make(map[int]BoundItem, len(bound))
	for _, b := range bound {
		byID[b.SourceID] = b
	}

	seen := make(map[string]bool)
	for _, in := range raw {
		role, ok := validRoles[strings.ToLower(strings.TrimSpace(in.Role))]
		if !ok {
			dropped++
			continue
		}

		text := strings.TrimSpace(in.Text)
		if text == "" {
			dropped++
			continue
		}

		cited, valid := extractCitations(text, byID)
		if !valid || len(cited) == 0 {
			dropped++
			continue
		}

		// Near-duplicate insights: keep the first occurrence.
		key := normalizeInsightText(text)
		if seen[key] {
			dropped++
			continue
		}
		seen[key] = true

		// The model may escalate above the derived tier but never
		// demote below it.
		derived := derivePriority(cited, byID)
		priority := derived
		if claimed, ok := parsePriority(in.ClaimedPriority); ok && claimed.Rank() >= derived.Rank() {
			priority = claimed
		}

		match := matcher.Match(text)
		quantified := hasQuantifier(text)

		insights = append(insights, models.Insight{
			Text:           text,
			Priority:       priority,
			Confidence:     deriveConfidence(cited, match.Vendors, dict, quantified),
			Role:           role,
			CitedSourceIDs: cited,
			Redundant:      len(match.Vendors) == 0 && !quantified,
		})
	}
	return insights, dropped
}

// extractCitations returns the distinct cited ids in ascending order.
// A single citation outside the bound range invalidates the insight.
func extractCitations(text string, byID map[int]BoundItem) ([]int, bool) {
	matches := markerRe.FindAllStringSubmatch(text, -1)
	set := make(map[int]bool)
	for _, m := range matches {
		id, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, false
		}
		if _, ok := byID[id]; !ok {
			return nil, false
		}
		set[id] = true
	}
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, true
}

// derivePriority maps the strongest cited urgency to a priority tier.
func derivePriority(cited []int, byID map[int]BoundItem) models.Priority {
	derived := models.PriorityGamma
	for _, id := range cited {
		switch byID[id].Item.Score.Urgency {
		case models.UrgencyHigh:
			return models.PriorityAlpha
		case models.UrgencyMedium:
			derived = models.PriorityBeta
		}
	}
	return derived
}

func parsePriority(s string) (models.Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "alpha":
		return models.PriorityAlpha, true
	case "beta":
		return models.PriorityBeta, true
	case "gamma":
		return models.PriorityGamma, true
	}
	return "", false
}

// deriveConfidence rates corroboration: multiple independent sources
// plus a concrete figure is high, thinner evidence degrades to medium
// or low.
func deriveConfidence(cited []int, detectedVendors []string, dict *vendors.Dictionary, quantified bool) models.Confidence {
	if len(cited) >= 3 && quantified {
		return models.ConfidenceHigh
	}
	if len(cited) >= 2 {
		return models.ConfidenceMedium
	}
	if len(cited) == 1 && quantified {
		for _, v := range detectedVendors {
			if dict.Tier(v) <= 2 {
				return models.ConfidenceMedium
			}
		}
	}
	return models.ConfidenceLow
}

func hasQuantifier(text string) bool {
	return currencyRe.MatchString(text) || percentRe.MatchString(text) || countRe.MatchString(text)
}

// UnsupportedQuantifiers returns figures stated in the insight that do
// not appear in any cited source's title or excerpt. These are not
// dropped, only flagged, since sources may phrase the same figure
// differently.
func UnsupportedQuantifiers(insight models.Insight, bound []BoundItem) []string {
	byID := make(map[int]BoundItem, len(bound))
	for _, b := range bound {
		byID[b.SourceID] = b
	}

	var corpus strings.Builder
	for _, id := range insight.CitedSourceIDs {
		b, ok := byID[id]
		if !ok {
			continue
		}
		corpus.WriteString(b.Item.Item.Title)
		corpus.WriteString("\n")
		corpus.WriteString(b.Excerpt)
		corpus.WriteString("\n")
	}
	sourceText := corpus.String()

	var unsupported []string
	for _, re := range []*regexp.Regexp{currencyRe, percentRe, countRe} {
		for _, q := range re.FindAllString(insight.Text, -1) {
			if !strings.Contains(sourceText, q) {
				unsupported = append(unsupported, q)
			}
		}
	}
	return unsupported
}

var insightWordRe = regexp.MustCompile(`[a-z0-9]+`)

// normalizeInsightText reduces an insight to its word sequence, with
// citation markers removed, so trivially reworded duplicates collapse.
func normalizeInsightText(text string) string {
	text = markerRe.ReplaceAllString(text, "")
	return strings.Join(insightWordRe.FindAllString(strings.ToLower(text), -1), " ")
}
