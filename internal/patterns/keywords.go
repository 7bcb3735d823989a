// Package patterns compiles the keyword taxonomy into read-only
// word-boundary matchers shared across scoring workers.
package patterns

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Scored categories. Every matched phrase in one of these contributes
// weighted points to the composite score.
const (
	CategoryPricing        = "pricing"
	CategoryUrgencyHigh    = "urgency_high"
	CategoryUrgencyMedium  = "urgency_medium"
	CategorySupply         = "supply"
	CategoryStrategy       = "strategy"
	CategoryTechnology     = "technology"
	CategoryCloudSecurity  = "cloud_security"
	CategoryMAIntel        = "ma_intel"
	CategoryPartnership    = "partnership"
	CategoryMSPContext     = "msp_context"
	CategoryBusinessImpact = "business_impact"
)

// Auxiliary categories. These never add keyword points directly; they
// gate boosts and the urgency classifier.
const (
	CategoryPartnerTierChange  = "partner_tier_change"
	CategoryRelationshipChange = "business_relationship_change"
	CategoryTimeDeadline       = "time_deadline"
	CategoryScale              = "scale"
)

// ScoredCategories lists the categories that carry keyword weights, in
// report order.
var ScoredCategories = []string{
	CategoryPricing,
	CategoryUrgencyHigh,
	CategoryUrgencyMedium,
	CategorySupply,
	CategoryStrategy,
	CategoryTechnology,
	CategoryCloudSecurity,
	CategoryMAIntel,
	CategoryPartnership,
	CategoryMSPContext,
	CategoryBusinessImpact,
}

var auxCategories = []string{
	CategoryPartnerTierChange,
	CategoryRelationshipChange,
	CategoryTimeDeadline,
	CategoryScale,
}

// Keywords maps category name to its phrase list.
type Keywords map[string][]string

// DefaultKeywords returns the built-in taxonomy. An external keywords
// file overrides individual categories; untouched categories keep these
// lists.
func DefaultKeywords() Keywords {
	return Keywords{
		CategoryPricing: {
			"price increase", "cost increase", "pricing update", "new pricing",
			"licensing change", "subscription pricing", "vendor discount",
			"enterprise discount", "volume discount", "margin compression",
			"contract renewal", "enterprise agreement", "software inflation",
			"hardware surcharge", "price hike", "list price",
		},
		CategoryUrgencyHigh: {
			"urgent", "critical", "immediate", "emergency", "breaking",
			"discontinued", "end of life", "eol", "supply shortage",
			"security breach", "zero-day", "bankruptcy", "recall",
		},
		CategoryUrgencyMedium: {
			"update", "change", "promotion", "discount", "launch",
			"release", "expansion", "investment", "renewal notice",
		},
		CategorySupply: {
			"supply", "shortage", "delay", "fulfillment", "inventory",
			"distribution", "logistics", "lead time", "availability",
			"backorder", "allocation",
		},
		CategoryStrategy: {
			"market share", "consolidation", "competitive", "strategic",
			"roadmap", "restructuring", "divestiture", "go-to-market",
		},
		CategoryTechnology: {
			"migration", "platform", "integration", "api", "automation",
			"virtualization", "hypervisor", "saas", "on-premises",
		},
		CategoryCloudSecurity: {
			"cnapp", "cspm", "cwpp", "ciem", "cloud security platform",
			"cloud workload protection", "posture management",
			"container security", "runtime protection",
		},
		CategoryMAIntel: {
			"acquisition", "merger", "acquired", "post-acquisition",
			"license audit", "true-up", "audit letter", "compliance audit",
			"buyout",
		},
		CategoryPartnership: {
			"partner program", "channel program", "partnership", "alliance",
			"reseller agreement", "distribution agreement", "certification requirements",
		},
		CategoryMSPContext: {
			"msp", "managed service provider", "channel partner", "var",
			"reseller tier", "service provider program", "rmm", "psa",
		},
		CategoryBusinessImpact: {
			"margin impact", "cost passthrough", "budget freeze",
			"renewal shock", "client churn", "contract termination",
			"revenue impact", "price-driven migration",
		},

		CategoryPartnerTierChange: {
			"partner tier change", "tier requirements", "program tier",
			"tier downgrade", "tier upgrade", "partner level change",
			"minimum commitment",
		},
		CategoryRelationshipChange: {
			"direct sales only", "ending partner program", "channel exit",
			"terminated agreement", "exclusive distribution", "dropped reseller",
		},
		CategoryTimeDeadline: {
			"deadline", "expires", "limited time", "act now", "by end of",
			"effective immediately", "time-sensitive", "last chance",
		},
		CategoryScale: {
			"thousands", "all partners", "all customers", "every customer",
			"worldwide", "across the board", "entire portfolio", "fleet-wide",
		},
	}
}

// Load reads a keywords file and merges it over the defaults. Only
// known category names are accepted; an empty list clears a category.
func Load(path string) (Keywords, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keywords file %s: %w", path, err)
	}

	var file map[string][]string
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse keywords file %s: %w", path, err)
	}

	known := make(map[string]bool)
	for _, c := range ScoredCategories {
		known[c] = true
	}
	for _, c := range auxCategories {
		known[c] = true
	}

	keywords := DefaultKeywords()
	categories := make([]string, 0, len(file))
	for category := range file {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		name := strings.ToLower(strings.TrimSpace(category))
		if !known[name] {
			return nil, fmt.Errorf("keywords file %s: unknown category %q", path, category)
		}
		phrases := make([]string, 0, len(file[category]))
		for _, phrase := range file[category] {
			if trimmed := strings.TrimSpace(phrase); trimmed != "" {
				phrases = append(phrases, trimmed)
			}
		}
		keywords[name] = phrases
	}

	return keywords, nil
}
