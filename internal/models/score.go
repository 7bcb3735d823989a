package models

// Urgency classifies how time-sensitive an item is.
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// RevenueImpact decomposes an item's revenue relevance into five axes,
// each in [0,10]. The weighted sum contributes to Score.Total.
type RevenueImpact struct {
	Immediate   float64 `json:"immediate"`
	Margin      float64 `json:"margin"`
	Competitive float64 `json:"competitive"`
	Strategic   float64 `json:"strategic"`
	Urgency     float64 `json:"urgency"`
}

// Score is the full scoring result for one item. Total is reproducible
// from the same item, pattern table, dictionary, and constants.
type Score struct {
	Total           float64             `json:"total"`
	Urgency         Urgency             `json:"urgency"`
	MatchedTerms    map[string][]string `json:"matched_terms"`
	VendorsDetected []string            `json:"vendors_detected"`
	RevenueImpact   RevenueImpact       `json:"revenue_impact"`
	// MultipliersApplied records every boost and multiplier that fired,
	// keyed by name, for audit and for downstream bucket selection.
	MultipliersApplied map[string]float64 `json:"multipliers_applied"`
}

// HasBoost reports whether a named boost or multiplier fired.
func (s Score) HasBoost(name string) bool {
	_, ok := s.MultipliersApplied[name]
	return ok
}

// ScoredItem pairs a raw item with its score.
type ScoredItem struct {
	Item  RawItem `json:"item"`
	Score Score   `json:"score"`
}
