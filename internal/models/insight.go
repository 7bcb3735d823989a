package models

// Priority is the derived severity tier of an insight.
type Priority string

const (
	PriorityAlpha Priority = "alpha" // act now
	PriorityBeta  Priority = "beta"  // plan for it
	PriorityGamma Priority = "gamma" // watch
)

// Rank returns a comparable ordering where alpha > beta > gamma.
func (p Priority) Rank() int {
	switch p {
	case PriorityAlpha:
		return 3
	case PriorityBeta:
		return 2
	default:
		return 1
	}
}

// Confidence is derived post-hoc from citation count and quantifier
// presence; the model is never asked for it.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Role is the persona an insight was synthesised under.
type Role string

const (
	RolePricing     Role = "pricing"
	RoleProcurement Role = "procurement"
	RoleStrategy    Role = "strategy"
)

// Insight is one validated LLM-produced narrative finding. Text embeds
// footnote markers of the form [SOURCE_ID:k]; every k is guaranteed by
// validation to exist in the binding list of the run.
type Insight struct {
	Text           string     `json:"text"`
	Priority       Priority   `json:"priority"`
	Confidence     Confidence `json:"confidence"`
	Role           Role       `json:"role"`
	CitedSourceIDs []int      `json:"cited_source_ids"`
	Redundant      bool       `json:"redundant,omitempty"`
}
