package models

import "time"

// SourceRef is one selected item as listed in the report, keyed by the
// invocation-scoped SOURCE_ID used for footnote binding.
type SourceRef struct {
	SourceID   int        `json:"source_id"`
	URL        string     `json:"url"`
	Title      string     `json:"title"`
	SourceKind SourceKind `json:"source_kind"`
	PostedAt   time.Time  `json:"posted_at"`
}

// VendorMention is one row of the tier-weighted vendor rollup.
type VendorMention struct {
	Vendor   string  `json:"vendor"`
	Mentions float64 `json:"mentions"`
	Tier     int     `json:"tier"`
	Weighted float64 `json:"weighted"`
}

// SourceFailure records a per-source fetch failure that did not abort
// the run.
type SourceFailure struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// RunStats carries run metadata into the report.
type RunStats struct {
	RunID                 string          `json:"run_id"`
	ItemsFetchedPerSource map[string]int  `json:"items_fetched_per_source"`
	ItemsSelected         int             `json:"items_selected"`
	LLMTokensUsed         int64           `json:"llm_tokens_used"`
	LLMFailed             bool            `json:"llm_failed"`
	LLMDropped            int             `json:"llm_dropped"`
	DurationMS            int64           `json:"duration_ms"`
	PartialFailures       []SourceFailure `json:"partial_failures"`
	CacheHits             int             `json:"cache_hits,omitempty"`
	CacheMisses           int             `json:"cache_misses,omitempty"`
}

// PriorityGroup holds the insights of one priority tier in report order.
type PriorityGroup struct {
	Priority Priority  `json:"priority"`
	Insights []Insight `json:"insights"`
}

// Report is the typed artifact handed to the renderer and the JSON sink.
// InsightsByPriority is ordered alpha, beta, gamma; Sources is ordered
// by SOURCE_ID.
type Report struct {
	GeneratedAt        time.Time       `json:"generated_at"`
	ExecutiveSummary   string          `json:"executive_summary"`
	InsightsByPriority []PriorityGroup `json:"insights_by_priority"`
	Sources            []SourceRef     `json:"sources"`
	VendorRollup       []VendorMention `json:"vendor_rollup"`
	RunStats           RunStats        `json:"run_stats"`
}
