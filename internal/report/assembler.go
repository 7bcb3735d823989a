// Package report assembles the final run artifact and writes the JSON
// and HTML outputs.
package report

import (
	"sort"
	"time"

	"github.com/channelintel/pricewire/internal/models"
)

// priorityOrder fixes the report section order.
var priorityOrder = []models.Priority{
	models.PriorityAlpha,
	models.PriorityBeta,
	models.PriorityGamma,
}

// Assemble builds the typed report. Insights are grouped by priority in
// alpha, beta, gamma order; empty tiers are omitted. Sources are sorted
// by SOURCE_ID so footnote markers resolve by position.
func Assemble(generatedAt time.Time, insights []models.Insight, execSummary string, sources []models.SourceRef, rollup []models.VendorMention, stats models.RunStats) *models.Report {
	grouped := make(map[models.Priority][]models.Insight)
	for _, in := range insights {
		grouped[in.Priority] = append(grouped[in.Priority], in)
	}

	var byPriority []models.PriorityGroup
	for _, p := range priorityOrder {
		if len(grouped[p]) > 0 {
			byPriority = append(byPriority, models.PriorityGroup{Priority: p, Insights: grouped[p]})
		}
	}

	sorted := make([]models.SourceRef, len(sources))
	copy(sorted, sources)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].SourceID < sorted[j].SourceID })

	return &models.Report{
		GeneratedAt:        generatedAt.UTC(),
		ExecutiveSummary:   execSummary,
		InsightsByPriority: byPriority,
		Sources:            sorted,
		VendorRollup:       rollup,
		RunStats:           stats,
	}
}
