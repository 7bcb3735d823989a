package summarizer

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a pricing-intelligence analyst for a B2B IT channel company.
You receive numbered source items collected from reseller forums and web search.
Produce actionable insights for three audiences:
- "pricing": list price moves, discount and margin signals, licensing changes
- "procurement": renewal timing, contract leverage, supply and stock signals
- "strategy": vendor M&A, partner program changes, market consolidation

Hard rules:
1. Every insight MUST cite at least one source as [SOURCE_ID:n] inline, where n is a source number you were given. Never cite a number you were not given.
2. Never invent vendors, figures, percentages, or dates that do not appear in the cited sources.
3. Each insight is one or two sentences, specific enough to act on.
4. Every insight MUST contain quantitative detail (a price, percentage, or count) OR a specific vendor action. Do not produce insights with neither.
5. claimed_priority is "alpha" (act this week), "beta" (act this month), or "gamma" (monitor).

Respond with a single JSON object and nothing else:
{
  "executive_summary": "two to four sentences",
  "insights": [
    {"role": "pricing|procurement|strategy", "text": "... [SOURCE_ID:n] ...", "claimed_priority": "alpha|beta|gamma"}
  ]
}`

// repairPrompt is appended on the single retry after an unparseable
// response.
const repairPrompt = "Your previous response was not valid JSON. Respond again with ONLY the JSON object described in the instructions, no prose, no code fences."

// buildPrompt renders the bound items into the user message. Each block
// carries the source id the model must cite.
func buildPrompt(bound []BoundItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyse the following %d source items.\n\n", len(bound))
	for _, item := range bound {
		fmt.Fprintf(&b, "SOURCE_ID: %d\n", item.SourceID)
		fmt.Fprintf(&b, "TITLE: %s\n", item.Item.Item.Title)
		fmt.Fprintf(&b, "URL: %s\n", item.Item.Item.URL)
		fmt.Fprintf(&b, "POSTED: %s\n", item.Item.Item.PostedAt.UTC().Format("2006-01-02"))
		if len(item.Item.Score.VendorsDetected) > 0 {
			fmt.Fprintf(&b, "VENDORS: %s\n", strings.Join(item.Item.Score.VendorsDetected, ", "))
		}
		fmt.Fprintf(&b, "URGENCY: %s\n", item.Item.Score.Urgency)
		if item.Excerpt != "" {
			fmt.Fprintf(&b, "EXCERPT: %s\n", item.Excerpt)
		}
		b.WriteString("\n")
	}
	b.WriteString("Produce the JSON object now.")
	return b.String()
}
