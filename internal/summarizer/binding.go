// Package summarizer turns selected items into role-targeted insights
// via the Anthropic Messages API, with every claim bound to numbered
// source citations that are validated against the input set.
package summarizer

import (
	"strings"
	"unicode"

	"github.com/channelintel/pricewire/internal/models"
)

// BoundItem pairs a selected item with its stable one-based source id.
// The id is the only handle the model is allowed to cite, so the
// binding must not change between prompt construction and validation.
type BoundItem struct {
	SourceID int
	Item     models.ScoredItem
	Excerpt  string
}

// Bind assigns source ids 1..n in selection order and prepares the
// excerpt shown to the model. Selection order is already deterministic,
// so the ids are stable for a given run.
func Bind(selected []models.ScoredItem, excerptMaxChars int) []BoundItem {
	bound := make([]BoundItem, len(selected))
	for i, item := range selected {
		text := item.Item.Body
		if strings.TrimSpace(text) == "" {
			text = item.Item.Title
		}
		bound[i] = BoundItem{
			SourceID: i + 1,
			Item:     item,
			Excerpt:  truncateAtWord(text, excerptMaxChars),
		}
	}
	return bound
}

// SourceRefs builds the report source table from the bound items.
func SourceRefs(bound []BoundItem) []models.SourceRef {
	refs := make([]models.SourceRef, len(bound))
	for i, b := range bound {
		refs[i] = models.SourceRef{
			SourceID:   b.SourceID,
			URL:        b.Item.Item.URL,
			Title:      b.Item.Item.Title,
			SourceKind: b.Item.Item.SourceKind,
			PostedAt:   b.Item.Item.PostedAt,
		}
	}
	return refs
}

// truncateAtWord cuts text to at most max runes, backing up to the last
// word boundary so the excerpt never ends mid-word.
func truncateAtWord(text string, max int) string {
	text = strings.TrimSpace(text)
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	cut := max
	for cut > 0 && !unicode.IsSpace(runes[cut-1]) {
		cut--
	}
	if cut == 0 {
		cut = max
	}
	return strings.TrimRightFunc(string(runes[:cut]), unicode.IsSpace) + "..."
}
