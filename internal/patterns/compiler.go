package patterns

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
)

// phraseMatcher matches one phrase. re is nil when the phrase failed to
// compile and substring matching is in effect.
type phraseMatcher struct {
	phrase  string
	lowered string
	re      *regexp.Regexp
}

// Table is the compiled pattern table. Built once at startup, read-only
// thereafter; safe for concurrent use by scoring workers.
type Table struct {
	categories map[string][]phraseMatcher
	// Fallbacks lists phrases that fell back to substring matching, for
	// diagnostics.
	Fallbacks []string
}

// Compile builds a pattern table from the keyword taxonomy. Phrases are
// matched case-insensitively with word-boundary anchoring. Phrases may
// carry regex syntax; a phrase that fails to compile degrades to plain
// substring matching with a warning, never a hard failure.
func Compile(keywords Keywords, logger arbor.ILogger) *Table {
	table := &Table{categories: make(map[string][]phraseMatcher, len(keywords))}

	names := make([]string, 0, len(keywords))
	for name := range keywords {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, category := range names {
		phrases := keywords[category]
		matchers := make([]phraseMatcher, 0, len(phrases))
		for _, phrase := range phrases {
			lowered := strings.ToLower(phrase)
			re, err := regexp.Compile(`(?i)\b(?:` + lowered + `)\b`)
			if err != nil {
				table.Fallbacks = append(table.Fallbacks, phrase)
				if logger != nil {
					logger.Warn().
						Str("category", category).
						Str("phrase", phrase).
						Err(err).
						Msg("Phrase failed to compile, using substring matching")
				}
				re = nil
			}
			matchers = append(matchers, phraseMatcher{phrase: lowered, lowered: lowered, re: re})
		}
		table.categories[category] = matchers
	}

	return table
}

// Match evaluates every category against the text and returns the
// matched phrases per category. Categories with no hits are absent from
// the result. Phrase order within a category follows taxonomy order, so
// output is deterministic.
func (t *Table) Match(text string) map[string][]string {
	if text == "" {
		return map[string][]string{}
	}
	lowered := strings.ToLower(text)

	result := make(map[string][]string)
	for category, matchers := range t.categories {
		var hits []string
		for _, m := range matchers {
			if m.re != nil {
				if m.re.MatchString(text) {
					hits = append(hits, m.phrase)
				}
			} else if strings.Contains(lowered, m.lowered) {
				hits = append(hits, m.phrase)
			}
		}
		if len(hits) > 0 {
			result[category] = hits
		}
	}
	return result
}

// MatchCategory evaluates a single category against the text.
func (t *Table) MatchCategory(text, category string) []string {
	if text == "" {
		return nil
	}
	lowered := strings.ToLower(text)

	var hits []string
	for _, m := range t.categories[category] {
		if m.re != nil {
			if m.re.MatchString(text) {
				hits = append(hits, m.phrase)
			}
		} else if strings.Contains(lowered, m.lowered) {
			hits = append(hits, m.phrase)
		}
	}
	return hits
}

// Categories returns the category names in the table, sorted.
func (t *Table) Categories() []string {
	names := make([]string, 0, len(t.categories))
	for name := range t.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
