package vendors

import (
	"regexp"
	"sort"
	"strings"
)

// MatchResult reports the canonical vendors found in a text and which
// aliases produced each hit.
type MatchResult struct {
	Vendors []string            // sorted canonical names
	Hits    map[string][]string // canonical -> aliases that matched, sorted
}

// Matcher finds vendor aliases in free text. Matching is
// case-insensitive and word-boundary anchored; when aliases overlap
// within one span the longest alias wins. Read-only after construction.
type Matcher struct {
	pattern   *regexp.Regexp
	canonical map[string]string // lowercased alias -> canonical
}

// NewMatcher compiles a matcher over every alias in the dictionary.
// Aliases are ordered longest-first inside a single alternation so the
// regexp engine prefers the longest alias at any position.
func NewMatcher(dict *Dictionary) *Matcher {
	canonical := make(map[string]string)
	var aliases []string
	for _, vendor := range dict.Canonicals() {
		for _, alias := range dict.Aliases(vendor) {
			canonical[alias] = vendor
			aliases = append(aliases, alias)
		}
	}

	sort.Slice(aliases, func(i, j int) bool {
		if len(aliases[i]) != len(aliases[j]) {
			return len(aliases[i]) > len(aliases[j])
		}
		return aliases[i] < aliases[j]
	})

	quoted := make([]string, len(aliases))
	for i, alias := range aliases {
		quoted[i] = regexp.QuoteMeta(alias)
	}

	// \b anchors hold because every alias starts and ends with a word
	// character after dictionary normalisation.
	pattern := regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)

	return &Matcher{
		pattern:   pattern,
		canonical: canonical,
	}
}

// Match scans the text and returns the detected vendors with their
// alias hits. Results are deterministic: vendor and alias lists are
// sorted.
func (m *Matcher) Match(text string) MatchResult {
	result := MatchResult{Hits: make(map[string][]string)}
	if text == "" {
		return result
	}

	seen := make(map[string]map[string]bool)
	for _, hit := range m.pattern.FindAllString(text, -1) {
		alias := strings.ToLower(hit)
		vendor, ok := m.canonical[alias]
		if !ok {
			continue
		}
		if seen[vendor] == nil {
			seen[vendor] = make(map[string]bool)
		}
		seen[vendor][alias] = true
	}

	for vendor, aliasSet := range seen {
		aliases := make([]string, 0, len(aliasSet))
		for alias := range aliasSet {
			aliases = append(aliases, alias)
		}
		sort.Strings(aliases)
		result.Hits[vendor] = aliases
		result.Vendors = append(result.Vendors, vendor)
	}
	sort.Strings(result.Vendors)

	return result
}
