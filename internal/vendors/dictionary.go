// Package vendors provides the canonical vendor dictionary and the
// word-boundary alias matcher used by the scoring engine.
package vendors

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Entry describes one canonical vendor.
type Entry struct {
	Aliases []string `toml:"aliases"`
	// Tier is the coarse importance class 1-4. Tier 1 vendors drive the
	// quality-filter exception and the confidence boost.
	Tier int `toml:"tier"`
	// Consolidator marks acquirers known for post-acquisition pricing and
	// audit campaigns.
	Consolidator bool `toml:"consolidator"`
	// CloudSecurity marks vendors in the cloud-security platform space
	// (CNAPP/CSPM/CWPP); they participate in the platform boost.
	CloudSecurity bool `toml:"cloud_security"`
}

// Acquisition is one directed edge of the acquisition DAG: target was
// bought by acquirer.
type Acquisition struct {
	Acquirer string `toml:"acquirer"`
	Target   string `toml:"target"`
	Year     int    `toml:"year,omitempty"`
}

// dictionaryFile is the on-disk TOML shape.
type dictionaryFile struct {
	Vendors      map[string]Entry `toml:"vendors"`
	Acquisitions []Acquisition    `toml:"acquisitions"`
}

// Dictionary is the validated, read-only vendor dictionary. Safe for
// concurrent reads after construction.
type Dictionary struct {
	vendors      map[string]Entry
	acquisitions []Acquisition
	// acquirersOf maps target -> acquirers, lowercased canonicals.
	acquirersOf map[string][]string
}

// New builds and validates a dictionary from entries and acquisition
// edges. Canonical names and aliases are lowercased; the canonical name
// itself is always matchable. Fails on duplicate aliases (global),
// out-of-range tiers, edges naming unknown vendors, and cycles in the
// acquisition graph.
func New(entries map[string]Entry, acquisitions []Acquisition) (*Dictionary, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("vendor dictionary is empty")
	}

	vendors := make(map[string]Entry, len(entries))
	aliasOwner := make(map[string]string)

	canonicals := make([]string, 0, len(entries))
	for canonical := range entries {
		canonicals = append(canonicals, canonical)
	}
	sort.Strings(canonicals)

	for _, canonical := range canonicals {
		entry := entries[canonical]
		name := strings.ToLower(strings.TrimSpace(canonical))
		if name == "" {
			return nil, fmt.Errorf("vendor dictionary contains an empty canonical name")
		}
		if entry.Tier < 1 || entry.Tier > 4 {
			return nil, fmt.Errorf("vendor %q has invalid tier %d (must be 1-4)", name, entry.Tier)
		}

		aliases := make([]string, 0, len(entry.Aliases)+1)
		seen := make(map[string]bool)
		for _, alias := range append([]string{name}, entry.Aliases...) {
			alias = strings.ToLower(strings.TrimSpace(alias))
			if alias == "" || seen[alias] {
				continue
			}
			if owner, taken := aliasOwner[alias]; taken && owner != name {
				return nil, fmt.Errorf("alias %q is claimed by both %q and %q", alias, owner, name)
			}
			aliasOwner[alias] = name
			seen[alias] = true
			aliases = append(aliases, alias)
		}

		entry.Aliases = aliases
		vendors[name] = entry
	}

	acquirersOf := make(map[string][]string)
	edges := make([]Acquisition, 0, len(acquisitions))
	for _, a := range acquisitions {
		acquirer := strings.ToLower(strings.TrimSpace(a.Acquirer))
		target := strings.ToLower(strings.TrimSpace(a.Target))
		if _, ok := vendors[acquirer]; !ok {
			return nil, fmt.Errorf("acquisition edge references unknown acquirer %q", acquirer)
		}
		if _, ok := vendors[target]; !ok {
			return nil, fmt.Errorf("acquisition edge references unknown target %q", target)
		}
		if acquirer == target {
			return nil, fmt.Errorf("acquisition edge %q -> %q is self-referential", acquirer, target)
		}
		acquirersOf[target] = append(acquirersOf[target], acquirer)
		edges = append(edges, Acquisition{Acquirer: acquirer, Target: target, Year: a.Year})
	}
	for target := range acquirersOf {
		sort.Strings(acquirersOf[target])
	}

	d := &Dictionary{
		vendors:      vendors,
		acquisitions: edges,
		acquirersOf:  acquirersOf,
	}

	if cycle := d.findCycle(); cycle != "" {
		return nil, fmt.Errorf("acquisition graph contains a cycle through %q", cycle)
	}

	return d, nil
}

// Load reads a dictionary from a TOML file. Unknown keys are rejected.
func Load(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vendor dictionary %s: %w", path, err)
	}

	var file dictionaryFile
	decoder := toml.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse vendor dictionary %s: %w", path, err)
	}

	return New(file.Vendors, file.Acquisitions)
}

// findCycle runs a DFS over target -> acquirer edges and returns the
// name of a vendor on a cycle, or "".
func (d *Dictionary) findCycle() string {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[string]int, len(d.vendors))

	var visit func(v string) string
	visit = func(v string) string {
		state[v] = inStack
		for _, acq := range d.acquirersOf[v] {
			switch state[acq] {
			case inStack:
				return acq
			case unvisited:
				if hit := visit(acq); hit != "" {
					return hit
				}
			}
		}
		state[v] = done
		return ""
	}

	for _, v := range d.Canonicals() {
		if state[v] == unvisited {
			if hit := visit(v); hit != "" {
				return hit
			}
		}
	}
	return ""
}

// Canonicals returns all canonical vendor names, sorted.
func (d *Dictionary) Canonicals() []string {
	names := make([]string, 0, len(d.vendors))
	for name := range d.vendors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tier returns the tier of a canonical vendor, or 0 if unknown.
func (d *Dictionary) Tier(canonical string) int {
	return d.vendors[strings.ToLower(canonical)].Tier
}

// IsConsolidator reports whether the vendor is a flagged consolidator.
func (d *Dictionary) IsConsolidator(canonical string) bool {
	return d.vendors[strings.ToLower(canonical)].Consolidator
}

// IsCloudSecurity reports whether the vendor is in the cloud-security
// platform space.
func (d *Dictionary) IsCloudSecurity(canonical string) bool {
	return d.vendors[strings.ToLower(canonical)].CloudSecurity
}

// Aliases returns the alias list for a canonical vendor (including the
// canonical name itself), or nil if unknown.
func (d *Dictionary) Aliases(canonical string) []string {
	entry, ok := d.vendors[strings.ToLower(canonical)]
	if !ok {
		return nil
	}
	return entry.Aliases
}

// ConfidenceBoost maps the vendor's tier to a confidence increment.
func (d *Dictionary) ConfidenceBoost(canonical string) float64 {
	switch d.Tier(canonical) {
	case 1:
		return 0.30
	case 2:
		return 0.20
	case 3:
		return 0.10
	default:
		return 0.0
	}
}

// Acquisitions returns the validated acquisition edges.
func (d *Dictionary) Acquisitions() []Acquisition {
	return d.acquisitions
}

// AcquirersOf returns the direct acquirers of a target vendor, sorted.
func (d *Dictionary) AcquirersOf(target string) []string {
	return d.acquirersOf[strings.ToLower(target)]
}

// InAcquisition reports whether the vendor appears on either side of
// any acquisition edge.
func (d *Dictionary) InAcquisition(canonical string) bool {
	name := strings.ToLower(canonical)
	for _, a := range d.acquisitions {
		if a.Acquirer == name || a.Target == name {
			return true
		}
	}
	return false
}

// AcquisitionChain walks the DAG from v following target -> acquirer
// edges and returns every upstream acquirer in breadth-first order.
func (d *Dictionary) AcquisitionChain(v string) []string {
	start := strings.ToLower(v)
	var chain []string
	seen := map[string]bool{start: true}
	queue := append([]string(nil), d.acquirersOf[start]...)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if seen[current] {
			continue
		}
		seen[current] = true
		chain = append(chain, current)
		queue = append(queue, d.acquirersOf[current]...)
	}
	return chain
}
