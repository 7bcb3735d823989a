package vendors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDictionary(t *testing.T) *Dictionary {
	t.Helper()
	dict, err := New(map[string]Entry{
		"vmware":    {Tier: 1, Aliases: []string{"vsphere", "esxi", "workspace one"}},
		"oracle":    {Tier: 1, Aliases: []string{"oracle cloud", "oci"}},
		"microsoft": {Tier: 1, Aliases: []string{"azure", "m365"}},
	}, nil)
	require.NoError(t, err)
	return dict
}

func TestMatcherFindsAliases(t *testing.T) {
	m := NewMatcher(testDictionary(t))

	result := m.Match("Our vSphere cluster and Azure tenancy both got price hikes")
	assert.Equal(t, []string{"microsoft", "vmware"}, result.Vendors)
	assert.Equal(t, []string{"vsphere"}, result.Hits["vmware"])
	assert.Equal(t, []string{"azure"}, result.Hits["microsoft"])
}

func TestMatcherIsCaseInsensitive(t *testing.T) {
	m := NewMatcher(testDictionary(t))

	for _, text := range []string{"VMWARE raised prices", "VMware raised prices", "vmware raised prices"} {
		result := m.Match(text)
		assert.Equal(t, []string{"vmware"}, result.Vendors, "text: %s", text)
	}
}

func TestMatcherWordBoundary(t *testing.T) {
	m := NewMatcher(testDictionary(t))

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"substring inside longer word", "the corelation coefficient", nil},
		{"alias embedded in word", "preesxiposure is not a vendor", nil},
		{"oci inside sociology", "sociology course pricing", nil},
		{"exact word match", "oci egress fees doubled", []string{"oracle"}},
		{"punctuation adjacent", "Goodbye, VMware.", []string{"vmware"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := m.Match(tt.text)
			assert.Equal(t, tt.want, result.Vendors)
		})
	}
}

func TestMatcherLongestAliasWins(t *testing.T) {
	m := NewMatcher(testDictionary(t))

	// "workspace one" must match as a single two-word alias, not stop at
	// a shorter overlapping alias.
	result := m.Match("migrating off workspace one this quarter")
	require.Equal(t, []string{"vmware"}, result.Vendors)
	assert.Equal(t, []string{"workspace one"}, result.Hits["vmware"])
}

func TestMatcherMultipleHitsSameVendor(t *testing.T) {
	m := NewMatcher(testDictionary(t))

	result := m.Match("esxi hosts managed through vSphere")
	require.Equal(t, []string{"vmware"}, result.Vendors)
	assert.Equal(t, []string{"esxi", "vsphere"}, result.Hits["vmware"])
}

func TestMatcherEmptyText(t *testing.T) {
	m := NewMatcher(testDictionary(t))
	result := m.Match("")
	assert.Empty(t, result.Vendors)
	assert.Empty(t, result.Hits)
}
