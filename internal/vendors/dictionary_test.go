package vendors

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsDuplicateAliases(t *testing.T) {
	entries := map[string]Entry{
		"vmware":   {Tier: 1, Aliases: []string{"vsphere"}},
		"broadcom": {Tier: 1, Aliases: []string{"vsphere"}},
	}
	_, err := New(entries, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vsphere")
}

func TestNewRejectsInvalidTier(t *testing.T) {
	tests := []struct {
		name string
		tier int
	}{
		{"zero", 0},
		{"negative", -1},
		{"too high", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(map[string]Entry{"vmware": {Tier: tt.tier}}, nil)
			assert.Error(t, err)
		})
	}
}

func TestNewRejectsAcquisitionCycle(t *testing.T) {
	entries := map[string]Entry{
		"alpha": {Tier: 2},
		"bravo": {Tier: 2},
		"delta": {Tier: 2},
	}
	edges := []Acquisition{
		{Acquirer: "bravo", Target: "alpha"},
		{Acquirer: "delta", Target: "bravo"},
		{Acquirer: "alpha", Target: "delta"},
	}
	_, err := New(entries, edges)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestNewRejectsUnknownVendorInEdge(t *testing.T) {
	entries := map[string]Entry{"vmware": {Tier: 1}}
	_, err := New(entries, []Acquisition{{Acquirer: "broadcom", Target: "vmware"}})
	assert.Error(t, err)
}

func TestAcquisitionChain(t *testing.T) {
	entries := map[string]Entry{
		"vmware":   {Tier: 1},
		"broadcom": {Tier: 1, Consolidator: true},
		"symantec": {Tier: 3},
	}
	edges := []Acquisition{
		{Acquirer: "broadcom", Target: "vmware", Year: 2023},
		{Acquirer: "broadcom", Target: "symantec", Year: 2019},
	}
	dict, err := New(entries, edges)
	require.NoError(t, err)

	assert.Equal(t, []string{"broadcom"}, dict.AcquisitionChain("vmware"))
	assert.Empty(t, dict.AcquisitionChain("broadcom"))
	assert.Equal(t, []string{"broadcom"}, dict.AcquirersOf("vmware"))
	assert.True(t, dict.InAcquisition("vmware"))
	assert.True(t, dict.InAcquisition("broadcom"))
}

func TestConfidenceBoostByTier(t *testing.T) {
	dict, err := New(map[string]Entry{
		"t1": {Tier: 1},
		"t2": {Tier: 2},
		"t3": {Tier: 3},
		"t4": {Tier: 4},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 0.30, dict.ConfidenceBoost("t1"))
	assert.Equal(t, 0.20, dict.ConfidenceBoost("t2"))
	assert.Equal(t, 0.10, dict.ConfidenceBoost("t3"))
	assert.Equal(t, 0.0, dict.ConfidenceBoost("t4"))
	assert.Equal(t, 0.0, dict.ConfidenceBoost("unknown"))
}

func TestLoadFromFile(t *testing.T) {
	content := `
[vendors.vmware]
aliases = ["vsphere", "esxi"]
tier = 1

[vendors.broadcom]
aliases = []
tier = 1
consolidator = true

[[acquisitions]]
acquirer = "broadcom"
target = "vmware"
year = 2023
`
	path := filepath.Join(t.TempDir(), "vendors.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	dict, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1, dict.Tier("vmware"))
	assert.True(t, dict.IsConsolidator("broadcom"))
	assert.Contains(t, dict.Aliases("vmware"), "vsphere")
	// Canonical name is always matchable even when not listed as alias
	assert.Contains(t, dict.Aliases("vmware"), "vmware")
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	content := `
[vendors.vmware]
aliases = []
tier = 1
importance = "very"
`
	path := filepath.Join(t.TempDir(), "vendors.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDefaultDictionaryIsValid(t *testing.T) {
	dict := Default()
	require.NotNil(t, dict)
	assert.Equal(t, 1, dict.Tier("vmware"))
	assert.Equal(t, 1, dict.Tier("broadcom"))
	assert.True(t, dict.IsConsolidator("broadcom"))
	assert.Contains(t, dict.AcquisitionChain("vmware"), "broadcom")
}
