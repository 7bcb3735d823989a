package summarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPayload = `{
	"executive_summary": "Prices are moving.",
	"insights": [
		{"role": "pricing", "text": "VMware renewals up 40% [SOURCE_ID:1]", "claimed_priority": "alpha"}
	]
}`

func TestParseResponseCleanJSON(t *testing.T) {
	resp, err := parseResponse(validPayload)
	require.NoError(t, err)
	assert.Equal(t, "Prices are moving.", resp.ExecutiveSummary)
	require.Len(t, resp.Insights, 1)
	assert.Equal(t, "pricing", resp.Insights[0].Role)
	assert.Equal(t, "alpha", resp.Insights[0].ClaimedPriority)
}

func TestParseResponseStripsCodeFences(t *testing.T) {
	resp, err := parseResponse("```json\n" + validPayload + "\n```")
	require.NoError(t, err)
	assert.Len(t, resp.Insights, 1)
}

func TestParseResponseExtractsObjectFromProse(t *testing.T) {
	resp, err := parseResponse("Here is the analysis you asked for:\n" + validPayload + "\nLet me know if you need more.")
	require.NoError(t, err)
	assert.Len(t, resp.Insights, 1)
}

func TestParseResponseErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no json object", "I could not produce any structured output."},
		{"truncated json", `{"executive_summary": "x", "insights": [{"role": "pricing"`},
		{"empty insights", `{"executive_summary": "x", "insights": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseResponse(tt.raw)
			assert.Error(t, err)
		})
	}
}
