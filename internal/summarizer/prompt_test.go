package summarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystemPromptStatesHardRules(t *testing.T) {
	// The downstream validator assumes the model was told these rules;
	// dropping one from the prompt silently weakens validation.
	assert.Contains(t, systemPrompt, "[SOURCE_ID:n]")
	assert.Contains(t, systemPrompt, "Never invent vendors")
	assert.Contains(t, systemPrompt, "quantitative detail (a price, percentage, or count) OR a specific vendor action")
	assert.Contains(t, systemPrompt, `"pricing"`)
	assert.Contains(t, systemPrompt, `"procurement"`)
	assert.Contains(t, systemPrompt, `"strategy"`)
}
