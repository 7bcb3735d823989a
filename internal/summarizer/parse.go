package summarizer

import (
	"encoding/json"
	"fmt"
	"strings"
)

type llmInsight struct {
	Role            string `json:"role"`
	Text            string `json:"text"`
	ClaimedPriority string `json:"claimed_priority"`
}

type llmResponse struct {
	ExecutiveSummary string       `json:"executive_summary"`
	Insights         []llmInsight `json:"insights"`
}

// parseResponse extracts the JSON object from a model response. Models
// occasionally wrap the object in code fences or prose despite the
// instructions, so the parser trims to the outermost braces before
// decoding.
func parseResponse(raw string) (*llmResponse, error) {
	cleaned := stripFences(raw)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("response contains no JSON object")
	}
	cleaned = cleaned[start : end+1]

	var resp llmResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response JSON: %w", err)
	}
	if len(resp.Insights) == 0 {
		return nil, fmt.Errorf("response contains no insights")
	}
	return &resp, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
