package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/channelintel/pricewire/internal/common"
	"github.com/channelintel/pricewire/internal/models"
	"github.com/channelintel/pricewire/internal/vendors"
)

// Result is the validated synthesis output for one run. Failed is a
// soft signal: the pipeline still produces a report without insights
// when the model is unavailable or returns garbage twice.
type Result struct {
	Insights         []models.Insight
	ExecutiveSummary string
	TokensUsed       int64
	Dropped          int
	Failed           bool
}

// Service synthesises insights from bound items via the Anthropic
// Messages API.
type Service struct {
	cfg     common.LLMConfig
	matcher *vendors.Matcher
	dict    *vendors.Dictionary
	logger  arbor.ILogger
	client  *anthropic.Client

	// complete performs one model round-trip and returns the raw text
	// and tokens used. Overridable in tests.
	complete func(ctx context.Context, system, user string) (string, int64, error)
}

// NewService creates the synthesis service. The API key is validated
// lazily: a missing key degrades the run to a report without insights
// instead of failing it.
func NewService(cfg common.LLMConfig, matcher *vendors.Matcher, dict *vendors.Dictionary, logger arbor.ILogger) *Service {
	s := &Service{
		cfg:     cfg,
		matcher: matcher,
		dict:    dict,
		logger:  logger,
	}
	if cfg.APIKey != "" {
		client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
		s.client = &client
	}
	s.complete = s.apiComplete
	return s
}

// Summarize runs the synthesis round-trip with a single retry shared
// between transport failures and unparseable output; the retry after a
// parse failure carries the repair prompt. Failures surviving the
// retry soft-fail; a cancelled context propagates as an error so the
// caller can abort without writing artifacts.
func (s *Service) Summarize(ctx context.Context, bound []BoundItem) (*Result, error) {
	if len(bound) == 0 {
		return &Result{}, nil
	}
	if s.cfg.APIKey == "" {
		s.logger.Warn().Msg("No LLM API key configured, skipping insight synthesis")
		return &Result{Failed: true}, nil
	}

	prompt := buildPrompt(bound)
	result := &Result{}

	s.logger.Info().
		Int("items", len(bound)).
		Str("model", s.cfg.Model).
		Msg("Starting insight synthesis")

	var resp *llmResponse
	needRepair := false
	for attempt := 1; attempt <= 2; attempt++ {
		user := prompt
		if needRepair {
			user = prompt + "\n\n" + repairPrompt
		}

		raw, tokens, err := s.complete(ctx, systemPrompt, user)
		result.TokensUsed += tokens
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Per-call timeouts and transport errors retry once, like
			// parse failures, but without the repair prompt.
			s.logger.Warn().Err(err).Int("attempt", attempt).Msg("LLM call failed")
			continue
		}

		resp, err = parseResponse(raw)
		if err == nil {
			break
		}
		needRepair = true
		s.logger.Warn().Err(err).Int("attempt", attempt).Msg("Failed to parse LLM response")
		resp = nil
	}

	if resp == nil {
		result.Failed = true
		return result, nil
	}

	insights, dropped := validateInsights(resp.Insights, bound, s.matcher, s.dict)
	result.Insights = insights
	result.Dropped = dropped
	result.ExecutiveSummary = strings.TrimSpace(resp.ExecutiveSummary)

	for _, insight := range insights {
		if unsupported := UnsupportedQuantifiers(insight, bound); len(unsupported) > 0 {
			s.logger.Warn().
				Str("quantifiers", strings.Join(unsupported, ", ")).
				Msg("Insight states figures not found in cited sources")
		}
	}

	s.logger.Info().
		Int("insights", len(insights)).
		Int("dropped", dropped).
		Int64("tokens", result.TokensUsed).
		Msg("Insight synthesis completed")

	return result, nil
}

// apiComplete performs the Anthropic Messages round-trip.
func (s *Service) apiComplete(ctx context.Context, system, user string) (string, int64, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.TimeoutSec)*time.Second)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.cfg.Model),
		MaxTokens: int64(s.cfg.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if s.cfg.Temperature > 0 {
		params.Temperature = anthropic.Float(s.cfg.Temperature)
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := s.client.Messages.New(timeoutCtx, params)
	if err != nil {
		return "", 0, fmt.Errorf("Claude API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", 0, fmt.Errorf("no text content in Claude response")
	}

	tokens := resp.Usage.InputTokens + resp.Usage.OutputTokens
	return text.String(), tokens, nil
}
