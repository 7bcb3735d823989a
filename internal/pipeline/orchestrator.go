package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/channelintel/pricewire/internal/analytics"
	"github.com/channelintel/pricewire/internal/common"
	"github.com/channelintel/pricewire/internal/fetch"
	"github.com/channelintel/pricewire/internal/models"
	"github.com/channelintel/pricewire/internal/report"
	"github.com/channelintel/pricewire/internal/scoring"
	"github.com/channelintel/pricewire/internal/summarizer"
	"github.com/channelintel/pricewire/internal/vendors"
)

// Synthesizer is the slice of the summarizer the orchestrator needs.
type Synthesizer interface {
	Summarize(ctx context.Context, bound []summarizer.BoundItem) (*summarizer.Result, error)
}

// Orchestrator drives one end-to-end run: concurrent fetch, dedup,
// scoring, selection, synthesis, and report assembly.
type Orchestrator struct {
	cfg      *common.Config
	fetchers []fetch.Fetcher
	engine   *scoring.Engine
	selector *Selector
	synth    Synthesizer
	dict     *vendors.Dictionary
	logger   arbor.ILogger

	now func() time.Time
}

// NewOrchestrator wires the run stages.
func NewOrchestrator(cfg *common.Config, fetchers []fetch.Fetcher, engine *scoring.Engine, synth Synthesizer, dict *vendors.Dictionary, logger arbor.ILogger) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		fetchers: fetchers,
		engine:   engine,
		selector: NewSelector(cfg.Selector),
		synth:    synth,
		dict:     dict,
		logger:   logger,
		now:      time.Now,
	}
}

// sourceResult is one fetcher's outcome.
type sourceResult struct {
	name  string
	items []models.RawItem
	stats fetch.Stats
	err   error
}

// Run executes the pipeline and returns the assembled report. A
// cancelled context aborts without producing a report. Zero items
// across all sources returns ErrTotalFetchFailure; individual source
// failures are recorded in run stats and the run continues.
func (o *Orchestrator) Run(ctx context.Context) (*models.Report, error) {
	start := o.now()
	runID := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(o.cfg.Run.GlobalTimeoutSec)*time.Second)
	defer cancel()

	o.logger.Info().
		Str("run_id", runID).
		Int("sources", len(o.fetchers)).
		Msg("Starting pipeline run")

	results := o.fetchAll(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stats := models.RunStats{
		RunID:                 runID,
		ItemsFetchedPerSource: make(map[string]int, len(results)),
	}

	var items []models.RawItem
	for _, r := range results {
		stats.ItemsFetchedPerSource[r.name] = len(r.items)
		stats.CacheHits += r.stats.CacheHits
		stats.CacheMisses += r.stats.CacheMisses
		items = append(items, r.items...)
		if r.err != nil {
			stats.PartialFailures = append(stats.PartialFailures, models.SourceFailure{
				Source: r.name,
				Error:  r.err.Error(),
			})
			o.logger.Warn().Err(r.err).Str("source", r.name).Msg("Source fetch failed")
		}
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%d sources attempted: %w", len(o.fetchers), ErrTotalFetchFailure)
	}

	deduped := Dedup(items)
	o.logger.Info().
		Int("fetched", len(items)).
		Int("after_dedup", len(deduped)).
		Msg("Deduplication completed")

	now := o.now()
	scored := make([]models.ScoredItem, len(deduped))
	for i, item := range deduped {
		scored[i] = models.ScoredItem{Item: item, Score: o.engine.Score(item, now)}
	}

	selected := o.selector.Select(scored)
	stats.ItemsSelected = len(selected)
	o.logger.Info().
		Int("scored", len(scored)).
		Int("selected", len(selected)).
		Msg("Selection completed")

	bound := summarizer.Bind(selected, o.cfg.Report.ExcerptMaxChars)
	synthesis, err := o.synth.Summarize(ctx, bound)
	if err != nil {
		return nil, err
	}
	stats.LLMTokensUsed = synthesis.TokensUsed
	stats.LLMFailed = synthesis.Failed
	stats.LLMDropped = synthesis.Dropped

	rollup := analytics.Rollup(selected, o.dict, o.cfg.Report.TopVendors)

	stats.DurationMS = o.now().Sub(start).Milliseconds()
	r := report.Assemble(o.now(), synthesis.Insights, synthesis.ExecutiveSummary, summarizer.SourceRefs(bound), rollup, stats)

	o.logger.Info().
		Str("run_id", runID).
		Int("insights", len(synthesis.Insights)).
		Int64("duration_ms", stats.DurationMS).
		Msg("Pipeline run completed")

	return r, nil
}

// fetchAll runs every fetcher concurrently under the per-source
// timeout and collects results in fetcher order.
func (o *Orchestrator) fetchAll(ctx context.Context) []sourceResult {
	results := make([]sourceResult, len(o.fetchers))
	var wg sync.WaitGroup

	for i, f := range o.fetchers {
		wg.Add(1)
		go func(i int, f fetch.Fetcher) {
			defer wg.Done()

			sourceCtx, cancel := context.WithTimeout(ctx, time.Duration(o.cfg.Run.SourceTimeoutSec)*time.Second)
			defer cancel()

			items, stats, err := f.Fetch(sourceCtx)
			results[i] = sourceResult{name: f.Name(), items: items, stats: stats, err: err}
		}(i, f)
	}

	wg.Wait()
	return results
}
