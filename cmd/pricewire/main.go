package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/channelintel/pricewire/internal/cache"
	"github.com/channelintel/pricewire/internal/common"
	"github.com/channelintel/pricewire/internal/fetch"
	"github.com/channelintel/pricewire/internal/patterns"
	"github.com/channelintel/pricewire/internal/pipeline"
	"github.com/channelintel/pricewire/internal/report"
	"github.com/channelintel/pricewire/internal/scoring"
	"github.com/channelintel/pricewire/internal/summarizer"
	"github.com/channelintel/pricewire/internal/vendors"
)

// Exit codes: 0 success, 1 configuration error, 2 total fetch failure,
// 3 cancelled or internal error.
const (
	exitOK     = 0
	exitConfig = 1
	exitFetch  = 2
	exitAbort  = 3
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	outputDir    = flag.String("output", "", "Report output directory (overrides config)")
	selectorK    = flag.Int("top", 0, "Number of items to select (overrides config)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Pricewire version %s\n", common.GetVersion())
		return exitOK
	}

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("pricewire.toml"); err == nil {
			configFiles = append(configFiles, "pricewire.toml")
		} else if _, err := os.Stat("config/pricewire.toml"); err == nil {
			configFiles = append(configFiles, "config/pricewire.toml")
		}
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> files -> env)
	// 2. Apply CLI overrides (highest priority)
	// 3. Initialize logger
	// 4. Print banner
	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		arbor.NewLogger().Error().Err(err).Msg("Failed to load configuration")
		return exitConfig
	}

	common.ApplyFlagOverrides(config, *outputDir, *selectorK)

	if err := config.Validate(); err != nil {
		arbor.NewLogger().Error().Err(err).Msg("Invalid configuration")
		return exitConfig
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Strs("config_files", configFiles).
		Str("environment", config.Environment).
		Str("log_level", config.Logging.Level).
		Msg("Configuration loaded")

	dict, err := loadDictionary(config)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load vendor dictionary")
		return exitConfig
	}

	keywords, err := loadKeywords(config)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load keyword taxonomy")
		return exitConfig
	}

	matcher := vendors.NewMatcher(dict)
	table := patterns.Compile(keywords, logger)
	engine := scoring.NewEngine(config.Scoring, table, matcher, dict)

	responseCache, err := cache.Open(config.Cache, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open response cache, continuing without")
		responseCache = nil
	}
	if responseCache != nil {
		defer responseCache.Close()
	}

	fetchers := buildFetchers(config, dict, matcher, responseCache, logger)
	if len(fetchers) == 0 {
		logger.Error().Msg("No sources configured")
		return exitConfig
	}

	synth := summarizer.NewService(config.LLM, matcher, dict, logger)
	orchestrator := pipeline.NewOrchestrator(config, fetchers, engine, synth, dict, logger)

	// SIGINT/SIGTERM aborts the run without writing artifacts
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := orchestrator.Run(ctx)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrTotalFetchFailure):
			logger.Error().Err(err).Msg("No items fetched from any source")
			return exitFetch
		case errors.Is(err, context.Canceled):
			logger.Warn().Msg("Run cancelled, no report written")
			return exitAbort
		default:
			logger.Error().Err(err).Msg("Pipeline run failed")
			return exitAbort
		}
	}

	jsonPath, err := report.WriteJSON(result, config.Report.OutputDir)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to write report JSON")
		return exitAbort
	}
	logger.Info().Str("path", jsonPath).Msg("Report JSON written")

	if config.Report.WriteHTML {
		htmlPath, err := report.WriteHTML(result, config.Report.OutputDir)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to write report HTML")
			return exitAbort
		}
		logger.Info().Str("path", htmlPath).Msg("Report HTML written")
	}

	if result.RunStats.LLMFailed {
		logger.Warn().Msg("Report written without synthesised insights (LLM unavailable)")
	}

	return exitOK
}

func loadDictionary(config *common.Config) (*vendors.Dictionary, error) {
	if config.VendorDictionaryPath == "" {
		return vendors.Default(), nil
	}
	return vendors.Load(config.VendorDictionaryPath)
}

func loadKeywords(config *common.Config) (patterns.Keywords, error) {
	if config.KeywordsPath == "" {
		return patterns.DefaultKeywords(), nil
	}
	return patterns.Load(config.KeywordsPath)
}

func buildFetchers(config *common.Config, dict *vendors.Dictionary, matcher *vendors.Matcher, responseCache *cache.ResponseCache, logger arbor.ILogger) []fetch.Fetcher {
	requestTimeout := time.Duration(config.Run.RequestTimeoutSec) * time.Second

	// A typed nil *ResponseCache must not become a non-nil interface
	var rc fetch.ResponseCache
	if responseCache != nil {
		rc = responseCache
	}

	var fetchers []fetch.Fetcher
	if len(config.Sources.Forum.SubChannels) > 0 {
		fetchers = append(fetchers, fetch.NewForumFetcher(config.Sources.Forum, requestTimeout, dict, matcher, rc, logger))
	}
	if len(config.Sources.Search.Queries) > 0 {
		fetchers = append(fetchers, fetch.NewSearchFetcher(config.Sources.Search, requestTimeout, dict, rc, logger))
	}
	return fetchers
}
