package common

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment          string         `toml:"environment"` // "development" or "production"
	Sources              SourcesConfig  `toml:"sources"`
	Scoring              ScoringConfig  `toml:"scoring"`
	Selector             SelectorConfig `toml:"selector"`
	LLM                  LLMConfig      `toml:"llm"`
	Report               ReportConfig   `toml:"report"`
	Run                  RunConfig      `toml:"run"`
	Cache                CacheConfig    `toml:"cache"`
	Logging              LoggingConfig  `toml:"logging"`
	VendorDictionaryPath string         `toml:"vendor_dictionary_path"` // Vendor dictionary TOML (empty = built-in defaults)
	KeywordsPath         string         `toml:"keywords_path"`          // Keyword taxonomy TOML (empty = built-in defaults)
}

type SourcesConfig struct {
	Forum  ForumConfig  `toml:"forum"`
	Search SearchConfig `toml:"search"`
}

// ForumConfig configures the forum (Reddit-style JSON listing) fetcher
type ForumConfig struct {
	BaseURL             string   `toml:"base_url"`              // Listing API base URL
	SubChannels         []string `toml:"sub_channels"`          // Sub-channels to iterate
	RatePerSec          float64  `toml:"rate_per_sec"`          // Token-bucket rate limit
	MinUpvotes          int      `toml:"min_upvotes"`           // Quality filter floor
	MinComments         int      `toml:"min_comments"`          // Quality filter floor
	WindowHours         int      `toml:"window_hours"`          // Primary recency window
	FallbackWindowHours int      `toml:"fallback_window_hours"` // Widened window when primary is thin
	FallbackThreshold   int      `toml:"fallback_threshold"`    // Min items before fallback kicks in
}

// SearchConfig configures the web-search (Custom Search-style REST) fetcher
type SearchConfig struct {
	BaseURL               string   `toml:"base_url"`
	APIKey                string   `toml:"api_key"`
	EngineID              string   `toml:"engine_id"`
	Queries               []string `toml:"queries"`          // May contain the {year} template token
	ResultsPerQuery       int      `toml:"results_per_query"`
	DateRestriction       string   `toml:"date_restriction"` // e.g. "d7"
	RatePerSec            float64  `toml:"rate_per_sec"`
	EnhanceTier1          bool     `toml:"enhance_tier1"`           // Add per-vendor pricing queries for tier-1 vendors
	MaxEnhancementQueries int      `toml:"max_enhancement_queries"` // Cap on generated vendor queries
}

// RevenueWeights are the per-axis weights of the revenue-impact model.
// They sum to 1.0; the weighted sum is added to the composite total.
type RevenueWeights struct {
	Immediate   float64 `toml:"immediate" validate:"gte=0,lte=1"`
	Margin      float64 `toml:"margin" validate:"gte=0,lte=1"`
	Competitive float64 `toml:"competitive" validate:"gte=0,lte=1"`
	Strategic   float64 `toml:"strategic" validate:"gte=0,lte=1"`
	Urgency     float64 `toml:"urgency" validate:"gte=0,lte=1"`
}

// ScoringConfig centralises every numeric constant of the scoring engine.
// All values are overridable under [scoring] in the config file.
type ScoringConfig struct {
	PricingWeight       float64 `toml:"pricing_weight" validate:"gte=0"`
	PricingCap          float64 `toml:"pricing_cap" validate:"gte=0"`
	UrgencyHighWeight   float64 `toml:"urgency_high_weight" validate:"gte=0"`
	UrgencyHighCap      float64 `toml:"urgency_high_cap" validate:"gte=0"`
	UrgencyMediumWeight float64 `toml:"urgency_medium_weight" validate:"gte=0"`
	UrgencyMediumCap    float64 `toml:"urgency_medium_cap" validate:"gte=0"`
	SupportingWeight    float64 `toml:"supporting_weight" validate:"gte=0"` // supply / strategy / technology
	SupportingCap       float64 `toml:"supporting_cap" validate:"gte=0"`

	VendorWeight float64 `toml:"vendor_weight" validate:"gte=0"`
	VendorCap    float64 `toml:"vendor_cap" validate:"gte=0"`
	Tier1Bonus   float64 `toml:"tier1_bonus" validate:"gte=0"`

	RecencyDayBoost  float64 `toml:"recency_day_boost" validate:"gte=0"`
	RecencyWeekBoost float64 `toml:"recency_week_boost" validate:"gte=0"`

	CloudSecurityBoost       float64 `toml:"cloud_security_boost" validate:"gte=0"`
	CloudSecurityVendorBoost float64 `toml:"cloud_security_vendor_boost" validate:"gte=0"`

	MABoost             float64 `toml:"ma_boost" validate:"gte=0"`
	MAConsolidatorBoost float64 `toml:"ma_consolidator_boost" validate:"gte=0"`
	MAPairBoost         float64 `toml:"ma_pair_boost" validate:"gte=0"`
	MACap               float64 `toml:"ma_cap" validate:"gte=0"`

	PartnershipBoost        float64 `toml:"partnership_boost" validate:"gte=0"`
	PartnerTierChangeBoost  float64 `toml:"partner_tier_change_boost" validate:"gte=0"`
	RelationshipChangeBoost float64 `toml:"relationship_change_boost" validate:"gte=0"`
	PartnershipCap          float64 `toml:"partnership_cap" validate:"gte=0"`

	MSPMultiplier          float64 `toml:"msp_multiplier" validate:"gte=1"`
	MediumUrgencyThreshold float64 `toml:"medium_urgency_threshold" validate:"gte=0"`

	RevenueWeights RevenueWeights `toml:"revenue_weights"`
}

// SelectorConfig configures the bucketed top-K selection stage
type SelectorConfig struct {
	K                    int     `toml:"k" validate:"gt=0"`
	CriticalPct          float64 `toml:"critical_pct" validate:"gte=0,lte=1"`
	EngagementPct        float64 `toml:"engagement_pct" validate:"gte=0,lte=1"`
	RelevancePct         float64 `toml:"relevance_pct" validate:"gte=0,lte=1"`
	MinEngagementUpvotes int     `toml:"min_engagement_upvotes" validate:"gte=0"`
	MinEngagementComs    int     `toml:"min_engagement_comments" validate:"gte=0"`
	EngagementRelevance  float64 `toml:"engagement_relevance_floor" validate:"gte=0"` // relevance floor for the engagement bucket
	RelevanceThreshold   float64 `toml:"relevance_threshold" validate:"gte=0"`
}

// LLMConfig contains Anthropic API configuration for the synthesis call
type LLMConfig struct {
	APIKey      string  `toml:"api_key"` // Anthropic API key (ANTHROPIC_API_KEY or config)
	Model       string  `toml:"model" validate:"required"`
	MaxTokens   int     `toml:"max_tokens" validate:"gt=0"`
	Temperature float64 `toml:"temperature" validate:"gte=0,lte=1"`
	TimeoutSec  int     `toml:"timeout_sec" validate:"gt=0"`
}

// ReportConfig configures report assembly and artifact output
type ReportConfig struct {
	ExcerptMaxChars int    `toml:"excerpt_max_chars" validate:"gt=0"`
	OutputDir       string `toml:"output_dir"`
	TopVendors      int    `toml:"top_vendors" validate:"gt=0"`
	WriteHTML       bool   `toml:"write_html"`
}

// RunConfig holds the timeout envelope of one pipeline invocation
type RunConfig struct {
	GlobalTimeoutSec  int `toml:"global_timeout_sec" validate:"gt=0"`
	SourceTimeoutSec  int `toml:"source_timeout_sec" validate:"gt=0"`
	RequestTimeoutSec int `toml:"request_timeout_sec" validate:"gt=0"`
}

// CacheConfig configures the optional HTTP response cache
type CacheConfig struct {
	Enabled  bool   `toml:"enabled"`
	TTLHours int    `toml:"ttl_hours" validate:"gt=0"`
	Path     string `toml:"path"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability;
// only user-facing settings belong in pricewire.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Sources: SourcesConfig{
			Forum: ForumConfig{
				BaseURL:             "https://www.reddit.com",
				SubChannels:         []string{"msp", "sysadmin", "vmware", "ITManagers"},
				RatePerSec:          0.5,
				MinUpvotes:          3,
				MinComments:         3,
				WindowHours:         24,
				FallbackWindowHours: 168,
				FallbackThreshold:   20,
			},
			Search: SearchConfig{
				BaseURL:               "https://www.googleapis.com/customsearch/v1",
				Queries:               []string{`"price increase" enterprise software {year}`, `vendor licensing change announcement {year}`},
				ResultsPerQuery:       10,
				DateRestriction:       "d7",
				RatePerSec:            1.0,
				EnhanceTier1:          true,
				MaxEnhancementQueries: 5,
			},
		},
		Scoring: ScoringConfig{
			PricingWeight:       1.0,
			PricingCap:          5.0,
			UrgencyHighWeight:   2.0,
			UrgencyHighCap:      6.0,
			UrgencyMediumWeight: 1.0,
			UrgencyMediumCap:    3.0,
			SupportingWeight:    0.5,
			SupportingCap:       2.0,

			VendorWeight: 1.5,
			VendorCap:    6.0,
			Tier1Bonus:   1.0,

			RecencyDayBoost:  1.5,
			RecencyWeekBoost: 0.5,

			CloudSecurityBoost:       3.0,
			CloudSecurityVendorBoost: 1.0,

			MABoost:             3.0,
			MAConsolidatorBoost: 2.0,
			MAPairBoost:         1.5,
			MACap:               6.5,

			PartnershipBoost:        2.0,
			PartnerTierChangeBoost:  4.0,
			RelationshipChangeBoost: 3.0,
			PartnershipCap:          8.0,

			MSPMultiplier:          1.5,
			MediumUrgencyThreshold: 7.0,

			RevenueWeights: RevenueWeights{
				Immediate:   0.30,
				Margin:      0.25,
				Competitive: 0.20,
				Strategic:   0.15,
				Urgency:     0.10,
			},
		},
		Selector: SelectorConfig{
			K:                    200,
			CriticalPct:          0.4,
			EngagementPct:        0.2,
			RelevancePct:         0.3,
			MinEngagementUpvotes: 50,
			MinEngagementComs:    20,
			EngagementRelevance:  4.0,
			RelevanceThreshold:   7.0,
		},
		LLM: LLMConfig{
			APIKey:      "", // User must provide API key (ANTHROPIC_API_KEY or config)
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   2000,
			Temperature: 0.2,
			TimeoutSec:  90,
		},
		Report: ReportConfig{
			ExcerptMaxChars: 500,
			OutputDir:       "./output",
			TopVendors:      20,
			WriteHTML:       true,
		},
		Run: RunConfig{
			GlobalTimeoutSec:  600,
			SourceTimeoutSec:  120,
			RequestTimeoutSec: 30,
		},
		Cache: CacheConfig{
			Enabled:  true,
			TTLHours: 6,
			Path:     "./data/cache",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier
// files. Unknown keys in any file are a configuration error, not a
// silent ignore.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(config); err != nil {
			var strict *toml.StrictMissingError
			if ok := asStrictError(err, &strict); ok {
				return nil, fmt.Errorf("unknown keys in config file %s:\n%s", path, strict.String())
			}
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// asStrictError unwraps a go-toml strict decoding error
func asStrictError(err error, target **toml.StrictMissingError) bool {
	if se, ok := err.(*toml.StrictMissingError); ok {
		*target = se
		return true
	}
	return false
}

// Validate checks structural constraints on the resolved configuration
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if len(c.Sources.Forum.SubChannels) == 0 && len(c.Sources.Search.Queries) == 0 {
		return fmt.Errorf("invalid configuration: no sources configured (need forum sub_channels or search queries)")
	}

	bucketSum := c.Selector.CriticalPct + c.Selector.EngagementPct + c.Selector.RelevancePct
	if bucketSum > 1.0 {
		return fmt.Errorf("invalid configuration: selector bucket percentages sum to %.2f (must be <= 1.0)", bucketSum)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("PRICEWIRE_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Logging
	if level := os.Getenv("PRICEWIRE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("PRICEWIRE_LOG_OUTPUT"); output != "" {
		parts := strings.Split(output, ",")
		outputs := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Credentials are env-first so config files can stay secret-free
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.LLM.APIKey = key
	}
	if key := os.Getenv("PRICEWIRE_LLM_API_KEY"); key != "" {
		config.LLM.APIKey = key
	}
	if model := os.Getenv("PRICEWIRE_LLM_MODEL"); model != "" {
		config.LLM.Model = model
	}
	if key := os.Getenv("PRICEWIRE_SEARCH_API_KEY"); key != "" {
		config.Sources.Search.APIKey = key
	}
	if id := os.Getenv("PRICEWIRE_SEARCH_ENGINE_ID"); id != "" {
		config.Sources.Search.EngineID = id
	}

	// Paths
	if dir := os.Getenv("PRICEWIRE_OUTPUT_DIR"); dir != "" {
		config.Report.OutputDir = dir
	}
	if path := os.Getenv("PRICEWIRE_VENDORS_PATH"); path != "" {
		config.VendorDictionaryPath = path
	}
	if path := os.Getenv("PRICEWIRE_KEYWORDS_PATH"); path != "" {
		config.KeywordsPath = path
	}
	if path := os.Getenv("PRICEWIRE_CACHE_PATH"); path != "" {
		config.Cache.Path = path
	}
	if enabled := os.Getenv("PRICEWIRE_CACHE_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			config.Cache.Enabled = b
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, outputDir string, selectorK int) {
	if outputDir != "" {
		config.Report.OutputDir = outputDir
	}
	if selectorK > 0 {
		config.Selector.K = selectorK
	}
}
