package scoring

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/scouthq/scout/internal/sources"
	"gopkg.in/yaml.v3"
)

// QueryType is the caller-supplied classification of the query. The engine
// never derives it from the query text; classification belongs to the
// caller.
type QueryType string

const (
	QueryGeneral         QueryType = "GENERAL"
	QueryNews            QueryType = "NEWS"
	QueryHowTo           QueryType = "HOW_TO"
	QueryRecommendations QueryType = "RECOMMENDATIONS"
	QueryComparison      QueryType = "COMPARISON"
)

// ParseQueryType validates a query type string (case-insensitive).
func ParseQueryType(s string) (QueryType, error) {
	qt := QueryType(strings.ToUpper(strings.TrimSpace(s)))
	switch qt {
	case QueryGeneral, QueryNews, QueryHowTo, QueryRecommendations, QueryComparison:
		return qt, nil
	}
	return "", fmt.Errorf("unknown query type: %q", s)
}

// Weights are the sub-score weights for one tier.
type Weights struct {
	Relevance  float64 `yaml:"relevance"`
	Recency    float64 `yaml:"recency"`
	Engagement float64 `yaml:"engagement"`
}

// TierParams configure one source tier: weights plus a flat penalty applied
// after weighting.
type TierParams struct {
	Weights Weights `yaml:"weights"`
	Penalty float64 `yaml:"penalty"`
}

// QueryParams configure the scoring behavior for one query type.
type QueryParams struct {
	RecencyWindowDays int                `yaml:"recency_window_days"`
	SourceBoosts      map[string]float64 `yaml:"source_boosts"`
}

// Config is the full tier/query-type table, passed by value into the
// engine. Nothing here is looked up globally at scoring time.
type Config struct {
	Tiers       map[int]TierParams        `yaml:"tiers"`
	SourceTiers map[string]int            `yaml:"source_tiers"`
	QueryTypes  map[QueryType]QueryParams `yaml:"query_types"`

	HighConfidenceBonus      float64 `yaml:"high_confidence_bonus"`
	LowConfidencePenalty     float64 `yaml:"low_confidence_penalty"`
	UnknownEngagementPenalty float64 `yaml:"unknown_engagement_penalty"`
	DefaultEngagement        float64 `yaml:"default_engagement"`
	NeutralRecency           float64 `yaml:"neutral_recency"`

	// Now pins the clock for recency; zero means wall clock. Tests set it
	// for determinism.
	Now time.Time `yaml:"-"`
}

// DefaultConfig returns the built-in tier table.
//
// Tier 1: directly observable engagement (reddit enrichment).
// Tier 2: curated community sources with engagement but lower signal
// confidence (hackernews, stackoverflow, lobsters, devto).
// Tier 3: no reliable engagement signal (arxiv, wikipedia, duckduckgo,
// brave).
func DefaultConfig() Config {
	return Config{
		Tiers: map[int]TierParams{
			1: {Weights: Weights{Relevance: 0.45, Recency: 0.25, Engagement: 0.30}},
			2: {Weights: Weights{Relevance: 0.45, Recency: 0.25, Engagement: 0.30}, Penalty: 5},
			3: {Weights: Weights{Relevance: 0.55, Recency: 0.45}, Penalty: 15},
		},
		SourceTiers: map[string]int{
			sources.NameReddit:        1,
			sources.NameHackerNews:    2,
			sources.NameStackOverflow: 2,
			sources.NameLobsters:      2,
			sources.NameDevto:         2,
			sources.NameArxiv:         3,
			sources.NameWikipedia:     3,
			sources.NameDuckDuckGo:    3,
			sources.NameBrave:         3,
		},
		QueryTypes: map[QueryType]QueryParams{
			QueryGeneral: {RecencyWindowDays: 365},
			QueryNews: {
				RecencyWindowDays: 30,
				SourceBoosts: map[string]float64{
					sources.NameHackerNews: 1.10,
					sources.NameLobsters:   1.05,
				},
			},
			QueryHowTo: {
				RecencyWindowDays: 365,
				SourceBoosts: map[string]float64{
					sources.NameStackOverflow: 1.10,
					sources.NameDevto:         1.05,
				},
			},
			QueryRecommendations: {
				RecencyWindowDays: 365,
				SourceBoosts: map[string]float64{
					sources.NameReddit:   1.10,
					sources.NameLobsters: 1.05,
				},
			},
			QueryComparison: {
				RecencyWindowDays: 365,
				SourceBoosts: map[string]float64{
					sources.NameReddit:        1.05,
					sources.NameStackOverflow: 1.05,
				},
			},
		},
		HighConfidenceBonus:      5,
		LowConfidencePenalty:     15,
		UnknownEngagementPenalty: 10,
		DefaultEngagement:        35,
		NeutralRecency:           50,
	}
}

// fileConfig is the YAML overlay shape: only the tables that make sense to
// override from a file.
type fileConfig struct {
	Tiers       map[int]TierParams        `yaml:"tiers"`
	SourceTiers map[string]int            `yaml:"source_tiers"`
	QueryTypes  map[QueryType]QueryParams `yaml:"query_types"`
}

// LoadConfig reads a YAML override file and merges it over the defaults.
// Entries present in the file replace the default entry wholesale.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read scoring config: %w", err)
	}
	var overlay fileConfig
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return Config{}, fmt.Errorf("parse scoring config: %w", err)
	}

	for tier, params := range overlay.Tiers {
		cfg.Tiers[tier] = params
	}
	for source, tier := range overlay.SourceTiers {
		cfg.SourceTiers[source] = tier
	}
	for qt, params := range overlay.QueryTypes {
		cfg.QueryTypes[qt] = params
	}

	return cfg, nil
}
