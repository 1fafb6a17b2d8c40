package models

import (
	"strings"
	"time"
)

// Sport identifies one of the supported leagues/data sources
type Sport string

const (
	SportSoccer Sport = "soccer"
	SportNBA    Sport = "nba"
	SportNFL    Sport = "nfl"
)

// ProfileSource distinguishes real historical aggregates from deterministic baselines
type ProfileSource string

const (
	SourceReal     ProfileSource = "REAL"
	SourceFallback ProfileSource = "FALLBACK"
)

// QualityTier is derived purely from the surviving sample size
type QualityTier string

const (
	TierExcellent QualityTier = "excellent" // >= 8 games
	TierGood      QualityTier = "good"      // 5-7 games
	TierFair      QualityTier = "fair"      // 3-4 games
	TierPoor      QualityTier = "poor"      // < 3 games, fallback required
)

// MarketID identifies a bettable proposition type
type MarketID string

const (
	MarketMatchResult MarketID = "match_result"
	MarketTotalPoints MarketID = "total_points" // over/under at MarketSpec.Line
	MarketBTTS        MarketID = "btts"         // both teams to score (soccer only)
)

// Outcome constants per market family
const (
	OutcomeHomeWin = "HOME_WIN"
	OutcomeAwayWin = "AWAY_WIN"
	OutcomeDraw    = "DRAW"
	OutcomeOver    = "OVER"
	OutcomeUnder   = "UNDER"
	OutcomeBTTSYes = "BTTS_YES"
	OutcomeBTTSNo  = "BTTS_NO"
)

// Decision is the gate verdict for one candidate prediction
type Decision string

const (
	DecisionAccepted Decision = "ACCEPTED"
	DecisionRejected Decision = "REJECTED"
)

// Rejection reasons
const (
	ReasonBelowThreshold   = "BELOW_THRESHOLD"
	ReasonInsufficientData = "INSUFFICIENT_DATA"
)

// Fixture is a scheduled or completed match between two entities
type Fixture struct {
	ID         string    `json:"id"`
	Sport      Sport     `json:"sport"`
	League     string    `json:"league,omitempty"`
	HomeID     string    `json:"home_id"`
	AwayID     string    `json:"away_id"`
	HomeName   string    `json:"home_name"`
	AwayName   string    `json:"away_name"`
	StartTime  time.Time `json:"start_time"`
	Venue      string    `json:"venue,omitempty"`
	Status     string    `json:"status,omitempty"`
	SourceFeed string    `json:"source_feed,omitempty"` // which upstream feed produced the fixture
}

// PairKey returns the unordered entity-pair key for dedup and H2H lookups
func (f Fixture) PairKey() string {
	return PairKey(f.HomeID, f.AwayID)
}

// PairKey builds an order-independent key for two entity IDs
func PairKey(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + "|" + b
}

// HistoricalGame is one recorded H2H result, immutable once collected.
// Scores are validated non-negative at the collector boundary.
type HistoricalGame struct {
	Date      time.Time `json:"date"`
	HomeID    string    `json:"home_id"`
	AwayID    string    `json:"away_id"`
	HomeScore int       `json:"home_score"`
	AwayScore int       `json:"away_score"`
	SourceTag string    `json:"source_tag"` // feed name, or "fallback" for synthetic games
}

// Total returns the combined score of both entities
func (g HistoricalGame) Total() int {
	return g.HomeScore + g.AwayScore
}

// HeadToHeadSample is an ordered list of games for one unordered entity pair
type HeadToHeadSample struct {
	EntityA string           `json:"entity_a"`
	EntityB string           `json:"entity_b"`
	Games   []HistoricalGame `json:"games"`
}

// StatisticalProfile holds per-pair aggregates, recomputed fresh on every run
type StatisticalProfile struct {
	PairKey       string        `json:"pair_key"`
	Source        ProfileSource `json:"source"`
	SampleSize    int           `json:"sample_size"`
	QualityTier   QualityTier   `json:"quality_tier"`
	HomeWinRate   float64       `json:"home_win_rate"`
	AwayWinRate   float64       `json:"away_win_rate"`
	DrawRate      float64       `json:"draw_rate"`
	AvgTotal      float64       `json:"avg_total"`       // mean combined score
	OverRate      float64       `json:"over_rate"`       // share of games above the sport's default line
	BothScoreRate float64       `json:"both_score_rate"` // share of games where both entities scored
	LatestGame    time.Time     `json:"latest_game"`
}

// MarketSpec describes one candidate market for a sport
type MarketSpec struct {
	ID    MarketID `json:"id"`
	Sport Sport    `json:"sport"`
	Line  float64  `json:"line,omitempty"` // totals line, e.g. 2.5 goals or 220.5 points
}

// ContextualAdjustment is produced by the enrichment collaborator, never by the core.
// Delta is in percentage points and must stay within [-10, +10].
type ContextualAdjustment struct {
	MarketID MarketID `json:"market_id"`
	Delta    float64  `json:"delta"`
	Note     string   `json:"note,omitempty"`
}

// Blend weights, fixed by design: statistics dominate, context nudges
const (
	WeightStatistical = 0.8
	WeightContextual  = 0.2
)

// ConfidenceScore is the scorer output for one fixture x market
type ConfidenceScore struct {
	MarketID          MarketID `json:"market_id"`
	BaseConfidence    float64  `json:"base_confidence"`
	BlendedConfidence float64  `json:"blended_confidence"`
	WeightStatistical float64  `json:"weight_statistical"`
	WeightContextual  float64  `json:"weight_contextual"`
}

// Prediction is created by the orchestrator and immutable after the gate runs
type Prediction struct {
	ID               string          `json:"id"`
	FixtureID        string          `json:"fixture_id"`
	Sport            Sport           `json:"sport"`
	League           string          `json:"league,omitempty"`
	HomeName         string          `json:"home_name"`
	AwayName         string          `json:"away_name"`
	FixtureTime      time.Time       `json:"fixture_time"`
	MarketID         MarketID        `json:"market_id"`
	PredictedOutcome string          `json:"predicted_outcome"`
	Confidence       ConfidenceScore `json:"confidence"`
	Decision         Decision        `json:"decision"`
	RejectionReason  string          `json:"rejection_reason,omitempty"`
	ProfileSource    ProfileSource   `json:"profile_source"` // REAL/FALLBACK tag kept for auditability
	SampleSize       int             `json:"sample_size"`
	Reasoning        string          `json:"reasoning,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// FixtureError marks one fixture that failed without aborting the run
type FixtureError struct {
	FixtureID string `json:"fixture_id"`
	PairKey   string `json:"pair_key"`
	Err       string `json:"error"`
}

// RunReport is the full outcome of one orchestrator run
type RunReport struct {
	Sport       Sport          `json:"sport"`
	Date        time.Time      `json:"date"`
	Accepted    []Prediction   `json:"accepted"`
	Rejected    []Prediction   `json:"rejected"`
	Failed      []FixtureError `json:"failed"`
	FixtureSeen int            `json:"fixtures_seen"`
	GeneratedAt time.Time      `json:"generated_at"`
}
