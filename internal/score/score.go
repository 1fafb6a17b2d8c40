package score

import (
	"fmt"
	"math"

	"github.com/Alias1177/MatchPredictor/models"
)

// InvalidMarketError means the requested market is not defined for the
// profile's sport. This is a programmer/config error and is never retried.
type InvalidMarketError struct {
	Market models.MarketID
	Sport  models.Sport
}

func (e *InvalidMarketError) Error() string {
	return fmt.Sprintf("market %q is not defined for sport %q", e.Market, e.Sport)
}

// OutOfRangeAdjustmentError means a contextual delta fell outside [-10, +10]
type OutOfRangeAdjustmentError struct {
	Delta float64
}

func (e *OutOfRangeAdjustmentError) Error() string {
	return fmt.Sprintf("contextual adjustment %.2f outside [-10, +10]", e.Delta)
}

// MaxContextualDelta bounds how far enrichment may shift a confidence
const MaxContextualDelta = 10.0

// Result is the scorer output for one fixture x market
type Result struct {
	Outcome    string
	Confidence models.ConfidenceScore
	Reasoning  string
}

// Score converts a statistical profile into a confidence for one market.
// The quality tier caps the achievable confidence so a thin sample can never
// look artificially certain. A nil adjustment is the identity: blended equals
// base exactly.
func Score(profile *models.StatisticalProfile, market models.MarketSpec, adj *models.ContextualAdjustment) (Result, error) {
	var (
		outcome   string
		base      float64
		reasoning string
	)

	switch market.ID {
	case models.MarketMatchResult:
		outcome, base, reasoning = scoreMatchResult(profile, market)
	case models.MarketTotalPoints:
		outcome, base, reasoning = scoreTotals(profile, market)
	case models.MarketBTTS:
		if market.Sport != models.SportSoccer {
			return Result{}, &InvalidMarketError{Market: market.ID, Sport: market.Sport}
		}
		outcome, base, reasoning = scoreBTTS(profile, market)
	default:
		return Result{}, &InvalidMarketError{Market: market.ID, Sport: market.Sport}
	}

	base = math.Min(base, ceilingFor(profile))

	blended := base
	if adj != nil && adj.MarketID == market.ID {
		if adj.Delta < -MaxContextualDelta || adj.Delta > MaxContextualDelta {
			return Result{}, &OutOfRangeAdjustmentError{Delta: adj.Delta}
		}
		blended = clampConfidence(models.WeightStatistical*base + models.WeightContextual*(base+adj.Delta))
	}

	return Result{
		Outcome: outcome,
		Confidence: models.ConfidenceScore{
			MarketID:          market.ID,
			BaseConfidence:    round1(base),
			BlendedConfidence: round1(blended),
			WeightStatistical: models.WeightStatistical,
			WeightContextual:  models.WeightContextual,
		},
		Reasoning: reasoning,
	}, nil
}

// ceilingFor maps a quality tier to the maximum achievable base confidence.
// Fixed breakpoints, with the fallback source always treated as poor.
func ceilingFor(profile *models.StatisticalProfile) float64 {
	if profile.Source == models.SourceFallback {
		return 65
	}
	switch profile.QualityTier {
	case models.TierExcellent:
		return 95
	case models.TierGood:
		return 88
	case models.TierFair:
		return 75
	default:
		return 65
	}
}

func scoreMatchResult(profile *models.StatisticalProfile, market models.MarketSpec) (string, float64, string) {
	n := float64(profile.SampleSize)
	base := 55 + n*3

	outcome := models.OutcomeHomeWin
	top := profile.HomeWinRate
	if profile.AwayWinRate > top {
		outcome, top = models.OutcomeAwayWin, profile.AwayWinRate
	}
	// Draws are a soccer phenomenon; basketball has none and NFL draws are rare noise
	if market.Sport == models.SportSoccer && profile.DrawRate > top {
		outcome, top = models.OutcomeDraw, profile.DrawRate
	}

	var conf float64
	if top >= 0.6 {
		conf = math.Min(base+top*25, 88)
	} else {
		conf = math.Min(base+5, 78)
	}

	reasoning := fmt.Sprintf("H2H record %.0f%%-%.0f%%-%.0f%% (home-draw-away) over %d games",
		profile.HomeWinRate*100, profile.DrawRate*100, profile.AwayWinRate*100, profile.SampleSize)
	return outcome, conf, reasoning
}

func scoreTotals(profile *models.StatisticalProfile, market models.MarketSpec) (string, float64, string) {
	n := float64(profile.SampleSize)
	base := math.Min(60+n*2, 85)
	line := market.Line
	avg := profile.AvgTotal
	over := profile.OverRate

	var (
		outcome string
		conf    float64
	)
	switch {
	case avg >= line+0.5 && over >= 0.7:
		outcome, conf = models.OutcomeOver, math.Min(base+15, 95)
	case avg <= line-0.7 && over <= 0.3:
		outcome, conf = models.OutcomeUnder, math.Min(base+12, 92)
	case avg >= line && over >= 0.6:
		outcome, conf = models.OutcomeOver, math.Min(base+8, 85)
	case avg >= line-0.2:
		outcome, conf = models.OutcomeOver, math.Min(base, 78)
	default:
		outcome, conf = models.OutcomeUnder, math.Min(base, 76)
	}

	reasoning := fmt.Sprintf("H2H avg total %.1f vs line %.1f, over rate %.0f%%", avg, line, over*100)
	return outcome, conf, reasoning
}

func scoreBTTS(profile *models.StatisticalProfile, market models.MarketSpec) (string, float64, string) {
	n := float64(profile.SampleSize)
	base := 55 + n*2
	rate := profile.BothScoreRate
	avg := profile.AvgTotal

	var (
		outcome string
		conf    float64
	)
	switch {
	case rate >= 0.7 && avg >= market.Line:
		outcome, conf = models.OutcomeBTTSYes, math.Min(base+18, 88)
	case rate <= 0.3 && avg <= market.Line-0.5:
		outcome, conf = models.OutcomeBTTSNo, math.Min(base+15, 85)
	case rate >= 0.6:
		outcome, conf = models.OutcomeBTTSYes, math.Min(base+10, 82)
	default:
		outcome, conf = models.OutcomeBTTSNo, math.Min(base+5, 78)
	}

	reasoning := fmt.Sprintf("BTTS rate %.0f%%, avg total %.1f", rate*100, avg)
	return outcome, conf, reasoning
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
