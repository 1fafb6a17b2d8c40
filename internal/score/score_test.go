package score

import (
	"errors"
	"testing"

	"github.com/Alias1177/MatchPredictor/models"
)

func TestScoreMatchResultDominantSide(t *testing.T) {
	// 5-1-2 record over 8 games: 62.5% home win rate
	profile := realProfile(8, models.TierExcellent)
	profile.HomeWinRate = 0.625
	profile.DrawRate = 0.125
	profile.AwayWinRate = 0.25

	res, err := Score(profile, soccerMarket(models.MarketMatchResult, 0), nil)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}

	if res.Outcome != models.OutcomeHomeWin {
		t.Errorf("Outcome = %s, want HOME_WIN", res.Outcome)
	}
	// base 55 + 8*3 = 79, dominant rate adds 0.625*25 capped at 88
	if res.Confidence.BaseConfidence != 88 {
		t.Errorf("BaseConfidence = %.1f, want 88", res.Confidence.BaseConfidence)
	}
	if res.Confidence.BlendedConfidence != 88 {
		t.Errorf("BlendedConfidence = %.1f, want 88 (nil adjustment is identity)", res.Confidence.BlendedConfidence)
	}
}

func TestScoreMatchResultNoDominantSide(t *testing.T) {
	profile := realProfile(6, models.TierGood)
	profile.HomeWinRate = 0.5
	profile.DrawRate = 0.17
	profile.AwayWinRate = 0.33

	res, err := Score(profile, soccerMarket(models.MarketMatchResult, 0), nil)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}

	if res.Outcome != models.OutcomeHomeWin {
		t.Errorf("Outcome = %s, want HOME_WIN", res.Outcome)
	}
	// base 55 + 6*3 = 73, no dominant rate: +5 capped at 78
	if res.Confidence.BaseConfidence != 78 {
		t.Errorf("BaseConfidence = %.1f, want 78", res.Confidence.BaseConfidence)
	}
}

func TestScoreMatchResultDrawOnlyForSoccer(t *testing.T) {
	profile := realProfile(6, models.TierGood)
	profile.HomeWinRate = 0.33
	profile.DrawRate = 0.5
	profile.AwayWinRate = 0.17

	soccer, err := Score(profile, soccerMarket(models.MarketMatchResult, 0), nil)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if soccer.Outcome != models.OutcomeDraw {
		t.Errorf("soccer Outcome = %s, want DRAW", soccer.Outcome)
	}

	nba, err := Score(profile, models.MarketSpec{ID: models.MarketMatchResult, Sport: models.SportNBA}, nil)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if nba.Outcome != models.OutcomeHomeWin {
		t.Errorf("nba Outcome = %s, want HOME_WIN (draw never predicted)", nba.Outcome)
	}
}

func TestScoreTotals(t *testing.T) {
	tests := []struct {
		name       string
		sampleSize int
		tier       models.QualityTier
		avgTotal   float64
		overRate   float64
		line       float64
		outcome    string
		base       float64
	}{
		// base min(60+16, 85) = 76, strong over: +15 capped at 95
		{"strong over", 8, models.TierExcellent, 3.2, 0.75, 2.5, models.OutcomeOver, 91},
		// strong under: +12 capped at 92
		{"strong under", 8, models.TierExcellent, 1.7, 0.25, 2.5, models.OutcomeUnder, 88},
		// moderate over: +8 capped at 85
		{"moderate over", 8, models.TierExcellent, 2.7, 0.62, 2.5, models.OutcomeOver, 84},
		// lean over: base capped at 78
		{"lean over", 5, models.TierGood, 2.4, 0.5, 2.5, models.OutcomeOver, 70},
		// lean under: base capped at 76
		{"lean under", 5, models.TierGood, 2.0, 0.4, 2.5, models.OutcomeUnder, 70},
		// NBA line, strong over at 224.6 avg vs 220.5
		{"nba strong over", 10, models.TierExcellent, 224.6, 0.8, 220.5, models.OutcomeOver, 95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := realProfile(tt.sampleSize, tt.tier)
			profile.AvgTotal = tt.avgTotal
			profile.OverRate = tt.overRate

			res, err := Score(profile, models.MarketSpec{ID: models.MarketTotalPoints, Sport: models.SportSoccer, Line: tt.line}, nil)
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}
			if res.Outcome != tt.outcome {
				t.Errorf("Outcome = %s, want %s", res.Outcome, tt.outcome)
			}
			if res.Confidence.BaseConfidence != tt.base {
				t.Errorf("BaseConfidence = %.1f, want %.1f", res.Confidence.BaseConfidence, tt.base)
			}
		})
	}
}

func TestScoreBTTS(t *testing.T) {
	tests := []struct {
		name      string
		bttsRate  float64
		avgTotal  float64
		outcome   string
		base      float64
	}{
		// base 55 + 8*2 = 71, strong yes: +18 capped at 88
		{"strong yes", 0.75, 2.9, models.OutcomeBTTSYes, 88},
		// strong no: +15 capped at 85
		{"strong no", 0.25, 1.8, models.OutcomeBTTSNo, 85},
		// moderate yes: +10 capped at 82
		{"moderate yes", 0.62, 2.2, models.OutcomeBTTSYes, 81},
		// default no: +5 capped at 78
		{"default no", 0.45, 2.4, models.OutcomeBTTSNo, 76},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := realProfile(8, models.TierExcellent)
			profile.BothScoreRate = tt.bttsRate
			profile.AvgTotal = tt.avgTotal

			res, err := Score(profile, soccerMarket(models.MarketBTTS, 2.5), nil)
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}
			if res.Outcome != tt.outcome {
				t.Errorf("Outcome = %s, want %s", res.Outcome, tt.outcome)
			}
			if res.Confidence.BaseConfidence != tt.base {
				t.Errorf("BaseConfidence = %.1f, want %.1f", res.Confidence.BaseConfidence, tt.base)
			}
		})
	}
}

func TestScoreBTTSOutsideSoccer(t *testing.T) {
	profile := realProfile(8, models.TierExcellent)

	_, err := Score(profile, models.MarketSpec{ID: models.MarketBTTS, Sport: models.SportNBA, Line: 220.5}, nil)
	var invErr *InvalidMarketError
	if !errors.As(err, &invErr) {
		t.Fatalf("Score() error = %v, want InvalidMarketError", err)
	}
}

func TestScoreUnknownMarket(t *testing.T) {
	profile := realProfile(8, models.TierExcellent)

	_, err := Score(profile, models.MarketSpec{ID: "spread", Sport: models.SportNFL}, nil)
	var invErr *InvalidMarketError
	if !errors.As(err, &invErr) {
		t.Fatalf("Score() error = %v, want InvalidMarketError", err)
	}
}

func TestScoreTierCeiling(t *testing.T) {
	// Fair tier: 4 games with a 75% home win rate would score 85.75 raw,
	// but the tier caps it at 75.
	profile := realProfile(4, models.TierFair)
	profile.HomeWinRate = 0.75
	profile.AwayWinRate = 0.25

	res, err := Score(profile, soccerMarket(models.MarketMatchResult, 0), nil)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if res.Confidence.BaseConfidence != 75 {
		t.Errorf("BaseConfidence = %.1f, want 75 (fair tier ceiling)", res.Confidence.BaseConfidence)
	}
}

func TestScoreFallbackCeiling(t *testing.T) {
	profile := &models.StatisticalProfile{
		PairKey:     "101|202",
		Source:      models.SourceFallback,
		SampleSize:  0,
		QualityTier: models.TierPoor,
		HomeWinRate: 0.7,
		AwayWinRate: 0.2,
		DrawRate:    0.1,
	}

	res, err := Score(profile, soccerMarket(models.MarketMatchResult, 0), nil)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if res.Confidence.BaseConfidence > 65 {
		t.Errorf("BaseConfidence = %.1f, want <= 65 for fallback profiles", res.Confidence.BaseConfidence)
	}
}

func TestScoreBlendsAdjustment(t *testing.T) {
	// Lean over at base 70; a +10 delta blends to 0.8*70 + 0.2*80 = 72
	profile := realProfile(5, models.TierGood)
	profile.AvgTotal = 2.4
	profile.OverRate = 0.5

	market := soccerMarket(models.MarketTotalPoints, 2.5)
	adj := &models.ContextualAdjustment{MarketID: models.MarketTotalPoints, Delta: 10, Note: "key striker returns"}

	res, err := Score(profile, market, adj)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if res.Confidence.BaseConfidence != 70 {
		t.Fatalf("BaseConfidence = %.1f, want 70", res.Confidence.BaseConfidence)
	}
	if res.Confidence.BlendedConfidence != 72 {
		t.Errorf("BlendedConfidence = %.1f, want 72", res.Confidence.BlendedConfidence)
	}

	// Negative delta pulls the blend down symmetrically
	adj.Delta = -10
	res, err = Score(profile, market, adj)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if res.Confidence.BlendedConfidence != 68 {
		t.Errorf("BlendedConfidence = %.1f, want 68", res.Confidence.BlendedConfidence)
	}
}

func TestScoreIgnoresMismatchedAdjustment(t *testing.T) {
	profile := realProfile(5, models.TierGood)
	profile.AvgTotal = 2.4
	profile.OverRate = 0.5

	adj := &models.ContextualAdjustment{MarketID: models.MarketBTTS, Delta: 10}
	res, err := Score(profile, soccerMarket(models.MarketTotalPoints, 2.5), adj)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if res.Confidence.BlendedConfidence != res.Confidence.BaseConfidence {
		t.Errorf("mismatched adjustment altered the blend: base %.1f, blended %.1f",
			res.Confidence.BaseConfidence, res.Confidence.BlendedConfidence)
	}
}

func TestScoreRejectsOutOfRangeDelta(t *testing.T) {
	profile := realProfile(5, models.TierGood)

	for _, delta := range []float64{10.5, -10.5, 50} {
		adj := &models.ContextualAdjustment{MarketID: models.MarketMatchResult, Delta: delta}
		_, err := Score(profile, soccerMarket(models.MarketMatchResult, 0), adj)
		var rangeErr *OutOfRangeAdjustmentError
		if !errors.As(err, &rangeErr) {
			t.Errorf("delta %.1f: error = %v, want OutOfRangeAdjustmentError", delta, err)
		}
	}

	// The boundary itself is legal
	adj := &models.ContextualAdjustment{MarketID: models.MarketMatchResult, Delta: 10}
	if _, err := Score(profile, soccerMarket(models.MarketMatchResult, 0), adj); err != nil {
		t.Errorf("delta 10: unexpected error %v", err)
	}
}

func realProfile(sampleSize int, tier models.QualityTier) *models.StatisticalProfile {
	return &models.StatisticalProfile{
		PairKey:     "101|202",
		Source:      models.SourceReal,
		SampleSize:  sampleSize,
		QualityTier: tier,
		HomeWinRate: 0.4,
		AwayWinRate: 0.35,
		DrawRate:    0.25,
		AvgTotal:    2.5,
		OverRate:    0.5,
	}
}

func soccerMarket(id models.MarketID, line float64) models.MarketSpec {
	return models.MarketSpec{ID: id, Sport: models.SportSoccer, Line: line}
}
