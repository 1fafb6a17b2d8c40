package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/MatchPredictor/internal/aggregate"
	"github.com/Alias1177/MatchPredictor/internal/config"
	"github.com/Alias1177/MatchPredictor/internal/gate"
	"github.com/Alias1177/MatchPredictor/internal/score"
	"github.com/Alias1177/MatchPredictor/models"
)

// Orchestrator runs the aggregate -> score -> gate pipeline per fixture and
// owns the lifecycle of every Prediction for one run. It keeps no state
// between runs.
type Orchestrator struct {
	cfg        *config.Config
	collectors map[models.Sport]models.Collector
	enricher   models.Enricher // nil disables contextual blending
	logger     zerolog.Logger
}

// New wires the orchestrator with its per-sport collectors
func New(cfg *config.Config, collectors []models.Collector, enricher models.Enricher) *Orchestrator {
	bySport := make(map[models.Sport]models.Collector, len(collectors))
	for _, c := range collectors {
		bySport[c.Sport()] = c
	}
	return &Orchestrator{
		cfg:        cfg,
		collectors: bySport,
		enricher:   enricher,
		logger:     log.With().Str("component", "orchestrator").Logger(),
	}
}

// Run processes one sport for one date with the configured threshold
func (o *Orchestrator) Run(ctx context.Context, sport models.Sport, date time.Time) (*models.RunReport, error) {
	return o.RunWithThreshold(ctx, sport, date, o.cfg.ThresholdFor(sport))
}

// RunWithThreshold is Run with an explicit accept threshold, used by the
// serving layer's per-request override.
func (o *Orchestrator) RunWithThreshold(ctx context.Context, sport models.Sport, date time.Time, threshold float64) (*models.RunReport, error) {
	collector, ok := o.collectors[sport]
	if !ok {
		return nil, fmt.Errorf("no collector registered for sport %q", sport)
	}

	fetchCtx, cancel := o.boundedCtx(ctx)
	fixtures, err := collector.FetchFixtures(fetchCtx, date)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("fetching fixtures: %w", err)
	}

	o.logger.Info().
		Str("sport", string(sport)).
		Int("fixtures", len(fixtures)).
		Float64("threshold", threshold).
		Msg("Run started")

	results := o.processAll(ctx, collector, fixtures, threshold)
	results = dedupe(results)

	report := &models.RunReport{
		Sport:       sport,
		Date:        models.DateOnly(date),
		FixtureSeen: len(fixtures),
		GeneratedAt: time.Now().UTC(),
	}

	for _, res := range results {
		if res.err != nil {
			report.Failed = append(report.Failed, models.FixtureError{
				FixtureID: res.fixture.ID,
				PairKey:   res.fixture.PairKey(),
				Err:       res.err.Error(),
			})
			continue
		}
		for _, p := range res.predictions {
			if p.Decision == models.DecisionAccepted {
				report.Accepted = append(report.Accepted, p)
			} else {
				report.Rejected = append(report.Rejected, p)
			}
		}
	}

	sortPredictions(report.Accepted)
	sortPredictions(report.Rejected)

	o.logger.Info().
		Str("sport", string(sport)).
		Int("accepted", len(report.Accepted)).
		Int("rejected", len(report.Rejected)).
		Int("failed", len(report.Failed)).
		Msg("Run finished")

	return report, nil
}

// GetPredictions is the serving-layer entry point: accepted predictions only
func (o *Orchestrator) GetPredictions(ctx context.Context, sport models.Sport, date time.Time) ([]models.Prediction, error) {
	report, err := o.Run(ctx, sport, date)
	if err != nil {
		return nil, err
	}
	return report.Accepted, nil
}

// fixtureResult is the outcome of one per-fixture pipeline
type fixtureResult struct {
	fixture     models.Fixture
	profile     *models.StatisticalProfile
	predictions []models.Prediction
	err         error
}

// processAll fans fixtures out over a bounded worker pool. Each pipeline is
// independent; a failure degrades its own fixture only.
func (o *Orchestrator) processAll(ctx context.Context, collector models.Collector, fixtures []models.Fixture, threshold float64) []fixtureResult {
	workers := o.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan models.Fixture)
	out := make(chan fixtureResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for fx := range jobs {
				out <- o.processFixture(ctx, collector, fx, threshold)
			}
		}()
	}

	go func() {
		for _, fx := range fixtures {
			jobs <- fx
		}
		close(jobs)
		wg.Wait()
		close(out)
	}()

	results := make([]fixtureResult, 0, len(fixtures))
	for res := range out {
		results = append(results, res)
	}
	return results
}

func (o *Orchestrator) processFixture(ctx context.Context, collector models.Collector, fixture models.Fixture, threshold float64) fixtureResult {
	sport := collector.Sport()

	h2hCtx, cancel := o.boundedCtx(ctx)
	sample, err := collector.FetchH2H(h2hCtx, fixture)
	cancel()
	if err != nil {
		o.logger.Warn().Err(err).Str("fixture", fixture.ID).Msg("H2H fetch failed, fixture degraded")
		return fixtureResult{fixture: fixture, err: err}
	}

	baseline := aggregate.DefaultBaseline(sport)
	profile, err := aggregate.Aggregate(sample, o.cfg.MinSamplesFor(sport), baseline)
	if err != nil {
		o.logger.Warn().Err(err).Str("fixture", fixture.ID).Msg("aggregation failed, fixture degraded")
		return fixtureResult{fixture: fixture, err: err}
	}

	res := fixtureResult{fixture: fixture, profile: profile}
	for _, market := range marketsFor(sport, baseline.Line) {
		adj := o.enrichFor(ctx, fixture, market, profile)

		scored, err := score.Score(profile, market, adj)
		if err != nil {
			// Config/programmer error per the taxonomy: surfaced on the
			// fixture, never allowed to take down sibling pipelines.
			o.logger.Error().Err(err).Str("fixture", fixture.ID).Str("market", string(market.ID)).Msg("scoring failed")
			return fixtureResult{fixture: fixture, err: err}
		}

		verdict := gate.Decide(scored.Confidence, threshold)
		if profile.Source == models.SourceFallback && !o.cfg.AllowFallback {
			verdict = gate.RejectInsufficientData()
		}

		res.predictions = append(res.predictions, models.Prediction{
			ID:               uuid.NewString(),
			FixtureID:        fixture.ID,
			Sport:            sport,
			League:           fixture.League,
			HomeName:         fixture.HomeName,
			AwayName:         fixture.AwayName,
			FixtureTime:      fixture.StartTime,
			MarketID:         market.ID,
			PredictedOutcome: scored.Outcome,
			Confidence:       scored.Confidence,
			Decision:         verdict.Decision,
			RejectionReason:  verdict.Reason,
			ProfileSource:    profile.Source,
			SampleSize:       profile.SampleSize,
			Reasoning:        scored.Reasoning,
			CreatedAt:        time.Now().UTC(),
		})
	}
	return res
}

// enrichFor asks the optional enricher for a contextual delta. Absence or
// failure is the identity adjustment.
func (o *Orchestrator) enrichFor(ctx context.Context, fixture models.Fixture, market models.MarketSpec, profile *models.StatisticalProfile) *models.ContextualAdjustment {
	if o.enricher == nil {
		return nil
	}

	enrichCtx, cancel := o.boundedCtx(ctx)
	defer cancel()

	adj, err := o.enricher.Enrich(enrichCtx, fixture, market, *profile)
	if err != nil {
		o.logger.Debug().Err(err).Str("fixture", fixture.ID).Msg("enrichment unavailable, using base confidence")
		return nil
	}
	return adj
}

func (o *Orchestrator) boundedCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(o.cfg.RequestTimeout+o.cfg.MaxRetryTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// marketsFor lists the candidate markets per sport with the default line
func marketsFor(sport models.Sport, line float64) []models.MarketSpec {
	markets := []models.MarketSpec{
		{ID: models.MarketMatchResult, Sport: sport},
		{ID: models.MarketTotalPoints, Sport: sport, Line: line},
	}
	if sport == models.SportSoccer {
		markets = append(markets, models.MarketSpec{ID: models.MarketBTTS, Sport: sport, Line: line})
	}
	return markets
}

// dedupe collapses fixtures that describe the same unordered pair on the same
// day, preferring REAL profiles over FALLBACK, then larger samples, then the
// profile with the most recent data.
func dedupe(results []fixtureResult) []fixtureResult {
	best := make(map[string]int)
	keep := make([]fixtureResult, 0, len(results))

	for _, res := range results {
		key := res.fixture.PairKey() + "|" + models.DateOnly(res.fixture.StartTime).Format("2006-01-02")

		idx, seen := best[key]
		if !seen {
			best[key] = len(keep)
			keep = append(keep, res)
			continue
		}
		if betterProfile(res, keep[idx]) {
			keep[idx] = res
		}
	}
	return keep
}

func betterProfile(a, b fixtureResult) bool {
	// Errored pipelines never displace usable ones
	if a.profile == nil {
		return false
	}
	if b.profile == nil {
		return true
	}
	if a.profile.Source != b.profile.Source {
		return a.profile.Source == models.SourceReal
	}
	if a.profile.SampleSize != b.profile.SampleSize {
		return a.profile.SampleSize > b.profile.SampleSize
	}
	return a.profile.LatestGame.After(b.profile.LatestGame)
}

// sortPredictions orders by blended confidence descending, fixture start
// time ascending on ties, so the merge is deterministic.
func sortPredictions(preds []models.Prediction) {
	sort.SliceStable(preds, func(i, j int) bool {
		if preds[i].Confidence.BlendedConfidence != preds[j].Confidence.BlendedConfidence {
			return preds[i].Confidence.BlendedConfidence > preds[j].Confidence.BlendedConfidence
		}
		return preds[i].FixtureTime.Before(preds[j].FixtureTime)
	})
}
