package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "github.com/Alias1177/MatchPredictor/internal/platform/http"
	"github.com/Alias1177/MatchPredictor/models"
)

const sourceTag = "espn"

// CollectorUnavailableError is a transient upstream failure. The orchestrator
// degrades the affected fixture instead of aborting the run.
type CollectorUnavailableError struct {
	Feed string
	Err  error
}

func (e *CollectorUnavailableError) Error() string {
	return fmt.Sprintf("collector %s unavailable: %v", e.Feed, e.Err)
}

func (e *CollectorUnavailableError) Unwrap() error {
	return e.Err
}

// Client is a per-sport collector backed by the free ESPN site API
type Client struct {
	sport      models.Sport
	leagues    []string // API path segments, e.g. "soccer/eng.1" or "basketball/nba"
	baseURL    string
	httpClient *httpclient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new ESPN client
type ClientOptions struct {
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
	SoccerLeagues   []string // league codes like "eng.1"; soccer client only
}

// NewSoccerClient covers the configured soccer leagues
func NewSoccerClient(opts ClientOptions) *Client {
	leagues := make([]string, 0, len(opts.SoccerLeagues))
	for _, code := range opts.SoccerLeagues {
		leagues = append(leagues, "soccer/"+code)
	}
	return newClient(models.SportSoccer, leagues, opts)
}

// NewNBAClient covers the NBA feed
func NewNBAClient(opts ClientOptions) *Client {
	return newClient(models.SportNBA, []string{"basketball/nba"}, opts)
}

// NewNFLClient covers the NFL feed
func NewNFLClient(opts ClientOptions) *Client {
	return newClient(models.SportNFL, []string{"football/nfl"}, opts)
}

func newClient(sport models.Sport, leagues []string, opts ClientOptions) *Client {
	httpOpts := httpclient.ClientOptions{
		Name:            "espn_" + string(sport),
		Timeout:         opts.RequestTimeout,
		RequestsPerSec:  opts.RequestsPerSec,
		MaxRetryTimeout: opts.MaxRetryTimeout,
	}

	return &Client{
		sport:      sport,
		leagues:    leagues,
		baseURL:    "http://site.api.espn.com/apis/site/v2/sports",
		httpClient: httpclient.NewClient(httpOpts),
		logger:     log.With().Str("component", "espn_"+string(sport)).Logger(),
	}
}

// Sport implements models.Collector
func (c *Client) Sport() models.Sport {
	return c.sport
}

// FetchFixtures returns the fixtures scheduled on a date across the client's
// leagues. A league feed that fails is skipped; the call fails only when no
// league could be reached at all.
func (c *Client) FetchFixtures(ctx context.Context, date time.Time) ([]models.Fixture, error) {
	var (
		fixtures []models.Fixture
		lastErr  error
		reached  bool
	)

	for _, league := range c.leagues {
		url := fmt.Sprintf("%s/%s/scoreboard?dates=%s", c.baseURL, league, models.ESPNDate(date))

		var resp scoreboardResponse
		if err := c.getJSON(ctx, url, &resp); err != nil {
			c.logger.Warn().Err(err).Str("league", league).Msg("scoreboard fetch failed")
			lastErr = err
			continue
		}
		reached = true

		for _, ev := range resp.Events {
			if fx, ok := c.fixtureFromEvent(ev, league); ok {
				fixtures = append(fixtures, fx)
			}
		}
	}

	if !reached {
		return nil, &CollectorUnavailableError{Feed: string(c.sport), Err: lastErr}
	}

	c.logger.Debug().Int("count", len(fixtures)).Msg("Fetched fixtures")
	return fixtures, nil
}

// FetchH2H walks the home team's schedule and keeps completed games against
// the fixture's opponent, normalized into validated HistoricalGame values.
func (c *Client) FetchH2H(ctx context.Context, fixture models.Fixture) (models.HeadToHeadSample, error) {
	sample := models.HeadToHeadSample{EntityA: fixture.HomeID, EntityB: fixture.AwayID}

	url := fmt.Sprintf("%s/%s/teams/%s/schedule", c.baseURL, c.leaguePath(fixture.League), fixture.HomeID)

	var resp scheduleResponse
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return sample, &CollectorUnavailableError{Feed: string(c.sport), Err: err}
	}

	for _, ev := range resp.Events {
		if g, ok := gameFromEvent(ev, fixture.HomeID, fixture.AwayID); ok {
			sample.Games = append(sample.Games, g)
		}
	}

	sort.Slice(sample.Games, func(i, j int) bool {
		return sample.Games[i].Date.Before(sample.Games[j].Date)
	})

	c.logger.Debug().
		Str("pair", fixture.PairKey()).
		Int("games", len(sample.Games)).
		Msg("Fetched H2H sample")
	return sample, nil
}

func (c *Client) leaguePath(league string) string {
	if c.sport == models.SportSoccer && league != "" {
		return "soccer/" + league
	}
	return c.leagues[0]
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing JSON: %w", err)
	}
	return nil
}

func (c *Client) fixtureFromEvent(ev event, league string) (models.Fixture, bool) {
	if len(ev.Competitions) == 0 {
		return models.Fixture{}, false
	}
	comp := ev.Competitions[0]

	home, away, ok := splitCompetitors(comp)
	if !ok {
		return models.Fixture{}, false
	}

	start, err := models.ParseESPNTimestamp(ev.Date)
	if err != nil {
		c.logger.Warn().Str("event", ev.ID).Str("date", ev.Date).Msg("unparseable event date")
		return models.Fixture{}, false
	}

	leagueCode := league
	if c.sport == models.SportSoccer {
		leagueCode = league[len("soccer/"):]
	}

	return models.Fixture{
		ID:         ev.ID,
		Sport:      c.sport,
		League:     leagueCode,
		HomeID:     home.Team.ID,
		AwayID:     away.Team.ID,
		HomeName:   home.Team.DisplayName,
		AwayName:   away.Team.DisplayName,
		StartTime:  start,
		Venue:      comp.Venue.FullName,
		Status:     comp.Status.Type.Description,
		SourceFeed: sourceTag,
	}, true
}

// gameFromEvent keeps only completed games between exactly the two entities.
// Unparseable scores become the -1 sentinel the aggregator discards.
func gameFromEvent(ev event, entityA, entityB string) (models.HistoricalGame, bool) {
	if len(ev.Competitions) == 0 {
		return models.HistoricalGame{}, false
	}
	comp := ev.Competitions[0]
	if !comp.Status.Type.Completed {
		return models.HistoricalGame{}, false
	}

	home, away, ok := splitCompetitors(comp)
	if !ok {
		return models.HistoricalGame{}, false
	}

	pair := models.PairKey(home.Team.ID, away.Team.ID)
	if pair != models.PairKey(entityA, entityB) {
		return models.HistoricalGame{}, false
	}

	date, err := models.ParseESPNTimestamp(ev.Date)
	if err != nil {
		return models.HistoricalGame{}, false
	}

	g := models.HistoricalGame{
		Date:      date,
		HomeID:    home.Team.ID,
		AwayID:    away.Team.ID,
		HomeScore: -1,
		AwayScore: -1,
		SourceTag: sourceTag,
	}
	if home.Score.Valid {
		g.HomeScore = home.Score.Value
	}
	if away.Score.Valid {
		g.AwayScore = away.Score.Value
	}
	return g, true
}

func splitCompetitors(comp competition) (home, away competitor, ok bool) {
	for _, c := range comp.Competitors {
		switch c.HomeAway {
		case "home":
			home = c
		case "away":
			away = c
		}
	}
	ok = home.Team.ID != "" && away.Team.ID != ""
	return home, away, ok
}
