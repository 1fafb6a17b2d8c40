package enrich

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Alias1177/MatchPredictor/models"
)

func TestParseAdjustment(t *testing.T) {
	tests := []struct {
		name    string
		content string
		delta   float64
		wantErr bool
	}{
		{"bare json", `{"delta": 5, "note": "home side rested"}`, 5, false},
		{"negative delta", `{"delta": -3.5, "note": "injuries"}`, -3.5, false},
		{"code fenced", "```json\n{\"delta\": 2, \"note\": \"ok\"}\n```", 2, false},
		{"prose wrapped", `Here is my assessment: {"delta": -1, "note": "away fatigue"} hope this helps`, -1, false},
		{"no json at all", "I cannot assess this matchup.", 0, true},
		{"malformed json", `{"delta": "lots"}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := parseAdjustment(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseAdjustment(%q) succeeded, want error", tt.content)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseAdjustment(%q) error = %v", tt.content, err)
			}
			if payload.Delta != tt.delta {
				t.Errorf("Delta = %v, want %v", payload.Delta, tt.delta)
			}
		})
	}
}

func TestEnrichClampsDelta(t *testing.T) {
	// The completion claims a +40 shift; the enricher must cap it at +10
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want bearer test-key", got)
		}
		resp := chatResponse{}
		resp.Choices = append(resp.Choices, struct {
			Message chatMessage `json:"message"`
		}{Message: chatMessage{Role: "assistant", Content: `{"delta": 40, "note": "derby boost"}`}})
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	e := newTestEnricher(srv.URL)
	adj, err := e.Enrich(context.Background(), testFixture(), testMarket(), models.StatisticalProfile{SampleSize: 8})
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}

	if adj.Delta != 10 {
		t.Errorf("Delta = %v, want clamped to 10", adj.Delta)
	}
	if adj.MarketID != models.MarketMatchResult {
		t.Errorf("MarketID = %v, want match_result", adj.MarketID)
	}
	if adj.Note != "derby boost" {
		t.Errorf("Note = %q, want derby boost", adj.Note)
	}
}

func TestEnrichUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	e := newTestEnricher(srv.URL)
	if _, err := e.Enrich(context.Background(), testFixture(), testMarket(), models.StatisticalProfile{}); err == nil {
		t.Fatal("Enrich() succeeded, want error on upstream failure")
	}
}

func TestBuildPromptMentionsMarketAndStats(t *testing.T) {
	profile := models.StatisticalProfile{
		SampleSize:  8,
		HomeWinRate: 0.625,
		DrawRate:    0.125,
		AvgTotal:    2.9,
		OverRate:    0.62,
	}
	market := models.MarketSpec{ID: models.MarketTotalPoints, Sport: models.SportSoccer, Line: 2.5}

	prompt := buildPrompt(testFixture(), market, profile)

	for _, want := range []string{"Arsenal", "Chelsea", "total_points", "line 2.5", "8 games", "-10 and 10"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func newTestEnricher(baseURL string) *OpenAIEnricher {
	return &OpenAIEnricher{
		apiKey:     "test-key",
		model:      "gpt-4o-mini",
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		logger:     zerolog.Nop(),
	}
}

func testFixture() models.Fixture {
	return models.Fixture{
		ID:       "f1",
		Sport:    models.SportSoccer,
		League:   "eng.1",
		HomeID:   "359",
		AwayID:   "360",
		HomeName: "Arsenal",
		AwayName: "Chelsea",
	}
}

func testMarket() models.MarketSpec {
	return models.MarketSpec{ID: models.MarketMatchResult, Sport: models.SportSoccer}
}
