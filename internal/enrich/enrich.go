package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/MatchPredictor/internal/score"
	"github.com/Alias1177/MatchPredictor/models"
)

// OpenAIEnricher asks a chat-completions endpoint for a contextual nudge to
// one market's confidence. It is strictly optional: any failure here leaves
// the statistical confidence untouched.
type OpenAIEnricher struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates an enricher against the standard OpenAI endpoint
func New(apiKey, model string) *OpenAIEnricher {
	return &OpenAIEnricher{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://api.openai.com/v1",
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: log.With().Str("component", "enricher").Logger(),
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type adjustmentPayload struct {
	Delta float64 `json:"delta"`
	Note  string  `json:"note"`
}

// Enrich implements models.Enricher
func (e *OpenAIEnricher) Enrich(ctx context.Context, fixture models.Fixture, market models.MarketSpec, profile models.StatisticalProfile) (*models.ContextualAdjustment, error) {
	prompt := buildPrompt(fixture, market, profile)

	reqBody, err := json.Marshal(chatRequest{
		Model: e.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("enrichment request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("enrichment API status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("empty completion")
	}

	payload, err := parseAdjustment(chat.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	// The model is told the bounds but never trusted with them
	delta := payload.Delta
	if delta > score.MaxContextualDelta {
		delta = score.MaxContextualDelta
	}
	if delta < -score.MaxContextualDelta {
		delta = -score.MaxContextualDelta
	}

	e.logger.Debug().
		Str("fixture", fixture.ID).
		Str("market", string(market.ID)).
		Float64("delta", delta).
		Msg("Contextual adjustment produced")

	return &models.ContextualAdjustment{
		MarketID: market.ID,
		Delta:    delta,
		Note:     payload.Note,
	}, nil
}

func buildPrompt(fixture models.Fixture, market models.MarketSpec, profile models.StatisticalProfile) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Fixture: %s vs %s (%s", fixture.HomeName, fixture.AwayName, fixture.Sport))
	if fixture.League != "" {
		sb.WriteString(", " + fixture.League)
	}
	sb.WriteString(")\n")
	sb.WriteString(fmt.Sprintf("Market: %s", market.ID))
	if market.Line > 0 {
		sb.WriteString(fmt.Sprintf(" (line %.1f)", market.Line))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf(
		"H2H stats over %d games: home win rate %.0f%%, draw rate %.0f%%, avg combined score %.1f, over rate %.0f%%.\n",
		profile.SampleSize, profile.HomeWinRate*100, profile.DrawRate*100, profile.AvgTotal, profile.OverRate*100))
	sb.WriteString(`Considering injuries, form and schedule context you know of, how should the statistical confidence shift?
Respond with JSON only: {"delta": <number between -10 and 10>, "note": "<one sentence>"}`)
	return sb.String()
}

// parseAdjustment tolerates the JSON being wrapped in prose or code fences
func parseAdjustment(content string) (adjustmentPayload, error) {
	var payload adjustmentPayload
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return payload, fmt.Errorf("no JSON object in completion")
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &payload); err != nil {
		return payload, fmt.Errorf("parsing adjustment: %w", err)
	}
	return payload, nil
}
