package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/Alias1177/MatchPredictor/internal/api/espn"
	"github.com/Alias1177/MatchPredictor/internal/config"
	"github.com/Alias1177/MatchPredictor/internal/enrich"
	"github.com/Alias1177/MatchPredictor/internal/orchestrator"
	"github.com/Alias1177/MatchPredictor/models"
)

func init() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, relying on actual environment variables")
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.TelegramBotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN not set in environment")
	}
	if cfg.TelegramChatID == 0 {
		log.Fatal("TELEGRAM_CHAT_ID not set in environment")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram bot: %v", err)
	}

	opts := espn.ClientOptions{
		RequestTimeout:  time.Duration(cfg.RequestTimeout) * time.Second,
		RequestsPerSec:  cfg.RequestsPerSec,
		MaxRetryTimeout: time.Duration(cfg.MaxRetryTimeout) * time.Second,
		SoccerLeagues:   cfg.Leagues,
	}
	collectors := []models.Collector{
		espn.NewSoccerClient(opts),
		espn.NewNBAClient(opts),
		espn.NewNFLClient(opts),
	}

	var enricher models.Enricher
	if cfg.EnrichmentEnabled && cfg.OpenAIAPIKey != "" {
		enricher = enrich.New(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}

	orch := orchestrator.New(cfg, collectors, enricher)

	ctx := context.Background()
	date := time.Now().UTC()

	var sections []string
	total := 0
	for _, sport := range []models.Sport{models.SportSoccer, models.SportNBA, models.SportNFL} {
		report, err := orch.Run(ctx, sport, date)
		if err != nil {
			log.Printf("Run failed for %s: %v", sport, err)
			continue
		}
		if len(report.Accepted) == 0 {
			continue
		}
		sections = append(sections, formatSection(report))
		total += len(report.Accepted)
	}

	if total == 0 {
		log.Println("No high-confidence picks today, nothing to broadcast")
		return
	}

	message := fmt.Sprintf("🎯 **Today's High-Confidence Picks** (%s)\n\n%s",
		date.Format("Jan 2"), strings.Join(sections, "\n"))

	msg := tgbotapi.NewMessage(cfg.TelegramChatID, message)
	msg.ParseMode = "Markdown"

	if _, err := bot.Send(msg); err != nil {
		log.Fatalf("Failed to send broadcast: %v", err)
	}

	log.Printf("Broadcast sent: %d picks across %d sports", total, len(sections))
}

func formatSection(report *models.RunReport) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**%s**\n", strings.ToUpper(string(report.Sport))))

	// Top picks only, the channel does not need every marginal accept
	limit := len(report.Accepted)
	if limit > 5 {
		limit = 5
	}
	for _, p := range report.Accepted[:limit] {
		sb.WriteString(fmt.Sprintf("• %s vs %s — %s (%.0f%%)\n",
			p.HomeName, p.AwayName, outcomeLabel(p), p.Confidence.BlendedConfidence))
	}
	return sb.String()
}

func outcomeLabel(p models.Prediction) string {
	switch p.PredictedOutcome {
	case models.OutcomeHomeWin:
		return p.HomeName + " to win"
	case models.OutcomeAwayWin:
		return p.AwayName + " to win"
	case models.OutcomeDraw:
		return "Draw"
	case models.OutcomeOver:
		return "Over"
	case models.OutcomeUnder:
		return "Under"
	case models.OutcomeBTTSYes:
		return "Both teams to score"
	case models.OutcomeBTTSNo:
		return "Both teams to score: No"
	default:
		return p.PredictedOutcome
	}
}
