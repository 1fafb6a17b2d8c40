package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/MatchPredictor/internal/api/espn"
	"github.com/Alias1177/MatchPredictor/internal/config"
	"github.com/Alias1177/MatchPredictor/internal/database"
	"github.com/Alias1177/MatchPredictor/internal/enrich"
	"github.com/Alias1177/MatchPredictor/internal/orchestrator"
	"github.com/Alias1177/MatchPredictor/models"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading config failed")
	}

	lvl, _ := zerolog.ParseLevel(cfg.LogLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)

	date := time.Now().UTC()
	if raw := os.Getenv("PREDICT_DATE"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			log.Fatal().Str("value", raw).Msg("PREDICT_DATE must be YYYY-MM-DD")
		}
		date = parsed
	}

	orch := orchestrator.New(cfg, buildCollectors(cfg), buildEnricher(cfg))

	var db *database.DB
	if os.Getenv("PERSIST_PREDICTIONS") == "true" {
		db, err = database.New(database.ConnectionParams{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("database connection failed")
		}
		defer db.Close()
	}

	ctx := context.Background()
	for _, sport := range selectedSports() {
		report, err := orch.Run(ctx, sport, date)
		if err != nil {
			log.Error().Err(err).Str("sport", string(sport)).Msg("run failed")
			continue
		}

		printReport(report)

		if db != nil {
			if err := db.SaveReport(report); err != nil {
				log.Error().Err(err).Str("sport", string(sport)).Msg("persisting report failed")
			}
		}
	}
}

func buildCollectors(cfg *config.Config) []models.Collector {
	opts := espn.ClientOptions{
		RequestTimeout:  time.Duration(cfg.RequestTimeout) * time.Second,
		RequestsPerSec:  cfg.RequestsPerSec,
		MaxRetryTimeout: time.Duration(cfg.MaxRetryTimeout) * time.Second,
		SoccerLeagues:   cfg.Leagues,
	}
	return []models.Collector{
		espn.NewSoccerClient(opts),
		espn.NewNBAClient(opts),
		espn.NewNFLClient(opts),
	}
}

func buildEnricher(cfg *config.Config) models.Enricher {
	if !cfg.EnrichmentEnabled || cfg.OpenAIAPIKey == "" {
		return nil
	}
	return enrich.New(cfg.OpenAIAPIKey, cfg.OpenAIModel)
}

func selectedSports() []models.Sport {
	raw := os.Getenv("SPORTS")
	if raw == "" {
		return []models.Sport{models.SportSoccer, models.SportNBA, models.SportNFL}
	}

	var sports []models.Sport
	for _, part := range strings.Split(raw, ",") {
		switch s := models.Sport(strings.TrimSpace(part)); s {
		case models.SportSoccer, models.SportNBA, models.SportNFL:
			sports = append(sports, s)
		default:
			log.Warn().Str("sport", string(s)).Msg("unknown sport in SPORTS, skipping")
		}
	}
	return sports
}

func printReport(report *models.RunReport) {
	fmt.Printf("\n===== %s — %s =====\n", strings.ToUpper(string(report.Sport)), report.Date.Format("2006-01-02"))
	fmt.Printf("Fixtures analyzed: %d, accepted: %d, rejected: %d, failed: %d\n",
		report.FixtureSeen, len(report.Accepted), len(report.Rejected), len(report.Failed))

	if len(report.Accepted) == 0 {
		fmt.Println("No high-confidence predictions today")
		return
	}

	for i, p := range report.Accepted {
		fmt.Printf("\n%d. %s vs %s (%s)\n", i+1, p.HomeName, p.AwayName, p.League)
		fmt.Printf("   %s: %s (%.1f%% confidence, %s data, %d games)\n",
			p.MarketID, p.PredictedOutcome, p.Confidence.BlendedConfidence, p.ProfileSource, p.SampleSize)
		if p.Reasoning != "" {
			fmt.Printf("   %s\n", p.Reasoning)
		}
	}
}
