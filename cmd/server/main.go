package main

import (
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/MatchPredictor/internal/api/espn"
	"github.com/Alias1177/MatchPredictor/internal/config"
	"github.com/Alias1177/MatchPredictor/internal/database"
	"github.com/Alias1177/MatchPredictor/internal/enrich"
	"github.com/Alias1177/MatchPredictor/internal/orchestrator"
	"github.com/Alias1177/MatchPredictor/internal/server"
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

	var db *database.DB
	if cfg.DBPassword != "" {
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
	} else {
		log.Warn().Msg("DB_PASSWORD not set, running without prediction history")
	}

	srv := server.New(cfg, orch, db)
	sports := []models.Sport{models.SportSoccer, models.SportNBA, models.SportNFL}

	// Warm the cache once at startup, then refresh every morning
	go srv.Refresh(sports)

	schedule := cron.New()
	if _, err := schedule.AddFunc("0 7 * * *", func() { srv.Refresh(sports) }); err != nil {
		log.Fatal().Err(err).Msg("registering refresh schedule failed")
	}
	schedule.Start()
	defer schedule.Stop()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("Starting prediction API")
	if err := srv.Router().Run(cfg.HTTPAddr); err != nil {
		log.Fatal().Err(err).Msg("HTTP server failed")
	}
}
