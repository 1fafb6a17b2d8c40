package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/MatchPredictor/models"
)

// Config holds all application configuration
type Config struct {
	// Decision policy
	ConfidenceThreshold float64 // global accept threshold, percent
	SportThresholds     map[models.Sport]float64
	AllowFallback       bool // surface fallback-based predictions when true
	MinRealSamples      map[models.Sport]int

	// Collector
	RequestTimeout  int // seconds, per upstream call
	RequestsPerSec  int
	MaxRetryTimeout int // seconds, backoff budget
	Leagues         []string

	// Enrichment
	EnrichmentEnabled bool
	OpenAIAPIKey      string
	OpenAIModel       string

	// Serving / delivery
	HTTPAddr         string
	TelegramBotToken string
	TelegramChatID   int64

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	LogLevel string
	Workers  int // concurrent fixture pipelines per sport
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := Config{
		ConfidenceThreshold: getEnvFloatWithDefault("CONFIDENCE_THRESHOLD", 75.0),
		SportThresholds: map[models.Sport]float64{
			models.SportSoccer: getEnvFloatWithDefault("SOCCER_CONFIDENCE_THRESHOLD", 0),
			models.SportNBA:    getEnvFloatWithDefault("NBA_CONFIDENCE_THRESHOLD", 0),
			models.SportNFL:    getEnvFloatWithDefault("NFL_CONFIDENCE_THRESHOLD", 0),
		},
		AllowFallback: getEnvBoolWithDefault("ALLOW_FALLBACK_PREDICTIONS", false),
		MinRealSamples: map[models.Sport]int{
			models.SportSoccer: getEnvIntWithDefault("SOCCER_MIN_H2H", 3),
			models.SportNBA:    getEnvIntWithDefault("NBA_MIN_H2H", 5),
			models.SportNFL:    getEnvIntWithDefault("NFL_MIN_H2H", 4),
		},
		RequestTimeout:    getEnvIntWithDefault("REQUEST_TIMEOUT", 10),
		RequestsPerSec:    getEnvIntWithDefault("REQUESTS_PER_SEC", 5),
		MaxRetryTimeout:   getEnvIntWithDefault("MAX_RETRY_TIMEOUT", 20),
		Leagues:           splitCSV(getEnvWithDefault("SOCCER_LEAGUES", "eng.1,esp.1,ita.1,ger.1,fra.1")),
		EnrichmentEnabled: getEnvBoolWithDefault("ENRICHMENT_ENABLED", false),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       getEnvWithDefault("OPENAI_MODEL", "gpt-4o-mini"),
		HTTPAddr:          getEnvWithDefault("HTTP_ADDR", ":8080"),
		TelegramBotToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:    getEnvInt64WithDefault("TELEGRAM_CHAT_ID", 0),
		DBHost:            getEnvWithDefault("DB_HOST", "localhost"),
		DBPort:            getEnvWithDefault("DB_PORT", "5432"),
		DBUser:            getEnvWithDefault("DB_USER", "postgres"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            getEnvWithDefault("DB_NAME", "predictions"),
		DBSSLMode:         getEnvWithDefault("DB_SSLMODE", "disable"),
		LogLevel:          getEnvWithDefault("LOG_LEVEL", "info"),
		Workers:           getEnvIntWithDefault("PIPELINE_WORKERS", 4),
	}

	return &cfg, nil
}

// ThresholdFor returns the accept threshold for a sport, falling back to the
// global default when no per-sport override is configured.
func (c *Config) ThresholdFor(sport models.Sport) float64 {
	if t, ok := c.SportThresholds[sport]; ok && t > 0 {
		return t
	}
	return c.ConfidenceThreshold
}

// MinSamplesFor returns the minimum real H2H sample size for a sport
func (c *Config) MinSamplesFor(sport models.Sport) int {
	if n, ok := c.MinRealSamples[sport]; ok && n > 0 {
		return n
	}
	return 3
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
