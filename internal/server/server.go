package server

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/MatchPredictor/internal/config"
	"github.com/Alias1177/MatchPredictor/internal/database"
	"github.com/Alias1177/MatchPredictor/internal/orchestrator"
	"github.com/Alias1177/MatchPredictor/models"
)

// Server exposes the prediction pipeline over HTTP. It consumes orchestrator
// output and never mutates predictions.
type Server struct {
	cfg    *config.Config
	orch   *orchestrator.Orchestrator
	db     *database.DB // nil disables history endpoints and persistence
	logger zerolog.Logger

	mu    sync.RWMutex
	cache map[models.Sport]*models.RunReport // today's reports, warmed by the cron refresh
}

// New creates the HTTP server wiring
func New(cfg *config.Config, orch *orchestrator.Orchestrator, db *database.DB) *Server {
	return &Server{
		cfg:    cfg,
		orch:   orch,
		db:     db,
		logger: log.With().Str("component", "server").Logger(),
		cache:  make(map[models.Sport]*models.RunReport),
	}
}

// Router builds the gin engine with all routes registered
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", s.getHealth)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/predictions", s.getPredictions)
		v1.GET("/history", s.getHistory)
	}

	return router
}

// Refresh recomputes and caches today's report for every registered sport.
// Called by the cron schedule and once at startup.
func (s *Server) Refresh(sports []models.Sport) {
	ctx := context.Background()
	for _, sport := range sports {
		report, err := s.orch.Run(ctx, sport, time.Now().UTC())
		if err != nil {
			s.logger.Error().Err(err).Str("sport", string(sport)).Msg("refresh failed")
			continue
		}

		s.mu.Lock()
		s.cache[sport] = report
		s.mu.Unlock()

		if s.db != nil {
			if err := s.db.SaveReport(report); err != nil {
				s.logger.Error().Err(err).Str("sport", string(sport)).Msg("persisting report failed")
			}
		}
	}
}

func (s *Server) getHealth(c *gin.Context) {
	checks := gin.H{}
	status := "ok"

	if s.db != nil {
		if err := s.db.Ping(); err != nil {
			status = "degraded"
			checks["database"] = "failed: " + err.Error()
		} else {
			checks["database"] = "ok"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"service":   "match-predictor",
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	})
}

// getPredictions serves accepted predictions for one sport and date.
// verbose=true adds rejected predictions with reasons; threshold= overrides
// the configured accept threshold for this request only.
func (s *Server) getPredictions(c *gin.Context) {
	sport, ok := parseSport(c.Query("sport"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown or missing sport"})
		return
	}

	date := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	verbose := c.Query("verbose") == "true"

	var report *models.RunReport
	if raw := c.Query("threshold"); raw != "" {
		threshold, err := strconv.ParseFloat(raw, 64)
		if err != nil || threshold < 0 || threshold > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "threshold must be a number in [0, 100]"})
			return
		}
		report = s.runFresh(c, sport, date, &threshold)
	} else if cached := s.cachedReport(sport, date); cached != nil {
		report = cached
	} else {
		report = s.runFresh(c, sport, date, nil)
	}
	if report == nil {
		return // error response already written
	}

	resp := gin.H{
		"sport":        report.Sport,
		"date":         report.Date.Format("2006-01-02"),
		"accepted":     report.Accepted,
		"generated_at": report.GeneratedAt,
	}
	if verbose {
		resp["rejected"] = report.Rejected
		resp["failed"] = report.Failed
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) runFresh(c *gin.Context, sport models.Sport, date time.Time, threshold *float64) *models.RunReport {
	var (
		report *models.RunReport
		err    error
	)
	if threshold != nil {
		report, err = s.orch.RunWithThreshold(c.Request.Context(), sport, date, *threshold)
	} else {
		report, err = s.orch.Run(c.Request.Context(), sport, date)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("sport", string(sport)).Msg("prediction run failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "prediction run failed: " + err.Error()})
		return nil
	}
	return report
}

func (s *Server) cachedReport(sport models.Sport, date time.Time) *models.RunReport {
	if !models.SameDay(date, time.Now().UTC()) {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache[sport]
}

// getHistory serves persisted accepted predictions from recent days
func (s *Server) getHistory(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "history requires database configuration"})
		return
	}

	sport, ok := parseSport(c.Query("sport"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown or missing sport"})
		return
	}

	days := 7
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 90 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be an integer in [1, 90]"})
			return
		}
		days = parsed
	}

	preds, err := s.db.RecentAccepted(sport, time.Now().UTC().AddDate(0, 0, -days))
	if err != nil {
		s.logger.Error().Err(err).Msg("history query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sport":       sport,
		"days":        days,
		"predictions": preds,
	})
}

func parseSport(raw string) (models.Sport, bool) {
	switch models.Sport(raw) {
	case models.SportSoccer, models.SportNBA, models.SportNFL:
		return models.Sport(raw), true
	default:
		return "", false
	}
}
