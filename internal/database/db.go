package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Alias1177/MatchPredictor/models"
)

// DB represents a database connection
type DB struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// New creates a new database connection
func New(params ConnectionParams) (*DB, error) {
	// Create PostgreSQL connection string
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Check connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS predictions (
			id UUID PRIMARY KEY,
			fixture_id TEXT NOT NULL,
			sport TEXT NOT NULL,
			league TEXT,
			home_name TEXT NOT NULL,
			away_name TEXT NOT NULL,
			fixture_time TIMESTAMPTZ NOT NULL,
			market_id TEXT NOT NULL,
			predicted_outcome TEXT NOT NULL,
			base_confidence DOUBLE PRECISION NOT NULL,
			blended_confidence DOUBLE PRECISION NOT NULL,
			decision TEXT NOT NULL,
			rejection_reason TEXT,
			profile_source TEXT NOT NULL,
			sample_size INT NOT NULL,
			reasoning TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS predictions_sport_fixture_time_idx
		ON predictions (sport, fixture_time)
	`)

	return err
}

// SaveReport stores every prediction from one run, accepted and rejected
// alike, so rejection reasons stay auditable.
func (db *DB) SaveReport(report *models.RunReport) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO predictions (
			id, fixture_id, sport, league, home_name, away_name, fixture_time,
			market_id, predicted_outcome, base_confidence, blended_confidence,
			decision, rejection_reason, profile_source, sample_size, reasoning, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO NOTHING
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, p := range append(append([]models.Prediction{}, report.Accepted...), report.Rejected...) {
		_, err := stmt.Exec(
			p.ID, p.FixtureID, p.Sport, p.League, p.HomeName, p.AwayName, p.FixtureTime,
			p.MarketID, p.PredictedOutcome, p.Confidence.BaseConfidence, p.Confidence.BlendedConfidence,
			p.Decision, nullable(p.RejectionReason), p.ProfileSource, p.SampleSize, nullable(p.Reasoning), p.CreatedAt,
		)
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// RecentAccepted returns accepted predictions for a sport within a window,
// newest fixtures first.
func (db *DB) RecentAccepted(sport models.Sport, since time.Time) ([]models.Prediction, error) {
	rows, err := db.Query(`
		SELECT
			id, fixture_id, sport, league, home_name, away_name, fixture_time,
			market_id, predicted_outcome, base_confidence, blended_confidence,
			decision, rejection_reason, profile_source, sample_size, reasoning, created_at
		FROM predictions
		WHERE sport = $1 AND decision = $2 AND fixture_time >= $3
		ORDER BY fixture_time DESC, blended_confidence DESC
	`, sport, models.DecisionAccepted, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var preds []models.Prediction
	for rows.Next() {
		var (
			p         models.Prediction
			reason    sql.NullString
			reasoning sql.NullString
		)
		err := rows.Scan(
			&p.ID, &p.FixtureID, &p.Sport, &p.League, &p.HomeName, &p.AwayName, &p.FixtureTime,
			&p.MarketID, &p.PredictedOutcome, &p.Confidence.BaseConfidence, &p.Confidence.BlendedConfidence,
			&p.Decision, &reason, &p.ProfileSource, &p.SampleSize, &reasoning, &p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		p.Confidence.MarketID = p.MarketID
		p.Confidence.WeightStatistical = models.WeightStatistical
		p.Confidence.WeightContextual = models.WeightContextual
		if reason.Valid {
			p.RejectionReason = reason.String
		}
		if reasoning.Valid {
			p.Reasoning = reasoning.String
		}
		preds = append(preds, p)
	}

	return preds, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
