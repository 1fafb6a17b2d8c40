package config

import (
	"testing"

	"github.com/Alias1177/MatchPredictor/models"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ConfidenceThreshold != 75.0 {
		t.Errorf("ConfidenceThreshold = %v, want 75", cfg.ConfidenceThreshold)
	}
	if cfg.AllowFallback {
		t.Error("AllowFallback = true, want false by default")
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %s, want :8080", cfg.HTTPAddr)
	}
	if len(cfg.Leagues) != 5 {
		t.Errorf("Leagues = %v, want the five default league codes", cfg.Leagues)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CONFIDENCE_THRESHOLD", "80")
	t.Setenv("ALLOW_FALLBACK_PREDICTIONS", "true")
	t.Setenv("PIPELINE_WORKERS", "8")
	t.Setenv("SOCCER_LEAGUES", "eng.1, uefa.champions ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ConfidenceThreshold != 80.0 {
		t.Errorf("ConfidenceThreshold = %v, want 80", cfg.ConfidenceThreshold)
	}
	if !cfg.AllowFallback {
		t.Error("AllowFallback = false, want true")
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
	want := []string{"eng.1", "uefa.champions"}
	if len(cfg.Leagues) != len(want) {
		t.Fatalf("Leagues = %v, want %v", cfg.Leagues, want)
	}
	for i := range want {
		if cfg.Leagues[i] != want[i] {
			t.Errorf("Leagues[%d] = %s, want %s", i, cfg.Leagues[i], want[i])
		}
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("CONFIDENCE_THRESHOLD", "very high")
	t.Setenv("PIPELINE_WORKERS", "many")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ConfidenceThreshold != 75.0 {
		t.Errorf("ConfidenceThreshold = %v, want default 75", cfg.ConfidenceThreshold)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want default 4", cfg.Workers)
	}
}

func TestThresholdFor(t *testing.T) {
	t.Setenv("CONFIDENCE_THRESHOLD", "75")
	t.Setenv("SOCCER_CONFIDENCE_THRESHOLD", "82")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.ThresholdFor(models.SportSoccer); got != 82.0 {
		t.Errorf("ThresholdFor(soccer) = %v, want 82", got)
	}
	// No per-sport override: global applies
	if got := cfg.ThresholdFor(models.SportNBA); got != 75.0 {
		t.Errorf("ThresholdFor(nba) = %v, want 75", got)
	}
}

func TestMinSamplesFor(t *testing.T) {
	t.Setenv("NBA_MIN_H2H", "6")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		sport models.Sport
		want  int
	}{
		{models.SportSoccer, 3},
		{models.SportNBA, 6},
		{models.SportNFL, 4},
	}
	for _, tt := range tests {
		if got := cfg.MinSamplesFor(tt.sport); got != tt.want {
			t.Errorf("MinSamplesFor(%s) = %d, want %d", tt.sport, got, tt.want)
		}
	}

	// Unconfigured map entries fall back to the floor of 3
	empty := &Config{}
	if got := empty.MinSamplesFor(models.SportSoccer); got != 3 {
		t.Errorf("MinSamplesFor on empty config = %d, want 3", got)
	}
}
