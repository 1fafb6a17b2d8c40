package gate

import (
	"testing"

	"github.com/Alias1177/MatchPredictor/models"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name      string
		blended   float64
		threshold float64
		decision  models.Decision
		reason    string
	}{
		{"well above threshold", 88, 75, models.DecisionAccepted, ""},
		{"exactly at threshold", 75, 75, models.DecisionAccepted, ""},
		{"just below threshold", 74.9, 75, models.DecisionRejected, models.ReasonBelowThreshold},
		{"zero confidence", 0, 75, models.DecisionRejected, models.ReasonBelowThreshold},
		{"raised threshold rejects former accept", 80, 85, models.DecisionRejected, models.ReasonBelowThreshold},
		{"lowered threshold accepts former reject", 70, 65, models.DecisionAccepted, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := models.ConfidenceScore{BlendedConfidence: tt.blended}
			verdict := Decide(score, tt.threshold)

			if verdict.Decision != tt.decision {
				t.Errorf("Decision = %v, want %v", verdict.Decision, tt.decision)
			}
			if verdict.Reason != tt.reason {
				t.Errorf("Reason = %q, want %q", verdict.Reason, tt.reason)
			}
		})
	}
}

func TestDecideDeterministic(t *testing.T) {
	score := models.ConfidenceScore{BlendedConfidence: 76.5}
	first := Decide(score, 75)
	for i := 0; i < 10; i++ {
		if got := Decide(score, 75); got != first {
			t.Fatalf("verdict changed between calls: %+v vs %+v", got, first)
		}
	}
}

func TestRejectInsufficientData(t *testing.T) {
	verdict := RejectInsufficientData()

	if verdict.Decision != models.DecisionRejected {
		t.Errorf("Decision = %v, want REJECTED", verdict.Decision)
	}
	if verdict.Reason != models.ReasonInsufficientData {
		t.Errorf("Reason = %q, want %q", verdict.Reason, models.ReasonInsufficientData)
	}
}
