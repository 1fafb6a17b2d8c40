package gate

import "github.com/Alias1177/MatchPredictor/models"

// DefaultThreshold is only a configuration default; callers always pass the
// effective threshold in so it can be overridden per sport and per request.
const DefaultThreshold = 75.0

// Verdict is the gate output for one candidate prediction
type Verdict struct {
	Decision models.Decision
	Reason   string
}

// Decide applies the accept threshold to a blended confidence. Pure and
// deterministic: identical inputs always produce the identical verdict.
func Decide(score models.ConfidenceScore, threshold float64) Verdict {
	if score.BlendedConfidence >= threshold {
		return Verdict{Decision: models.DecisionAccepted}
	}
	return Verdict{Decision: models.DecisionRejected, Reason: models.ReasonBelowThreshold}
}

// RejectInsufficientData pre-empts the numeric check for fallback-sourced
// profiles when policy disallows surfacing them.
func RejectInsufficientData() Verdict {
	return Verdict{Decision: models.DecisionRejected, Reason: models.ReasonInsufficientData}
}
