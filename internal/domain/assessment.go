package domain

import "time"

// BasicAssessment is the additive 0-100 risk score with its triggered
// reasons. Ephemeral: recomputed per request, never cached.
type BasicAssessment struct {
	RiskScore int
	Reasons   []string
}

// Factor level buckets used in the enhanced per-factor breakdown.
const (
	FactorLevelLow    = "low"
	FactorLevelMedium = "medium"
	FactorLevelHigh   = "high"
)

// FactorDetail is one weighted contribution in an enhanced assessment.
type FactorDetail struct {
	Score         int
	WeightPercent int
	Status        string
	Level         string
}

// EnhancedAssessment is the weighted, explainable risk result.
// ConfidenceLevel is capped at 95: some uncertainty is irreducible no
// matter how much historical data backs the score.
type EnhancedAssessment struct {
	Score                int
	ConfidenceLevel      int
	PredictedDelayDays   int
	Factors              map[string]FactorDetail
	OriginalDeliveryDate string
	RevisedDeliveryDate  string
	ComputedAt           time.Time
}

// RiskLevel converts a numeric risk score to its display bucket.
func RiskLevel(score int) string {
	switch {
	case score >= 70:
		return "High Risk"
	case score >= 40:
		return "Medium Risk"
	default:
		return "Low Risk"
	}
}
