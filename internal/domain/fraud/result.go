package fraud

import "time"

// DetectionResult is the sole externally visible artifact of one evaluation.
// It is immutable once constructed.
type DetectionResult struct {
	RiskScore          int              `json:"risk_score"` // 0-100
	RiskLevel          RiskLevel        `json:"risk_level"`
	Reasons            []Reason         `json:"reasons"`
	RecommendedActions []SecurityAction `json:"recommended_actions"`
	Confidence         float64          `json:"confidence"` // 0.0-1.0
	ModelVersion       string           `json:"model_version"`
	ProcessedAt        time.Time        `json:"processed_at"`
}

// RequiresReview reports whether the caller-side decision flow should route
// the transaction through manual review or step-up authentication.
func (r *DetectionResult) RequiresReview() bool {
	return ContainsAction(r.RecommendedActions, ActionManualReview) ||
		ContainsAction(r.RecommendedActions, ActionRequireAdditionalAuth)
}

// IsBlocked reports whether the caller must abort the transaction.
func (r *DetectionResult) IsBlocked() bool {
	return ContainsAction(r.RecommendedActions, ActionBlockTransaction)
}
