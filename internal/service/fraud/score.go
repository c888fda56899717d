package fraud

import (
	"math"

	"github.com/payshield/risk-engine/internal/domain/fraud"
)

// aggregateScore combines the five sub-scores through the configured weights.
// Sub-score order: velocity, location, device, behavioral, transactional.
func aggregateScore(w Weights, sub [analyzerCount]int) int {
	weighted := float64(sub[0])*w.Velocity +
		float64(sub[1])*w.Location +
		float64(sub[2])*w.Device +
		float64(sub[3])*w.Behavioral +
		float64(sub[4])*w.Transactional

	return clampScore(int(math.Round(weighted)))
}

// baseActions is the policy's base mapping from risk level to actions.
func baseActions(level fraud.RiskLevel) []fraud.SecurityAction {
	switch level {
	case fraud.RiskVeryHigh:
		return []fraud.SecurityAction{
			fraud.ActionBlockTransaction,
			fraud.ActionEscalateToAdmin,
			fraud.ActionTemporaryAccountLock,
		}
	case fraud.RiskHigh:
		return []fraud.SecurityAction{
			fraud.ActionRequireAdditionalAuth,
			fraud.ActionManualReview,
			fraud.ActionAlertSent,
		}
	case fraud.RiskMedium:
		return []fraud.SecurityAction{
			fraud.ActionRequireAdditionalAuth,
			fraud.ActionAlertSent,
		}
	case fraud.RiskLow:
		return []fraud.SecurityAction{fraud.ActionAlertSent}
	default:
		return nil
	}
}

// recommendActions applies the base mapping and the category overlays, then
// deduplicates. Overlays augment a non-empty base set only: they never by
// themselves elevate a VERY_LOW assessment into an actionable one.
func recommendActions(level fraud.RiskLevel, reasons []fraud.Reason) []fraud.SecurityAction {
	actions := baseActions(level)
	if len(actions) > 0 {
		for _, reason := range reasons {
			if reason.Category == fraud.CategoryDevice {
				actions = append(actions, fraud.ActionDeviceBlocked)
				break
			}
		}
		for _, reason := range reasons {
			if reason.Code == fraud.ReasonHighRiskCountry {
				actions = append(actions, fraud.ActionIPBlocked)
				break
			}
		}
	}

	return dedupeActions(actions)
}

// dedupeActions removes duplicates while preserving first-seen order.
func dedupeActions(actions []fraud.SecurityAction) []fraud.SecurityAction {
	if len(actions) == 0 {
		return []fraud.SecurityAction{}
	}

	seen := make(map[fraud.SecurityAction]bool, len(actions))
	deduped := make([]fraud.SecurityAction, 0, len(actions))
	for _, action := range actions {
		if !seen[action] {
			seen[action] = true
			deduped = append(deduped, action)
		}
	}
	return deduped
}

// estimateConfidence derives a [0,1] confidence from the triggered reasons.
// No reasons means nothing was detected and the clean result is trusted
// fully. Otherwise each reason contributes min(weight*2, 1) scaled by its own
// weight, so a few specific, heavy reasons push confidence higher than many
// weak ones.
func estimateConfidence(reasons []fraud.Reason) float64 {
	if len(reasons) == 0 {
		return 1.0
	}

	var weightedSum, totalWeight float64
	for _, reason := range reasons {
		specificity := math.Min(reason.Weight*2, 1.0)
		weightedSum += specificity * reason.Weight
		totalWeight += reason.Weight
	}

	if totalWeight == 0 {
		return 1.0
	}

	confidence := weightedSum / totalWeight
	return math.Max(0, math.Min(1, confidence))
}
