package fraud

import (
	"context"

	"github.com/payshield/risk-engine/internal/domain/fraud"
)

// analyzerResult is one analyzer's contribution to an evaluation.
type analyzerResult struct {
	Score    int
	Reasons  []fraud.Reason
	Fallback bool
}

// analyzer is one independent, stateless signal analyzer. Analyze must not
// return an error: a collaborator failure is absorbed into the analyzer's
// documented conservative fallback score.
type analyzer interface {
	Name() string
	Analyze(ctx context.Context, txn fraud.TransactionContext) analyzerResult
}

// clampScore bounds a raw additive score into [0,100].
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ruleWeight converts a rule's point contribution into a reason weight.
func ruleWeight(points int) float64 {
	return float64(points) / 100.0
}
