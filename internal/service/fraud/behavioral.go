package fraud

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/payshield/risk-engine/internal/domain/fraud"
)

// behavioralAnalyzer scores deviations from the user's historical habits.
type behavioralAnalyzer struct {
	behavior     BehaviorStore
	sessionCheck SessionCheck
	cfg          Config
	logger       *slog.Logger
}

func newBehavioralAnalyzer(behavior BehaviorStore, sessionCheck SessionCheck, cfg Config, logger *slog.Logger) *behavioralAnalyzer {
	return &behavioralAnalyzer{behavior: behavior, sessionCheck: sessionCheck, cfg: cfg, logger: logger}
}

func (a *behavioralAnalyzer) Name() string { return "behavioral" }

func (a *behavioralAnalyzer) Analyze(ctx context.Context, txn fraud.TransactionContext) analyzerResult {
	profile, err := a.behavior.GetBehaviorProfile(ctx, txn.UserID)
	if err != nil {
		a.logger.Debug("behavior profile unavailable, using fallback score",
			"user_id", txn.UserID, "error", err)
		return analyzerResult{Score: FallbackScoreBehavioral, Fallback: true}
	}

	var score int
	var reasons []fraud.Reason

	hour := txn.Timestamp.Hour()
	if len(profile.TypicalTransactionHours) > 0 && !profile.HasTypicalHour(hour) {
		score += PointsTimePatternAnomaly
		reasons = append(reasons, fraud.NewReason(
			fraud.ReasonTimePatternAnomaly,
			fmt.Sprintf("transaction at hour %02d is outside the user's typical hours", hour),
			ruleWeight(PointsTimePatternAnomaly),
			fraud.CategoryBehavioral,
		))
	}

	if profile.AverageTransactionAmount.IsPositive() {
		deviation := txn.Amount.Amount().Sub(profile.AverageTransactionAmount).Abs()
		ceiling := profile.TransactionAmountStdDev.Mul(decimal.NewFromFloat(a.cfg.StdDevMultiplier))
		if deviation.GreaterThan(ceiling) {
			score += PointsAmountPatternAnomaly
			reasons = append(reasons, fraud.NewReason(
				fraud.ReasonAmountPatternAnomaly,
				fmt.Sprintf("amount %s deviates more than %.0f standard deviations from the user's average",
					txn.Amount, a.cfg.StdDevMultiplier),
				ruleWeight(PointsAmountPatternAnomaly),
				fraud.CategoryBehavioral,
			))
		}
	}

	if len(profile.FrequentMerchantCategories) > 0 && !profile.HasFrequentCategory(txn.MerchantCategory) {
		score += PointsMerchantPatternAnomaly
		reasons = append(reasons, fraud.NewReason(
			fraud.ReasonMerchantPatternAnomaly,
			fmt.Sprintf("merchant category %q is not among the user's frequent categories", txn.MerchantCategory),
			ruleWeight(PointsMerchantPatternAnomaly),
			fraud.CategoryBehavioral,
		))
	}

	// Reserved extension point; the default strategy never fires.
	if a.sessionCheck.IsAnomalous(ctx, txn) {
		score += PointsSessionAnomaly
		reasons = append(reasons, fraud.NewReason(
			fraud.ReasonSessionAnomaly,
			"session behavior flagged as anomalous",
			ruleWeight(PointsSessionAnomaly),
			fraud.CategoryBehavioral,
		))
	}

	return analyzerResult{Score: clampScore(score), Reasons: reasons}
}
