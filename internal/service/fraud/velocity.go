package fraud

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/payshield/risk-engine/internal/domain/fraud"
)

// velocityAnalyzer scores transaction-rate signals against configured limits.
type velocityAnalyzer struct {
	store  VelocityStore
	cfg    Config
	logger *slog.Logger
}

func newVelocityAnalyzer(store VelocityStore, cfg Config, logger *slog.Logger) *velocityAnalyzer {
	return &velocityAnalyzer{store: store, cfg: cfg, logger: logger}
}

func (a *velocityAnalyzer) Name() string { return "velocity" }

func (a *velocityAnalyzer) Analyze(ctx context.Context, txn fraud.TransactionContext) analyzerResult {
	data, err := a.store.GetVelocityData(ctx, txn.UserID)
	if err != nil {
		a.logger.Debug("velocity data unavailable, using fallback score",
			"user_id", txn.UserID, "error", err)
		return analyzerResult{Score: FallbackScoreVelocity, Fallback: true}
	}

	limits, err := a.store.GetVelocityLimits(ctx)
	if err != nil {
		a.logger.Debug("velocity limits unavailable, using fallback score",
			"user_id", txn.UserID, "error", err)
		return analyzerResult{Score: FallbackScoreVelocity, Fallback: true}
	}

	var score int
	var reasons []fraud.Reason

	if data.TransactionsLastHour > limits.TransactionsPerHour {
		score += PointsVelocityTransactionsHour
		reasons = append(reasons, fraud.NewReason(
			fraud.ReasonVelocityTransactionsHour,
			fmt.Sprintf("%d transactions in the last hour exceeds the limit of %d",
				data.TransactionsLastHour, limits.TransactionsPerHour),
			ruleWeight(PointsVelocityTransactionsHour),
			fraud.CategoryVelocity,
		))
	}

	if data.TransactionsLastDay > limits.TransactionsPerDay {
		score += PointsVelocityTransactionsDay
		reasons = append(reasons, fraud.NewReason(
			fraud.ReasonVelocityTransactionsDay,
			fmt.Sprintf("%d transactions in the last day exceeds the limit of %d",
				data.TransactionsLastDay, limits.TransactionsPerDay),
			ruleWeight(PointsVelocityTransactionsDay),
			fraud.CategoryVelocity,
		))
	}

	if data.AmountLastHour.Currency() == limits.AmountPerHour.Currency() &&
		data.AmountLastHour.GreaterThan(limits.AmountPerHour) {
		score += PointsVelocityAmountHour
		reasons = append(reasons, fraud.NewReason(
			fraud.ReasonVelocityAmountHour,
			fmt.Sprintf("amount %s in the last hour exceeds the limit of %s",
				data.AmountLastHour, limits.AmountPerHour),
			ruleWeight(PointsVelocityAmountHour),
			fraud.CategoryVelocity,
		))
	}

	// Spike: the transaction alone is several times the user's average
	// hourly volume over the past week.
	avg := data.AvgHourlyAmountLast7Days
	if avg.IsPositive() && txn.Amount.Currency() == avg.Currency() &&
		txn.Amount.GreaterThan(avg.MulFloat(a.cfg.SpikeMultiplier)) {
		score += PointsVelocitySpike
		reasons = append(reasons, fraud.NewReason(
			fraud.ReasonVelocitySpikeDetection,
			fmt.Sprintf("amount %s exceeds %.0fx the 7-day average hourly amount %s",
				txn.Amount, a.cfg.SpikeMultiplier, avg),
			ruleWeight(PointsVelocitySpike),
			fraud.CategoryVelocity,
		))
	}

	return analyzerResult{Score: clampScore(score), Reasons: reasons}
}
