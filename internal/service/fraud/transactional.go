package fraud

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/payshield/risk-engine/internal/domain/fraud"
)

var highRiskPaymentMethods = map[fraud.PaymentMethod]bool{
	fraud.PaymentPrepaidCard:    true,
	fraud.PaymentGiftCard:       true,
	fraud.PaymentCryptocurrency: true,
}

// transactionalAnalyzer scores properties of the transaction itself. It is
// pure given the context; the frequency strategy is its only collaborator.
type transactionalAnalyzer struct {
	frequencyCheck FrequencyCheck
	cfg            Config
	logger         *slog.Logger
}

func newTransactionalAnalyzer(frequencyCheck FrequencyCheck, cfg Config, logger *slog.Logger) *transactionalAnalyzer {
	return &transactionalAnalyzer{frequencyCheck: frequencyCheck, cfg: cfg, logger: logger}
}

func (a *transactionalAnalyzer) Name() string { return "transactional" }

func (a *transactionalAnalyzer) Analyze(ctx context.Context, txn fraud.TransactionContext) analyzerResult {
	var score int
	var reasons []fraud.Reason

	normalized := txn.Amount.ToFloat64() * a.cfg.normalizedRate(txn.Amount.Currency())
	if normalized > a.cfg.HighValueThreshold {
		score += PointsHighValueTransaction
		reasons = append(reasons, fraud.NewReason(
			fraud.ReasonHighValueTransaction,
			fmt.Sprintf("amount %s exceeds the high-value threshold", txn.Amount),
			ruleWeight(PointsHighValueTransaction),
			fraud.CategoryTransactional,
		))
	}

	if txn.Amount.DivisibleBy(100) || txn.Amount.DivisibleBy(50) {
		score += PointsRoundNumberAmount
		reasons = append(reasons, fraud.NewReason(
			fraud.ReasonRoundNumberAmount,
			fmt.Sprintf("amount %s is a round number", txn.Amount),
			ruleWeight(PointsRoundNumberAmount),
			fraud.CategoryTransactional,
		))
	}

	if highRiskPaymentMethods[txn.PaymentMethod] {
		score += PointsHighRiskPaymentMethod
		reasons = append(reasons, fraud.NewReason(
			fraud.ReasonHighRiskPaymentMethod,
			fmt.Sprintf("payment method %q carries elevated fraud risk", txn.PaymentMethod),
			ruleWeight(PointsHighRiskPaymentMethod),
			fraud.CategoryTransactional,
		))
	}

	// Reserved extension point; the default strategy never fires.
	if a.frequencyCheck.IsAnomalous(ctx, txn) {
		score += PointsFrequencyAnomaly
		reasons = append(reasons, fraud.NewReason(
			fraud.ReasonFrequencyAnomaly,
			"transaction frequency flagged as anomalous",
			ruleWeight(PointsFrequencyAnomaly),
			fraud.CategoryTransactional,
		))
	}

	return analyzerResult{Score: clampScore(score), Reasons: reasons}
}
