package fraud

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/payshield/risk-engine/internal/domain/fraud"
	"github.com/payshield/risk-engine/internal/domain/values"
)

func TestTransactionalAnalyzer(t *testing.T) {
	base := testTransaction()

	tests := []struct {
		name        string
		txn         fraud.TransactionContext
		frequency   FrequencyCheck
		wantScore   int
		wantReasons []string
	}{
		{
			name:        "routine card purchase",
			txn:         base,
			wantScore:   0,
			wantReasons: nil,
		},
		{
			name: "high value amount",
			txn: func() fraud.TransactionContext {
				txn := base
				txn.Amount = values.MustNewMoneyFromFloat(10000.01, values.USD)
				return txn
			}(),
			wantScore:   15,
			wantReasons: []string{fraud.ReasonHighValueTransaction},
		},
		{
			name: "high value in foreign currency after normalization",
			txn: func() fraud.TransactionContext {
				// 9500 EUR at 1.09 normalizes above the 10000 threshold.
				txn := base
				txn.Amount = values.MustNewMoneyFromFloat(9500.33, values.EUR)
				return txn
			}(),
			wantScore:   15,
			wantReasons: []string{fraud.ReasonHighValueTransaction},
		},
		{
			name: "round amount divisible by fifty",
			txn: func() fraud.TransactionContext {
				txn := base
				txn.Amount = values.MustNewMoneyFromFloat(150, values.USD)
				return txn
			}(),
			wantScore:   5,
			wantReasons: []string{fraud.ReasonRoundNumberAmount},
		},
		{
			name: "round amount divisible by one hundred",
			txn: func() fraud.TransactionContext {
				txn := base
				txn.Amount = values.MustNewMoneyFromFloat(300, values.USD)
				return txn
			}(),
			wantScore:   5,
			wantReasons: []string{fraud.ReasonRoundNumberAmount},
		},
		{
			name: "prepaid card payment",
			txn: func() fraud.TransactionContext {
				txn := base
				txn.PaymentMethod = fraud.PaymentPrepaidCard
				return txn
			}(),
			wantScore:   15,
			wantReasons: []string{fraud.ReasonHighRiskPaymentMethod},
		},
		{
			name: "cryptocurrency payment",
			txn: func() fraud.TransactionContext {
				txn := base
				txn.PaymentMethod = fraud.PaymentCryptocurrency
				return txn
			}(),
			wantScore:   15,
			wantReasons: []string{fraud.ReasonHighRiskPaymentMethod},
		},
		{
			name:        "frequency strategy flags the transaction",
			txn:         base,
			frequency:   staticCheck{anomalous: true},
			wantScore:   10,
			wantReasons: []string{fraud.ReasonFrequencyAnomaly},
		},
		{
			name: "all transactional rules fire",
			txn: func() fraud.TransactionContext {
				txn := base
				txn.Amount = values.MustNewMoneyFromFloat(15000, values.USD)
				txn.PaymentMethod = fraud.PaymentGiftCard
				return txn
			}(),
			frequency: staticCheck{anomalous: true},
			wantScore: 45,
			wantReasons: []string{
				fraud.ReasonHighValueTransaction,
				fraud.ReasonRoundNumberAmount,
				fraud.ReasonHighRiskPaymentMethod,
				fraud.ReasonFrequencyAnomaly,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frequency := tt.frequency
			if frequency == nil {
				frequency = staticCheck{}
			}

			result := newTransactionalAnalyzer(frequency, DefaultConfig(), testLogger()).Analyze(context.Background(), tt.txn)

			assert.Equal(t, tt.wantScore, result.Score)
			assert.False(t, result.Fallback)

			codes := make([]string, 0, len(result.Reasons))
			for _, r := range result.Reasons {
				codes = append(codes, r.Code)
				assert.Equal(t, fraud.CategoryTransactional, r.Category)
			}
			assert.Equal(t, tt.wantReasons, append([]string(nil), codes...))
		})
	}
}

func TestTransactionalAnalyzer_UnknownCurrencyKeepsFaceValue(t *testing.T) {
	txn := testTransaction()
	txn.Amount = values.MustNewMoneyFromFloat(9999.99, "CHF")

	result := newTransactionalAnalyzer(staticCheck{}, DefaultConfig(), testLogger()).Analyze(context.Background(), txn)

	assert.Equal(t, 0, result.Score)
	assert.Empty(t, result.Reasons)
}
