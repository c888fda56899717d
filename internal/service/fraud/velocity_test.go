package fraud

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/payshield/risk-engine/internal/domain/fraud"
	"github.com/payshield/risk-engine/internal/domain/values"
)

func TestVelocityAnalyzer(t *testing.T) {
	txn := testTransaction()

	tests := []struct {
		name        string
		data        *fraud.VelocityData
		limits      *fraud.VelocityLimits
		amount      values.Money
		wantScore   int
		wantReasons []string
	}{
		{
			name: "all counters under limits",
			data: &fraud.VelocityData{
				TransactionsLastHour:     1,
				TransactionsLastDay:      5,
				AmountLastHour:           values.MustNewMoneyFromFloat(100, values.USD),
				AvgHourlyAmountLast7Days: values.MustNewMoneyFromFloat(500, values.USD),
			},
			limits: &fraud.VelocityLimits{
				TransactionsPerHour: 10,
				TransactionsPerDay:  50,
				AmountPerHour:       values.MustNewMoneyFromFloat(5000, values.USD),
			},
			amount:      values.MustNewMoneyFromFloat(49.75, values.USD),
			wantScore:   0,
			wantReasons: nil,
		},
		{
			name: "only hourly count exceeded",
			data: &fraud.VelocityData{
				TransactionsLastHour:     12,
				TransactionsLastDay:      30,
				AmountLastHour:           values.MustNewMoneyFromFloat(4000, values.USD),
				AvgHourlyAmountLast7Days: values.MustNewMoneyFromFloat(1000, values.USD),
			},
			limits: &fraud.VelocityLimits{
				TransactionsPerHour: 10,
				TransactionsPerDay:  50,
				AmountPerHour:       values.MustNewMoneyFromFloat(5000, values.USD),
			},
			amount:      values.MustNewMoneyFromFloat(49.75, values.USD),
			wantScore:   30,
			wantReasons: []string{fraud.ReasonVelocityTransactionsHour},
		},
		{
			name: "spike only",
			data: &fraud.VelocityData{
				TransactionsLastHour:     1,
				TransactionsLastDay:      5,
				AmountLastHour:           values.MustNewMoneyFromFloat(100, values.USD),
				AvgHourlyAmountLast7Days: values.MustNewMoneyFromFloat(100, values.USD),
			},
			limits: &fraud.VelocityLimits{
				TransactionsPerHour: 10,
				TransactionsPerDay:  50,
				AmountPerHour:       values.MustNewMoneyFromFloat(5000, values.USD),
			},
			amount:      values.MustNewMoneyFromFloat(600, values.USD),
			wantScore:   20,
			wantReasons: []string{fraud.ReasonVelocitySpikeDetection},
		},
		{
			name: "all rules fire and the raw total clamps to 100",
			data: &fraud.VelocityData{
				TransactionsLastHour:     20,
				TransactionsLastDay:      80,
				AmountLastHour:           values.MustNewMoneyFromFloat(9000, values.USD),
				AvgHourlyAmountLast7Days: values.MustNewMoneyFromFloat(100, values.USD),
			},
			limits: &fraud.VelocityLimits{
				TransactionsPerHour: 10,
				TransactionsPerDay:  50,
				AmountPerHour:       values.MustNewMoneyFromFloat(5000, values.USD),
			},
			amount:    values.MustNewMoneyFromFloat(600, values.USD),
			wantScore: 100,
			wantReasons: []string{
				fraud.ReasonVelocityTransactionsHour,
				fraud.ReasonVelocityTransactionsDay,
				fraud.ReasonVelocityAmountHour,
				fraud.ReasonVelocitySpikeDetection,
			},
		},
		{
			name: "zero average disables spike detection",
			data: &fraud.VelocityData{
				TransactionsLastHour:     1,
				TransactionsLastDay:      5,
				AmountLastHour:           values.MustNewMoneyFromFloat(100, values.USD),
				AvgHourlyAmountLast7Days: values.Zero(values.USD),
			},
			limits: &fraud.VelocityLimits{
				TransactionsPerHour: 10,
				TransactionsPerDay:  50,
				AmountPerHour:       values.MustNewMoneyFromFloat(5000, values.USD),
			},
			amount:      values.MustNewMoneyFromFloat(600, values.USD),
			wantScore:   0,
			wantReasons: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mockVelocityStore)
			store.On("GetVelocityData", mock.Anything, txn.UserID).Return(tt.data, nil)
			store.On("GetVelocityLimits", mock.Anything).Return(tt.limits, nil)

			input := txn
			input.Amount = tt.amount

			result := newVelocityAnalyzer(store, DefaultConfig(), testLogger()).Analyze(context.Background(), input)

			assert.Equal(t, tt.wantScore, result.Score)
			assert.False(t, result.Fallback)

			codes := make([]string, 0, len(result.Reasons))
			for _, r := range result.Reasons {
				codes = append(codes, r.Code)
				assert.Equal(t, fraud.CategoryVelocity, r.Category)
			}
			assert.Equal(t, tt.wantReasons, append([]string(nil), codes...))
		})
	}
}

func TestVelocityAnalyzer_StoreFailure(t *testing.T) {
	txn := testTransaction()

	t.Run("data fetch fails", func(t *testing.T) {
		store := new(mockVelocityStore)
		store.On("GetVelocityData", mock.Anything, txn.UserID).Return(nil, errors.New("store down"))

		result := newVelocityAnalyzer(store, DefaultConfig(), testLogger()).Analyze(context.Background(), txn)

		assert.Equal(t, FallbackScoreVelocity, result.Score)
		assert.True(t, result.Fallback)
		assert.Empty(t, result.Reasons)
	})

	t.Run("limits fetch fails", func(t *testing.T) {
		data, _ := quietVelocity()
		store := new(mockVelocityStore)
		store.On("GetVelocityData", mock.Anything, txn.UserID).Return(data, nil)
		store.On("GetVelocityLimits", mock.Anything).Return(nil, errors.New("config service down"))

		result := newVelocityAnalyzer(store, DefaultConfig(), testLogger()).Analyze(context.Background(), txn)

		assert.Equal(t, FallbackScoreVelocity, result.Score)
		assert.True(t, result.Fallback)
		assert.Empty(t, result.Reasons)
	})
}
