package fraud

import "github.com/shopspring/decimal"

// UserBehaviorProfile describes a user's historical transaction habits.
type UserBehaviorProfile struct {
	TypicalTransactionHours    []int           `json:"typical_transaction_hours"` // 0-23
	AverageTransactionAmount   decimal.Decimal `json:"average_transaction_amount"`
	TransactionAmountStdDev    decimal.Decimal `json:"transaction_amount_std_dev"`
	FrequentMerchantCategories []string        `json:"frequent_merchant_categories"`
}

// HasTypicalHour reports whether hour is one of the user's typical
// transaction hours.
func (p UserBehaviorProfile) HasTypicalHour(hour int) bool {
	for _, h := range p.TypicalTransactionHours {
		if h == hour {
			return true
		}
	}
	return false
}

// HasFrequentCategory reports whether category is one the user transacts
// with regularly.
func (p UserBehaviorProfile) HasFrequentCategory(category string) bool {
	for _, c := range p.FrequentMerchantCategories {
		if c == category {
			return true
		}
	}
	return false
}
