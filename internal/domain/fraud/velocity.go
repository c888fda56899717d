package fraud

import "github.com/payshield/risk-engine/internal/domain/values"

// VelocityData holds per-user rolling counters supplied by the velocity store.
// Read-only to the engine.
type VelocityData struct {
	TransactionsLastHour     int          `json:"transactions_last_hour"`
	TransactionsLastDay      int          `json:"transactions_last_day"`
	AmountLastHour           values.Money `json:"amount_last_hour"`
	AvgHourlyAmountLast7Days values.Money `json:"avg_hourly_amount_last_7_days"`
}

// VelocityLimits are the configured ceilings the velocity analyzer checks
// the rolling counters against.
type VelocityLimits struct {
	TransactionsPerHour int          `json:"transactions_per_hour"`
	TransactionsPerDay  int          `json:"transactions_per_day"`
	AmountPerHour       values.Money `json:"amount_per_hour"`
}
