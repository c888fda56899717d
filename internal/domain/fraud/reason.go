package fraud

// FraudCategory identifies which signal family produced a reason.
type FraudCategory string

const (
	CategoryVelocity      FraudCategory = "VELOCITY"
	CategoryLocation      FraudCategory = "LOCATION"
	CategoryDevice        FraudCategory = "DEVICE"
	CategoryBehavioral    FraudCategory = "BEHAVIORAL"
	CategoryTransactional FraudCategory = "TRANSACTIONAL"
)

// Reason codes emitted by the analyzers. Codes are stable identifiers used in
// audit records and downstream tooling; do not rename.
const (
	ReasonVelocityTransactionsHour = "VELOCITY_TRANSACTIONS_HOUR"
	ReasonVelocityTransactionsDay  = "VELOCITY_TRANSACTIONS_DAY"
	ReasonVelocityAmountHour       = "VELOCITY_AMOUNT_HOUR"
	ReasonVelocitySpikeDetection   = "VELOCITY_SPIKE_DETECTION"

	ReasonImpossibleTravel      = "IMPOSSIBLE_TRAVEL"
	ReasonHighRiskCountry       = "HIGH_RISK_COUNTRY"
	ReasonVPNTorUsage           = "VPN_TOR_USAGE"
	ReasonLocationInconsistency = "LOCATION_INCONSISTENCY"

	ReasonUnknownDevice       = "UNKNOWN_DEVICE"
	ReasonLowDeviceTrust      = "LOW_DEVICE_TRUST"
	ReasonMultipleUsersDevice = "MULTIPLE_USERS_DEVICE"
	ReasonInsecureBrowser     = "INSECURE_BROWSER"

	ReasonTimePatternAnomaly     = "TIME_PATTERN_ANOMALY"
	ReasonAmountPatternAnomaly   = "AMOUNT_PATTERN_ANOMALY"
	ReasonMerchantPatternAnomaly = "MERCHANT_PATTERN_ANOMALY"
	ReasonSessionAnomaly         = "SESSION_BEHAVIOR_ANOMALY"

	ReasonHighValueTransaction  = "HIGH_VALUE_TRANSACTION"
	ReasonRoundNumberAmount     = "ROUND_NUMBER_AMOUNT"
	ReasonHighRiskPaymentMethod = "HIGH_RISK_PAYMENT_METHOD"
	ReasonFrequencyAnomaly      = "TRANSACTION_FREQUENCY_ANOMALY"

	ReasonAnalysisFailed = "ANALYSIS_FAILED"
)

// Reason is a typed, weighted explanation for a sub-score increase.
// Reasons are pure value objects, append-only within one evaluation.
type Reason struct {
	Code        string        `json:"code"`
	Description string        `json:"description"`
	Weight      float64       `json:"weight"` // 0.0 - 1.0
	Category    FraudCategory `json:"category"`
}

// NewReason constructs a reason, clamping the weight into [0,1].
func NewReason(code, description string, weight float64, category FraudCategory) Reason {
	if weight < 0 {
		weight = 0
	}
	if weight > 1 {
		weight = 1
	}
	return Reason{
		Code:        code,
		Description: description,
		Weight:      weight,
		Category:    category,
	}
}
