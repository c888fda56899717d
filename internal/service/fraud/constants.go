package fraud

import "time"

// Rule point contributions. Each analyzer adds points per triggered rule and
// clamps its sub-score to [0,100]. The reason weight attached to a rule is
// its point value divided by 100.
const (
	PointsVelocityTransactionsHour = 30
	PointsVelocityTransactionsDay  = 25
	PointsVelocityAmountHour       = 35
	PointsVelocitySpike            = 20

	PointsImpossibleTravel      = 40
	PointsHighRiskCountry       = 25
	PointsVPNTorUsage           = 15
	PointsLocationInconsistency = 20

	PointsUnknownDevice       = 20
	PointsLowDeviceTrust      = 15
	PointsMultipleUsersDevice = 15
	PointsInsecureBrowser     = 10

	PointsTimePatternAnomaly     = 10
	PointsAmountPatternAnomaly   = 20
	PointsMerchantPatternAnomaly = 10
	PointsSessionAnomaly         = 10
	PointsFrequencyAnomaly       = 10

	PointsHighValueTransaction  = 15
	PointsRoundNumberAmount     = 5
	PointsHighRiskPaymentMethod = 15
)

// Conservative sub-scores returned when an analyzer's collaborator fails.
// The caller never sees the failure; it shows up only in diagnostics.
const (
	FallbackScoreVelocity      = 10
	FallbackScoreLocation      = 5
	FallbackScoreDevice        = 5
	FallbackScoreBehavioral    = 5
	FallbackScoreTransactional = 5
)

// Failsafe result values, used only when orchestration itself fails.
const (
	FailsafeRiskScore  = 50
	FailsafeConfidence = 0.5
)

// DefaultAnalyzerTimeout bounds each analyzer's collaborator I/O.
const DefaultAnalyzerTimeout = 2 * time.Second

// analyzerJoinGrace extends the fan-in join past the analyzer timeout so
// analyzers that return promptly on context expiry are still collected.
const analyzerJoinGrace = 250 * time.Millisecond

// DefaultModelVersion is stamped on every result.
const DefaultModelVersion = "rule-engine-v1.2.0"

// Location heuristics defaults.
const (
	DefaultMaxTravelSpeedKmh      = 900.0
	DefaultMinLocationConsistency = 0.3
	// Consistency assumed when a user has no location history at all.
	NeutralLocationConsistency = 0.5
)

// Device heuristics defaults.
const (
	DefaultLowTrustThreshold = 50
	DefaultMaxDeviceUsers    = 3
)

// Transaction heuristics defaults.
const (
	DefaultHighValueThreshold = 10000.0
	DefaultSpikeMultiplier    = 5.0
	DefaultStdDevMultiplier   = 3.0
)
