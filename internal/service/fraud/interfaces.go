package fraud

import (
	"context"

	"github.com/google/uuid"

	"github.com/payshield/risk-engine/internal/domain/fraud"
)

// Service is the engine's caller-facing interface. Evaluate is a total
// function: it never returns an error except for caller cancellation, and it
// always returns within the configured timeout budget.
type Service interface {
	// Evaluate scores one transaction. The returned error is non-nil only
	// when ctx is cancelled; every other failure mode is absorbed into the
	// result (analyzer fallbacks or the failsafe result).
	Evaluate(ctx context.Context, txn fraud.TransactionContext) (*fraud.DetectionResult, error)
	// ReportFeedback records ground truth for a past evaluation. Best-effort;
	// failures are logged, never surfaced.
	ReportFeedback(ctx context.Context, transactionID uuid.UUID, isFraud bool)
}

// VelocityStore supplies per-user rolling transaction counters.
type VelocityStore interface {
	// GetVelocityData returns the user's rolling counters.
	GetVelocityData(ctx context.Context, userID uuid.UUID) (*fraud.VelocityData, error)
	// GetVelocityLimits returns the configured velocity ceilings.
	GetVelocityLimits(ctx context.Context) (*fraud.VelocityLimits, error)
}

// LocationService resolves IPs to locations and answers country risk queries.
type LocationService interface {
	// ResolveLocation geolocates an IP address.
	ResolveLocation(ctx context.Context, ipAddress string) (*fraud.GeoLocation, error)
	// GetLocationHistory returns the user's past locations, most recent first.
	GetLocationHistory(ctx context.Context, userID uuid.UUID) ([]fraud.LocationRecord, error)
	// IsHighRiskCountry checks a country code against the configured list.
	IsHighRiskCountry(ctx context.Context, countryCode string) (bool, error)
}

// DeviceService owns device fingerprints and their history.
type DeviceService interface {
	// GenerateFingerprint derives a deterministic fingerprint from device
	// attributes.
	GenerateFingerprint(ctx context.Context, attrs fraud.DeviceAttributes) (*fraud.DeviceFingerprint, error)
	// GetDeviceHistory returns the devices previously seen for a user.
	GetDeviceHistory(ctx context.Context, userID uuid.UUID) ([]fraud.DeviceFingerprint, error)
}

// BehaviorStore supplies user behavior profiles.
type BehaviorStore interface {
	// GetBehaviorProfile returns the user's transaction habits.
	GetBehaviorProfile(ctx context.Context, userID uuid.UUID) (*fraud.UserBehaviorProfile, error)
}

// AuditSink receives security events. Submit must never block the engine's
// return path; delivery guarantees are the sink's own concern.
type AuditSink interface {
	Submit(event fraud.SecurityEvent)
}

// SessionCheck is the reserved extension point for session-behavior signals.
// The default implementation always reports not anomalous.
type SessionCheck interface {
	IsAnomalous(ctx context.Context, txn fraud.TransactionContext) bool
}

// FrequencyCheck is the reserved extension point for transaction-frequency
// signals. The default implementation always reports not anomalous.
type FrequencyCheck interface {
	IsAnomalous(ctx context.Context, txn fraud.TransactionContext) bool
}

// noopCheck satisfies both extension points with a permanent "not anomalous".
type noopCheck struct{}

func (noopCheck) IsAnomalous(context.Context, fraud.TransactionContext) bool { return false }
