package fraud

import (
	"time"

	"github.com/google/uuid"
)

// SecurityEventType labels audit records emitted by the engine.
type SecurityEventType string

const (
	EventTransactionAnalyzed SecurityEventType = "TRANSACTION_ANALYZED"
	EventAnalysisFailed      SecurityEventType = "ANALYSIS_FAILED"
	EventEscalation          SecurityEventType = "ESCALATION"
	EventFraudFeedback       SecurityEventType = "FRAUD_FEEDBACK"
)

// SecurityEventSeverity mirrors the severity ladder used across services.
type SecurityEventSeverity string

const (
	SeverityInfo     SecurityEventSeverity = "info"
	SeverityLow      SecurityEventSeverity = "low"
	SeverityMedium   SecurityEventSeverity = "medium"
	SeverityHigh     SecurityEventSeverity = "high"
	SeverityCritical SecurityEventSeverity = "critical"
)

// SecurityEvent is an immutable audit record. Resolution is tracked by a
// separate collaborator, so Resolved is always created false here.
type SecurityEvent struct {
	ID            uuid.UUID             `json:"id"`
	Timestamp     time.Time             `json:"timestamp"`
	EventType     SecurityEventType     `json:"event_type"`
	Severity      SecurityEventSeverity `json:"severity"`
	TransactionID uuid.UUID             `json:"transaction_id"`
	UserID        uuid.UUID             `json:"user_id"`
	Description   string                `json:"description"`
	Metadata      map[string]string     `json:"metadata,omitempty"`
	Resolved      bool                  `json:"resolved"`
}

// NewSecurityEvent constructs an unresolved event stamped with a fresh ID.
func NewSecurityEvent(eventType SecurityEventType, severity SecurityEventSeverity, txID, userID uuid.UUID, description string, metadata map[string]string) SecurityEvent {
	return SecurityEvent{
		ID:            uuid.New(),
		Timestamp:     time.Now().UTC(),
		EventType:     eventType,
		Severity:      severity,
		TransactionID: txID,
		UserID:        userID,
		Description:   description,
		Metadata:      metadata,
		Resolved:      false,
	}
}

// SeverityForLevel maps a risk level to the audit severity of its
// analysis event.
func SeverityForLevel(level RiskLevel) SecurityEventSeverity {
	switch level {
	case RiskVeryHigh:
		return SeverityCritical
	case RiskHigh:
		return SeverityHigh
	case RiskMedium:
		return SeverityMedium
	case RiskLow:
		return SeverityLow
	default:
		return SeverityInfo
	}
}
