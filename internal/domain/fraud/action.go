package fraud

// SecurityAction is a recommended response to an assessed risk. The engine
// only recommends; executing blocks, locks, or alerts is the caller's job.
type SecurityAction string

const (
	ActionBlockTransaction      SecurityAction = "BLOCK_TRANSACTION"
	ActionRequireAdditionalAuth SecurityAction = "REQUIRE_ADDITIONAL_AUTH"
	ActionManualReview          SecurityAction = "MANUAL_REVIEW_TRIGGERED"
	ActionAlertSent             SecurityAction = "ALERT_SENT"
	ActionEscalateToAdmin       SecurityAction = "ESCALATE_TO_ADMIN"
	ActionTemporaryAccountLock  SecurityAction = "TEMPORARY_ACCOUNT_LOCK"
	ActionDeviceBlocked         SecurityAction = "DEVICE_BLOCKED"
	ActionIPBlocked             SecurityAction = "IP_BLOCKED"
)

// ContainsAction reports whether action is present in the set.
func ContainsAction(actions []SecurityAction, action SecurityAction) bool {
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}
