package fraud

import "fmt"

// RiskLevel is the ordinal classification of a numeric risk score.
// The integer values define the ordering used by the monotonicity invariant.
type RiskLevel int

const (
	RiskVeryLow RiskLevel = iota
	RiskLow
	RiskMedium
	RiskHigh
	RiskVeryHigh
)

// Classification thresholds, checked from highest to lowest.
const (
	ThresholdVeryHigh = 80
	ThresholdHigh     = 60
	ThresholdMedium   = 40
	ThresholdLow      = 20
)

// ClassifyRisk maps an overall score to a risk level. It is pure and
// monotonic: a higher score never yields a lower level.
func ClassifyRisk(score int) RiskLevel {
	switch {
	case score >= ThresholdVeryHigh:
		return RiskVeryHigh
	case score >= ThresholdHigh:
		return RiskHigh
	case score >= ThresholdMedium:
		return RiskMedium
	case score >= ThresholdLow:
		return RiskLow
	default:
		return RiskVeryLow
	}
}

func (l RiskLevel) String() string {
	switch l {
	case RiskVeryLow:
		return "VERY_LOW"
	case RiskLow:
		return "LOW"
	case RiskMedium:
		return "MEDIUM"
	case RiskHigh:
		return "HIGH"
	case RiskVeryHigh:
		return "VERY_HIGH"
	default:
		return fmt.Sprintf("RiskLevel(%d)", int(l))
	}
}

// MarshalJSON renders the level as its string name.
func (l RiskLevel) MarshalJSON() ([]byte, error) {
	return []byte(`"` + l.String() + `"`), nil
}

// UnmarshalJSON parses the string name back into a level.
func (l *RiskLevel) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"VERY_LOW"`:
		*l = RiskVeryLow
	case `"LOW"`:
		*l = RiskLow
	case `"MEDIUM"`:
		*l = RiskMedium
	case `"HIGH"`:
		*l = RiskHigh
	case `"VERY_HIGH"`:
		*l = RiskVeryHigh
	default:
		return fmt.Errorf("unknown risk level: %s", data)
	}
	return nil
}
