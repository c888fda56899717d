package fraud

import (
	"fmt"
	"math"
	"time"
)

// Weights are the fixed aggregation weights applied to the five sub-scores.
// They are configurable only as a matched set that must sum to exactly 1.0.
type Weights struct {
	Velocity      float64 `koanf:"velocity" json:"velocity"`
	Location      float64 `koanf:"location" json:"location"`
	Device        float64 `koanf:"device" json:"device"`
	Behavioral    float64 `koanf:"behavioral" json:"behavioral"`
	Transactional float64 `koanf:"transactional" json:"transactional"`
}

// weightSumTolerance absorbs float representation noise only; a genuinely
// misconfigured set still fails validation.
const weightSumTolerance = 1e-9

// Validate rejects weight sets that do not sum to 1.0 or contain
// out-of-range entries.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"velocity":      w.Velocity,
		"location":      w.Location,
		"device":        w.Device,
		"behavioral":    w.Behavioral,
		"transactional": w.Transactional,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("weight %s out of range [0,1]: %v", name, v)
		}
	}

	sum := w.Velocity + w.Location + w.Device + w.Behavioral + w.Transactional
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("analyzer weights must sum to 1.0, got %v", sum)
	}
	return nil
}

// DefaultWeights returns the production weight set.
func DefaultWeights() Weights {
	return Weights{
		Velocity:      0.25,
		Location:      0.20,
		Device:        0.15,
		Behavioral:    0.20,
		Transactional: 0.20,
	}
}

// Config carries every tunable of the engine. It is validated once at
// construction; the engine holds it immutably afterwards.
type Config struct {
	Weights         Weights       `koanf:"weights"`
	AnalyzerTimeout time.Duration `koanf:"analyzer_timeout"`
	ModelVersion    string        `koanf:"model_version"`

	// Location heuristics.
	MaxTravelSpeedKmh      float64 `koanf:"max_travel_speed_kmh"`
	MinLocationConsistency float64 `koanf:"min_location_consistency"`

	// Device heuristics.
	LowTrustThreshold int `koanf:"low_trust_threshold"`
	MaxDeviceUsers    int `koanf:"max_device_users"`

	// Transaction heuristics. HighValueThreshold is in USD; amounts in other
	// currencies are normalized through CurrencyRates before comparison.
	HighValueThreshold float64            `koanf:"high_value_threshold"`
	SpikeMultiplier    float64            `koanf:"spike_multiplier"`
	StdDevMultiplier   float64            `koanf:"std_dev_multiplier"`
	CurrencyRates      map[string]float64 `koanf:"currency_rates"`
}

// DefaultConfig returns the engine defaults used when no configuration
// overrides are supplied.
func DefaultConfig() Config {
	return Config{
		Weights:                DefaultWeights(),
		AnalyzerTimeout:        DefaultAnalyzerTimeout,
		ModelVersion:           DefaultModelVersion,
		MaxTravelSpeedKmh:      DefaultMaxTravelSpeedKmh,
		MinLocationConsistency: DefaultMinLocationConsistency,
		LowTrustThreshold:      DefaultLowTrustThreshold,
		MaxDeviceUsers:         DefaultMaxDeviceUsers,
		HighValueThreshold:     DefaultHighValueThreshold,
		SpikeMultiplier:        DefaultSpikeMultiplier,
		StdDevMultiplier:       DefaultStdDevMultiplier,
		CurrencyRates: map[string]float64{
			"USD": 1.0,
			"EUR": 1.09,
			"GBP": 1.27,
			"JPY": 0.0067,
			"CAD": 0.73,
		},
	}
}

// Validate fails fast on any inconsistent setting. A weight-sum violation is
// a hard error, never clamped or renormalized.
func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.AnalyzerTimeout <= 0 {
		return fmt.Errorf("analyzer timeout must be positive, got %v", c.AnalyzerTimeout)
	}
	if c.MaxTravelSpeedKmh <= 0 {
		return fmt.Errorf("max travel speed must be positive, got %v", c.MaxTravelSpeedKmh)
	}
	if c.MinLocationConsistency < 0 || c.MinLocationConsistency > 1 {
		return fmt.Errorf("min location consistency out of range [0,1]: %v", c.MinLocationConsistency)
	}
	if c.LowTrustThreshold < 0 || c.LowTrustThreshold > 100 {
		return fmt.Errorf("low trust threshold out of range [0,100]: %d", c.LowTrustThreshold)
	}
	if c.MaxDeviceUsers < 1 {
		return fmt.Errorf("max device users must be at least 1, got %d", c.MaxDeviceUsers)
	}
	if c.HighValueThreshold <= 0 {
		return fmt.Errorf("high value threshold must be positive, got %v", c.HighValueThreshold)
	}
	if c.SpikeMultiplier <= 1 {
		return fmt.Errorf("spike multiplier must exceed 1, got %v", c.SpikeMultiplier)
	}
	if c.StdDevMultiplier <= 0 {
		return fmt.Errorf("std dev multiplier must be positive, got %v", c.StdDevMultiplier)
	}
	if c.ModelVersion == "" {
		return fmt.Errorf("model version must not be empty")
	}
	return nil
}

// normalizedRate returns the USD conversion rate for a currency, defaulting
// to 1.0 when the currency is unknown.
func (c Config) normalizedRate(currency string) float64 {
	if rate, ok := c.CurrencyRates[currency]; ok && rate > 0 {
		return rate
	}
	return 1.0
}
