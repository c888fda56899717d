package fraud

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/payshield/risk-engine/internal/domain/fraud"
)

func TestLocationAnalyzer(t *testing.T) {
	txn := testTransaction()
	home := usHome()
	london := fraud.GeoLocation{
		Country: "GB", City: "London", Latitude: 51.5074, Longitude: -0.1278,
	}

	tests := []struct {
		name        string
		current     fraud.GeoLocation
		history     []fraud.LocationRecord
		highRisk    bool
		wantScore   int
		wantReasons []string
	}{
		{
			name:        "consistent home location",
			current:     home,
			history:     usHistory(txn.Timestamp),
			wantScore:   0,
			wantReasons: nil,
		},
		{
			name:    "impossible travel from new york to london in 30 minutes",
			current: london,
			history: []fraud.LocationRecord{
				{Location: home, Timestamp: txn.Timestamp.Add(-30 * time.Minute)},
				{Location: london, Timestamp: txn.Timestamp.Add(-24 * time.Hour)},
			},
			wantScore:   40,
			wantReasons: []string{fraud.ReasonImpossibleTravel},
		},
		{
			name:    "same-minute jump counts as impossible travel",
			current: london,
			history: []fraud.LocationRecord{
				{Location: home, Timestamp: txn.Timestamp},
				{Location: london, Timestamp: txn.Timestamp.Add(-24 * time.Hour)},
			},
			wantScore:   40,
			wantReasons: []string{fraud.ReasonImpossibleTravel},
		},
		{
			name:        "high risk country",
			current:     home,
			history:     usHistory(txn.Timestamp),
			highRisk:    true,
			wantScore:   25,
			wantReasons: []string{fraud.ReasonHighRiskCountry},
		},
		{
			name: "vpn detected",
			current: fraud.GeoLocation{
				Country: "US", City: "New York",
				Latitude: home.Latitude, Longitude: home.Longitude, IsVPN: true,
			},
			history:     usHistory(txn.Timestamp),
			wantScore:   15,
			wantReasons: []string{fraud.ReasonVPNTorUsage},
		},
		{
			name:    "inconsistent location history",
			current: london,
			history: []fraud.LocationRecord{
				// Slow enough travel from the most recent entry.
				{Location: london, Timestamp: txn.Timestamp.Add(-3 * time.Hour)},
				{Location: home, Timestamp: txn.Timestamp.Add(-24 * time.Hour)},
				{Location: home, Timestamp: txn.Timestamp.Add(-48 * time.Hour)},
				{Location: home, Timestamp: txn.Timestamp.Add(-72 * time.Hour)},
			},
			wantScore:   20,
			wantReasons: []string{fraud.ReasonLocationInconsistency},
		},
		{
			name:        "empty history stays neutral",
			current:     london,
			history:     []fraud.LocationRecord{},
			wantScore:   0,
			wantReasons: nil,
		},
		{
			name:    "all location rules fire",
			current: fraud.GeoLocation{Country: "XX", Latitude: 51.5, Longitude: -0.12, IsTor: true},
			history: []fraud.LocationRecord{
				{Location: home, Timestamp: txn.Timestamp.Add(-30 * time.Minute)},
				{Location: home, Timestamp: txn.Timestamp.Add(-24 * time.Hour)},
			},
			highRisk:  true,
			wantScore: 100,
			wantReasons: []string{
				fraud.ReasonImpossibleTravel,
				fraud.ReasonHighRiskCountry,
				fraud.ReasonVPNTorUsage,
				fraud.ReasonLocationInconsistency,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			location := new(mockLocationService)
			current := tt.current
			location.On("ResolveLocation", mock.Anything, txn.IPAddress).Return(&current, nil)
			location.On("GetLocationHistory", mock.Anything, txn.UserID).Return(tt.history, nil)
			location.On("IsHighRiskCountry", mock.Anything, tt.current.Country).Return(tt.highRisk, nil)

			result := newLocationAnalyzer(location, DefaultConfig(), testLogger()).Analyze(context.Background(), txn)

			assert.Equal(t, tt.wantScore, result.Score)
			assert.False(t, result.Fallback)

			codes := make([]string, 0, len(result.Reasons))
			for _, r := range result.Reasons {
				codes = append(codes, r.Code)
				assert.Equal(t, fraud.CategoryLocation, r.Category)
			}
			assert.Equal(t, tt.wantReasons, append([]string(nil), codes...))
		})
	}
}

func TestLocationAnalyzer_ResolutionFailure(t *testing.T) {
	txn := testTransaction()

	location := new(mockLocationService)
	location.On("ResolveLocation", mock.Anything, txn.IPAddress).Return(nil, errors.New("geo service timeout"))

	result := newLocationAnalyzer(location, DefaultConfig(), testLogger()).Analyze(context.Background(), txn)

	assert.Equal(t, FallbackScoreLocation, result.Score)
	assert.True(t, result.Fallback)
	assert.Empty(t, result.Reasons)
}

func TestLocationConsistency(t *testing.T) {
	home := usHome()

	assert.Equal(t, NeutralLocationConsistency, locationConsistency(nil, "US"))

	history := []fraud.LocationRecord{
		{Location: home},
		{Location: home},
		{Location: fraud.GeoLocation{Country: "GB"}},
		{Location: fraud.GeoLocation{Country: "FR"}},
	}
	assert.InDelta(t, 0.5, locationConsistency(history, "US"), 1e-9)
	assert.InDelta(t, 0.25, locationConsistency(history, "GB"), 1e-9)
	assert.InDelta(t, 0.0, locationConsistency(history, "DE"), 1e-9)
}
