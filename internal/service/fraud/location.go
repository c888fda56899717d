package fraud

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/payshield/risk-engine/internal/domain/fraud"
)

// locationAnalyzer scores geolocation signals: impossible travel, high-risk
// countries, anonymizing networks, and location inconsistency.
type locationAnalyzer struct {
	location LocationService
	cfg      Config
	logger   *slog.Logger
}

func newLocationAnalyzer(location LocationService, cfg Config, logger *slog.Logger) *locationAnalyzer {
	return &locationAnalyzer{location: location, cfg: cfg, logger: logger}
}

func (a *locationAnalyzer) Name() string { return "location" }

func (a *locationAnalyzer) Analyze(ctx context.Context, txn fraud.TransactionContext) analyzerResult {
	current, err := a.location.ResolveLocation(ctx, txn.IPAddress)
	if err != nil {
		a.logger.Debug("location resolution failed, using fallback score",
			"user_id", txn.UserID, "error", err)
		return analyzerResult{Score: FallbackScoreLocation, Fallback: true}
	}

	history, err := a.location.GetLocationHistory(ctx, txn.UserID)
	if err != nil {
		a.logger.Debug("location history unavailable, using fallback score",
			"user_id", txn.UserID, "error", err)
		return analyzerResult{Score: FallbackScoreLocation, Fallback: true}
	}

	highRisk, err := a.location.IsHighRiskCountry(ctx, current.Country)
	if err != nil {
		a.logger.Debug("high-risk country lookup failed, using fallback score",
			"user_id", txn.UserID, "error", err)
		return analyzerResult{Score: FallbackScoreLocation, Fallback: true}
	}

	var score int
	var reasons []fraud.Reason

	if len(history) > 0 {
		previous := history[0]
		distanceKm := previous.Location.DistanceKm(*current)
		elapsedMin := txn.Timestamp.Sub(previous.Timestamp).Minutes()

		// A same-minute jump over any real distance is impossible travel too.
		impossible := false
		if elapsedMin > 0 {
			speedKmh := distanceKm / elapsedMin * 60
			impossible = speedKmh > a.cfg.MaxTravelSpeedKmh
		} else {
			impossible = distanceKm > 1
		}

		if impossible {
			score += PointsImpossibleTravel
			reasons = append(reasons, fraud.NewReason(
				fraud.ReasonImpossibleTravel,
				fmt.Sprintf("%.0f km from previous location in %.1f minutes implies unachievable travel speed",
					distanceKm, elapsedMin),
				ruleWeight(PointsImpossibleTravel),
				fraud.CategoryLocation,
			))
		}
	}

	if highRisk {
		score += PointsHighRiskCountry
		reasons = append(reasons, fraud.NewReason(
			fraud.ReasonHighRiskCountry,
			fmt.Sprintf("transaction originates from high-risk country %s", current.Country),
			ruleWeight(PointsHighRiskCountry),
			fraud.CategoryLocation,
		))
	}

	if current.IsVPN || current.IsTor {
		score += PointsVPNTorUsage
		reasons = append(reasons, fraud.NewReason(
			fraud.ReasonVPNTorUsage,
			"transaction routed through a VPN or Tor exit node",
			ruleWeight(PointsVPNTorUsage),
			fraud.CategoryLocation,
		))
	}

	if consistency := locationConsistency(history, current.Country); consistency < a.cfg.MinLocationConsistency {
		score += PointsLocationInconsistency
		reasons = append(reasons, fraud.NewReason(
			fraud.ReasonLocationInconsistency,
			fmt.Sprintf("only %.0f%% of recent activity matches country %s",
				consistency*100, current.Country),
			ruleWeight(PointsLocationInconsistency),
			fraud.CategoryLocation,
		))
	}

	return analyzerResult{Score: clampScore(score), Reasons: reasons}
}

// locationConsistency is the share of history entries matching the current
// country. With no history it defaults to a neutral value so the
// inconsistency rule cannot fire on a brand-new user.
func locationConsistency(history []fraud.LocationRecord, country string) float64 {
	if len(history) == 0 {
		return NeutralLocationConsistency
	}

	matches := 0
	for _, record := range history {
		if record.Location.Country == country {
			matches++
		}
	}
	return float64(matches) / float64(len(history))
}
