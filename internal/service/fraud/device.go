package fraud

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/payshield/risk-engine/internal/domain/fraud"
)

var botUserAgentPattern = regexp.MustCompile(`(?i)(bot|crawler|spider|scraper)`)

// deviceAnalyzer scores device-trust signals from the generated fingerprint
// and the user's device history.
type deviceAnalyzer struct {
	device DeviceService
	cfg    Config
	logger *slog.Logger
}

func newDeviceAnalyzer(device DeviceService, cfg Config, logger *slog.Logger) *deviceAnalyzer {
	return &deviceAnalyzer{device: device, cfg: cfg, logger: logger}
}

func (a *deviceAnalyzer) Name() string { return "device" }

func (a *deviceAnalyzer) Analyze(ctx context.Context, txn fraud.TransactionContext) analyzerResult {
	current, err := a.device.GenerateFingerprint(ctx, fraud.DeviceAttributes{
		UserAgent: txn.UserAgent,
	})
	if err != nil {
		a.logger.Debug("device fingerprint generation failed, using fallback score",
			"user_id", txn.UserID, "error", err)
		return analyzerResult{Score: FallbackScoreDevice, Fallback: true}
	}

	// A fingerprint precomputed client-side takes precedence over the
	// server-derived one.
	fingerprintID := current.ID
	if txn.DeviceFingerprintID != "" {
		fingerprintID = txn.DeviceFingerprintID
	}

	history, err := a.device.GetDeviceHistory(ctx, txn.UserID)
	if err != nil {
		a.logger.Debug("device history unavailable, using fallback score",
			"user_id", txn.UserID, "error", err)
		return analyzerResult{Score: FallbackScoreDevice, Fallback: true}
	}

	var score int
	var reasons []fraud.Reason

	var matched *fraud.DeviceFingerprint
	for i := range history {
		if history[i].ID == fingerprintID {
			matched = &history[i]
			break
		}
	}

	if matched == nil {
		score += PointsUnknownDevice
		reasons = append(reasons, fraud.NewReason(
			fraud.ReasonUnknownDevice,
			"device fingerprint has not been seen for this user before",
			ruleWeight(PointsUnknownDevice),
			fraud.CategoryDevice,
		))
	} else if matched.TrustScore < a.cfg.LowTrustThreshold {
		score += PointsLowDeviceTrust
		reasons = append(reasons, fraud.NewReason(
			fraud.ReasonLowDeviceTrust,
			fmt.Sprintf("device trust score %d is below the threshold of %d",
				matched.TrustScore, a.cfg.LowTrustThreshold),
			ruleWeight(PointsLowDeviceTrust),
			fraud.CategoryDevice,
		))
	}

	// The device registry tracks associated users across all accounts, so
	// the sharing check applies to unrecognized devices too.
	associated := current.AssociatedUsers
	if matched != nil {
		associated = matched.AssociatedUsers
	}
	if len(associated) > a.cfg.MaxDeviceUsers {
		score += PointsMultipleUsersDevice
		reasons = append(reasons, fraud.NewReason(
			fraud.ReasonMultipleUsersDevice,
			fmt.Sprintf("device is shared by %d users", len(associated)),
			ruleWeight(PointsMultipleUsersDevice),
			fraud.CategoryDevice,
		))
	}

	if botUserAgentPattern.MatchString(txn.UserAgent) {
		score += PointsInsecureBrowser
		reasons = append(reasons, fraud.NewReason(
			fraud.ReasonInsecureBrowser,
			"user agent matches an automated client pattern",
			ruleWeight(PointsInsecureBrowser),
			fraud.CategoryDevice,
		))
	}

	return analyzerResult{Score: clampScore(score), Reasons: reasons}
}
