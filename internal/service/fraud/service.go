package fraud

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/payshield/risk-engine/internal/domain/fraud"
	"github.com/payshield/risk-engine/internal/metrics"
)

// analyzerCount is the fixed number of signal analyzers. The fan-out order
// (velocity, location, device, behavioral, transactional) is part of the
// engine's contract: the overall reasons list preserves it.
const analyzerCount = 5

// service implements the Service interface.
type service struct {
	cfg       Config
	analyzers [analyzerCount]analyzer
	audit     AuditSink
	logger    *slog.Logger
	metrics   *metrics.Registry
	tracer    trace.Tracer
}

// Option customizes optional service behavior.
type Option func(*options)

type options struct {
	sessionCheck   SessionCheck
	frequencyCheck FrequencyCheck
	metrics        *metrics.Registry
}

// WithSessionCheck plugs in a session-behavior strategy.
func WithSessionCheck(check SessionCheck) Option {
	return func(o *options) { o.sessionCheck = check }
}

// WithFrequencyCheck plugs in a transaction-frequency strategy.
func WithFrequencyCheck(check FrequencyCheck) Option {
	return func(o *options) { o.frequencyCheck = check }
}

// WithMetrics attaches a metrics registry.
func WithMetrics(registry *metrics.Registry) Option {
	return func(o *options) { o.metrics = registry }
}

// NewService creates the risk engine. The configuration is validated here;
// an invalid weight set is a hard construction error.
func NewService(
	cfg Config,
	velocityStore VelocityStore,
	locationService LocationService,
	deviceService DeviceService,
	behaviorStore BehaviorStore,
	auditSink AuditSink,
	logger *slog.Logger,
	opts ...Option,
) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	o := options{
		sessionCheck:   noopCheck{},
		frequencyCheck: noopCheck{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &service{
		cfg: cfg,
		analyzers: [analyzerCount]analyzer{
			newVelocityAnalyzer(velocityStore, cfg, logger),
			newLocationAnalyzer(locationService, cfg, logger),
			newDeviceAnalyzer(deviceService, cfg, logger),
			newBehavioralAnalyzer(behaviorStore, o.sessionCheck, cfg, logger),
			newTransactionalAnalyzer(o.frequencyCheck, cfg, logger),
		},
		audit:   auditSink,
		logger:  logger,
		metrics: o.metrics,
		tracer:  otel.Tracer("risk-engine/fraud"),
	}, nil
}

// Evaluate scores one transaction. It never propagates an internal error:
// analyzer failures become their documented conservative scores, and an
// unexpected failure anywhere in the decision path becomes the failsafe
// result. Only caller cancellation is returned as an error.
func (s *service) Evaluate(ctx context.Context, txn fraud.TransactionContext) (result *fraud.DetectionResult, err error) {
	started := time.Now()

	ctx, span := s.tracer.Start(ctx, "fraud.Evaluate")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("evaluation failed unexpectedly, returning failsafe result",
				"transaction_id", txn.ID, "panic", r)
			s.metrics.RecordFailsafe(ctx)

			result = s.failsafeResult()
			err = nil
			s.submitFailureEvent(txn)
		}
	}()

	results := s.fanOut(ctx, txn)

	// Cancellation is a distinct outcome: no result, no scored audit event.
	if ctx.Err() != nil {
		s.logger.Info("evaluation cancelled", "transaction_id", txn.ID)
		return nil, ctx.Err()
	}

	var sub [analyzerCount]int
	var reasons []fraud.Reason
	for i, res := range results {
		sub[i] = clampScore(res.Score)
		reasons = append(reasons, res.Reasons...)
		if res.Fallback {
			s.metrics.RecordAnalyzerFallback(ctx, s.analyzers[i].Name())
		}
	}
	if reasons == nil {
		reasons = []fraud.Reason{}
	}

	score := aggregateScore(s.cfg.Weights, sub)
	level := fraud.ClassifyRisk(score)

	result = &fraud.DetectionResult{
		RiskScore:          score,
		RiskLevel:          level,
		Reasons:            reasons,
		RecommendedActions: recommendActions(level, reasons),
		Confidence:         estimateConfidence(reasons),
		ModelVersion:       s.cfg.ModelVersion,
		ProcessedAt:        time.Now().UTC(),
	}

	s.metrics.RecordEvaluation(ctx, time.Since(started), score, level.String())
	s.submitAnalysisEvent(txn, result)

	return result, nil
}

// fanOut runs the five analyzers concurrently and joins on all of them. Each
// analyzer is independently fault-isolated: a panic inside one is converted
// into that analyzer's fallback score without affecting its siblings. The
// join itself carries a hard deadline so a collaborator that ignores its
// context degrades to the fallback score instead of stalling the evaluation.
func (s *service) fanOut(ctx context.Context, txn fraud.TransactionContext) [analyzerCount]analyzerResult {
	type indexedResult struct {
		idx int
		res analyzerResult
	}

	fallbacks := [analyzerCount]int{
		FallbackScoreVelocity,
		FallbackScoreLocation,
		FallbackScoreDevice,
		FallbackScoreBehavioral,
		FallbackScoreTransactional,
	}

	// Buffered to analyzerCount so a straggler's send never blocks after the
	// join has given up on it.
	out := make(chan indexedResult, analyzerCount)

	for i, a := range s.analyzers {
		go func(i int, a analyzer) {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Warn("analyzer panicked, using fallback score",
						"analyzer", a.Name(), "transaction_id", txn.ID, "panic", r)
					out <- indexedResult{idx: i, res: analyzerResult{Score: fallbacks[i], Fallback: true}}
				}
			}()

			actx, cancel := context.WithTimeout(ctx, s.cfg.AnalyzerTimeout)
			defer cancel()

			out <- indexedResult{idx: i, res: a.Analyze(actx, txn)}
		}(i, a)
	}

	var results [analyzerCount]analyzerResult
	var finished [analyzerCount]bool

	joinDeadline := time.NewTimer(s.cfg.AnalyzerTimeout + analyzerJoinGrace)
	defer joinDeadline.Stop()

	for received := 0; received < analyzerCount; received++ {
		select {
		case r := <-out:
			results[r.idx] = r.res
			finished[r.idx] = true
		case <-joinDeadline.C:
			for i := range results {
				if !finished[i] {
					s.logger.Warn("analyzer missed the join deadline, using fallback score",
						"analyzer", s.analyzers[i].Name(), "transaction_id", txn.ID)
					results[i] = analyzerResult{Score: fallbacks[i], Fallback: true}
				}
			}
			return results
		}
	}
	return results
}

// ReportFeedback records ground truth for a past evaluation through the
// audit sink. Best-effort; it never blocks or fails the caller.
func (s *service) ReportFeedback(ctx context.Context, transactionID uuid.UUID, isFraud bool) {
	s.metrics.RecordFeedback(ctx, isFraud)

	event := fraud.NewSecurityEvent(
		fraud.EventFraudFeedback,
		fraud.SeverityInfo,
		transactionID,
		uuid.Nil,
		"ground-truth feedback received",
		map[string]string{"is_fraud": strconv.FormatBool(isFraud)},
	)
	s.submit(event)

	s.logger.Info("fraud feedback recorded",
		"transaction_id", transactionID, "is_fraud", isFraud)
}

// failsafeResult is the fixed conservative result returned when the engine
// itself fails. It routes the transaction to manual review rather than
// blocking it or letting it through unexamined.
func (s *service) failsafeResult() *fraud.DetectionResult {
	return &fraud.DetectionResult{
		RiskScore: FailsafeRiskScore,
		RiskLevel: fraud.RiskMedium,
		Reasons: []fraud.Reason{
			fraud.NewReason(
				fraud.ReasonAnalysisFailed,
				"fraud analysis could not be completed",
				1.0,
				fraud.CategoryBehavioral,
			),
		},
		RecommendedActions: []fraud.SecurityAction{fraud.ActionManualReview},
		Confidence:         FailsafeConfidence,
		ModelVersion:       s.cfg.ModelVersion,
		ProcessedAt:        time.Now().UTC(),
	}
}

func (s *service) submitAnalysisEvent(txn fraud.TransactionContext, result *fraud.DetectionResult) {
	codes := make([]string, 0, len(result.Reasons))
	for _, reason := range result.Reasons {
		codes = append(codes, reason.Code)
	}

	event := fraud.NewSecurityEvent(
		fraud.EventTransactionAnalyzed,
		fraud.SeverityForLevel(result.RiskLevel),
		txn.ID,
		txn.UserID,
		fmt.Sprintf("transaction scored %d (%s)", result.RiskScore, result.RiskLevel),
		map[string]string{
			"risk_score":   strconv.Itoa(result.RiskScore),
			"risk_level":   result.RiskLevel.String(),
			"confidence":   strconv.FormatFloat(result.Confidence, 'f', 2, 64),
			"reason_codes": strings.Join(codes, ","),
		},
	)
	s.submit(event)

	if fraud.ContainsAction(result.RecommendedActions, fraud.ActionEscalateToAdmin) {
		escalation := fraud.NewSecurityEvent(
			fraud.EventEscalation,
			fraud.SeverityCritical,
			txn.ID,
			txn.UserID,
			"transaction escalated to administrators",
			map[string]string{"risk_score": strconv.Itoa(result.RiskScore)},
		)
		s.submit(escalation)
	}
}

func (s *service) submitFailureEvent(txn fraud.TransactionContext) {
	event := fraud.NewSecurityEvent(
		fraud.EventAnalysisFailed,
		fraud.SeverityHigh,
		txn.ID,
		txn.UserID,
		"fraud analysis failed; failsafe result returned",
		nil,
	)
	s.submit(event)
}

// submit hands an event to the audit sink. The sink is fire-and-forget; a
// nil sink simply drops events, which keeps the engine usable in tests.
func (s *service) submit(event fraud.SecurityEvent) {
	if s.audit == nil {
		return
	}
	s.audit.Submit(event)
}
