package decision

import (
	"context"
	"log/slog"

	"github.com/payshield/risk-engine/internal/domain/errors"
	"github.com/payshield/risk-engine/internal/domain/fraud"
)

// State is one phase of the per-transaction decision flow.
type State string

const (
	StateInput      State = "input"
	StateAnalyzing  State = "analyzing"
	StateReview     State = "review"
	StateProcessing State = "processing"
	StateComplete   State = "complete"
	StateAborted    State = "aborted"
)

// Outcome records how one transaction moved through the flow.
type Outcome struct {
	Path     []State
	Result   *fraud.DetectionResult
	Reviewed bool
}

// Final returns the terminal state of the flow.
func (o *Outcome) Final() State {
	if len(o.Path) == 0 {
		return StateInput
	}
	return o.Path[len(o.Path)-1]
}

// Flow drives a transaction through risk scoring and into either manual
// review or straight-through processing. A blocked transaction aborts the
// flow with an error before any downstream step runs.
type Flow struct {
	engine    Engine
	processor Processor
	reviewer  Reviewer
	logger    *slog.Logger
}

// NewFlow creates a decision flow. Processor and reviewer may be nil when
// the caller only wants the scored outcome.
func NewFlow(engine Engine, processor Processor, reviewer Reviewer, logger *slog.Logger) *Flow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{engine: engine, processor: processor, reviewer: reviewer, logger: logger}
}

// Run evaluates and routes one transaction. The returned outcome always
// carries the path walked so far, including on error.
func (f *Flow) Run(ctx context.Context, txn fraud.TransactionContext) (*Outcome, error) {
	outcome := &Outcome{Path: []State{StateInput, StateAnalyzing}}

	result, err := f.engine.Evaluate(ctx, txn)
	if err != nil {
		// Only cancellation reaches here; the engine absorbs its own failures.
		return outcome, err
	}
	outcome.Result = result

	if result.IsBlocked() {
		outcome.Path = append(outcome.Path, StateAborted)
		f.logger.Warn("transaction blocked",
			"transaction_id", txn.ID, "risk_score", result.RiskScore, "risk_level", result.RiskLevel)
		return outcome, errors.NewValidationError("TRANSACTION_BLOCKED",
			"transaction blocked by risk assessment")
	}

	if result.RequiresReview() {
		outcome.Path = append(outcome.Path, StateReview)
		outcome.Reviewed = true
		if f.reviewer != nil {
			if err := f.reviewer.RequestReview(ctx, txn, result); err != nil {
				return outcome, errors.NewInternalError("manual review request failed").WithCause(err)
			}
		}
	} else {
		outcome.Path = append(outcome.Path, StateProcessing)
		if f.processor != nil {
			if err := f.processor.Process(ctx, txn, result); err != nil {
				return outcome, errors.NewInternalError("transaction processing failed").WithCause(err)
			}
		}
	}

	outcome.Path = append(outcome.Path, StateComplete)
	return outcome, nil
}
