package decision

import (
	"context"

	"github.com/payshield/risk-engine/internal/domain/fraud"
)

// Engine is the risk-scoring surface the flow consumes.
type Engine interface {
	Evaluate(ctx context.Context, txn fraud.TransactionContext) (*fraud.DetectionResult, error)
}

// Processor executes the downstream payment step for a cleared transaction.
type Processor interface {
	Process(ctx context.Context, txn fraud.TransactionContext, result *fraud.DetectionResult) error
}

// Reviewer routes a transaction into the manual review queue.
type Reviewer interface {
	RequestReview(ctx context.Context, txn fraud.TransactionContext, result *fraud.DetectionResult) error
}
