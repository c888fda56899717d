package collaborator

import (
	"context"
	"errors"
	"fmt"

	"github.com/payshield/risk-engine/internal/domain/fraud"
)

// Recorder feeds completed evaluations back into the collaborator stores so
// that the next evaluation for the same user sees the transaction as
// history. Any store may be nil and is skipped.
type Recorder struct {
	velocity *RedisVelocityStore
	geo      *StaticGeoResolver
	devices  *DeviceRegistry
	behavior *BehaviorProfileStore
}

func NewRecorder(
	velocity *RedisVelocityStore,
	geo *StaticGeoResolver,
	devices *DeviceRegistry,
	behavior *BehaviorProfileStore,
) *Recorder {
	return &Recorder{
		velocity: velocity,
		geo:      geo,
		devices:  devices,
		behavior: behavior,
	}
}

// RecordEvaluation folds one scored, non-blocked transaction into every
// store. A failing store does not stop the others; the joined error reports
// everything that went wrong.
func (r *Recorder) RecordEvaluation(ctx context.Context, txn fraud.TransactionContext) error {
	var errs []error

	if r.velocity != nil {
		if err := r.velocity.RecordTransaction(ctx, txn.UserID, txn.ID, txn.Amount); err != nil {
			errs = append(errs, fmt.Errorf("velocity store: %w", err))
		}
	}

	if r.geo != nil {
		location, err := r.geo.ResolveLocation(ctx, txn.IPAddress)
		if err != nil {
			errs = append(errs, fmt.Errorf("resolve location: %w", err))
		} else {
			r.geo.RecordLocation(txn.UserID, fraud.LocationRecord{
				Location:  *location,
				Timestamp: txn.Timestamp,
			})
		}
	}

	if r.devices != nil {
		r.devices.Observe(txn.UserID, fraud.DeviceAttributes{UserAgent: txn.UserAgent})
	}

	if r.behavior != nil {
		r.behavior.ObserveTransaction(txn.UserID, txn)
	}

	return errors.Join(errs...)
}
