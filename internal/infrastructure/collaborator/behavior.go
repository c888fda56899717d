package collaborator

import (
	"context"
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/payshield/risk-engine/internal/domain/fraud"
)

// BehaviorProfileStore keeps per-user transaction habits in memory and
// updates them incrementally as transactions are observed.
type BehaviorProfileStore struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]*profileState
}

type profileState struct {
	profile fraud.UserBehaviorProfile

	count      int64
	sum        decimal.Decimal
	sumSquares decimal.Decimal
	hourCounts [24]int64
	categories map[string]int64
}

func NewBehaviorProfileStore() *BehaviorProfileStore {
	return &BehaviorProfileStore{profiles: make(map[uuid.UUID]*profileState)}
}

func (s *BehaviorProfileStore) GetBehaviorProfile(_ context.Context, userID uuid.UUID) (*fraud.UserBehaviorProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.profiles[userID]
	if !ok {
		// A brand-new user has an empty profile, which triggers no
		// behavioral rules.
		return &fraud.UserBehaviorProfile{}, nil
	}

	profile := state.profile
	profile.TypicalTransactionHours = append([]int(nil), state.profile.TypicalTransactionHours...)
	profile.FrequentMerchantCategories = append([]string(nil), state.profile.FrequentMerchantCategories...)
	return &profile, nil
}

// ObserveTransaction folds one transaction into the user's running profile.
func (s *BehaviorProfileStore) ObserveTransaction(userID uuid.UUID, txn fraud.TransactionContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.profiles[userID]
	if !ok {
		state = &profileState{categories: make(map[string]int64)}
		s.profiles[userID] = state
	}

	amount := txn.Amount.Amount()
	state.count++
	state.sum = state.sum.Add(amount)
	state.sumSquares = state.sumSquares.Add(amount.Mul(amount))
	state.hourCounts[txn.Timestamp.Hour()]++
	if txn.MerchantCategory != "" {
		state.categories[txn.MerchantCategory]++
	}

	state.recompute()
}

// recompute refreshes the derived profile. Caller holds the lock.
func (p *profileState) recompute() {
	n := decimal.NewFromInt(p.count)
	mean := p.sum.Div(n)

	// Population variance: E[x^2] - mean^2.
	variance := p.sumSquares.Div(n).Sub(mean.Mul(mean))
	stdDev := decimal.Zero
	if variance.IsPositive() {
		f, _ := variance.Float64()
		stdDev = decimal.NewFromFloat(math.Sqrt(f))
	}

	p.profile.AverageTransactionAmount = mean
	p.profile.TransactionAmountStdDev = stdDev

	// An hour is typical once it holds at least 10% of activity.
	threshold := p.count / 10
	hours := make([]int, 0, 24)
	for hour, count := range p.hourCounts {
		if count > 0 && count > threshold {
			hours = append(hours, hour)
		}
	}
	p.profile.TypicalTransactionHours = hours

	// A category is frequent once it holds at least 20% of activity.
	catThreshold := p.count / 5
	categories := make([]string, 0, len(p.categories))
	for category, count := range p.categories {
		if count > catThreshold {
			categories = append(categories, category)
		}
	}
	p.profile.FrequentMerchantCategories = categories
}
