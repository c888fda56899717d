package collaborator

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/payshield/risk-engine/internal/domain/fraud"
	"github.com/payshield/risk-engine/internal/domain/values"
)

const (
	velocityKeyPrefix = "velocity:txns:"
	velocityRetention = 7 * 24 * time.Hour
)

// RedisVelocityStore keeps per-user transaction history in a redis sorted
// set (score: unix nanos, member: "<txn-id>|<amount>") and derives the
// rolling counters from it on read. Limits are static configuration.
type RedisVelocityStore struct {
	client   *redis.Client
	limits   fraud.VelocityLimits
	currency string
	logger   *zap.Logger
}

func NewRedisVelocityStore(client *redis.Client, limits fraud.VelocityLimits, logger *zap.Logger) *RedisVelocityStore {
	return &RedisVelocityStore{
		client:   client,
		limits:   limits,
		currency: limits.AmountPerHour.Currency(),
		logger:   logger,
	}
}

// RecordTransaction appends one transaction to the user's rolling history.
// Called by the API layer after an evaluation that did not block.
func (s *RedisVelocityStore) RecordTransaction(ctx context.Context, userID uuid.UUID, txnID uuid.UUID, amount values.Money) error {
	now := time.Now()
	key := velocityKeyPrefix + userID.String()
	member := txnID.String() + "|" + amount.Amount().String()

	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: member})
	pipe.ZRemRangeByScore(ctx, key, "-inf",
		strconv.FormatInt(now.Add(-velocityRetention).UnixNano(), 10))
	pipe.Expire(ctx, key, velocityRetention)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record transaction: %w", err)
	}
	return nil
}

func (s *RedisVelocityStore) GetVelocityData(ctx context.Context, userID uuid.UUID) (*fraud.VelocityData, error) {
	now := time.Now()
	key := velocityKeyPrefix + userID.String()

	entries, err := s.client.ZRangeByScoreWithScores(ctx, key, &redis.ZRangeBy{
		Min: strconv.FormatInt(now.Add(-velocityRetention).UnixNano(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("load velocity history: %w", err)
	}

	hourCutoff := float64(now.Add(-time.Hour).UnixNano())
	dayCutoff := float64(now.Add(-24 * time.Hour).UnixNano())

	var hourCount, dayCount int
	hourAmount := values.Zero(s.currency)
	weekAmount := values.Zero(s.currency)

	for _, entry := range entries {
		amount, ok := parseAmountMember(entry.Member, s.currency)
		if !ok {
			s.logger.Warn("malformed velocity entry skipped",
				zap.String("user_id", userID.String()))
			continue
		}

		if weekAmount, err = weekAmount.Add(amount); err != nil {
			return nil, err
		}
		if entry.Score >= dayCutoff {
			dayCount++
		}
		if entry.Score >= hourCutoff {
			hourCount++
			if hourAmount, err = hourAmount.Add(amount); err != nil {
				return nil, err
			}
		}
	}

	// 168 hours in the retention window.
	avgHourly := weekAmount.MulFloat(1.0 / velocityRetention.Hours())

	return &fraud.VelocityData{
		TransactionsLastHour:     hourCount,
		TransactionsLastDay:      dayCount,
		AmountLastHour:           hourAmount,
		AvgHourlyAmountLast7Days: avgHourly,
	}, nil
}

func (s *RedisVelocityStore) GetVelocityLimits(_ context.Context) (*fraud.VelocityLimits, error) {
	limits := s.limits
	return &limits, nil
}

func parseAmountMember(member interface{}, currency string) (values.Money, bool) {
	raw, ok := member.(string)
	if !ok {
		return values.Money{}, false
	}
	for i := len(raw) - 1; i >= 0; i-- {
		if raw[i] == '|' {
			amount, err := values.NewMoneyFromString(raw[i+1:], currency)
			if err != nil {
				return values.Money{}, false
			}
			return amount, true
		}
	}
	return values.Money{}, false
}
