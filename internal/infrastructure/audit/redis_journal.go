package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/payshield/risk-engine/internal/domain/fraud"
)

// RedisJournal appends events to a redis stream, giving downstream consumers
// an ordered, replayable audit log.
type RedisJournal struct {
	client *redis.Client
	stream string
}

func NewRedisJournal(client *redis.Client, stream string) *RedisJournal {
	return &RedisJournal{client: client, stream: stream}
}

func (j *RedisJournal) Append(ctx context.Context, event fraud.SecurityEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	err = j.client.XAdd(ctx, &redis.XAddArgs{
		Stream: j.stream,
		Values: map[string]interface{}{
			"event_id":   event.ID.String(),
			"event_type": string(event.EventType),
			"payload":    payload,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("append audit event to stream: %w", err)
	}
	return nil
}
