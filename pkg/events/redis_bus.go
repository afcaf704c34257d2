package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBus publishes events as JSON on a Redis channel so other processes can consume them.
type RedisBus struct {
	rdb     *redis.Client
	channel string
	logger  *zap.Logger
}

func NewRedisBus(rdb *redis.Client, channel string, logger *zap.Logger) (*RedisBus, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if channel == "" {
		return nil, fmt.Errorf("redis channel required")
	}
	return &RedisBus{
		rdb:     rdb,
		channel: channel,
		logger:  logger.Named("redis-bus"),
	}, nil
}

var _ Publisher = (*RedisBus)(nil)

func (b *RedisBus) Publish(ctx context.Context, event Event) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.EventName(), err)
	}
	if err := b.rdb.Publish(ctx, b.channel, raw).Err(); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.EventName(), err)
	}
	return nil
}

// StartForwarder subscribes to the channel and hands each decoded event to onEvent
// until ctx is cancelled. It returns once the subscription is confirmed.
func (b *RedisBus) StartForwarder(ctx context.Context, onEvent func(Event)) error {
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				event, err := Decode([]byte(m.Payload))
				if err != nil {
					b.logger.Warn("Dropping undecodable event", zap.Error(err))
					continue
				}
				onEvent(event)
			}
		}
	}()

	return nil
}

// Decode reads a JSON-encoded event back into its concrete type.
func Decode(data []byte) (Event, error) {
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode event envelope: %w", err)
	}

	var event Event
	switch meta.Name {
	case NameEvaluationCreated:
		event = &EvaluationCreated{}
	case NameEvaluationFinalized:
		event = &EvaluationFinalized{}
	case NameMetricTracked:
		event = &MetricTracked{}
	case NameRatingUpdated:
		event = &RatingUpdated{}
	case NamePerformanceAlert:
		event = &PerformanceAlert{}
	default:
		return nil, fmt.Errorf("unknown event %q", meta.Name)
	}

	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("failed to decode %s event: %w", meta.Name, err)
	}
	return event, nil
}
