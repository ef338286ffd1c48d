package scheduler

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	redis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// EventBus publishes lifecycle events via Redis pub/sub.
// When Redis is disabled (nil client) it falls back to in-process fan-out.
var _ IEmitter = (*EventBus)(nil)

type EventBus struct {
	rdb    *redis.Client
	source string
	logger *zap.Logger

	mu   sync.Mutex
	subs []chan Event
}

// NewEventBus constructs an event bus with an injected Redis client.
// A nil client keeps events in-process.
func NewEventBus(rdb *redis.Client, instanceID string, logger *zap.Logger) *EventBus {
	return &EventBus{rdb: rdb, source: instanceID, logger: logger}
}

// Subscribe registers an in-process subscriber. Slow subscribers drop events
// instead of blocking the workers.
func (b *EventBus) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan Event, buffer)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// Emit stamps and publishes an event. Never blocks the caller.
func (b *EventBus) Emit(ev Event) {
	ev.Source = b.source
	ev.Timestamp = time.Now().UnixMilli()

	if b.rdb != nil {
		payload, err := json.Marshal(ev)
		if err != nil {
			b.logger.Error("failed to marshal event", zap.Error(err))
			return
		}
		if err := b.rdb.Publish(context.Background(), redisChannel, payload).Err(); err != nil {
			b.logger.Warn("failed to publish event to redis", zap.Error(err))
		}
		return
	}

	b.mu.Lock()
	subs := b.subs
	b.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close closes all in-process subscriber channels.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
