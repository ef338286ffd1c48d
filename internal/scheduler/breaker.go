package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerRegistry 熔断器注册表，每个执行器一个熔断器
type BreakerRegistry struct {
	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
	logger   *zap.Logger
}

func NewBreakerRegistry(logger *zap.Logger) *BreakerRegistry {
	return &BreakerRegistry{
		breakers: make(map[string]*gobreaker.CircuitBreaker),
		logger:   logger,
	}
}

// Get 获取执行器的熔断器，不存在时创建
func (r *BreakerRegistry) Get(executorID string) *gobreaker.CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[executorID]; ok {
		return cb
	}

	logger := r.logger
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        executorID,
		MaxRequests: 3,
		Interval:    0,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("executor_id", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			// 调用方主动放弃不算执行器故障
			return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
	})
	r.breakers[executorID] = cb
	return cb
}

// ResetBreaker 执行器恢复后丢弃旧熔断器，下次调用重新计数
func (r *BreakerRegistry) ResetBreaker(executorID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.breakers, executorID)
	r.logger.Debug("circuit breaker reset",
		zap.String("executor_id", executorID))
}
