package scheduler

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Limiter 并发准入门闸：限制同时真正执行的任务体数量，
// 与 worker 数量相互独立
type Limiter struct {
	sem      *semaphore.Weighted
	capacity int64
}

func NewLimiter(capacity int64) *Limiter {
	if capacity <= 0 {
		capacity = 1
	}
	return &Limiter{
		sem:      semaphore.NewWeighted(capacity),
		capacity: capacity,
	}
}

// Acquire 获取一个执行名额，门闸耗尽时阻塞
func (l *Limiter) Acquire(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

// Release 归还名额，必须与 Acquire 成对出现
func (l *Limiter) Release() {
	l.sem.Release(1)
}

func (l *Limiter) Capacity() int64 {
	return l.capacity
}
