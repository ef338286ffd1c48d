package scheduler

import (
	"context"
	"sync"
)

// Queue 执行队列：无界 FIFO，元素为 TaskExecution 的 id。
// Schedule 不允许阻塞也不允许丢弃，所以不能用固定容量的 channel。
type Queue struct {
	mu   sync.Mutex
	ids  []uint64
	wake chan struct{}
}

func NewQueue(sizeHint int) *Queue {
	if sizeHint <= 0 {
		sizeHint = 64
	}
	return &Queue{
		ids:  make([]uint64, 0, sizeHint),
		wake: make(chan struct{}, 1),
	}
}

// Push 入队，从不阻塞
func (q *Queue) Push(id uint64) {
	q.mu.Lock()
	q.ids = append(q.ids, id)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Pop 出队，队列为空时阻塞到有元素或 ctx 结束。
// ctx 结束优先于出队，否则停机时 worker 会在
// 出队-准入失败-回队之间空转，Stop 永远等不到退出。
func (q *Queue) Pop(ctx context.Context) (uint64, bool) {
	for {
		if ctx.Err() != nil {
			return 0, false
		}
		q.mu.Lock()
		if len(q.ids) > 0 {
			id := q.ids[0]
			q.ids = q.ids[1:]
			remaining := len(q.ids)
			q.mu.Unlock()

			// 还有剩余元素时补一个唤醒信号，避免其它等待者漏醒
			if remaining > 0 {
				select {
				case q.wake <- struct{}{}:
				default:
				}
			}
			return id, true
		}
		q.mu.Unlock()

		select {
		case <-q.wake:
		case <-ctx.Done():
			return 0, false
		}
	}
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ids)
}
