package scheduler

import (
	"sync"
	"time"

	"github.com/samber/mo"
	"github.com/taskflow/scheduler/internal/biz/execution"
)

// Store 状态存储：pending / running / completed 三个分区加一个结果表。
// 所有读写走同一把互斥锁，保证跨分区移动记录时的原子性。
// 记录只能通过快照读出，外部永远拿不到内部指针。
type Store struct {
	mu        sync.Mutex
	pending   map[uint64]*execution.TaskExecution
	running   map[uint64]*execution.TaskExecution
	completed map[uint64]*execution.TaskExecution
	results   map[uint64]any

	// completed 分区的淘汰顺序与上限
	order     []uint64
	retention int
}

func NewStore(retention int) *Store {
	if retention <= 0 {
		retention = 10000
	}
	return &Store{
		pending:   make(map[uint64]*execution.TaskExecution),
		running:   make(map[uint64]*execution.TaskExecution),
		completed: make(map[uint64]*execution.TaskExecution),
		results:   make(map[uint64]any),
		retention: retention,
	}
}

// AddPending 登记新建的执行记录
func (s *Store) AddPending(rec *execution.TaskExecution) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[rec.ID] = rec
}

// Get 跨三个分区查找并返回快照
func (s *Store) Get(id uint64) *execution.TaskExecution {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.pending[id]; ok {
		return rec.Clone()
	}
	if rec, ok := s.running[id]; ok {
		return rec.Clone()
	}
	if rec, ok := s.completed[id]; ok {
		return rec.Clone()
	}
	return nil
}

// PendingView 返回 pending 记录的快照，不存在时返回 nil
func (s *Store) PendingView(id uint64) *execution.TaskExecution {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.pending[id]
	if !ok {
		return nil
	}
	return rec.Clone()
}

// RequestCancel 在 pending 或 running 上置取消标记。
// 已终态或不存在的 id 返回 false。
func (s *Store) RequestCancel(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.pending[id]; ok {
		rec.CancellationRequested = true
		return true
	}
	if rec, ok := s.running[id]; ok {
		rec.CancellationRequested = true
		return true
	}
	return false
}

// CancellationRequested 查询取消标记
func (s *Store) CancellationRequested(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.pending[id]; ok {
		return rec.CancellationRequested
	}
	if rec, ok := s.running[id]; ok {
		return rec.CancellationRequested
	}
	return false
}

// MarkRunning 把记录从 pending 移入 running 并打开始时间戳，
// 返回移动后的快照。记录不在 pending 时返回 nil。
func (s *Store) MarkRunning(id uint64) *execution.TaskExecution {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.pending[id]
	if !ok {
		return nil
	}
	delete(s.pending, id)
	rec.StartNow()
	s.running[id] = rec
	return rec.Clone()
}

// CancelPending 把 pending 记录直接终结为 cancelled
func (s *Store) CancelPending(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.pending[id]
	if !ok {
		return false
	}
	delete(s.pending, id)
	rec.MarkCancelled()
	s.finishLocked(rec)
	return true
}

// CancelRunning 把 running 记录终结为 cancelled，丢弃本次尝试的错误
func (s *Store) CancelRunning(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.running[id]
	if !ok {
		return false
	}
	delete(s.running, id)
	rec.MarkCancelled()
	s.finishLocked(rec)
	return true
}

// Complete 成功终结：记录结果并移入 completed
func (s *Store) Complete(id uint64, result any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.running[id]
	if !ok {
		return false
	}
	delete(s.running, id)
	rec.MarkCompleted(result)
	s.results[id] = result
	s.finishLocked(rec)
	return true
}

// Retry 失败后若还有重试预算，消耗一次并把记录移回 pending。
// 返回 false 表示预算已耗尽（或记录不在 running）。
func (s *Store) Retry(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.running[id]
	if !ok {
		return false
	}
	if rec.RetryCount >= rec.MaxRetries {
		return false
	}
	delete(s.running, id)
	rec.ResetForRetry()
	s.pending[id] = rec
	return true
}

// FinalizeFailed 终结为 failed，保留最后一次尝试的错误信息
func (s *Store) FinalizeFailed(id uint64, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.running[id]
	if !ok {
		return false
	}
	delete(s.running, id)
	rec.MarkFailed(reason)
	s.finishLocked(rec)
	return true
}

// finishLocked 把终态记录放入 completed 分区并按上限淘汰最老的记录。
// 调用方必须已持有 s.mu。
func (s *Store) finishLocked(rec *execution.TaskExecution) {
	s.completed[rec.ID] = rec
	s.order = append(s.order, rec.ID)

	for len(s.completed) > s.retention && len(s.order) > 0 {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.completed, oldest)
		delete(s.results, oldest)
	}
}

// 依赖求值用的只读视图

// CompletedOK 判断 id 是否以 completed 状态终结（failed/cancelled 不算）
func (s *Store) CompletedOK(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.completed[id]
	return ok && rec.Status == execution.ExecutionStatusCompleted
}

// Begun 判断 id 是否至少已经开始（在 running 或 completed 分区）
func (s *Store) Begun(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.running[id]; ok {
		return true
	}
	_, ok := s.completed[id]
	return ok
}

// ResultOf 查询已存储的执行结果
func (s *Store) ResultOf(id uint64) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, ok := s.results[id]
	return result, ok
}

// ListFilter 状态查询过滤条件
type ListFilter struct {
	Status        mo.Option[execution.ExecutionStatus]
	TaskID        mo.Option[uint64]
	ExecutorID    mo.Option[string]
	CreatedAfter  mo.Option[time.Time]
	CreatedBefore mo.Option[time.Time]
}

func (f *ListFilter) match(rec *execution.TaskExecution) bool {
	if status, ok := f.Status.Get(); ok && rec.Status != status {
		return false
	}
	if taskID, ok := f.TaskID.Get(); ok && rec.TaskID != taskID {
		return false
	}
	if executorID, ok := f.ExecutorID.Get(); ok && rec.ExecutorID != executorID {
		return false
	}
	if after, ok := f.CreatedAfter.Get(); ok && rec.CreatedAt.Before(after) {
		return false
	}
	if before, ok := f.CreatedBefore.Get(); ok && rec.CreatedAt.After(before) {
		return false
	}
	return true
}

// List 按过滤条件返回全部分区的快照
func (s *Store) List(filter ListFilter) []*execution.TaskExecution {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*execution.TaskExecution
	for _, part := range []map[uint64]*execution.TaskExecution{s.pending, s.running, s.completed} {
		for _, rec := range part {
			if filter.match(rec) {
				out = append(out, rec.Clone())
			}
		}
	}
	return out
}

// Stats 各状态的记录数
func (s *Store) Stats() map[execution.ExecutionStatus]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := make(map[execution.ExecutionStatus]int)
	for _, rec := range s.pending {
		stats[rec.Status]++
	}
	for _, rec := range s.running {
		stats[rec.Status]++
	}
	for _, rec := range s.completed {
		stats[rec.Status]++
	}
	return stats
}

// RunningCount 当前 running 分区的大小
func (s *Store) RunningCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.running)
}
