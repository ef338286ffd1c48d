package scheduler

import (
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskflow/scheduler/internal/biz/execution"
)

func newRecord(id uint64) *execution.TaskExecution {
	return &execution.TaskExecution{
		ID:         id,
		TaskID:     1,
		ExecutorID: "worker",
		Status:     execution.ExecutionStatusPending,
		MaxRetries: 2,
		CreatedAt:  time.Now(),
	}
}

func TestStoreLifecycleTransitions(t *testing.T) {
	s := NewStore(100)
	s.AddPending(newRecord(1))

	rec := s.Get(1)
	require.NotNil(t, rec)
	assert.Equal(t, execution.ExecutionStatusPending, rec.Status)

	run := s.MarkRunning(1)
	require.NotNil(t, run)
	assert.Equal(t, execution.ExecutionStatusRunning, run.Status)
	assert.NotNil(t, run.StartedAt)
	assert.Equal(t, 1, s.RunningCount())

	// pending 里已经没有了，重复标记失败
	assert.Nil(t, s.MarkRunning(1))

	require.True(t, s.Complete(1, "result"))
	assert.Equal(t, 0, s.RunningCount())

	final := s.Get(1)
	require.NotNil(t, final)
	assert.Equal(t, execution.ExecutionStatusCompleted, final.Status)
	assert.Equal(t, "result", final.Result)
	assert.NotNil(t, final.CompletedAt)
}

func TestStoreGetReturnsSnapshot(t *testing.T) {
	s := NewStore(100)
	s.AddPending(newRecord(1))

	snap := s.Get(1)
	snap.Status = execution.ExecutionStatusFailed
	snap.Parameters = map[string]any{"mutated": true}

	// 外部修改快照不影响存储内的记录
	assert.Equal(t, execution.ExecutionStatusPending, s.Get(1).Status)
	assert.Nil(t, s.Get(1).Parameters)
}

func TestStoreRetryBudget(t *testing.T) {
	s := NewStore(100)
	s.AddPending(newRecord(1))

	for i := 0; i < 2; i++ {
		require.NotNil(t, s.MarkRunning(1))
		require.True(t, s.Retry(1), "retry %d within budget", i+1)
		assert.Equal(t, execution.ExecutionStatusPending, s.Get(1).Status)
	}

	require.NotNil(t, s.MarkRunning(1))
	assert.False(t, s.Retry(1), "budget exhausted")

	require.True(t, s.FinalizeFailed(1, "boom"))
	rec := s.Get(1)
	assert.Equal(t, execution.ExecutionStatusFailed, rec.Status)
	assert.Equal(t, "boom", rec.Error)
	assert.Equal(t, 2, rec.RetryCount)
}

func TestStoreRequestCancel(t *testing.T) {
	s := NewStore(100)
	s.AddPending(newRecord(1))

	assert.True(t, s.RequestCancel(1))
	assert.True(t, s.CancellationRequested(1))

	require.True(t, s.CancelPending(1))
	rec := s.Get(1)
	assert.Equal(t, execution.ExecutionStatusCancelled, rec.Status)

	// 终态之后取消请求一律失败
	assert.False(t, s.RequestCancel(1))
	assert.False(t, s.RequestCancel(999))
}

func TestStoreCancelRunningDiscardsError(t *testing.T) {
	s := NewStore(100)
	s.AddPending(newRecord(1))
	require.NotNil(t, s.MarkRunning(1))

	assert.True(t, s.RequestCancel(1))
	require.True(t, s.CancelRunning(1))

	rec := s.Get(1)
	assert.Equal(t, execution.ExecutionStatusCancelled, rec.Status)
	assert.Empty(t, rec.Error)
}

func TestStoreRetentionEvictsOldestCompleted(t *testing.T) {
	s := NewStore(2)

	for id := uint64(1); id <= 3; id++ {
		s.AddPending(newRecord(id))
		require.NotNil(t, s.MarkRunning(id))
		require.True(t, s.Complete(id, id))
	}

	// 上限 2，最老的 1 被淘汰，结果一并清除
	assert.Nil(t, s.Get(1))
	_, ok := s.ResultOf(1)
	assert.False(t, ok)

	assert.NotNil(t, s.Get(2))
	assert.NotNil(t, s.Get(3))
}

func TestStoreDependencyViews(t *testing.T) {
	s := NewStore(100)

	s.AddPending(newRecord(1))
	assert.False(t, s.Begun(1))
	assert.False(t, s.CompletedOK(1))

	require.NotNil(t, s.MarkRunning(1))
	assert.True(t, s.Begun(1))
	assert.False(t, s.CompletedOK(1))

	require.True(t, s.Complete(1, "out"))
	assert.True(t, s.Begun(1))
	assert.True(t, s.CompletedOK(1))

	result, ok := s.ResultOf(1)
	require.True(t, ok)
	assert.Equal(t, "out", result)

	// failed 的记录不满足 CompletedOK
	s.AddPending(newRecord(2))
	require.NotNil(t, s.MarkRunning(2))
	require.True(t, s.FinalizeFailed(2, "boom"))
	assert.False(t, s.CompletedOK(2))
	assert.True(t, s.Begun(2))
}

func TestStoreListFilter(t *testing.T) {
	s := NewStore(100)

	a := newRecord(1)
	a.TaskID = 10
	s.AddPending(a)

	b := newRecord(2)
	b.TaskID = 20
	b.ExecutorID = "other"
	s.AddPending(b)
	require.NotNil(t, s.MarkRunning(2))

	assert.Len(t, s.List(ListFilter{}), 2)
	assert.Len(t, s.List(ListFilter{Status: mo.Some(execution.ExecutionStatusPending)}), 1)
	assert.Len(t, s.List(ListFilter{TaskID: mo.Some(uint64(10))}), 1)
	assert.Len(t, s.List(ListFilter{ExecutorID: mo.Some("other")}), 1)
	assert.Empty(t, s.List(ListFilter{TaskID: mo.Some(uint64(30))}))

	stats := s.Stats()
	assert.Equal(t, 1, stats[execution.ExecutionStatusPending])
	assert.Equal(t, 1, stats[execution.ExecutionStatusRunning])
}
