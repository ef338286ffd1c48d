package execution

import "time"

// TaskExecution 一次任务调度的执行记录
type TaskExecution struct {
	ID         uint64
	TaskID     uint64
	ExecutorID string

	Mode         ExecutionMode
	Dependencies []Dependency
	Parameters   map[string]any
	Priority     int
	Timeout      time.Duration
	MaxRetries   int
	RetryCount   int

	Status                ExecutionStatus
	Result                any
	Error                 string
	CancellationRequested bool

	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// Domain behavior helpers to encapsulate state transitions.

// StartNow marks the execution as running and stamps StartedAt.
func (e *TaskExecution) StartNow() *TaskExecution {
	now := time.Now()
	e.Status = ExecutionStatusRunning
	e.StartedAt = &now
	return e
}

// MarkCompleted records a successful result and stamps CompletedAt.
func (e *TaskExecution) MarkCompleted(result any) *TaskExecution {
	now := time.Now()
	e.Status = ExecutionStatusCompleted
	e.Result = result
	e.Error = ""
	e.CompletedAt = &now
	return e
}

// MarkFailed records the last attempt's error and stamps CompletedAt.
func (e *TaskExecution) MarkFailed(reason string) *TaskExecution {
	now := time.Now()
	e.Status = ExecutionStatusFailed
	e.Error = reason
	e.CompletedAt = &now
	return e
}

// MarkCancelled finalizes the record as cancelled. Any error from an
// in-flight attempt is discarded in favor of the cancellation outcome.
func (e *TaskExecution) MarkCancelled() *TaskExecution {
	now := time.Now()
	e.Status = ExecutionStatusCancelled
	e.Error = ""
	e.CompletedAt = &now
	return e
}

// ResetForRetry consumes one retry and puts the record back to pending.
// Callers must check RetryCount < MaxRetries first.
func (e *TaskExecution) ResetForRetry() *TaskExecution {
	e.RetryCount++
	e.Status = ExecutionStatusPending
	return e
}

// Clone returns an independent snapshot so callers can never mutate
// scheduler-owned state.
func (e *TaskExecution) Clone() *TaskExecution {
	cp := *e
	if e.Dependencies != nil {
		cp.Dependencies = make([]Dependency, len(e.Dependencies))
		copy(cp.Dependencies, e.Dependencies)
	}
	if e.Parameters != nil {
		cp.Parameters = make(map[string]any, len(e.Parameters))
		for k, v := range e.Parameters {
			cp.Parameters[k] = v
		}
	}
	if e.StartedAt != nil {
		t := *e.StartedAt
		cp.StartedAt = &t
	}
	if e.CompletedAt != nil {
		t := *e.CompletedAt
		cp.CompletedAt = &t
	}
	// 常见的复合结果也要隔离，其余类型按只读约定处理
	switch v := e.Result.(type) {
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, val := range v {
			m[k] = val
		}
		cp.Result = m
	case []any:
		s := make([]any, len(v))
		copy(s, v)
		cp.Result = s
	}
	return &cp
}
