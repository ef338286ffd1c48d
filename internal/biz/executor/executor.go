package executor

import (
	"context"

	"github.com/taskflow/scheduler/internal/biz/task"
)

// RunContext 单次执行尝试的元数据，随任务描述一起交给执行器
type RunContext struct {
	ExecutionID uint64
	TaskID      uint64
	Attempt     int
	Parameters  map[string]any
}

// Executor 执行器能力接口。调度器对调用施加超时，执行器的实现必须
// 允许调用方放弃等待（ctx 取消后尽快返回），且放弃不破坏执行器状态。
type Executor interface {
	ID() string
	Run(ctx context.Context, t *task.Task, rc RunContext) (any, error)
}

// HealthReporter 可选实现：支持健康探测的执行器
type HealthReporter interface {
	Health(ctx context.Context) error
}
