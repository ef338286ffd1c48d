package task

import (
	"context"

	"github.com/samber/mo"
)

// Repo 任务注册表，调度器通过它把 task_id 解析为任务描述
type Repo interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, id uint64) (*Task, error)
	GetByName(ctx context.Context, name string) (*Task, error)
	Save(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context, filter *TaskFilter) ([]*Task, error)
}

type TaskFilter struct {
	Status mo.Option[TaskStatus]
	Name   mo.Option[string]
}
