package task

import (
	"errors"
	"time"
)

// Task 任务描述，由任务注册表持有，调度器只保存其 ID
type Task struct {
	ID        uint64
	CreatedAt time.Time
	UpdatedAt time.Time

	Name             string
	Description      string
	ExpectedOutput   string
	ExecutorAffinity string // 首选执行器实例
	Parameters       map[string]any
	Status           TaskStatus
}

func (t *Task) Pause() error {
	if t.Status == TaskStatusPaused {
		return errors.New("task is already paused")
	} else if t.Status == TaskStatusDeleted {
		return errors.New("cannot pause deleted task")
	}
	t.Status = TaskStatusPaused
	return nil
}

func (t *Task) Resume() error {
	if t.Status == TaskStatusActive {
		return errors.New("task is already active")
	} else if t.Status == TaskStatusDeleted {
		return errors.New("cannot resume deleted task")
	}
	t.Status = TaskStatusActive
	return nil
}

// MergeParameters merges provided parameters into the task's parameter map.
// Initializes the map if nil.
func (t *Task) MergeParameters(extra map[string]any) {
	if extra == nil {
		return
	}
	if t.Parameters == nil {
		t.Parameters = make(map[string]any)
	}
	for k, v := range extra {
		t.Parameters[k] = v
	}
}
