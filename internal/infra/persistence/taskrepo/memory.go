package taskrepo

import (
	"context"
	"sync"
	"time"

	"github.com/samber/lo"
	domain "github.com/taskflow/scheduler/internal/biz/task"
	"github.com/yitter/idgenerator-go/idgen"
)

// MemoryRepositoryImpl 内存版任务注册表，供内嵌与测试使用
type MemoryRepositoryImpl struct {
	mu    sync.RWMutex
	tasks map[uint64]*domain.Task
}

func NewMemoryRepositoryImpl() *MemoryRepositoryImpl {
	return &MemoryRepositoryImpl{
		tasks: make(map[uint64]*domain.Task),
	}
}

func (r *MemoryRepositoryImpl) Create(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if task.ID == 0 {
		task.ID = uint64(idgen.NextId())
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Status == "" {
		task.Status = domain.TaskStatusActive
	}
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *MemoryRepositoryImpl) GetByID(_ context.Context, id uint64) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *MemoryRepositoryImpl) GetByName(_ context.Context, name string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.tasks {
		if t.Name == name {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepositoryImpl) Save(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task.UpdatedAt = time.Now()
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *MemoryRepositoryImpl) Delete(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tasks[id]; ok {
		t.Status = domain.TaskStatusDeleted
	}
	return nil
}

func (r *MemoryRepositoryImpl) List(_ context.Context, filter *domain.TaskFilter) ([]*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Task
	for _, t := range r.tasks {
		if filter != nil {
			if status, ok := filter.Status.Get(); ok && t.Status != status {
				continue
			}
			if name, ok := filter.Name.Get(); ok && t.Name != name {
				continue
			}
		}
		out = append(out, t)
	}
	return lo.Map(out, func(t *domain.Task, _ int) *domain.Task {
		cp := *t
		return &cp
	}), nil
}
