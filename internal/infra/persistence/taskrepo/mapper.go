package taskrepo

import (
	domain "github.com/taskflow/scheduler/internal/biz/task"
	"github.com/taskflow/scheduler/internal/infra/persistence/commonrepo"
)

func (t *TaskPo) FromDomain(in *domain.Task) *TaskPo {
	return &TaskPo{
		Mode: commonrepo.Mode{
			ID:        in.ID,
			CreatedAt: in.CreatedAt,
			UpdatedAt: in.UpdatedAt,
		},
		Name:             in.Name,
		Description:      in.Description,
		ExpectedOutput:   in.ExpectedOutput,
		ExecutorAffinity: in.ExecutorAffinity,
		Parameters:       in.Parameters,
		Status:           in.Status,
	}
}

func (t *TaskPo) ToDomain() *domain.Task {
	return &domain.Task{
		ID:               t.ID,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
		Name:             t.Name,
		Description:      t.Description,
		ExpectedOutput:   t.ExpectedOutput,
		ExecutorAffinity: t.ExecutorAffinity,
		Parameters:       t.Parameters,
		Status:           t.Status,
	}
}
