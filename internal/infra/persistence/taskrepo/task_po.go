package taskrepo

import (
	domain "github.com/taskflow/scheduler/internal/biz/task"
	"github.com/taskflow/scheduler/internal/infra/persistence/commonrepo"
	"gorm.io/datatypes"
)

type TaskPo struct {
	commonrepo.Mode
	Name             string            `gorm:"column:name;uniqueIndex;size:255;not null"`   // name唯一
	Description      string            `gorm:"column:description;type:text"`                // 任务描述
	ExpectedOutput   string            `gorm:"column:expected_output;type:text"`            // 期望输出
	ExecutorAffinity string            `gorm:"column:executor_affinity;size:100"`           // 首选执行器
	Parameters       datatypes.JSONMap `gorm:"column:parameters;type:json"`                 // 任务输入的参数
	Status           domain.TaskStatus `gorm:"column:status;size:50;not null;index"`        // 任务状态
}

func (t *TaskPo) TableName() string {
	return "taskflow_task"
}
