package execution

type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
)

// IsTerminal 判断状态是否为终态
func (s ExecutionStatus) IsTerminal() bool {
	switch s {
	case ExecutionStatusCompleted, ExecutionStatusFailed, ExecutionStatusCancelled:
		return true
	}
	return false
}

// ExecutionMode 执行模式，调度器不区分处理，仅作为调用方编排工作流的提示
type ExecutionMode string

const (
	ExecutionModeSync       ExecutionMode = "SYNC"
	ExecutionModeAsync      ExecutionMode = "ASYNC"
	ExecutionModeParallel   ExecutionMode = "PARALLEL"
	ExecutionModeConcurrent ExecutionMode = "CONCURRENT"
)

// DependencyType 依赖类型
type DependencyType string

const (
	DependencyCompletion DependencyType = "COMPLETION"
	DependencyStart      DependencyType = "START"
	DependencyOutput     DependencyType = "OUTPUT"
	DependencyResource   DependencyType = "RESOURCE"
)

// Dependency 单条依赖声明
type Dependency struct {
	DependencyID  uint64         `json:"dependency_id"`
	Type          DependencyType `json:"type"`
	ExpectedValue any            `json:"expected_value,omitempty"`
	Resource      string         `json:"resource,omitempty"`
}
