package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/mo"
	"github.com/spf13/cast"
	"github.com/taskflow/scheduler/internal/biz/execution"
	"github.com/taskflow/scheduler/internal/scheduler"
	"go.uber.org/zap"
)

// ExecutionAPI 执行记录相关接口
type ExecutionAPI struct {
	sched  *scheduler.Scheduler
	logger *zap.Logger
}

func NewExecutionAPI(sched *scheduler.Scheduler, logger *zap.Logger) *ExecutionAPI {
	return &ExecutionAPI{sched: sched, logger: logger}
}

type DependencyRequest struct {
	DependencyID  string `json:"dependency_id" binding:"required"`
	Type          string `json:"type" binding:"required"`
	ExpectedValue any    `json:"expected_value"`
	Resource      string `json:"resource"`
}

type ScheduleRequest struct {
	TaskID         string              `json:"task_id" binding:"required"`
	ExecutorID     string              `json:"executor_id" binding:"required"`
	ExecutionMode  string              `json:"execution_mode"`
	Dependencies   []DependencyRequest `json:"dependencies"`
	Parameters     map[string]any      `json:"parameters"`
	Priority       int                 `json:"priority"`
	TimeoutSeconds int                 `json:"timeout_seconds"`
	MaxRetries     *int                `json:"max_retries"` // 省略时取配置默认值
}

func (r *ScheduleRequest) toDomain() scheduler.ScheduleRequest {
	deps := make([]execution.Dependency, 0, len(r.Dependencies))
	for _, d := range r.Dependencies {
		deps = append(deps, execution.Dependency{
			DependencyID:  cast.ToUint64(d.DependencyID),
			Type:          execution.DependencyType(d.Type),
			ExpectedValue: d.ExpectedValue,
			Resource:      d.Resource,
		})
	}
	maxRetries := -1
	if r.MaxRetries != nil {
		maxRetries = *r.MaxRetries
	}
	return scheduler.ScheduleRequest{
		TaskID:       cast.ToUint64(r.TaskID),
		ExecutorID:   r.ExecutorID,
		Mode:         execution.ExecutionMode(r.ExecutionMode),
		Dependencies: deps,
		Parameters:   r.Parameters,
		Priority:     r.Priority,
		Timeout:      time.Duration(r.TimeoutSeconds) * time.Second,
		MaxRetries:   maxRetries,
	}
}

// ExecutionResponse 执行记录视图，id 一律转成字符串避免前端精度问题
type ExecutionResponse struct {
	ID            string                   `json:"id"`
	TaskID        string                   `json:"task_id"`
	ExecutorID    string                   `json:"executor_id"`
	ExecutionMode string                   `json:"execution_mode"`
	Status        string                   `json:"status"`
	Priority      int                      `json:"priority"`
	RetryCount    int                      `json:"retry_count"`
	MaxRetries    int                      `json:"max_retries"`
	Result        any                      `json:"result,omitempty"`
	Error         string                   `json:"error,omitempty"`
	Dependencies  []execution.Dependency   `json:"dependencies,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
	StartedAt     *time.Time               `json:"started_at,omitempty"`
	CompletedAt   *time.Time               `json:"completed_at,omitempty"`
}

func toExecutionResponse(rec *execution.TaskExecution) ExecutionResponse {
	return ExecutionResponse{
		ID:            cast.ToString(rec.ID),
		TaskID:        cast.ToString(rec.TaskID),
		ExecutorID:    rec.ExecutorID,
		ExecutionMode: string(rec.Mode),
		Status:        string(rec.Status),
		Priority:      rec.Priority,
		RetryCount:    rec.RetryCount,
		MaxRetries:    rec.MaxRetries,
		Result:        rec.Result,
		Error:         rec.Error,
		Dependencies:  rec.Dependencies,
		CreatedAt:     rec.CreatedAt,
		StartedAt:     rec.StartedAt,
		CompletedAt:   rec.CompletedAt,
	}
}

// Schedule POST /api/v1/executions
func (a *ExecutionAPI) Schedule(c *gin.Context) {
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := a.sched.Schedule(req.toDomain())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, scheduler.ErrInvalidRequest) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"execution_id": cast.ToString(id)})
}

// ScheduleBatch POST /api/v1/executions/batch
func (a *ExecutionAPI) ScheduleBatch(c *gin.Context) {
	var req struct {
		Executions []ScheduleRequest `json:"executions" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	domainReqs := make([]scheduler.ScheduleRequest, 0, len(req.Executions))
	for _, r := range req.Executions {
		domainReqs = append(domainReqs, r.toDomain())
	}

	results := a.sched.ScheduleBatch(domainReqs)
	out := make([]gin.H, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			out = append(out, gin.H{"error": res.Err.Error()})
			continue
		}
		out = append(out, gin.H{"execution_id": cast.ToString(res.ExecutionID)})
	}

	c.JSON(http.StatusOK, gin.H{"results": out})
}

type PlanEntryRequest struct {
	Key       string           `json:"key" binding:"required"`
	Execution ScheduleRequest  `json:"execution" binding:"required"`
	DependsOn []PlanDepRequest `json:"depends_on"`
}

type PlanDepRequest struct {
	Key           string `json:"key" binding:"required"`
	Type          string `json:"type"`
	ExpectedValue any    `json:"expected_value"`
}

// SchedulePlan POST /api/v1/executions/plan
func (a *ExecutionAPI) SchedulePlan(c *gin.Context) {
	var req struct {
		Entries []PlanEntryRequest `json:"entries" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries := make([]scheduler.PlanEntry, 0, len(req.Entries))
	for _, e := range req.Entries {
		entry := scheduler.PlanEntry{
			Key:     e.Key,
			Request: e.Execution.toDomain(),
		}
		for _, d := range e.DependsOn {
			entry.DependsOn = append(entry.DependsOn, scheduler.PlanDependency{
				Key:           d.Key,
				Type:          execution.DependencyType(d.Type),
				ExpectedValue: d.ExpectedValue,
			})
		}
		entries = append(entries, entry)
	}

	ids, err := a.sched.SchedulePlan(entries)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, scheduler.ErrInvalidRequest) || errors.Is(err, scheduler.ErrPlanCycle) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	out := make(map[string]string, len(ids))
	for key, id := range ids {
		out[key] = cast.ToString(id)
	}
	c.JSON(http.StatusCreated, gin.H{"executions": out})
}

// Get GET /api/v1/executions/:id
func (a *ExecutionAPI) Get(c *gin.Context) {
	id := cast.ToUint64(c.Param("id"))
	rec := a.sched.GetStatus(id)
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "execution not found"})
		return
	}
	c.JSON(http.StatusOK, toExecutionResponse(rec))
}

// Cancel POST /api/v1/executions/:id/cancel
func (a *ExecutionAPI) Cancel(c *gin.Context) {
	id := cast.ToUint64(c.Param("id"))
	cancelled := a.sched.Cancel(id)
	c.JSON(http.StatusOK, gin.H{"cancelled": cancelled})
}

// List GET /api/v1/executions
func (a *ExecutionAPI) List(c *gin.Context) {
	var filter scheduler.ListFilter
	if status := c.Query("status"); status != "" {
		filter.Status = mo.Some(execution.ExecutionStatus(status))
	}
	if taskID := c.Query("task_id"); taskID != "" {
		filter.TaskID = mo.Some(cast.ToUint64(taskID))
	}
	if executorID := c.Query("executor_id"); executorID != "" {
		filter.ExecutorID = mo.Some(executorID)
	}

	recs := a.sched.List(filter)
	out := make([]ExecutionResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toExecutionResponse(rec))
	}
	c.JSON(http.StatusOK, gin.H{"executions": out, "total": len(out)})
}

// Stats GET /api/v1/executions/stats
func (a *ExecutionAPI) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, a.sched.Stats())
}
