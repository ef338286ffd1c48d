package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/mo"
	"github.com/spf13/cast"
	"github.com/taskflow/scheduler/internal/biz/task"
	"go.uber.org/zap"
)

// TaskAPI 任务注册表接口
type TaskAPI struct {
	repo   task.Repo
	logger *zap.Logger
}

func NewTaskAPI(repo task.Repo, logger *zap.Logger) *TaskAPI {
	return &TaskAPI{repo: repo, logger: logger}
}

type CreateTaskRequest struct {
	Name             string         `json:"name" binding:"required"`
	Description      string         `json:"description"`
	ExpectedOutput   string         `json:"expected_output"`
	ExecutorAffinity string         `json:"executor_affinity"`
	Parameters       map[string]any `json:"parameters"`
}

type TaskResponse struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Description      string         `json:"description,omitempty"`
	ExpectedOutput   string         `json:"expected_output,omitempty"`
	ExecutorAffinity string         `json:"executor_affinity,omitempty"`
	Parameters       map[string]any `json:"parameters,omitempty"`
	Status           string         `json:"status"`
}

func toTaskResponse(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:               cast.ToString(t.ID),
		Name:             t.Name,
		Description:      t.Description,
		ExpectedOutput:   t.ExpectedOutput,
		ExecutorAffinity: t.ExecutorAffinity,
		Parameters:       t.Parameters,
		Status:           string(t.Status),
	}
}

// Create POST /api/v1/tasks
func (a *TaskAPI) Create(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t := &task.Task{
		Name:             req.Name,
		Description:      req.Description,
		ExpectedOutput:   req.ExpectedOutput,
		ExecutorAffinity: req.ExecutorAffinity,
		Parameters:       req.Parameters,
		Status:           task.TaskStatusActive,
	}
	if err := a.repo.Create(c.Request.Context(), t); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toTaskResponse(t))
}

// Get GET /api/v1/tasks/:id
func (a *TaskAPI) Get(c *gin.Context) {
	id := cast.ToUint64(c.Param("id"))
	t, err := a.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(t))
}

// List GET /api/v1/tasks
func (a *TaskAPI) List(c *gin.Context) {
	filter := &task.TaskFilter{}
	if status := c.Query("status"); status != "" {
		filter.Status = mo.Some(task.TaskStatus(status))
	}

	tasks, err := a.repo.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	c.JSON(http.StatusOK, gin.H{"tasks": out, "total": len(out)})
}

type UpdateTaskRequest struct {
	Description      *string        `json:"description"`
	ExpectedOutput   *string        `json:"expected_output"`
	ExecutorAffinity *string        `json:"executor_affinity"`
	Parameters       map[string]any `json:"parameters"`
}

// Update PUT /api/v1/tasks/:id
func (a *TaskAPI) Update(c *gin.Context) {
	id := cast.ToUint64(c.Param("id"))
	t, err := a.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.ExpectedOutput != nil {
		t.ExpectedOutput = *req.ExpectedOutput
	}
	if req.ExecutorAffinity != nil {
		t.ExecutorAffinity = *req.ExecutorAffinity
	}
	t.MergeParameters(req.Parameters)

	if err := a.repo.Save(c.Request.Context(), t); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(t))
}

// Pause POST /api/v1/tasks/:id/pause
func (a *TaskAPI) Pause(c *gin.Context) {
	a.transition(c, func(t *task.Task) error { return t.Pause() })
}

// Resume POST /api/v1/tasks/:id/resume
func (a *TaskAPI) Resume(c *gin.Context) {
	a.transition(c, func(t *task.Task) error { return t.Resume() })
}

func (a *TaskAPI) transition(c *gin.Context, fn func(*task.Task) error) {
	id := cast.ToUint64(c.Param("id"))
	t, err := a.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	if err := fn(t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := a.repo.Save(c.Request.Context(), t); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(t))
}

// Delete DELETE /api/v1/tasks/:id
func (a *TaskAPI) Delete(c *gin.Context) {
	id := cast.ToUint64(c.Param("id"))
	if err := a.repo.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
