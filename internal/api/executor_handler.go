package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskflow/scheduler/internal/biz/executor"
	"go.uber.org/zap"
)

// ExecutorAPI 执行器注册与状态接口
type ExecutorAPI struct {
	manager *executor.Manager
	logger  *zap.Logger
}

func NewExecutorAPI(manager *executor.Manager, logger *zap.Logger) *ExecutorAPI {
	return &ExecutorAPI{manager: manager, logger: logger}
}

// RegisterExecutorRequest 注册远程执行器
type RegisterExecutorRequest struct {
	ExecutorID string `json:"executor_id" binding:"required"`
	BaseURL    string `json:"base_url" binding:"required"`
	HealthURL  string `json:"health_url"`
}

// Register POST /api/v1/executors
func (a *ExecutorAPI) Register(c *gin.Context) {
	var req RegisterExecutorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exec := executor.NewHTTPExecutor(req.ExecutorID, req.BaseURL, req.HealthURL, a.logger)
	a.manager.Register(exec)

	c.JSON(http.StatusCreated, gin.H{"executor_id": req.ExecutorID})
}

// Deregister DELETE /api/v1/executors/:id
func (a *ExecutorAPI) Deregister(c *gin.Context) {
	a.manager.Deregister(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "executor deregistered"})
}

// List GET /api/v1/executors
func (a *ExecutorAPI) List(c *gin.Context) {
	infos := a.manager.List()
	c.JSON(http.StatusOK, gin.H{"executors": infos, "total": len(infos)})
}
