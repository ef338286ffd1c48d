package api

import (
	"github.com/gin-gonic/gin"
	"github.com/taskflow/scheduler/internal/api/middleware"
	"github.com/taskflow/scheduler/internal/biz/executor"
	"github.com/taskflow/scheduler/internal/biz/task"
	"github.com/taskflow/scheduler/internal/scheduler"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
}

func NewServer(
	sched *scheduler.Scheduler,
	registry task.Repo,
	manager *executor.Manager,
	logger *zap.Logger,
) *Server {
	s := &Server{}

	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logging(logger))
	s.router.Use(middleware.ErrorHandling(logger))
	s.router.Use(middleware.Cors())

	executionAPI := NewExecutionAPI(sched, logger)
	taskAPI := NewTaskAPI(registry, logger)
	executorAPI := NewExecutorAPI(manager, logger)
	debugAPI := NewDebugAPI(sched, manager)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/executions", executionAPI.Schedule)
		v1.POST("/executions/batch", executionAPI.ScheduleBatch)
		v1.POST("/executions/plan", executionAPI.SchedulePlan)
		v1.GET("/executions", executionAPI.List)
		v1.GET("/executions/stats", executionAPI.Stats)
		v1.GET("/executions/:id", executionAPI.Get)
		v1.POST("/executions/:id/cancel", executionAPI.Cancel)

		v1.POST("/tasks", taskAPI.Create)
		v1.GET("/tasks", taskAPI.List)
		v1.GET("/tasks/:id", taskAPI.Get)
		v1.PUT("/tasks/:id", taskAPI.Update)
		v1.POST("/tasks/:id/pause", taskAPI.Pause)
		v1.POST("/tasks/:id/resume", taskAPI.Resume)
		v1.DELETE("/tasks/:id", taskAPI.Delete)

		v1.POST("/executors", executorAPI.Register)
		v1.GET("/executors", executorAPI.List)
		v1.DELETE("/executors/:id", executorAPI.Deregister)

		v1.GET("/debug/state", debugAPI.State)
	}

	return s
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
