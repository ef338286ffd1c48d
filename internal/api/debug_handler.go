package api

import (
	"net/http"

	"github.com/davecgh/go-spew/spew"
	"github.com/gin-gonic/gin"
	"github.com/taskflow/scheduler/internal/biz/executor"
	"github.com/taskflow/scheduler/internal/scheduler"
)

// DebugAPI 调度器内部状态转储，仅用于排障
type DebugAPI struct {
	sched   *scheduler.Scheduler
	manager *executor.Manager
}

func NewDebugAPI(sched *scheduler.Scheduler, manager *executor.Manager) *DebugAPI {
	return &DebugAPI{sched: sched, manager: manager}
}

// State GET /api/v1/debug/state
func (a *DebugAPI) State(c *gin.Context) {
	dump := spew.Sdump(map[string]any{
		"stats":     a.sched.Stats(),
		"executors": a.manager.List(),
		"recurring": a.sched.RecurringEntries(),
	})
	c.String(http.StatusOK, dump)
}
