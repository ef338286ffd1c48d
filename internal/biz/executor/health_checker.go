package executor

import (
	"context"
	"sync"
	"time"

	"github.com/taskflow/scheduler/pkg/config"
	"go.uber.org/zap"
)

// BreakerResetter 执行器恢复健康后重置其熔断器
type BreakerResetter interface {
	ResetBreaker(executorID string)
}

type HealthChecker struct {
	logger  *zap.Logger
	config  config.HealthCheckConfig
	manager *Manager
	resets  BreakerResetter // 可为 nil
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func NewHealthChecker(logger *zap.Logger, cfg config.HealthCheckConfig, manager *Manager, resets BreakerResetter) *HealthChecker {
	return &HealthChecker{
		logger:  logger,
		config:  cfg,
		manager: manager,
		resets:  resets,
		stopCh:  make(chan struct{}),
	}
}

func (h *HealthChecker) Start() {
	if !h.config.Enabled {
		h.logger.Info("health checker is disabled")
		return
	}
	h.wg.Add(1)
	go h.run()
	h.logger.Info("health checker started",
		zap.Duration("interval", h.config.Interval))
}

func (h *HealthChecker) Stop() {
	close(h.stopCh)
	h.wg.Wait()
	if h.config.Enabled {
		h.logger.Info("health checker stopped")
	}
}

func (h *HealthChecker) run() {
	defer h.wg.Done()

	ticker := time.NewTicker(h.config.Interval)
	defer ticker.Stop()

	h.checkAll()

	for {
		select {
		case <-ticker.C:
			h.checkAll()
		case <-h.stopCh:
			return
		}
	}
}

func (h *HealthChecker) checkAll() {
	probes := h.manager.snapshotProbes()

	// 并发检查所有执行器
	var wg sync.WaitGroup
	for id, probe := range probes {
		wg.Add(1)
		go func(id string, probe HealthReporter) {
			defer wg.Done()
			h.checkOne(id, probe)
		}(id, probe)
	}
	wg.Wait()
}

func (h *HealthChecker) checkOne(id string, probe HealthReporter) {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	err := probe.Health(ctx)
	recovered := h.manager.recordCheck(id, err == nil,
		h.config.FailureThreshold, h.config.RecoveryThreshold)

	if err != nil {
		h.logger.Debug("executor health check failed",
			zap.String("executor_id", id),
			zap.Error(err))
		return
	}

	if recovered {
		h.logger.Info("executor recovered to healthy",
			zap.String("executor_id", id))
		if h.resets != nil {
			h.resets.ResetBreaker(id)
		}
	}
}
