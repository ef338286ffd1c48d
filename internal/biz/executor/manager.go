package executor

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// entry 管理器内部登记的执行器及其健康状态
type entry struct {
	executor  Executor
	instance  string
	healthy   bool
	failures  int
	successes int
	lastCheck *time.Time
}

// Manager 执行器管理器，按 executor_id 登记执行器实例
type Manager struct {
	mu      sync.RWMutex
	entries map[string]*entry
	logger  *zap.Logger
}

func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		entries: make(map[string]*entry),
		logger:  logger,
	}
}

// Register 注册执行器，重复注册会替换旧实例并重置健康状态
func (m *Manager) Register(exec Executor) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[exec.ID()] = &entry{
		executor: exec,
		instance: uuid.New().String(),
		healthy:  true,
	}
	m.logger.Info("executor registered",
		zap.String("executor_id", exec.ID()))
}

// Deregister 注销执行器
func (m *Manager) Deregister(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	m.logger.Info("executor deregistered",
		zap.String("executor_id", id))
}

// Get 查找执行器，仅返回健康实例
func (m *Manager) Get(id string) (Executor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, fmt.Errorf("executor %q is not registered", id)
	}
	if !e.healthy {
		return nil, fmt.Errorf("executor %q is unhealthy", id)
	}
	return e.executor, nil
}

// Info 执行器状态快照
type Info struct {
	ID        string     `json:"id"`
	Instance  string     `json:"instance"`
	Healthy   bool       `json:"healthy"`
	LastCheck *time.Time `json:"last_check,omitempty"`
}

// List 返回全部执行器的状态快照
func (m *Manager) List() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]Info, 0, len(m.entries))
	for id, e := range m.entries {
		info := Info{ID: id, Instance: e.instance, Healthy: e.healthy}
		if e.lastCheck != nil {
			t := *e.lastCheck
			info.LastCheck = &t
		}
		infos = append(infos, info)
	}
	return infos
}

// snapshotProbes 返回支持健康探测的执行器，供健康检查并发访问
func (m *Manager) snapshotProbes() map[string]HealthReporter {
	m.mu.RLock()
	defer m.mu.RUnlock()

	probes := make(map[string]HealthReporter)
	for id, e := range m.entries {
		if hr, ok := e.executor.(HealthReporter); ok {
			probes[id] = hr
		}
	}
	return probes
}

// recordCheck 记录一次健康检查结果，阈值连续命中才翻转状态。
// 返回值表示这次检查是否使执行器恢复健康。
func (m *Manager) recordCheck(id string, ok bool, failureThreshold, recoveryThreshold int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, exists := m.entries[id]
	if !exists {
		return false
	}
	now := time.Now()
	e.lastCheck = &now

	if ok {
		e.failures = 0
		if e.healthy {
			return false
		}
		e.successes++
		if e.successes >= recoveryThreshold {
			e.healthy = true
			e.successes = 0
			return true
		}
		return false
	}

	e.successes = 0
	e.failures++
	if e.healthy && e.failures >= failureThreshold {
		e.healthy = false
		m.logger.Warn("executor marked unhealthy",
			zap.String("executor_id", id),
			zap.Int("failures", e.failures))
	}
	return false
}
