package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskflow/scheduler/internal/biz/task"
	"github.com/taskflow/scheduler/pkg/config"
	"go.uber.org/zap"
)

type stubExecutor struct {
	id        string
	healthErr error
}

func (s *stubExecutor) ID() string { return s.id }

func (s *stubExecutor) Run(ctx context.Context, t *task.Task, rc RunContext) (any, error) {
	return nil, nil
}

func (s *stubExecutor) Health(ctx context.Context) error { return s.healthErr }

func TestManagerRegisterAndGet(t *testing.T) {
	m := NewManager(zap.NewNop())

	_, err := m.Get("worker")
	assert.ErrorContains(t, err, "not registered")

	m.Register(&stubExecutor{id: "worker"})
	exec, err := m.Get("worker")
	require.NoError(t, err)
	assert.Equal(t, "worker", exec.ID())

	infos := m.List()
	require.Len(t, infos, 1)
	assert.True(t, infos[0].Healthy)
	assert.NotEmpty(t, infos[0].Instance)

	m.Deregister("worker")
	_, err = m.Get("worker")
	assert.Error(t, err)
	assert.Empty(t, m.List())
}

func TestManagerUnhealthyAfterFailureThreshold(t *testing.T) {
	m := NewManager(zap.NewNop())
	m.Register(&stubExecutor{id: "worker"})

	// 连续失败达到阈值才翻转为不健康
	m.recordCheck("worker", false, 3, 2)
	m.recordCheck("worker", false, 3, 2)
	_, err := m.Get("worker")
	require.NoError(t, err)

	m.recordCheck("worker", false, 3, 2)
	_, err = m.Get("worker")
	assert.ErrorContains(t, err, "unhealthy")
}

func TestManagerRecoveryThreshold(t *testing.T) {
	m := NewManager(zap.NewNop())
	m.Register(&stubExecutor{id: "worker"})

	for i := 0; i < 3; i++ {
		m.recordCheck("worker", false, 3, 2)
	}
	_, err := m.Get("worker")
	require.Error(t, err)

	// 恢复同样要求连续成功达到阈值
	recovered := m.recordCheck("worker", true, 3, 2)
	assert.False(t, recovered)
	_, err = m.Get("worker")
	require.Error(t, err)

	recovered = m.recordCheck("worker", true, 3, 2)
	assert.True(t, recovered)
	_, err = m.Get("worker")
	assert.NoError(t, err)
}

func TestManagerSuccessResetsFailureStreak(t *testing.T) {
	m := NewManager(zap.NewNop())
	m.Register(&stubExecutor{id: "worker"})

	m.recordCheck("worker", false, 3, 2)
	m.recordCheck("worker", false, 3, 2)
	m.recordCheck("worker", true, 3, 2)
	m.recordCheck("worker", false, 3, 2)
	m.recordCheck("worker", false, 3, 2)

	_, err := m.Get("worker")
	assert.NoError(t, err, "streak was broken by a success")
}

func TestManagerReRegisterResetsHealth(t *testing.T) {
	m := NewManager(zap.NewNop())
	m.Register(&stubExecutor{id: "worker"})

	for i := 0; i < 3; i++ {
		m.recordCheck("worker", false, 3, 2)
	}
	_, err := m.Get("worker")
	require.Error(t, err)

	m.Register(&stubExecutor{id: "worker"})
	_, err = m.Get("worker")
	assert.NoError(t, err)
}

type resetRecorder struct {
	ids []string
}

func (r *resetRecorder) ResetBreaker(id string) { r.ids = append(r.ids, id) }

func TestHealthCheckerSnapshotOnlyIncludesReporters(t *testing.T) {
	m := NewManager(zap.NewNop())
	m.Register(&stubExecutor{id: "probed"})

	probes := m.snapshotProbes()
	require.Len(t, probes, 1)
	_, ok := probes["probed"]
	assert.True(t, ok)
}

func TestHealthCheckerRecoveryResetsBreaker(t *testing.T) {
	m := NewManager(zap.NewNop())
	stub := &stubExecutor{id: "worker", healthErr: errors.New("down")}
	m.Register(stub)

	resets := &resetRecorder{}
	h := NewHealthChecker(zap.NewNop(), config.HealthCheckConfig{
		Enabled:           true,
		Timeout:           100 * time.Millisecond,
		FailureThreshold:  1,
		RecoveryThreshold: 1,
	}, m, resets)

	h.checkAll()
	_, err := m.Get("worker")
	require.Error(t, err)

	stub.healthErr = nil
	h.checkAll()
	_, err = m.Get("worker")
	require.NoError(t, err)
	assert.Equal(t, []string{"worker"}, resets.ids)
}
