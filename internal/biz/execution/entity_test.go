package execution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, ExecutionStatusPending.IsTerminal())
	assert.False(t, ExecutionStatusRunning.IsTerminal())
	assert.True(t, ExecutionStatusCompleted.IsTerminal())
	assert.True(t, ExecutionStatusFailed.IsTerminal())
	assert.True(t, ExecutionStatusCancelled.IsTerminal())
}

func TestStateTransitionHelpers(t *testing.T) {
	e := &TaskExecution{ID: 1, Status: ExecutionStatusPending, MaxRetries: 2}

	e.StartNow()
	assert.Equal(t, ExecutionStatusRunning, e.Status)
	require.NotNil(t, e.StartedAt)

	e.MarkCompleted("out")
	assert.Equal(t, ExecutionStatusCompleted, e.Status)
	assert.Equal(t, "out", e.Result)
	assert.Empty(t, e.Error)
	require.NotNil(t, e.CompletedAt)
}

func TestMarkFailedKeepsLastError(t *testing.T) {
	e := &TaskExecution{ID: 1, Status: ExecutionStatusRunning}
	e.MarkFailed("boom")
	assert.Equal(t, ExecutionStatusFailed, e.Status)
	assert.Equal(t, "boom", e.Error)
	assert.NotNil(t, e.CompletedAt)
}

func TestMarkCancelledDiscardsError(t *testing.T) {
	e := &TaskExecution{ID: 1, Status: ExecutionStatusRunning, Error: "stale"}
	e.MarkCancelled()
	assert.Equal(t, ExecutionStatusCancelled, e.Status)
	assert.Empty(t, e.Error)
}

func TestResetForRetry(t *testing.T) {
	e := &TaskExecution{ID: 1, Status: ExecutionStatusRunning, RetryCount: 0, MaxRetries: 2}

	e.ResetForRetry()
	assert.Equal(t, ExecutionStatusPending, e.Status)
	assert.Equal(t, 1, e.RetryCount)

	e.ResetForRetry()
	assert.Equal(t, 2, e.RetryCount)
}

func TestCloneIsDeep(t *testing.T) {
	now := time.Now()
	e := &TaskExecution{
		ID:           1,
		Dependencies: []Dependency{{DependencyID: 9, Type: DependencyCompletion}},
		Parameters:   map[string]any{"key": "value"},
		StartedAt:    &now,
	}

	cp := e.Clone()
	cp.Dependencies[0].DependencyID = 999
	cp.Parameters["key"] = "mutated"
	*cp.StartedAt = now.Add(time.Hour)

	assert.Equal(t, uint64(9), e.Dependencies[0].DependencyID)
	assert.Equal(t, "value", e.Parameters["key"])
	assert.Equal(t, now, *e.StartedAt)
}

func TestCloneCopiesCompositeResult(t *testing.T) {
	byMap := &TaskExecution{ID: 1, Result: map[string]any{"rows": 10}}
	cp := byMap.Clone()
	cp.Result.(map[string]any)["rows"] = 0
	assert.Equal(t, 10, byMap.Result.(map[string]any)["rows"])

	bySlice := &TaskExecution{ID: 2, Result: []any{"a", "b"}}
	cp = bySlice.Clone()
	cp.Result.([]any)[0] = "mutated"
	assert.Equal(t, "a", bySlice.Result.([]any)[0])

	scalar := &TaskExecution{ID: 3, Result: "plain"}
	assert.Equal(t, "plain", scalar.Clone().Result)
}
