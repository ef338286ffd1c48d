package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskflow/scheduler/internal/biz/execution"
)

func planEntry(key string, deps ...string) PlanEntry {
	e := PlanEntry{
		Key:     key,
		Request: ScheduleRequest{TaskID: 1, ExecutorID: "worker"},
	}
	for _, d := range deps {
		e.DependsOn = append(e.DependsOn, PlanDependency{Key: d})
	}
	return e
}

func TestSchedulePlanRewritesKeysToIDs(t *testing.T) {
	sched, _, _ := newTestScheduler(t, nil)

	ids, err := sched.SchedulePlan([]PlanEntry{
		planEntry("extract"),
		planEntry("transform", "extract"),
		planEntry("load", "transform"),
	})
	require.NoError(t, err)
	require.Len(t, ids, 3)

	transform := sched.GetStatus(ids["transform"])
	require.NotNil(t, transform)
	require.Len(t, transform.Dependencies, 1)
	assert.Equal(t, ids["extract"], transform.Dependencies[0].DependencyID)
	assert.Equal(t, execution.DependencyCompletion, transform.Dependencies[0].Type)

	load := sched.GetStatus(ids["load"])
	require.NotNil(t, load)
	require.Len(t, load.Dependencies, 1)
	assert.Equal(t, ids["transform"], load.Dependencies[0].DependencyID)
}

func TestSchedulePlanDependencyTypeAndValueCarryOver(t *testing.T) {
	sched, _, _ := newTestScheduler(t, nil)

	entries := []PlanEntry{
		planEntry("probe"),
		{
			Key:     "act",
			Request: ScheduleRequest{TaskID: 1, ExecutorID: "worker"},
			DependsOn: []PlanDependency{
				{Key: "probe", Type: execution.DependencyOutput, ExpectedValue: "ready"},
			},
		},
	}

	ids, err := sched.SchedulePlan(entries)
	require.NoError(t, err)

	act := sched.GetStatus(ids["act"])
	require.NotNil(t, act)
	require.Len(t, act.Dependencies, 1)
	assert.Equal(t, execution.DependencyOutput, act.Dependencies[0].Type)
	assert.Equal(t, "ready", act.Dependencies[0].ExpectedValue)
}

func TestSchedulePlanRejectsCycle(t *testing.T) {
	sched, _, _ := newTestScheduler(t, nil)

	_, err := sched.SchedulePlan([]PlanEntry{
		planEntry("a", "b"),
		planEntry("b", "a"),
	})
	assert.ErrorIs(t, err, ErrPlanCycle)

	// 被拒绝的计划不产生任何执行记录
	assert.Empty(t, sched.List(ListFilter{}))
}

func TestSchedulePlanRejectsUnknownKey(t *testing.T) {
	sched, _, _ := newTestScheduler(t, nil)

	_, err := sched.SchedulePlan([]PlanEntry{planEntry("a", "ghost")})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Empty(t, sched.List(ListFilter{}))
}

func TestSchedulePlanRejectsDuplicateAndEmptyKeys(t *testing.T) {
	sched, _, _ := newTestScheduler(t, nil)

	_, err := sched.SchedulePlan([]PlanEntry{planEntry("a"), planEntry("a")})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = sched.SchedulePlan([]PlanEntry{planEntry("")})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestSchedulePlanRejectsInvalidEntry(t *testing.T) {
	sched, _, _ := newTestScheduler(t, nil)

	_, err := sched.SchedulePlan([]PlanEntry{
		{Key: "bad", Request: ScheduleRequest{ExecutorID: "worker"}},
	})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Empty(t, sched.List(ListFilter{}))
}
