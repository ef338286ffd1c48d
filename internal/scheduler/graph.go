package scheduler

import (
	"fmt"

	"github.com/gammazero/toposort"
	"github.com/taskflow/scheduler/internal/biz/execution"
	"go.uber.org/zap"
)

// PlanDependency 计划内依赖：按条目 key 引用，调度时改写为真实执行 id
type PlanDependency struct {
	Key           string
	Type          execution.DependencyType
	ExpectedValue any
}

// PlanEntry 批量计划中的一个条目
type PlanEntry struct {
	Key       string
	Request   ScheduleRequest
	DependsOn []PlanDependency
}

// SchedulePlan 调度一组互相依赖的条目。先做环检测，再按拓扑序逐条
// Schedule 并把 key 依赖改写为真实执行 id。任何条目非法、引用未知 key
// 或存在环时整个计划被拒绝，不产生任何执行记录。
func (s *Scheduler) SchedulePlan(entries []PlanEntry) (map[string]uint64, error) {
	byKey := make(map[string]PlanEntry, len(entries))
	for _, e := range entries {
		if e.Key == "" {
			return nil, fmt.Errorf("%w: entry with empty key", ErrInvalidRequest)
		}
		if _, dup := byKey[e.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate plan key %q", ErrInvalidRequest, e.Key)
		}
		if err := e.Request.validate(); err != nil {
			return nil, fmt.Errorf("entry %q: %w", e.Key, err)
		}
		byKey[e.Key] = e
	}

	// 校验依赖引用并构造拓扑排序的边
	var edges []toposort.Edge
	for _, e := range entries {
		if len(e.DependsOn) == 0 {
			edges = append(edges, toposort.Edge{nil, e.Key})
			continue
		}
		for _, dep := range e.DependsOn {
			if _, ok := byKey[dep.Key]; !ok {
				return nil, fmt.Errorf("%w: entry %q depends on unknown key %q", ErrInvalidRequest, e.Key, dep.Key)
			}
			edges = append(edges, toposort.Edge{dep.Key, e.Key})
		}
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlanCycle, err)
	}

	// 按拓扑序调度，依赖 key 改写为已分配的执行 id
	ids := make(map[string]uint64, len(entries))
	for _, raw := range sorted {
		if raw == nil {
			continue
		}
		key := raw.(string)
		entry := byKey[key]

		req := entry.Request
		for _, dep := range entry.DependsOn {
			depType := dep.Type
			if depType == "" {
				depType = execution.DependencyCompletion
			}
			req.Dependencies = append(req.Dependencies, execution.Dependency{
				DependencyID:  ids[dep.Key],
				Type:          depType,
				ExpectedValue: dep.ExpectedValue,
			})
		}

		id, err := s.Schedule(req)
		if err != nil {
			// 条目已预先校验过，到这里只可能是编程错误
			return ids, fmt.Errorf("entry %q: %w", key, err)
		}
		ids[key] = id
	}

	s.logger.Info("plan scheduled",
		zap.Int("entries", len(ids)))

	return ids, nil
}
