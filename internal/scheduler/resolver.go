package scheduler

import (
	"reflect"

	"github.com/taskflow/scheduler/internal/biz/execution"
)

// ResourcePredicate 外部注入的资源可用性判定。
// 未注入时 RESOURCE 依赖恒为满足（保留为扩展点）。
type ResourcePredicate func(resource string) bool

// Resolver 依赖求值器：纯谓词，判断一条执行记录声明的依赖是否全部满足
type Resolver struct {
	store      *Store
	resourceOK ResourcePredicate
}

func NewResolver(store *Store, resourceOK ResourcePredicate) *Resolver {
	return &Resolver{store: store, resourceOK: resourceOK}
}

// Satisfied 所有依赖取逻辑与
func (r *Resolver) Satisfied(deps []execution.Dependency) bool {
	for _, dep := range deps {
		if !r.satisfied(dep) {
			return false
		}
	}
	return true
}

func (r *Resolver) satisfied(dep execution.Dependency) bool {
	switch dep.Type {
	case execution.DependencyCompletion:
		// failed/cancelled 的前置不满足 COMPLETION，依赖方会一直等，
		// 除非调用方主动取消
		return r.store.CompletedOK(dep.DependencyID)

	case execution.DependencyStart:
		return r.store.Begun(dep.DependencyID)

	case execution.DependencyOutput:
		result, ok := r.store.ResultOf(dep.DependencyID)
		if !ok {
			return false
		}
		if dep.ExpectedValue == nil {
			return true
		}
		return reflect.DeepEqual(result, dep.ExpectedValue)

	case execution.DependencyResource:
		if r.resourceOK == nil {
			return true
		}
		return r.resourceOK(dep.Resource)

	default:
		// 未知依赖类型视为未满足，避免悄悄放行
		return false
	}
}
