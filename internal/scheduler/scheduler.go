package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/taskflow/scheduler/internal/biz/execution"
	"github.com/taskflow/scheduler/internal/biz/executor"
	"github.com/taskflow/scheduler/internal/biz/task"
	"github.com/taskflow/scheduler/pkg/config"
	"github.com/yitter/idgenerator-go/idgen"
	"go.uber.org/zap"
)

// Scheduler 调度器门面：对外只暴露 Schedule / ScheduleBatch / Cancel /
// GetStatus 及其查询扩展，独占持有状态存储
type Scheduler struct {
	config config.SchedulerConfig
	logger *zap.Logger

	store    *Store
	queue    *Queue
	limiter  *Limiter
	resolver *Resolver
	runner   *TaskRunner
	breakers *BreakerRegistry
	bus      IEmitter
	cron     *cron.Cron

	instanceID string
}

// Option 调度器可选项
type Option func(*options)

type options struct {
	resourceOK ResourcePredicate
}

// WithResourcePredicate 注入 RESOURCE 依赖的判定逻辑
func WithResourcePredicate(p ResourcePredicate) Option {
	return func(o *options) { o.resourceOK = p }
}

// New 创建调度器
func New(
	cfg config.Config,
	logger *zap.Logger,
	registry task.Repo,
	executors *executor.Manager,
	bus IEmitter,
	opts ...Option,
) *Scheduler {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	store := NewStore(cfg.Scheduler.CompletedRetention)
	queue := NewQueue(cfg.Scheduler.Workers * 16)
	limiter := NewLimiter(cfg.Scheduler.MaxConcurrent)
	resolver := NewResolver(store, o.resourceOK)
	breakers := NewBreakerRegistry(logger)

	runner := NewTaskRunner(
		RunnerConfig{
			Workers:            cfg.Scheduler.Workers,
			DependencyInterval: cfg.Scheduler.DependencyInterval,
			RetryInitialDelay:  cfg.Scheduler.RetryInitialDelay,
			RetryMaxDelay:      cfg.Scheduler.RetryMaxDelay,
		},
		store, queue, limiter, resolver,
		registry, executors, breakers, bus, logger,
	)

	return &Scheduler{
		config:     cfg.Scheduler,
		logger:     logger,
		store:      store,
		queue:      queue,
		limiter:    limiter,
		resolver:   resolver,
		runner:     runner,
		breakers:   breakers,
		bus:        bus,
		cron:       cron.New(cron.WithSeconds()),
		instanceID: cfg.Scheduler.InstanceID,
	}
}

// Start 启动调度器
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler",
		zap.String("instance_id", s.instanceID))

	s.runner.Start()
	s.cron.Start()
	return nil
}

// Stop 停止调度器并等待 worker 退出
func (s *Scheduler) Stop() error {
	s.logger.Info("stopping scheduler",
		zap.String("instance_id", s.instanceID))

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.runner.Stop()

	s.logger.Info("scheduler stopped",
		zap.String("instance_id", s.instanceID))
	return nil
}

// Breakers 供健康检查在执行器恢复后重置熔断器
func (s *Scheduler) Breakers() *BreakerRegistry {
	return s.breakers
}

// ScheduleRequest 一次调度请求
type ScheduleRequest struct {
	TaskID       uint64
	ExecutorID   string
	Mode         execution.ExecutionMode
	Dependencies []execution.Dependency
	Parameters   map[string]any
	Priority     int
	Timeout      time.Duration
	MaxRetries   int // 负数表示未指定，取配置默认值；0 表示只尝试一次
}

// validate 同步拒绝缺少必填字段的请求
func (r *ScheduleRequest) validate() error {
	if r.TaskID == 0 {
		return fmt.Errorf("%w: missing task_id", ErrInvalidRequest)
	}
	if r.ExecutorID == "" {
		return fmt.Errorf("%w: missing executor_id", ErrInvalidRequest)
	}
	return nil
}

// Schedule 构造执行记录并入队。从不因依赖未满足而阻塞，
// 对合法输入从不失败。
func (s *Scheduler) Schedule(req ScheduleRequest) (uint64, error) {
	if err := req.validate(); err != nil {
		return 0, err
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = s.config.DefaultTimeout
	}
	maxRetries := req.MaxRetries
	if maxRetries < 0 {
		maxRetries = s.config.DefaultMaxRetries
	}
	mode := req.Mode
	if mode == "" {
		mode = execution.ExecutionModeAsync
	}

	rec := &execution.TaskExecution{
		ID:           uint64(idgen.NextId()),
		TaskID:       req.TaskID,
		ExecutorID:   req.ExecutorID,
		Mode:         mode,
		Dependencies: req.Dependencies,
		Parameters:   req.Parameters,
		Priority:     req.Priority,
		Timeout:      timeout,
		MaxRetries:   maxRetries,
		Status:       execution.ExecutionStatusPending,
		CreatedAt:    time.Now(),
	}

	s.store.AddPending(rec)
	s.queue.Push(rec.ID)
	s.bus.Emit(Event{
		Type:        EventExecutionScheduled,
		ExecutionID: rec.ID,
		TaskID:      rec.TaskID,
		ExecutorID:  rec.ExecutorID,
	})

	s.logger.Debug("execution scheduled",
		zap.Uint64("execution_id", rec.ID),
		zap.Uint64("task_id", rec.TaskID),
		zap.String("executor_id", rec.ExecutorID))

	return rec.ID, nil
}

// BatchResult ScheduleBatch 的逐条结果：要么拿到 id，要么拿到拒绝原因
type BatchResult struct {
	ExecutionID uint64
	Err         error
}

// ScheduleBatch 逐条调度，非法条目不再静默跳过而是返回对应错误
func (s *Scheduler) ScheduleBatch(reqs []ScheduleRequest) []BatchResult {
	results := make([]BatchResult, 0, len(reqs))
	for _, req := range reqs {
		id, err := s.Schedule(req)
		results = append(results, BatchResult{ExecutionID: id, Err: err})
	}
	return results
}

// Cancel 协作式取消：pending 或 running 的记录置取消标记并返回 true，
// 已终态或未知 id 返回 false。正在执行器内的调用不会被打断，
// 取消在本次尝试返回后生效。
func (s *Scheduler) Cancel(id uint64) bool {
	ok := s.store.RequestCancel(id)
	if ok {
		s.logger.Info("cancellation requested",
			zap.Uint64("execution_id", id))
	}
	return ok
}

// GetStatus O(1) 查找执行记录，返回不可变快照，未知 id 返回 nil
func (s *Scheduler) GetStatus(id uint64) *execution.TaskExecution {
	return s.store.Get(id)
}

// List 按过滤条件查询执行记录快照
func (s *Scheduler) List(filter ListFilter) []*execution.TaskExecution {
	return s.store.List(filter)
}

// Stats 各状态的记录数统计
func (s *Scheduler) Stats() map[execution.ExecutionStatus]int {
	return s.store.Stats()
}
