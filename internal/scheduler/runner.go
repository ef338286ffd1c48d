package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"github.com/taskflow/scheduler/internal/biz/execution"
	"github.com/taskflow/scheduler/internal/biz/executor"
	"github.com/taskflow/scheduler/internal/biz/task"
	"go.uber.org/zap"
)

// RunnerConfig worker 池的运行参数
type RunnerConfig struct {
	Workers            int
	DependencyInterval time.Duration
	RetryInitialDelay  time.Duration
	RetryMaxDelay      time.Duration
}

// TaskRunner worker 池：出队、校验依赖、准入、带超时执行、落结果
type TaskRunner struct {
	cfg       RunnerConfig
	store     *Store
	queue     *Queue
	limiter   *Limiter
	resolver  *Resolver
	registry  task.Repo
	executors *executor.Manager
	breakers  *BreakerRegistry
	bus       IEmitter
	logger    *zap.Logger

	// 每个在途执行一条退避曲线
	backoffMu sync.Mutex
	backoffs  map[uint64]backoff.BackOff

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewTaskRunner(
	cfg RunnerConfig,
	store *Store,
	queue *Queue,
	limiter *Limiter,
	resolver *Resolver,
	registry task.Repo,
	executors *executor.Manager,
	breakers *BreakerRegistry,
	bus IEmitter,
	logger *zap.Logger,
) *TaskRunner {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.DependencyInterval <= 0 {
		cfg.DependencyInterval = 100 * time.Millisecond
	}
	if cfg.RetryInitialDelay <= 0 {
		cfg.RetryInitialDelay = time.Second
	}
	if cfg.RetryMaxDelay <= 0 {
		cfg.RetryMaxDelay = 30 * time.Second
	}
	return &TaskRunner{
		cfg:       cfg,
		store:     store,
		queue:     queue,
		limiter:   limiter,
		resolver:  resolver,
		registry:  registry,
		executors: executors,
		breakers:  breakers,
		bus:       bus,
		logger:    logger,
		backoffs:  make(map[uint64]backoff.BackOff),
	}
}

// Start 启动 worker 池
func (r *TaskRunner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	for i := 0; i < r.cfg.Workers; i++ {
		r.wg.Add(1)
		go r.worker(ctx, i)
	}
	r.logger.Info("task runner started",
		zap.Int("workers", r.cfg.Workers),
		zap.Int64("max_concurrent", r.limiter.Capacity()))
}

// Stop 停止 worker 池并等待所有 worker 退出
func (r *TaskRunner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
	r.logger.Info("task runner stopped")
}

// worker 工作协程
func (r *TaskRunner) worker(ctx context.Context, id int) {
	defer r.wg.Done()

	r.logger.Debug("worker started", zap.Int("worker_id", id))

	for {
		execID, ok := r.queue.Pop(ctx)
		if !ok {
			r.logger.Debug("worker stopped", zap.Int("worker_id", id))
			return
		}
		r.process(ctx, execID)
	}
}

// process 处理一个出队的执行 id，对应一次完整的状态机推进
func (r *TaskRunner) process(ctx context.Context, execID uint64) {
	// 1. 查找：不在 pending 说明已被其它路径处理，直接丢弃
	rec := r.store.PendingView(execID)
	if rec == nil {
		return
	}

	// 2. 取消检查：先于依赖检查，否则依赖永远无法满足的记录无法被取消
	if rec.CancellationRequested {
		if r.store.CancelPending(execID) {
			r.clearBackoff(execID)
			r.bus.Emit(Event{Type: EventExecutionCancelled, ExecutionID: execID, TaskID: rec.TaskID})
			r.logger.Info("execution cancelled before start",
				zap.Uint64("execution_id", execID))
		}
		return
	}

	// 3. 依赖检查：未满足则回队尾并短暂让出，避免空转
	if !r.resolver.Satisfied(rec.Dependencies) {
		r.queue.Push(execID)
		sleepCtx(ctx, r.cfg.DependencyInterval)
		return
	}

	// 4. 准入：门闸耗尽时阻塞
	if err := r.limiter.Acquire(ctx); err != nil {
		// 调度器正在停止，把 id 放回去以便下次启动继续
		r.queue.Push(execID)
		return
	}

	run := r.store.MarkRunning(execID)
	if run == nil {
		// 被并发取消或处理，归还名额
		r.limiter.Release()
		return
	}

	r.bus.Emit(Event{
		Type:        EventExecutionStarted,
		ExecutionID: execID,
		TaskID:      run.TaskID,
		ExecutorID:  run.ExecutorID,
		Attempt:     run.RetryCount,
	})
	r.logger.Info("executing task",
		zap.Uint64("execution_id", execID),
		zap.Uint64("task_id", run.TaskID),
		zap.String("executor_id", run.ExecutorID),
		zap.Int("attempt", run.RetryCount))

	// 5. 执行：单次尝试受 timeout 约束
	result, err := r.attempt(ctx, run)

	// 6+7. 结果落账并归还名额。必须先把记录移出 running 再释放门闸，
	// 保证 running 数量永远不超过门闸容量。
	r.settle(ctx, run, result, err)
}

// attempt 一次执行尝试：解析任务描述、取执行器、经熔断器调用。
// 超时后放弃等待，执行器侧由 ctx 负责尽快收敛。
func (r *TaskRunner) attempt(ctx context.Context, run *execution.TaskExecution) (any, error) {
	t, err := r.registry.GetByID(ctx, run.TaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve task %d: %w", run.TaskID, err)
	}
	if t == nil {
		return nil, fmt.Errorf("task %d is not registered", run.TaskID)
	}

	exec, err := r.executors.Get(run.ExecutorID)
	if err != nil {
		return nil, err
	}

	attemptCtx := ctx
	var cancel context.CancelFunc
	if run.Timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, run.Timeout)
	} else {
		attemptCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	cb := r.breakers.Get(run.ExecutorID)

	type outcome struct {
		result any
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := cb.Execute(func() (any, error) {
			return exec.Run(attemptCtx, t, executor.RunContext{
				ExecutionID: run.ID,
				TaskID:      run.TaskID,
				Attempt:     run.RetryCount,
				Parameters:  run.Parameters,
			})
		})
		done <- outcome{result: result, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			if errors.Is(out.err, context.DeadlineExceeded) {
				return nil, ErrExecutionTimeout
			}
			if errors.Is(out.err, gobreaker.ErrOpenState) {
				return nil, fmt.Errorf("executor %q unavailable: %w", run.ExecutorID, out.err)
			}
			return nil, out.err
		}
		return out.result, nil
	case <-attemptCtx.Done():
		// 放弃等待，执行器协程自行收尾，结果被丢弃
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return nil, ErrExecutionTimeout
		}
		return nil, attemptCtx.Err()
	}
}

// settle 根据尝试结果推进终态或重试
func (r *TaskRunner) settle(ctx context.Context, run *execution.TaskExecution, result any, attemptErr error) {
	execID := run.ID

	if attemptErr == nil {
		r.store.Complete(execID, result)
		r.limiter.Release()
		r.clearBackoff(execID)
		r.bus.Emit(Event{Type: EventExecutionCompleted, ExecutionID: execID, TaskID: run.TaskID, ExecutorID: run.ExecutorID})
		r.logger.Info("execution completed",
			zap.Uint64("execution_id", execID),
			zap.Uint64("task_id", run.TaskID))
		return
	}

	// 取消优先于失败：本次尝试的错误被丢弃
	if r.store.CancellationRequested(execID) {
		r.store.CancelRunning(execID)
		r.limiter.Release()
		r.clearBackoff(execID)
		r.bus.Emit(Event{Type: EventExecutionCancelled, ExecutionID: execID, TaskID: run.TaskID})
		r.logger.Info("execution cancelled",
			zap.Uint64("execution_id", execID))
		return
	}

	if r.store.Retry(execID) {
		r.limiter.Release()
		delay := r.nextRetryDelay(execID)
		r.bus.Emit(Event{
			Type:        EventExecutionRetried,
			ExecutionID: execID,
			TaskID:      run.TaskID,
			Attempt:     run.RetryCount + 1,
			Error:       attemptErr.Error(),
		})
		r.logger.Info("retrying execution",
			zap.Uint64("execution_id", execID),
			zap.Int("attempt", run.RetryCount+1),
			zap.Duration("backoff", delay),
			zap.Error(attemptErr))

		sleepCtx(ctx, delay)
		r.queue.Push(execID)
		return
	}

	reason := attemptErr.Error()
	r.store.FinalizeFailed(execID, reason)
	r.limiter.Release()
	r.clearBackoff(execID)
	r.bus.Emit(Event{Type: EventExecutionFailed, ExecutionID: execID, TaskID: run.TaskID, Error: reason})
	r.logger.Error("execution failed",
		zap.Uint64("execution_id", execID),
		zap.Uint64("task_id", run.TaskID),
		zap.String("reason", reason))
}

// nextRetryDelay 取该执行的下一个退避间隔
func (r *TaskRunner) nextRetryDelay(execID uint64) time.Duration {
	r.backoffMu.Lock()
	defer r.backoffMu.Unlock()

	b, ok := r.backoffs[execID]
	if !ok {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = r.cfg.RetryInitialDelay
		eb.MaxInterval = r.cfg.RetryMaxDelay
		eb.MaxElapsedTime = 0
		b = eb
		r.backoffs[execID] = b
	}
	return b.NextBackOff()
}

func (r *TaskRunner) clearBackoff(execID uint64) {
	r.backoffMu.Lock()
	defer r.backoffMu.Unlock()
	delete(r.backoffs, execID)
}

// sleepCtx 可被 ctx 打断的睡眠
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
