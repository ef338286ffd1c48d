package scheduler

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// AddRecurring 注册周期性调度：每次 cron 触发都产生一条新的执行记录
func (s *Scheduler) AddRecurring(spec string, req ScheduleRequest) (cron.EntryID, error) {
	if err := req.validate(); err != nil {
		return 0, err
	}

	entryID, err := s.cron.AddFunc(spec, func() {
		if _, err := s.Schedule(req); err != nil {
			s.logger.Error("failed to schedule recurring execution",
				zap.Uint64("task_id", req.TaskID),
				zap.Error(err))
		}
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("recurring schedule added",
		zap.Uint64("task_id", req.TaskID),
		zap.String("cron", spec),
		zap.Int("entry_id", int(entryID)))

	return entryID, nil
}

// RemoveRecurring 移除周期性调度
func (s *Scheduler) RemoveRecurring(id cron.EntryID) {
	s.cron.Remove(id)
	s.logger.Info("recurring schedule removed",
		zap.Int("entry_id", int(id)))
}

// RecurringEntries 当前注册的周期性调度数
func (s *Scheduler) RecurringEntries() int {
	return len(s.cron.Entries())
}
