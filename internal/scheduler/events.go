package scheduler

// EventType represents the kind of lifecycle transition being announced.
type EventType string

const (
	EventExecutionScheduled EventType = "execution_scheduled"
	EventExecutionStarted   EventType = "execution_started"
	EventExecutionRetried   EventType = "execution_retried"
	EventExecutionCompleted EventType = "execution_completed"
	EventExecutionFailed    EventType = "execution_failed"
	EventExecutionCancelled EventType = "execution_cancelled"
)

// Event is the message payload for pub/sub.
type Event struct {
	Type        EventType `json:"type"`
	ExecutionID uint64    `json:"execution_id"`
	TaskID      uint64    `json:"task_id,omitempty"`
	ExecutorID  string    `json:"executor_id,omitempty"`
	Attempt     int       `json:"attempt,omitempty"`
	Error       string    `json:"error,omitempty"`
	Source      string    `json:"source,omitempty"`
	Timestamp   int64     `json:"ts,omitempty"`
}

const redisChannel = "taskflow:scheduler-events"
