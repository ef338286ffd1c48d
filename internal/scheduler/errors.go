package scheduler

import "errors"

// ErrInvalidRequest indicates a schedule request missing required fields.
// It is the only error surfaced synchronously by the facade.
var ErrInvalidRequest = errors.New("invalid schedule request")

// ErrExecutionTimeout marks an attempt that exceeded its wall-clock budget.
// It counts against the retry budget like any other executor failure.
var ErrExecutionTimeout = errors.New("execution timed out")

// ErrPlanCycle indicates a batch plan whose entries form a dependency cycle.
var ErrPlanCycle = errors.New("plan contains dependency cycle")
