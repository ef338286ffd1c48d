package api

import "github.com/google/wire"

var Provider = wire.NewSet(
	NewServer,
	NewExecutionAPI,
	NewTaskAPI,
	NewExecutorAPI,
	NewDebugAPI,
)
