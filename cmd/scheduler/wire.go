//go:build wireinject
// +build wireinject

package main

//go:generate go run -mod=mod github.com/google/wire/cmd/wire

import (
	"github.com/google/wire"
	"github.com/taskflow/scheduler/internal/api"
	"github.com/taskflow/scheduler/internal/biz/executor"
	"github.com/taskflow/scheduler/internal/infra/persistence/commonrepo"
	"github.com/taskflow/scheduler/internal/infra/persistence/taskrepo"
	"github.com/taskflow/scheduler/internal/scheduler"
	"github.com/taskflow/scheduler/pkg/config"
	"go.uber.org/zap"
)

func InitializeServer(logger *zap.Logger, cfg config.Config, db commonrepo.DB) (*api.Server, error) {
	wire.Build(
		ProvideRedisClient,
		ProvideHealthCheckConfig,
		ProvideInstanceID,
		ProvideBreakerResetter,

		wire.Bind(new(scheduler.IEmitter), new(*scheduler.EventBus)),

		scheduler.Provider,
		executor.Provider,
		taskrepo.Provider,
		api.Provider,
	)
	return nil, nil
}
