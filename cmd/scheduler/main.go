package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskflow/scheduler/internal/api"
	"github.com/taskflow/scheduler/internal/biz/executor"
	"github.com/taskflow/scheduler/internal/biz/task"
	"github.com/taskflow/scheduler/internal/infra/persistence/taskrepo"
	"github.com/taskflow/scheduler/internal/orm"
	"github.com/taskflow/scheduler/internal/scheduler"
	"github.com/taskflow/scheduler/pkg/config"
	"github.com/taskflow/scheduler/pkg/logger"
	"github.com/yitter/idgenerator-go/idgen"
	"go.uber.org/zap"
)

func main() {
	// 解析命令行参数
	var configPath string
	flag.StringVar(&configPath, "config", "configs/config.yaml", "path to config file")
	flag.Parse()

	// 初始化雪花 id 生成器
	options := idgen.NewIdGeneratorOptions(1)
	options.WorkerIdBitLength = 6
	idgen.SetIdGenerator(options)

	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 创建日志器
	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting task scheduler",
		zap.String("instance_id", cfg.Scheduler.InstanceID))

	// 任务注册表：默认内存实现，开启数据库后切换到 mysql
	var registry task.Repo
	if cfg.Database.Enabled {
		db, err := orm.New(orm.Config{
			Host:                  cfg.Database.Host,
			Port:                  cfg.Database.Port,
			Database:              cfg.Database.Database,
			User:                  cfg.Database.User,
			Password:              cfg.Database.Password,
			MaxConnections:        cfg.Database.MaxConnections,
			MaxIdleConnections:    cfg.Database.MaxIdleConnections,
			ConnectionMaxLifetime: cfg.Database.ConnectionMaxLifetime,
		})
		if err != nil {
			zapLogger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		registry = taskrepo.NewMysqlRepositoryImpl(db.DB())
	} else {
		registry = taskrepo.NewMemoryRepositoryImpl()
	}

	// 创建执行器管理器
	manager := executor.NewManager(zapLogger)

	// 创建事件总线
	bus := scheduler.NewEventBus(ProvideRedisClient(*cfg), cfg.Scheduler.InstanceID, zapLogger)

	// 创建调度器
	sched := scheduler.New(*cfg, zapLogger, registry, manager, bus)

	// 健康检查器
	checker := executor.NewHealthChecker(zapLogger, cfg.HealthCheck, manager, sched.Breakers())

	// 启动调度器
	if err := sched.Start(); err != nil {
		zapLogger.Fatal("Failed to start scheduler", zap.Error(err))
	}
	checker.Start()

	// 创建API服务器
	apiServer := api.NewServer(sched, registry, manager, zapLogger)

	// 启动HTTP服务器
	httpServer := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        apiServer.Router(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		zapLogger.Info("Starting API server",
			zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start API server", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	zapLogger.Info("Shutting down...")

	// 优雅关闭HTTP服务器
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown API server", zap.Error(err))
	}

	// 停止健康检查与调度器
	checker.Stop()
	if err := sched.Stop(); err != nil {
		zapLogger.Error("Failed to stop scheduler", zap.Error(err))
	}
	bus.Close()

	zapLogger.Info("Shutdown complete")
}
