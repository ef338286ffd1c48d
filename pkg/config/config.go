package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Scheduler   SchedulerConfig   `mapstructure:"scheduler"`
	HealthCheck HealthCheckConfig `mapstructure:"health_check"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	Redis       RedisConfig       `mapstructure:"redis"`
}

type SchedulerConfig struct {
	InstanceID         string        `mapstructure:"instance_id"`
	Workers            int           `mapstructure:"workers"`
	MaxConcurrent      int64         `mapstructure:"max_concurrent"`
	DependencyInterval time.Duration `mapstructure:"dependency_interval"`
	DefaultTimeout     time.Duration `mapstructure:"default_timeout"`
	DefaultMaxRetries  int           `mapstructure:"default_max_retries"`
	RetryInitialDelay  time.Duration `mapstructure:"retry_initial_delay"`
	RetryMaxDelay      time.Duration `mapstructure:"retry_max_delay"`
	CompletedRetention int           `mapstructure:"completed_retention"`
}

type HealthCheckConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	Interval          time.Duration `mapstructure:"interval"`
	Timeout           time.Duration `mapstructure:"timeout"`
	FailureThreshold  int           `mapstructure:"failure_threshold"`
	RecoveryThreshold int           `mapstructure:"recovery_threshold"`
}

type DatabaseConfig struct {
	Enabled               bool          `mapstructure:"enabled"`
	Host                  string        `mapstructure:"host"`
	Port                  int           `mapstructure:"port"`
	Database              string        `mapstructure:"database"`
	User                  string        `mapstructure:"user"`
	Password              string        `mapstructure:"password"`
	MaxConnections        int           `mapstructure:"max_connections"`
	MaxIdleConnections    int           `mapstructure:"max_idle_connections"`
	ConnectionMaxLifetime time.Duration `mapstructure:"connection_max_lifetime"`
}

type ServerConfig struct {
	IP             string        `mapstructure:"ip"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 设置默认值
	viper.SetDefault("scheduler.instance_id", "scheduler-001")
	viper.SetDefault("scheduler.workers", 8)
	viper.SetDefault("scheduler.max_concurrent", 4)
	viper.SetDefault("scheduler.dependency_interval", "100ms")
	viper.SetDefault("scheduler.default_timeout", "5m")
	viper.SetDefault("scheduler.default_max_retries", 3)
	viper.SetDefault("scheduler.retry_initial_delay", "1s")
	viper.SetDefault("scheduler.retry_max_delay", "30s")
	viper.SetDefault("scheduler.completed_retention", 10000)

	viper.SetDefault("health_check.enabled", true)
	viper.SetDefault("health_check.interval", "30s")
	viper.SetDefault("health_check.timeout", "5s")
	viper.SetDefault("health_check.failure_threshold", 3)
	viper.SetDefault("health_check.recovery_threshold", 2)

	viper.SetDefault("database.enabled", false)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.max_connections", 20)
	viper.SetDefault("database.max_idle_connections", 10)
	viper.SetDefault("database.connection_max_lifetime", "1h")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.max_header_bytes", 1048576)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
	viper.SetDefault("log.output", "stdout")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Default 返回不依赖配置文件的默认配置，供内嵌使用
func Default() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			InstanceID:         "scheduler-001",
			Workers:            8,
			MaxConcurrent:      4,
			DependencyInterval: 100 * time.Millisecond,
			DefaultTimeout:     5 * time.Minute,
			DefaultMaxRetries:  3,
			RetryInitialDelay:  time.Second,
			RetryMaxDelay:      30 * time.Second,
			CompletedRetention: 10000,
		},
		HealthCheck: HealthCheckConfig{
			Enabled:           false,
			Interval:          30 * time.Second,
			Timeout:           5 * time.Second,
			FailureThreshold:  3,
			RecoveryThreshold: 2,
		},
		Server: ServerConfig{
			Port:           8080,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			MaxHeaderBytes: 1048576,
		},
		Log: LogConfig{Level: "info", Format: "json", Output: "stdout"},
	}
}
