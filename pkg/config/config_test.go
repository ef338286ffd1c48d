package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scheduler:\n  workers: 16\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Scheduler.Workers)
	assert.Equal(t, int64(4), cfg.Scheduler.MaxConcurrent)
	assert.Equal(t, 100*time.Millisecond, cfg.Scheduler.DependencyInterval)
	assert.Equal(t, 5*time.Minute, cfg.Scheduler.DefaultTimeout)
	assert.Equal(t, 3, cfg.Scheduler.DefaultMaxRetries)
	assert.Equal(t, 10000, cfg.Scheduler.CompletedRetention)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
scheduler:
  instance_id: "node-7"
  max_concurrent: 12
  default_timeout: 90s
redis:
  enabled: true
  host: "redis.internal"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "node-7", cfg.Scheduler.InstanceID)
	assert.Equal(t, int64(12), cfg.Scheduler.MaxConcurrent)
	assert.Equal(t, 90*time.Second, cfg.Scheduler.DefaultTimeout)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis.internal", cfg.Redis.Host)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
