package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaliisemenov/healthd/internal/config"
)

func TestLoadConfig_DefaultsApplyWithNoFile(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.True(t, cfg.Health.Enabled)
	assert.Equal(t, 10, cfg.Health.RunAtLeastEverySeconds)
	assert.Equal(t, 1000, cfg.Health.AlarmLogMax)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "healthd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
health:
  run_at_least_every_seconds: 30
  alarm_log_max: 500
log:
  level: debug
`), 0o644))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Health.RunAtLeastEverySeconds)
	assert.Equal(t, 500, cfg.Health.AlarmLogMax)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestConfig_Validate_RejectsZeroRunInterval(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{}
	cfg.Health.RunAtLeastEverySeconds = 0
	cfg.Health.AlarmLogMax = 10

	err := cfg.Validate()
	assert.Error(t, err)
}

func TestConfig_Validate_RequiresSilencersFileWhenEnabled(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{}
	cfg.Health.Enabled = true
	cfg.Health.RunAtLeastEverySeconds = 10
	cfg.Health.AlarmLogMax = 10
	cfg.Health.SilencersFile = ""

	err := cfg.Validate()
	assert.Error(t, err)
}
