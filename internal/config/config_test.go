package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "switch:\n  host: 192.0.2.10\n  username: admin\n  password: secret\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 23, cfg.Switch.Port)
	assert.Equal(t, 10*time.Second, cfg.Switch.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Switch.PollInterval)
	assert.Equal(t, "hp_v1910", cfg.Switch.Platform)
	assert.Equal(t, 20, cfg.Switch.MaxPages)
	assert.True(t, cfg.Switch.Unlock.Enabled)
	assert.Equal(t, "local", cfg.Archive.Backend)
	assert.False(t, cfg.Redis.Enabled)
	assert.Same(t, cfg, Get())
}

func TestLoadIntegerSeconds(t *testing.T) {
	path := writeConfig(t, "switch:\n  host: 192.0.2.10\n  timeout: 5\n  poll_interval: 60\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Switch.Timeout, "整数按秒解释")
	assert.Equal(t, time.Minute, cfg.Switch.PollInterval)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SWITCH_COLLECTOR_SWITCH_PORT", "2323")
	t.Setenv("SWITCH_PASSWORD_FOR_TEST", "from-env")
	path := writeConfig(t, "switch:\n  host: 192.0.2.10\n  password: ${SWITCH_PASSWORD_FOR_TEST}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2323, cfg.Switch.Port)
	assert.Equal(t, "from-env", cfg.Switch.Password)
}

func TestLoadValidation(t *testing.T) {
	_, err := Load(writeConfig(t, "switch:\n  port: 23\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "switch.host")

	_, err = Load(writeConfig(t, "switch:\n  host: h\narchive:\n  backend: ftp\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "archive.backend")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
