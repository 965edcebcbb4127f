package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_AppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("system:\n  system_id: test.sys\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test.sys", cfg.System.SystemID)
	assert.Equal(t, DefaultIDSeparator, cfg.System.IDSeparator)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "http://localhost:3001/api/ac", cfg.ACAPI.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.ACAPI.Timeout)
	assert.Equal(t, time.Minute, cfg.Scheduler.Interval)
	assert.Equal(t, time.Minute, cfg.Security.Interval)
	assert.Equal(t, 30*time.Minute, cfg.Security.Cooldown)
	assert.Equal(t, "noreply@airwise.com", cfg.Mail.From)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.Equal(t, 3600, cfg.Push.TTL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSystemConfig_KeyAndSplit(t *testing.T) {
	sys := SystemConfig{SystemID: "sys", IDSeparator: "#::#"}

	key := sys.Key("abc")
	assert.Equal(t, "sys#::#abc", key)

	systemID, localID := sys.Split(key)
	assert.Equal(t, "sys", systemID)
	assert.Equal(t, "abc", localID)

	systemID, localID = sys.Split("plain")
	assert.Equal(t, "", systemID)
	assert.Equal(t, "plain", localID)
}

func TestSchedulerConfig_Location(t *testing.T) {
	loc, err := SchedulerConfig{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = SchedulerConfig{Timezone: "Asia/Jerusalem"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Jerusalem", loc.String())

	_, err = SchedulerConfig{Timezone: "Mars/Olympus"}.Location()
	assert.Error(t, err)
}
