package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"SITECMS_LISTEN_ADDR",
	"SITECMS_DATA_DIR",
	"SITECMS_DB_PATH",
	"SITECMS_BACKUP_DIR",
	"SITECMS_SESSION_TTL",
	"SITECMS_ADMIN_USERNAME",
	"SITECMS_ADMIN_PASSWORD",
	"SITECMS_ADMIN_NAME",
	"SITECMS_ADMIN_EMAIL",
}

// isolateConfigEnv clears every configuration variable for the duration of the
// test, restoring whatever the surrounding environment had.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		if v, ok := os.LookupEnv(key); ok {
			t.Setenv(key, v)
			os.Unsetenv(key)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Empty(t, cfg.DBPath)
	assert.False(t, cfg.UseDatabase())
	assert.Equal(t, filepath.Join("data", "backups"), cfg.BackupDir)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.Equal(t, "admin123", cfg.AdminPassword)

	assert.Equal(t, filepath.Join("data", "site_data.json"), cfg.SiteDataPath())
	assert.Equal(t, filepath.Join("data", "users.json"), cfg.UsersPath())
}

func TestLoad_Overrides(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("SITECMS_LISTEN_ADDR", "0.0.0.0:9000")
	t.Setenv("SITECMS_DATA_DIR", "/var/lib/sitecms")
	t.Setenv("SITECMS_DB_PATH", "/var/lib/sitecms/sitecms.db")
	t.Setenv("SITECMS_BACKUP_DIR", "/var/backups/sitecms")
	t.Setenv("SITECMS_SESSION_TTL", "30m")
	t.Setenv("SITECMS_ADMIN_USERNAME", "root")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddr)
	assert.Equal(t, "/var/lib/sitecms", cfg.DataDir)
	assert.True(t, cfg.UseDatabase())
	assert.Equal(t, "/var/backups/sitecms", cfg.BackupDir)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "root", cfg.AdminUsername)
	assert.Equal(t, filepath.Join("/var/lib/sitecms", "site_data.json"), cfg.SiteDataPath())
}

func TestLoad_InvalidSessionTTL(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("SITECMS_SESSION_TTL", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SITECMS_SESSION_TTL")
}
