// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr    string
	DataDir       string
	DBPath        string
	BackupDir     string
	SessionTTL    time.Duration
	AdminUsername string
	AdminPassword string
	AdminName     string
	AdminEmail    string
}

// UseDatabase reports whether the relational backend is configured. The
// presence of SITECMS_DB_PATH is the single deployment toggle; selection
// happens once per process.
func (c *Config) UseDatabase() bool {
	return c.DBPath != ""
}

// SiteDataPath is the file-backed section document location.
func (c *Config) SiteDataPath() string {
	return filepath.Join(c.DataDir, "site_data.json")
}

// UsersPath is the file-backed user document location.
func (c *Config) UsersPath() string {
	return filepath.Join(c.DataDir, "users.json")
}

// Load reads configuration from environment variables and returns a validated
// Config. All variables are optional: SITECMS_LISTEN_ADDR (127.0.0.1:8080),
// SITECMS_DATA_DIR (data), SITECMS_DB_PATH (empty = JSON file backend),
// SITECMS_BACKUP_DIR (<data dir>/backups), SITECMS_SESSION_TTL (12h), and the
// SITECMS_ADMIN_* seed account values.
func Load() (*Config, error) {
	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("SITECMS_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dataDir := "data"
	if v, ok := os.LookupEnv("SITECMS_DATA_DIR"); ok && v != "" {
		dataDir = v
	}

	dbPath := os.Getenv("SITECMS_DB_PATH")

	backupDir := filepath.Join(dataDir, "backups")
	if v, ok := os.LookupEnv("SITECMS_BACKUP_DIR"); ok && v != "" {
		backupDir = v
	}

	sessionTTL := 12 * time.Hour
	if v, ok := os.LookupEnv("SITECMS_SESSION_TTL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("SITECMS_SESSION_TTL has invalid duration %q: %w", v, err)
		}
		sessionTTL = parsed
	}

	return &Config{
		ListenAddr:    listenAddr,
		DataDir:       dataDir,
		DBPath:        dbPath,
		BackupDir:     backupDir,
		SessionTTL:    sessionTTL,
		AdminUsername: getenv("SITECMS_ADMIN_USERNAME", "admin"),
		AdminPassword: getenv("SITECMS_ADMIN_PASSWORD", "admin123"),
		AdminName:     getenv("SITECMS_ADMIN_NAME", "Administrador"),
		AdminEmail:    getenv("SITECMS_ADMIN_EMAIL", "admin@cass.org.br"),
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
