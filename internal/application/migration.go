package application

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"

	"github.com/ericfisherdev/sitecms/internal/domain/port/driven"
)

// MigrationService performs the one-time, idempotent transfer of file-backed
// site data and accounts into the relational backend. It runs from the
// composition root before the HTTP server starts and only when relational
// storage is configured. Failures are logged and reported through Run's
// return value; they never abort application startup.
type MigrationService struct {
	fileSections driven.SectionStore
	fileUsers    driven.UserStore
	dbSections   driven.SectionImporter
	dbUsers      driven.UserImporter
	dataFiles    []string
	backupDir    string
	logger       *slog.Logger
}

// NewMigrationService creates a MigrationService. dataFiles are the JSON
// documents to back up before any relational write; backupDir receives the
// timestamped copies and is never pruned automatically.
func NewMigrationService(
	fileSections driven.SectionStore,
	fileUsers driven.UserStore,
	dbSections driven.SectionImporter,
	dbUsers driven.UserImporter,
	dataFiles []string,
	backupDir string,
	logger *slog.Logger,
) *MigrationService {
	return &MigrationService{
		fileSections: fileSections,
		fileUsers:    fileUsers,
		dbSections:   dbSections,
		dbUsers:      dbUsers,
		dataFiles:    dataFiles,
		backupDir:    backupDir,
		logger:       logger,
	}
}

// Run executes the migration protocol and reports whether anything was
// migrated. When the relational store already holds both section and user
// rows the run is skipped entirely; otherwise each phase (sections, then
// users) commits as one transaction, and a failed phase rolls back without
// affecting the other.
func (m *MigrationService) Run(ctx context.Context) bool {
	sectionCount, err := m.dbSections.CountSections(ctx)
	if err != nil {
		m.logger.Error("migration: count sections", "error", err)
		return false
	}
	userCount, err := m.dbUsers.CountUsers(ctx)
	if err != nil {
		m.logger.Error("migration: count users", "error", err)
		return false
	}

	if sectionCount > 0 && userCount > 0 {
		m.logger.Info("migration: relational store already populated, skipping")
		return false
	}

	m.backupFiles()

	migrated := false
	if m.migrateSections(ctx, sectionCount == 0) {
		migrated = true
	}
	if m.migrateUsers(ctx) {
		migrated = true
	}
	return migrated
}

// migrateSections copies the file-backed section document. Existing rows are
// overwritten only when the table was empty at the start of the run, so a
// re-run after manual edits never clobbers them.
func (m *MigrationService) migrateSections(ctx context.Context, tableWasEmpty bool) bool {
	data, err := m.fileSections.Load(ctx)
	if err != nil {
		m.logger.Error("migration: load file sections", "error", err)
		return false
	}
	if len(data) == 0 {
		return false
	}

	written, err := m.dbSections.ImportSections(ctx, data, tableWasEmpty)
	if err != nil {
		m.logger.Error("migration: import sections", "error", err)
		return false
	}

	m.logger.Info("migration: sections migrated", "count", written)
	return written > 0
}

// migrateUsers copies file-backed accounts, skipping any username already in
// the relational store. Plaintext passwords from legacy files are hashed
// exactly once; values already carrying a bcrypt prefix pass through as-is.
func (m *MigrationService) migrateUsers(ctx context.Context) bool {
	users, err := m.fileUsers.ListAll(ctx)
	if err != nil {
		m.logger.Error("migration: load file users", "error", err)
		return false
	}
	if len(users) == 0 {
		return false
	}

	for i, user := range users {
		if user.PasswordHash == "" || IsBcryptHash(user.PasswordHash) {
			continue
		}
		hash, err := HashPassword(user.PasswordHash)
		if err != nil {
			m.logger.Error("migration: hash password", "username", user.Username, "error", err)
			return false
		}
		users[i].PasswordHash = hash
	}

	inserted, err := m.dbUsers.ImportUsers(ctx, users)
	if err != nil {
		m.logger.Error("migration: import users", "error", err)
		return false
	}

	m.logger.Info("migration: users migrated", "count", inserted)
	return inserted > 0
}

// backupFiles copies each source document into the backup directory with a
// timestamp suffix. Missing sources are expected on fresh installs and are
// not an error; a failed copy is logged but does not stop the migration,
// matching the non-fatal contract.
func (m *MigrationService) backupFiles() {
	timestamp := time.Now().Format("20060102_150405")

	for _, path := range m.dataFiles {
		raw, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			m.logger.Warn("migration: read backup source", "path", path, "error", err)
			continue
		}

		if err := os.MkdirAll(m.backupDir, 0o755); err != nil {
			m.logger.Warn("migration: create backup dir", "path", m.backupDir, "error", err)
			return
		}

		name := fmt.Sprintf("%s.backup_%s", filepath.Base(path), timestamp)
		target := filepath.Join(m.backupDir, name)
		if err := atomic.WriteFile(target, bytes.NewReader(raw)); err != nil {
			m.logger.Warn("migration: write backup", "path", target, "error", err)
			continue
		}
		m.logger.Info("migration: backup created", "path", target)
	}
}
