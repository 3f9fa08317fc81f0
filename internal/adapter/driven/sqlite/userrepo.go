package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/sitecms/internal/domain/model"
	"github.com/ericfisherdev/sitecms/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.UserStore    = (*UserRepo)(nil)
	_ driven.UserImporter = (*UserRepo)(nil)
)

// UserRepo is the SQLite implementation of the UserStore port. Username
// uniqueness is checked before each write so callers get the domain sentinel
// rather than a driver-specific constraint error; the UNIQUE index is the
// backstop.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a UserRepo backed by the given DB.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, username, password_hash, name, email, active, created_at`

// FindByUsername returns the active account with the given username.
// Inactive accounts are invisible here; this lookup gates authentication.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ? AND active = 1`
	return r.queryOne(ctx, query, username)
}

// FindByID returns the account with the given id regardless of active flag.
func (r *UserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.queryOne(ctx, query, id)
}

// ListAll returns every account. Ordered by id for stable output, though
// callers must not rely on any particular order.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// Create inserts a new account with a database-assigned id.
func (r *UserRepo) Create(ctx context.Context, user model.User) (model.User, error) {
	taken, err := r.usernameTaken(ctx, user.Username, 0)
	if err != nil {
		return model.User{}, err
	}
	if taken {
		return model.User{}, driven.ErrUsernameTaken
	}

	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	const query = `
		INSERT INTO users (username, password_hash, name, email, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	result, err := r.db.Writer.ExecContext(ctx, query,
		user.Username, user.PasswordHash, user.Name, user.Email, user.Active, formatTime(createdAt))
	if err != nil {
		return model.User{}, fmt.Errorf("create user %q: %w", user.Username, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.User{}, fmt.Errorf("user insert id: %w", err)
	}

	user.ID = id
	user.CreatedAt = createdAt
	return user, nil
}

// Update overwrites the record with user.ID as supplied.
func (r *UserRepo) Update(ctx context.Context, user model.User) (model.User, error) {
	taken, err := r.usernameTaken(ctx, user.Username, user.ID)
	if err != nil {
		return model.User{}, err
	}
	if taken {
		return model.User{}, driven.ErrUsernameTaken
	}

	const query = `
		UPDATE users SET username = ?, password_hash = ?, name = ?, email = ?, active = ?
		WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query,
		user.Username, user.PasswordHash, user.Name, user.Email, user.Active, user.ID)
	if err != nil {
		return model.User{}, fmt.Errorf("update user %d: %w", user.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return model.User{}, fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return model.User{}, driven.ErrNotFound
	}
	return user, nil
}

// Delete removes the account with the given id. Deleting an id that does not
// exist is a successful no-op.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM users WHERE id = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}

// CountUsers returns the number of account rows.
func (r *UserRepo) CountUsers(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM users`

	var count int64
	if err := r.db.Reader.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// ImportUsers inserts file-backed accounts in one transaction, skipping any
// username that already exists. Ids are reassigned by the database.
func (r *UserRepo) ImportUsers(ctx context.Context, users []model.User) (int, error) {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin user import: %w", err)
	}
	defer tx.Rollback()

	const exists = `SELECT COUNT(*) FROM users WHERE username = ?`
	const insert = `
		INSERT INTO users (username, password_hash, name, email, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	inserted := 0
	for _, user := range users {
		if user.Username == "" {
			continue
		}

		var count int64
		if err := tx.QueryRowContext(ctx, exists, user.Username).Scan(&count); err != nil {
			return 0, fmt.Errorf("check user %q: %w", user.Username, err)
		}
		if count > 0 {
			continue
		}

		createdAt := user.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}

		if _, err := tx.ExecContext(ctx, insert,
			user.Username, user.PasswordHash, user.Name, user.Email, user.Active, formatTime(createdAt)); err != nil {
			return 0, fmt.Errorf("import user %q: %w", user.Username, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit user import: %w", err)
	}
	return inserted, nil
}

func (r *UserRepo) usernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	const query = `SELECT COUNT(*) FROM users WHERE username = ? AND id <> ?`

	var count int64
	if err := r.db.Reader.QueryRowContext(ctx, query, username, excludeID).Scan(&count); err != nil {
		return false, fmt.Errorf("check username %q: %w", username, err)
	}
	return count > 0, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (model.User, error) {
	var user model.User
	var createdAt string

	if err := s.Scan(&user.ID, &user.Username, &user.PasswordHash,
		&user.Name, &user.Email, &user.Active, &createdAt); err != nil {
		return model.User{}, fmt.Errorf("scan user: %w", err)
	}

	var err error
	user.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.User{}, fmt.Errorf("parse created_at: %w", err)
	}
	return user, nil
}

func (r *UserRepo) queryOne(ctx context.Context, query string, arg any) (*model.User, error) {
	row := r.db.Reader.QueryRowContext(ctx, query, arg)

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, driven.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// formatTime renders a timestamp in the canonical format stored by this adapter.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// parseTime tries the datetime formats SQLite may hand back.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
