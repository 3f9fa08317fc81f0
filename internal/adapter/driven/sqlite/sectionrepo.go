package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ericfisherdev/sitecms/internal/domain/model"
	"github.com/ericfisherdev/sitecms/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.SectionStore    = (*SectionRepo)(nil)
	_ driven.SectionImporter = (*SectionRepo)(nil)
)

// SectionRepo is the SQLite implementation of the SectionStore port.
// Section values are stored as JSON text in the site_data table; per-key
// write isolation comes from the database itself.
type SectionRepo struct {
	db *DB
}

// NewSectionRepo creates a SectionRepo backed by the given DB.
func NewSectionRepo(db *DB) *SectionRepo {
	return &SectionRepo{db: db}
}

// Load returns the full section mapping. An empty table yields an empty map.
func (r *SectionRepo) Load(ctx context.Context) (model.SiteData, error) {
	const query = `SELECT key, value FROM site_data`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load site data: %w", err)
	}
	defer rows.Close()

	data := model.SiteData{}
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("scan site data row: %w", err)
		}

		var value model.SectionData
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("decode section %q: %w", key, err)
		}
		data[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate site data: %w", err)
	}

	return data, nil
}

// Get returns the content of one section, or an empty SectionData if no row
// exists for the key.
func (r *SectionRepo) Get(ctx context.Context, key string) (model.SectionData, error) {
	const query = `SELECT value FROM site_data WHERE key = ?`

	var raw string
	err := r.db.Reader.QueryRowContext(ctx, query, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SectionData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get section %q: %w", key, err)
	}

	var value model.SectionData
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, fmt.Errorf("decode section %q: %w", key, err)
	}
	return value, nil
}

// Update inserts or replaces the row for key.
func (r *SectionRepo) Update(ctx context.Context, key string, value model.SectionData) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode section %q: %w", key, err)
	}

	const query = `
		INSERT INTO site_data (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	_, err = r.db.Writer.ExecContext(ctx, query, key, string(raw), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("update section %q: %w", key, err)
	}
	return nil
}

// CountSections returns the number of section rows.
func (r *SectionRepo) CountSections(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM site_data`

	var count int64
	if err := r.db.Reader.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sections: %w", err)
	}
	return count, nil
}

// ImportSections writes a full file-backed snapshot in one transaction.
// With overwrite set, rows for existing keys are replaced; otherwise they are
// left untouched and only missing keys are inserted. Keys are written in
// sorted order so repeated imports behave deterministically.
func (r *SectionRepo) ImportSections(ctx context.Context, data model.SiteData, overwrite bool) (int, error) {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin section import: %w", err)
	}
	defer tx.Rollback()

	const upsert = `
		INSERT INTO site_data (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	const insertMissing = `
		INSERT INTO site_data (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO NOTHING`

	query := insertMissing
	if overwrite {
		query = upsert
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	written := 0
	now := formatTime(time.Now())
	for _, key := range keys {
		raw, err := json.Marshal(data[key])
		if err != nil {
			return 0, fmt.Errorf("encode section %q: %w", key, err)
		}

		result, err := tx.ExecContext(ctx, query, key, string(raw), now)
		if err != nil {
			return 0, fmt.Errorf("import section %q: %w", key, err)
		}
		if n, err := result.RowsAffected(); err == nil {
			written += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit section import: %w", err)
	}
	return written, nil
}
