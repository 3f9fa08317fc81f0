// Package jsonfile implements the driven storage ports on top of flat JSON
// documents, the legacy single-admin deployment format. Every write rewrites
// the whole file through an atomic rename, so readers never observe a torn
// document; concurrent processes still race with last-writer-wins semantics.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/ericfisherdev/sitecms/internal/domain/model"
	"github.com/ericfisherdev/sitecms/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SectionStore = (*SectionRepo)(nil)

// SectionRepo is the JSON-file implementation of the SectionStore port.
// The backing file is a single JSON object whose top-level keys are section
// names. A missing file reads as an empty store.
type SectionRepo struct {
	path string
	mu   sync.Mutex
}

// NewSectionRepo creates a SectionRepo backed by the file at path, creating
// the parent directory if needed.
func NewSectionRepo(path string) (*SectionRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir for %q: %w", path, err)
	}
	return &SectionRepo{path: path}, nil
}

// Load returns the full section mapping. A missing backing file is a fresh
// install and yields an empty map, not an error.
func (r *SectionRepo) Load(_ context.Context) (model.SiteData, error) {
	return r.read()
}

// Get returns the content of one section, or an empty SectionData if the key
// is absent.
func (r *SectionRepo) Get(ctx context.Context, key string) (model.SectionData, error) {
	data, err := r.read()
	if err != nil {
		return nil, err
	}
	if value, ok := data[key]; ok {
		return value, nil
	}
	return model.SectionData{}, nil
}

// Update replaces the entry for key and persists the whole document before
// returning. The temp-file-plus-rename write keeps the document intact even
// if the process dies mid-write.
func (r *SectionRepo) Update(_ context.Context, key string, value model.SectionData) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := r.read()
	if err != nil {
		return err
	}
	data[key] = value

	return writeJSONFile(r.path, data)
}

func (r *SectionRepo) read() (model.SiteData, error) {
	raw, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return model.SiteData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read site data %q: %w", r.path, err)
	}

	var data model.SiteData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode site data %q: %w", r.path, err)
	}
	if data == nil {
		data = model.SiteData{}
	}
	return data, nil
}

// writeJSONFile marshals v with indentation (the legacy files are edited by
// hand on occasion) and replaces the target file atomically.
func writeJSONFile(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %q: %w", path, err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}
