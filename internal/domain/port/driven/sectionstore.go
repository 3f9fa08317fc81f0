// Package driven defines secondary port interfaces for storage adapters.
package driven

import (
	"context"

	"github.com/ericfisherdev/sitecms/internal/domain/model"
)

// SectionStore defines the driven port for named site content sections.
// Load returns an empty map on a fresh install, never an error for missing
// backing storage. Get returns an empty SectionData for an absent key.
// Update replaces the entry wholesale and persists synchronously; there is
// no partial/merge semantics.
type SectionStore interface {
	Load(ctx context.Context) (model.SiteData, error)
	Get(ctx context.Context, key string) (model.SectionData, error)
	Update(ctx context.Context, key string, value model.SectionData) error
}

// SectionImporter is implemented by relational adapters that can ingest a
// full file-backed snapshot as one transaction. With overwrite set, existing
// rows are replaced; otherwise existing rows are left untouched and only
// missing keys are inserted. Returns the number of rows written.
type SectionImporter interface {
	CountSections(ctx context.Context) (int64, error)
	ImportSections(ctx context.Context, data model.SiteData, overwrite bool) (int, error)
}
