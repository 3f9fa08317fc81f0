// Package application holds the use-case services that sit between the
// driving HTTP adapter and the driven storage ports.
package application

import (
	"context"
	"errors"

	"github.com/ericfisherdev/sitecms/internal/domain/model"
	"github.com/ericfisherdev/sitecms/internal/domain/port/driven"
)

// ErrEmptyKey indicates a section or page operation was attempted with an
// empty name.
var ErrEmptyKey = errors.New("empty section key")

// ContentService exposes site content operations over whichever SectionStore
// backend was selected at startup.
type ContentService struct {
	sections driven.SectionStore
}

// NewContentService creates a ContentService over the given store.
func NewContentService(sections driven.SectionStore) *ContentService {
	return &ContentService{sections: sections}
}

// LoadSite returns the full section mapping.
func (s *ContentService) LoadSite(ctx context.Context) (model.SiteData, error) {
	return s.sections.Load(ctx)
}

// GetSection returns the content of one section; absent keys read as empty.
func (s *ContentService) GetSection(ctx context.Context, key string) (model.SectionData, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	return s.sections.Get(ctx, key)
}

// UpdateSection replaces a section wholesale and persists synchronously.
func (s *ContentService) UpdateSection(ctx context.Context, key string, value model.SectionData) error {
	if key == "" {
		return ErrEmptyKey
	}
	return s.sections.Update(ctx, key, value)
}

// GetPage returns one page block nested inside the pages section, or an
// empty SectionData when the page does not exist.
func (s *ContentService) GetPage(ctx context.Context, name string) (model.SectionData, error) {
	if name == "" {
		return nil, ErrEmptyKey
	}

	pages, err := s.sections.Get(ctx, model.PagesKey)
	if err != nil {
		return nil, err
	}
	if page, ok := pages[name].(map[string]any); ok {
		return model.SectionData(page), nil
	}
	return model.SectionData{}, nil
}

// UpdatePage replaces one page block inside the pages section. The nested
// read-modify-write happens in a single Update call so the whole pages
// section is persisted as one unit, which is the only multi-key atomicity
// the file backend offers.
func (s *ContentService) UpdatePage(ctx context.Context, name string, value model.SectionData) error {
	if name == "" {
		return ErrEmptyKey
	}

	pages, err := s.sections.Get(ctx, model.PagesKey)
	if err != nil {
		return err
	}
	pages[name] = map[string]any(value)

	return s.sections.Update(ctx, model.PagesKey, pages)
}
