package application

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/sitecms/internal/adapter/driven/jsonfile"
	"github.com/ericfisherdev/sitecms/internal/domain/model"
)

func newTestContentService(t *testing.T) *ContentService {
	t.Helper()

	repo, err := jsonfile.NewSectionRepo(filepath.Join(t.TempDir(), "site_data.json"))
	require.NoError(t, err)
	return NewContentService(repo)
}

func TestContentService_EmptyKeyRejected(t *testing.T) {
	svc := newTestContentService(t)
	ctx := context.Background()

	_, err := svc.GetSection(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyKey)

	err = svc.UpdateSection(ctx, "", model.SectionData{})
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestContentService_SectionRoundTrip(t *testing.T) {
	svc := newTestContentService(t)
	ctx := context.Background()

	value := model.SectionData{"number": "5511999999999", "message": "Olá!"}
	require.NoError(t, svc.UpdateSection(ctx, "whatsapp", value))

	got, err := svc.GetSection(ctx, "whatsapp")
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestContentService_PageLifecycle(t *testing.T) {
	svc := newTestContentService(t)
	ctx := context.Background()

	// Unknown page reads as empty, same as an unknown section.
	page, err := svc.GetPage(ctx, "sobre")
	require.NoError(t, err)
	assert.Empty(t, page)

	sobre := model.SectionData{"title": "Sobre o CASS", "subtitle": "História"}
	require.NoError(t, svc.UpdatePage(ctx, "sobre", sobre))

	got, err := svc.GetPage(ctx, "sobre")
	require.NoError(t, err)
	assert.Equal(t, sobre, got)

	// A second page lands beside the first inside the pages section.
	require.NoError(t, svc.UpdatePage(ctx, "contato", model.SectionData{"title": "Contato"}))

	pages, err := svc.GetSection(ctx, model.PagesKey)
	require.NoError(t, err)
	assert.Len(t, pages, 2)

	got, err = svc.GetPage(ctx, "sobre")
	require.NoError(t, err)
	assert.Equal(t, sobre, got)
}
