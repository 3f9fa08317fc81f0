package application

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/sitecms/internal/adapter/driven/jsonfile"
	"github.com/ericfisherdev/sitecms/internal/domain/port/driven"
)

func newTestUserService(t *testing.T) *UserService {
	t.Helper()

	repo, err := jsonfile.NewUserRepo(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, err)
	return NewUserService(repo)
}

func TestUserService_CreateAndVerify(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", "pw1", "Alice", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.True(t, created.Active)
	assert.NotEqual(t, "pw1", created.PasswordHash, "password must be stored hashed")

	user, err := svc.Verify(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = svc.Verify(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, driven.ErrNotFound)

	_, err = svc.Verify(ctx, "nobody", "pw1")
	assert.ErrorIs(t, err, driven.ErrNotFound)
}

func TestUserService_CreateValidatesFields(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "", "pw", "Name", "e@x.com")
	assert.ErrorIs(t, err, ErrMissingField)
	_, err = svc.Create(ctx, "u", "", "Name", "e@x.com")
	assert.ErrorIs(t, err, ErrMissingField)
	_, err = svc.Create(ctx, "u", "pw", "", "e@x.com")
	assert.ErrorIs(t, err, ErrMissingField)
	_, err = svc.Create(ctx, "u", "pw", "Name", "")
	assert.ErrorIs(t, err, ErrMissingField)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserService_CreateDuplicate(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", "pw1", "Alice", "a@x.com")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "alice", "pw2", "Other", "o@x.com")
	assert.ErrorIs(t, err, driven.ErrUsernameTaken)
}

func TestUserService_UpdateEmptyPasswordKeepsHash(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", "pw1", "Alice", "a@x.com")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, "alice", "", "Alice Silva", "alice@x.com", true)
	require.NoError(t, err)
	assert.Equal(t, "Alice Silva", updated.Name)
	assert.Equal(t, created.PasswordHash, updated.PasswordHash)

	// The old password still authenticates.
	_, err = svc.Verify(ctx, "alice", "pw1")
	require.NoError(t, err)
}

func TestUserService_UpdateNewPassword(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", "pw1", "Alice", "a@x.com")
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, "alice", "pw2", "Alice", "a@x.com", true)
	require.NoError(t, err)

	_, err = svc.Verify(ctx, "alice", "pw1")
	assert.ErrorIs(t, err, driven.ErrNotFound)

	_, err = svc.Verify(ctx, "alice", "pw2")
	require.NoError(t, err)
}

func TestUserService_DeactivateBlocksLogin(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", "pw1", "Alice", "a@x.com")
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, "alice", "", "Alice", "a@x.com", false)
	require.NoError(t, err)

	_, err = svc.Verify(ctx, "alice", "pw1")
	assert.ErrorIs(t, err, driven.ErrNotFound)
}

func TestUserService_DeleteUnknownIDSucceeds(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", "pw1", "Alice", "a@x.com")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 999))

	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestSeedDefaults(t *testing.T) {
	dir := t.TempDir()
	sections, err := jsonfile.NewSectionRepo(filepath.Join(dir, "site_data.json"))
	require.NoError(t, err)
	users, err := jsonfile.NewUserRepo(filepath.Join(dir, "users.json"))
	require.NoError(t, err)

	admin := AdminSeed{Username: "admin", Password: "admin123", Name: "Administrador", Email: "admin@cass.org.br"}
	ctx := context.Background()

	require.NoError(t, SeedDefaults(ctx, sections, users, admin, slog.Default()))

	data, err := sections.Load(ctx)
	require.NoError(t, err)
	assert.Contains(t, data, "welcome")
	assert.Contains(t, data, "footer")
	assert.Contains(t, data, "pages")

	svc := NewUserService(users)
	_, err = svc.Verify(ctx, "admin", "admin123")
	require.NoError(t, err)

	// Seeding again must not duplicate or overwrite anything.
	require.NoError(t, sections.Update(ctx, "welcome", map[string]any{"title": "Editado"}))
	require.NoError(t, SeedDefaults(ctx, sections, users, admin, slog.Default()))

	welcome, err := sections.Get(ctx, "welcome")
	require.NoError(t, err)
	assert.Equal(t, "Editado", welcome["title"])

	all, err := users.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
