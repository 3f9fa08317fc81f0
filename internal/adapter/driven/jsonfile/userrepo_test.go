package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/sitecms/internal/domain/model"
	"github.com/ericfisherdev/sitecms/internal/domain/port/driven"
)

func newTestUserRepo(t *testing.T) *UserRepo {
	t.Helper()

	repo, err := NewUserRepo(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, err)
	return repo
}

func TestUserRepo_ListAllEmpty(t *testing.T) {
	repo := newTestUserRepo(t)

	users, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserRepo_CreateAssignsSequentialIDs(t *testing.T) {
	repo := newTestUserRepo(t)
	ctx := context.Background()

	alice, err := repo.Create(ctx, model.User{Username: "alice", PasswordHash: "h1", Active: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), alice.ID)

	bob, err := repo.Create(ctx, model.User{Username: "bob", PasswordHash: "h2", Active: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), bob.ID)

	// IDs are max+1, so a gap left by a delete is not refilled.
	require.NoError(t, repo.Delete(ctx, 1))
	carol, err := repo.Create(ctx, model.User{Username: "carol", PasswordHash: "h3", Active: true})
	require.NoError(t, err)
	assert.Equal(t, int64(3), carol.ID)
}

func TestUserRepo_CreateDuplicateUsername(t *testing.T) {
	repo := newTestUserRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, model.User{Username: "alice", Active: true})
	require.NoError(t, err)

	_, err = repo.Create(ctx, model.User{Username: "alice", Active: true})
	assert.ErrorIs(t, err, driven.ErrUsernameTaken)

	users, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserRepo_CreateDuplicateOfInactiveUsername(t *testing.T) {
	repo := newTestUserRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, model.User{Username: "alice", Active: true})
	require.NoError(t, err)

	created.Active = false
	_, err = repo.Update(ctx, created)
	require.NoError(t, err)

	// Uniqueness covers inactive accounts too.
	_, err = repo.Create(ctx, model.User{Username: "alice", Active: true})
	assert.ErrorIs(t, err, driven.ErrUsernameTaken)
}

func TestUserRepo_FindByUsernameSkipsInactive(t *testing.T) {
	repo := newTestUserRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, model.User{Username: "alice", Name: "Alice", Active: true})
	require.NoError(t, err)

	found, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	created.Active = false
	_, err = repo.Update(ctx, created)
	require.NoError(t, err)

	_, err = repo.FindByUsername(ctx, "alice")
	assert.ErrorIs(t, err, driven.ErrNotFound)

	// FindByID still sees the inactive account.
	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, byID.Active)
}

func TestUserRepo_UpdateUnknownID(t *testing.T) {
	repo := newTestUserRepo(t)

	_, err := repo.Update(context.Background(), model.User{ID: 42, Username: "ghost"})
	assert.ErrorIs(t, err, driven.ErrNotFound)
}

func TestUserRepo_UpdateUsernameCollision(t *testing.T) {
	repo := newTestUserRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, model.User{Username: "alice", Active: true})
	require.NoError(t, err)
	bob, err := repo.Create(ctx, model.User{Username: "bob", Active: true})
	require.NoError(t, err)

	bob.Username = "alice"
	_, err = repo.Update(ctx, bob)
	assert.ErrorIs(t, err, driven.ErrUsernameTaken)

	// Updating without renaming is fine.
	bob.Username = "bob"
	bob.Name = "Bob"
	updated, err := repo.Update(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, "Bob", updated.Name)
}

func TestUserRepo_DeleteIsIdempotent(t *testing.T) {
	repo := newTestUserRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, model.User{Username: "alice", Active: true})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))
	require.NoError(t, repo.Delete(ctx, created.ID))
	require.NoError(t, repo.Delete(ctx, 999))

	users, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserRepo_LegacyFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	legacy := `{
    "users": [
        {"id": 1, "username": "admin", "password": "admin123", "name": "Administrador", "email": "admin@cass.org.br", "created_at": "2023-05-10"},
        {"id": 2, "username": "joao", "password": "segredo", "name": "João", "email": "joao@cass.org.br", "active": false, "created_at": "not-a-date"}
    ]
}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	repo, err := NewUserRepo(path)
	require.NoError(t, err)
	ctx := context.Background()

	users, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	// Missing active flag defaults to active; malformed date reads as zero.
	admin := users[0]
	assert.True(t, admin.Active)
	assert.Equal(t, "2023-05-10", admin.CreatedAt.Format("2006-01-02"))

	joao := users[1]
	assert.False(t, joao.Active)
	assert.True(t, joao.CreatedAt.IsZero())

	_, err = repo.FindByUsername(ctx, "joao")
	assert.ErrorIs(t, err, driven.ErrNotFound)
}
