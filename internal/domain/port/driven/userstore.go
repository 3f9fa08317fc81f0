package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/sitecms/internal/domain/model"
)

// Sentinel errors returned by UserStore implementations. Anything else a
// store returns is a storage failure wrapping the underlying medium's error.
var (
	// ErrNotFound indicates a lookup by id or username matched no account.
	ErrNotFound = errors.New("user not found")

	// ErrUsernameTaken indicates a create or update would violate username
	// uniqueness. Matching is case-sensitive and exact.
	ErrUsernameTaken = errors.New("username already taken")
)

// UserStore defines the driven port for administrator accounts.
// FindByUsername sees active accounts only (it gates authentication);
// FindByID and ListAll see every account regardless of the active flag.
// ListAll order is insertion order for the file backend and unspecified for
// the relational backend; callers must not rely on it.
// Create assigns the id and returns ErrUsernameTaken on collision.
// Update overwrites every field of the record with the given id as supplied,
// including PasswordHash; preserve-on-empty-password lives in the application
// service. Delete is idempotent: a missing id is a successful no-op.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)
	Create(ctx context.Context, user model.User) (model.User, error)
	Update(ctx context.Context, user model.User) (model.User, error)
	Delete(ctx context.Context, id int64) error
}

// UserImporter is implemented by relational adapters that can ingest
// file-backed accounts as one transaction. Accounts whose username already
// exists are skipped unconditionally. Returns the number of rows inserted.
type UserImporter interface {
	CountUsers(ctx context.Context) (int64, error)
	ImportUsers(ctx context.Context, users []model.User) (int, error)
}
