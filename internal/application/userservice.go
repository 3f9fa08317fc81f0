package application

import (
	"context"
	"errors"
	"time"

	"github.com/ericfisherdev/sitecms/internal/domain/model"
	"github.com/ericfisherdev/sitecms/internal/domain/port/driven"
)

// ErrMissingField indicates a required account field was left empty.
var ErrMissingField = errors.New("missing required field")

// UserService exposes administrator account management over whichever
// UserStore backend was selected at startup. Plaintext passwords are hashed
// here and never reach the store.
type UserService struct {
	users driven.UserStore
}

// NewUserService creates a UserService over the given store.
func NewUserService(users driven.UserStore) *UserService {
	return &UserService{users: users}
}

// Verify returns the active account with the given username if the password
// matches its stored hash, and driven.ErrNotFound otherwise. A wrong password
// and an unknown or inactive username are indistinguishable to the caller.
func (s *UserService) Verify(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, driven.ErrNotFound
	}
	return user, nil
}

// Get returns the account with the given id.
func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	return s.users.FindByID(ctx, id)
}

// List returns every account regardless of active flag.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.users.ListAll(ctx)
}

// Create adds a new active account. All four fields are required; the
// password is hashed and the creation date set to today.
func (s *UserService) Create(ctx context.Context, username, password, name, email string) (model.User, error) {
	if username == "" || password == "" || name == "" || email == "" {
		return model.User{}, ErrMissingField
	}

	hash, err := HashPassword(password)
	if err != nil {
		return model.User{}, err
	}

	return s.users.Create(ctx, model.User{
		Username:     username,
		PasswordHash: hash,
		Name:         name,
		Email:        email,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	})
}

// Update overwrites the account's fields. An empty password leaves the
// stored hash untouched; a non-empty one replaces it.
func (s *UserService) Update(ctx context.Context, id int64, username, password, name, email string, active bool) (model.User, error) {
	if username == "" || name == "" || email == "" {
		return model.User{}, ErrMissingField
	}

	existing, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	hash := existing.PasswordHash
	if password != "" {
		hash, err = HashPassword(password)
		if err != nil {
			return model.User{}, err
		}
	}

	return s.users.Update(ctx, model.User{
		ID:           id,
		Username:     username,
		PasswordHash: hash,
		Name:         name,
		Email:        email,
		Active:       active,
		CreatedAt:    existing.CreatedAt,
	})
}

// Delete removes the account with the given id; a missing id is a no-op.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.users.Delete(ctx, id)
}
