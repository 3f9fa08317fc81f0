package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ericfisherdev/sitecms/internal/domain/model"
	"github.com/ericfisherdev/sitecms/internal/domain/port/driven"
)

// dateLayout is the creation-date granularity used by the legacy users file.
const dateLayout = "2006-01-02"

// Compile-time interface satisfaction check.
var _ driven.UserStore = (*UserRepo)(nil)

// UserRepo is the JSON-file implementation of the UserStore port. The backing
// file is a JSON object with a single "users" key holding an ordered array of
// account records; ListAll preserves that order. The "password" field carries
// whatever the application stored, which for legacy hand-made files may still
// be plaintext; this repo treats it as opaque.
type UserRepo struct {
	path string
	mu   sync.Mutex
}

// userRecord is the on-disk account representation.
type userRecord struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	// Pointer so that legacy records missing the field default to active,
	// matching how the original files were interpreted.
	Active    *bool  `json:"active"`
	CreatedAt string `json:"created_at"`
}

type usersFile struct {
	Users []userRecord `json:"users"`
}

// NewUserRepo creates a UserRepo backed by the file at path, creating the
// parent directory if needed.
func NewUserRepo(path string) (*UserRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir for %q: %w", path, err)
	}
	return &UserRepo{path: path}, nil
}

// FindByUsername returns the active account with the given username.
// Inactive accounts are invisible here; this lookup gates authentication.
func (r *UserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	records, err := r.read()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.Username == username && isActive(rec) {
			user := toUser(rec)
			return &user, nil
		}
	}
	return nil, driven.ErrNotFound
}

// FindByID returns the account with the given id regardless of active flag.
func (r *UserRepo) FindByID(_ context.Context, id int64) (*model.User, error) {
	records, err := r.read()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.ID == id {
			user := toUser(rec)
			return &user, nil
		}
	}
	return nil, driven.ErrNotFound
}

// ListAll returns every account in file order.
func (r *UserRepo) ListAll(_ context.Context) ([]model.User, error) {
	records, err := r.read()
	if err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(records))
	for _, rec := range records {
		users = append(users, toUser(rec))
	}
	return users, nil
}

// Create appends a new account, assigning max(existing ids)+1 starting at 1.
func (r *UserRepo) Create(_ context.Context, user model.User) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.read()
	if err != nil {
		return model.User{}, err
	}

	var maxID int64
	for _, rec := range records {
		if rec.Username == user.Username {
			return model.User{}, driven.ErrUsernameTaken
		}
		if rec.ID > maxID {
			maxID = rec.ID
		}
	}

	user.ID = maxID + 1
	records = append(records, toRecord(user))
	if err := r.write(records); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// Update overwrites the record with user.ID as supplied.
func (r *UserRepo) Update(_ context.Context, user model.User) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.read()
	if err != nil {
		return model.User{}, err
	}

	index := -1
	for i, rec := range records {
		if rec.ID == user.ID {
			index = i
			continue
		}
		if rec.Username == user.Username {
			return model.User{}, driven.ErrUsernameTaken
		}
	}
	if index == -1 {
		return model.User{}, driven.ErrNotFound
	}

	records[index] = toRecord(user)
	if err := r.write(records); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// Delete removes the account with the given id. Deleting an id that does not
// exist is a successful no-op.
func (r *UserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.read()
	if err != nil {
		return err
	}

	kept := records[:0]
	for _, rec := range records {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(records) {
		return nil
	}
	return r.write(kept)
}

func (r *UserRepo) read() ([]userRecord, error) {
	raw, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read users %q: %w", r.path, err)
	}

	var file usersFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode users %q: %w", r.path, err)
	}
	return file.Users, nil
}

func (r *UserRepo) write(records []userRecord) error {
	if records == nil {
		records = []userRecord{}
	}
	return writeJSONFile(r.path, usersFile{Users: records})
}

func isActive(rec userRecord) bool {
	return rec.Active == nil || *rec.Active
}

func toUser(rec userRecord) model.User {
	user := model.User{
		ID:           rec.ID,
		Username:     rec.Username,
		PasswordHash: rec.Password,
		Name:         rec.Name,
		Email:        rec.Email,
		Active:       isActive(rec),
	}
	// Legacy files sometimes omit or mangle the date; leave it zero then.
	if t, err := time.Parse(dateLayout, rec.CreatedAt); err == nil {
		user.CreatedAt = t
	}
	return user
}

func toRecord(user model.User) userRecord {
	active := user.Active
	rec := userRecord{
		ID:       user.ID,
		Username: user.Username,
		Password: user.PasswordHash,
		Name:     user.Name,
		Email:    user.Email,
		Active:   &active,
	}
	if !user.CreatedAt.IsZero() {
		rec.CreatedAt = user.CreatedAt.Format(dateLayout)
	}
	return rec
}
