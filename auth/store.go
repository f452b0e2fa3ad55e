package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/agentswarm/internal/util"
)

var (
	// ErrUserNotFound is returned when no user matches a lookup.
	ErrUserNotFound = errors.New("auth: user not found")
	// ErrDuplicateLogin is returned when adding a user whose login exists.
	ErrDuplicateLogin = errors.New("auth: login already exists")
)

// Store persists user accounts. Implementations must be safe for concurrent
// use and return copies so callers cannot mutate stored state.
type Store interface {
	FindByLogin(ctx context.Context, login string) (*UserInfo, error)
	FindByID(ctx context.Context, id string) (*UserInfo, error)
	Add(ctx context.Context, u *UserInfo) error
	Update(ctx context.Context, u *UserInfo) error
}

// InMemoryStore is a volatile Store backed by a process local slice. It is
// best suited for tests or ephemeral demo servers.
type InMemoryStore struct {
	mu    sync.RWMutex
	users []*UserInfo
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty in-memory user store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// FindByLogin implements Store.
func (s *InMemoryStore) FindByLogin(_ context.Context, login string) (*UserInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findUser(s.users, func(u *UserInfo) bool { return u.Login == login })
}

// FindByID implements Store.
func (s *InMemoryStore) FindByID(_ context.Context, id string) (*UserInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findUser(s.users, func(u *UserInfo) bool { return u.ID == id })
}

// Add implements Store.
func (s *InMemoryStore) Add(_ context.Context, u *UserInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := addUser(s.users, u)
	if err != nil {
		return err
	}
	s.users = users
	return nil
}

// Update implements Store.
func (s *InMemoryStore) Update(_ context.Context, u *UserInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateUser(s.users, u)
}

// JSONFileStore keeps users as a JSON array in a single file. Every call
// reloads the file, so external edits are picked up. A missing file is
// created empty on first access.
type JSONFileStore struct {
	path string
	mu   sync.Mutex
}

var _ Store = (*JSONFileStore)(nil)

// NewJSONFileStore returns a store backed by path.
func NewJSONFileStore(path string) *JSONFileStore {
	return &JSONFileStore{path: path}
}

// Path returns the backing file.
func (s *JSONFileStore) Path() string { return s.path }

func (s *JSONFileStore) loadLocked() ([]*UserInfo, error) {
	var users []*UserInfo
	found, err := util.ReadJSONFile(s.path, &users)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	if !found {
		users = []*UserInfo{}
		if err := util.WriteJSONFile(s.path, users); err != nil {
			return nil, fmt.Errorf("init users: %w", err)
		}
	}
	return users, nil
}

// FindByLogin implements Store.
func (s *JSONFileStore) FindByLogin(_ context.Context, login string) (*UserInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	return findUser(users, func(u *UserInfo) bool { return u.Login == login })
}

// FindByID implements Store.
func (s *JSONFileStore) FindByID(_ context.Context, id string) (*UserInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	return findUser(users, func(u *UserInfo) bool { return u.ID == id })
}

// Add implements Store.
func (s *JSONFileStore) Add(_ context.Context, u *UserInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := s.loadLocked()
	if err != nil {
		return err
	}
	users, err = addUser(users, u)
	if err != nil {
		return err
	}
	return util.WriteJSONFile(s.path, users)
}

// Update implements Store.
func (s *JSONFileStore) Update(_ context.Context, u *UserInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := s.loadLocked()
	if err != nil {
		return err
	}
	if err := updateUser(users, u); err != nil {
		return err
	}
	return util.WriteJSONFile(s.path, users)
}

func findUser(users []*UserInfo, match func(*UserInfo) bool) (*UserInfo, error) {
	for _, u := range users {
		if match(u) {
			return u.clone(), nil
		}
	}
	return nil, ErrUserNotFound
}

func addUser(users []*UserInfo, u *UserInfo) ([]*UserInfo, error) {
	for _, existing := range users {
		if existing.Login == u.Login {
			return users, ErrDuplicateLogin
		}
	}
	return append(users, u.clone()), nil
}

func updateUser(users []*UserInfo, u *UserInfo) error {
	for i, existing := range users {
		if existing.ID == u.ID {
			users[i] = u.clone()
			return nil
		}
	}
	return ErrUserNotFound
}
