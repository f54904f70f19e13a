package users

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrUserNotFound = errors.New("user not found")

type Repo interface {
	Upsert(user *User) error
	Delete(userID string) error
	Get(userID string) (*User, error)
	GetByUsername(username string) (*User, error)
}

var _ Repo = (*MemoryRepo)(nil)

// MemoryRepo is an in-memory user store for tests and the example server.
type MemoryRepo struct {
	users map[string]*User
	lock  sync.RWMutex
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]*User)}
}

func (r *MemoryRepo) Upsert(user *User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *MemoryRepo) Delete(userID string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.users, userID)
	return nil
}

func (r *MemoryRepo) Get(userID string) (*User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	user, ok := r.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *MemoryRepo) GetByUsername(username string) (*User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	for _, user := range r.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}
