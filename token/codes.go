package token

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

// AuthorizationCode is a pending code grant: the code value plus the bindings
// checked when it is redeemed at the token endpoint.
type AuthorizationCode struct {
	Code        string
	ClientID    string
	RedirectURI string
	UserID      string
	Scope       []string
	ExpiresAt   time.Time
}

var ErrCodeNotFound = errors.New("authorization code not found")

type CodeRepo interface {
	Store(code *AuthorizationCode) error
	// Redeem returns and removes the code in one step so it can never be
	// presented twice.
	Redeem(code string) (*AuthorizationCode, error)
}

var _ CodeRepo = (*MemoryCodeRepo)(nil)

// MemoryCodeRepo is an in-memory authorization code store.
type MemoryCodeRepo struct {
	codes map[string]*AuthorizationCode
	lock  sync.Mutex
}

func NewMemoryCodeRepo() *MemoryCodeRepo {
	return &MemoryCodeRepo{codes: make(map[string]*AuthorizationCode)}
}

func (r *MemoryCodeRepo) Store(code *AuthorizationCode) error {
	if code == nil || code.Code == "" {
		return errors.New("authorization code cannot be empty")
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	stored := *code
	r.codes[code.Code] = &stored
	return nil
}

func (r *MemoryCodeRepo) Redeem(code string) (*AuthorizationCode, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	stored, ok := r.codes[code]
	if !ok {
		return nil, ErrCodeNotFound
	}
	delete(r.codes, code)
	copied := *stored
	return &copied, nil
}
