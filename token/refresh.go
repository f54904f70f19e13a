package token

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

type RefreshToken struct {
	Token     string
	ClientID  string
	UserID    string
	Scope     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

type RefreshTokenRepo interface {
	Upsert(refreshToken *RefreshToken) error
	Delete(token string) error
	Get(token string) (*RefreshToken, error)
}

var _ RefreshTokenRepo = (*MemoryRefreshTokenRepo)(nil)

// MemoryRefreshTokenRepo is an in-memory refresh token store.
type MemoryRefreshTokenRepo struct {
	tokens map[string]*RefreshToken
	lock   sync.RWMutex
}

func NewMemoryRefreshTokenRepo() *MemoryRefreshTokenRepo {
	return &MemoryRefreshTokenRepo{tokens: make(map[string]*RefreshToken)}
}

func (r *MemoryRefreshTokenRepo) Upsert(refreshToken *RefreshToken) error {
	if refreshToken == nil || refreshToken.Token == "" {
		return errors.New("refresh token cannot be empty")
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	stored := *refreshToken
	r.tokens[refreshToken.Token] = &stored
	return nil
}

func (r *MemoryRefreshTokenRepo) Delete(token string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.tokens, token)
	return nil
}

func (r *MemoryRefreshTokenRepo) Get(token string) (*RefreshToken, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	stored, ok := r.tokens[token]
	if !ok {
		return nil, ErrRefreshTokenNotFound
	}
	copied := *stored
	return &copied, nil
}
