package token

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

// RevocationRepo records access token IDs (jti claims) revoked ahead of their
// natural expiry. An entry only matters while the token it names is still
// live; implementations are free to drop it afterwards.
type RevocationRepo interface {
	Revoke(jti string, expiresAt time.Time) error
	IsRevoked(jti string, now time.Time) bool
}

var _ RevocationRepo = (*MemoryRevocationRepo)(nil)

// MemoryRevocationRepo is an in-memory revocation list. Expired entries are
// purged on every lookup, so the list never outgrows the set of live tokens.
type MemoryRevocationRepo struct {
	revoked map[string]time.Time
	lock    sync.Mutex
}

func NewMemoryRevocationRepo() *MemoryRevocationRepo {
	return &MemoryRevocationRepo{revoked: make(map[string]time.Time)}
}

func (r *MemoryRevocationRepo) Revoke(jti string, expiresAt time.Time) error {
	if jti == "" {
		return errors.New("revoked token ID cannot be empty")
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	r.revoked[jti] = expiresAt
	return nil
}

func (r *MemoryRevocationRepo) IsRevoked(jti string, now time.Time) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	for id, expiresAt := range r.revoked {
		if now.After(expiresAt) {
			delete(r.revoked, id)
		}
	}
	_, revoked := r.revoked[jti]
	return revoked
}
