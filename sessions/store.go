// Package sessions provides an in-memory implementation of the
// oauth2.SessionStore contract, suitable for tests and single-process hosts.
// Production hosts typically adapt their own session layer instead.
package sessions

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/xlexi/oauth2orize/oauth2"
)

// MemoryStore is a thread-safe in-memory session store. Each instance
// represents one user session; the host keeps one per session cookie.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]*oauth2.Snapshot
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]*oauth2.Snapshot)}
}

// Get retrieves the snapshot stored under (key, tid). It returns
// oauth2.ErrNoTransactions when no transaction map exists under key, and
// oauth2.ErrTransactionNotFound when tid is absent from the map.
func (s *MemoryStore) Get(key, tid string) (*oauth2.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txns, ok := s.data[key]
	if !ok {
		return nil, oauth2.ErrNoTransactions
	}
	snap, ok := txns[tid]
	if !ok {
		return nil, oauth2.ErrTransactionNotFound
	}
	return snap, nil
}

// Set stores the snapshot under (key, tid), creating the transaction map on
// first use.
func (s *MemoryStore) Set(key, tid string, snap *oauth2.Snapshot) error {
	if tid == "" {
		return errors.New("transaction ID cannot be empty")
	}
	if snap == nil {
		return errors.New("snapshot cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txns, ok := s.data[key]
	if !ok {
		txns = make(map[string]*oauth2.Snapshot)
		s.data[key] = txns
	}
	txns[tid] = snap
	return nil
}

// Delete removes the snapshot stored under (key, tid). Deleting an absent
// transaction is not an error.
func (s *MemoryStore) Delete(key, tid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if txns, ok := s.data[key]; ok {
		delete(txns, tid)
	}
	return nil
}

var _ oauth2.SessionStore = (*MemoryStore)(nil)
