package clients

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrClientNotFound = errors.New("client not found")
	ErrInvalidScope   = errors.New("requested scope is not allowed for this client")
)

type Repo interface {
	Upsert(client *Client) error
	Delete(clientID string) error
	Get(clientID string) (*Client, error)
	List(offset, limit int) ([]*Client, error)
}

var _ Repo = (*MemoryRepo)(nil)

// MemoryRepo is an in-memory client registry for tests and the example
// server.
type MemoryRepo struct {
	clients map[string]*Client
	lock    sync.RWMutex
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		clients: make(map[string]*Client),
	}
}

func (r *MemoryRepo) Upsert(client *Client) error {
	if client == nil {
		return errors.New("client cannot be nil")
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	if client.ID == "" {
		client.ID = uuid.New().String()
	}
	stored := *client
	r.clients[client.ID] = &stored
	return nil
}

func (r *MemoryRepo) Delete(clientID string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.clients, clientID)
	return nil
}

func (r *MemoryRepo) Get(clientID string) (*Client, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	client, ok := r.clients[clientID]
	if !ok {
		return nil, ErrClientNotFound
	}
	copied := *client
	return &copied, nil
}

func (r *MemoryRepo) List(offset, limit int) ([]*Client, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	all := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		copied := *c
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	if offset >= len(all) {
		return []*Client{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}
