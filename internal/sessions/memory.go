package sessions

import (
	"context"

	"github.com/Bbeierle12/Agent-Shell/internal/agenterr"
	"github.com/Bbeierle12/Agent-Shell/pkg/models"
)

// MemoryStore is a Store with no disk backing, for tests and local runs
// that don't need session persistence across restarts.
type MemoryStore struct {
	cache *cache
}

// NewMemoryStore builds a MemoryStore whose RecentMessages window holds
// the last maxHistory messages (0 means unbounded).
func NewMemoryStore(maxHistory int) *MemoryStore {
	return &MemoryStore{cache: newCache(maxHistory)}
}

func (m *MemoryStore) Load(ctx context.Context) error {
	m.cache.setAll(nil)
	return nil
}

func (m *MemoryStore) Active() *models.Session { return m.cache.active() }

func (m *MemoryStore) SetActive(ctx context.Context, id string) error {
	if _, ok := m.cache.setActive(id); !ok {
		return &agenterr.SessionError{SessionID: id, Message: "session not found"}
	}
	return nil
}

func (m *MemoryStore) PushMessage(ctx context.Context, msg models.Message) error {
	if _, ok := m.cache.push(msg); !ok {
		return &agenterr.SessionError{Message: "no active session"}
	}
	return nil
}

func (m *MemoryStore) RecentMessages() []models.Message { return m.cache.recent() }

func (m *MemoryStore) Save(ctx context.Context) error { return nil }

func (m *MemoryStore) SaveAsync(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	done <- nil
	return done
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*models.Session, error) {
	s, ok := m.cache.get(id)
	if !ok {
		return nil, &agenterr.SessionError{SessionID: id, Message: "session not found"}
	}
	return s, nil
}

func (m *MemoryStore) List(ctx context.Context) []*models.Session { return m.cache.list() }

func (m *MemoryStore) Create(ctx context.Context, name string) error {
	m.cache.create(name)
	return nil
}
