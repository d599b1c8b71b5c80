package sessions

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Bbeierle12/Agent-Shell/pkg/models"
)

// cache is the clone-on-read in-memory layer shared by every Store
// implementation: a map of sessions plus the id of the current active
// one. Every getter returns a deep clone so callers can never mutate
// store-internal state. put clones its input before storing it; setAll
// and push store what they are given as is.
type cache struct {
	mu         sync.RWMutex
	sessions   map[string]*models.Session
	activeID   string
	maxHistory int
}

func newCache(maxHistory int) *cache {
	return &cache{
		sessions:   make(map[string]*models.Session),
		maxHistory: maxHistory,
	}
}

// setAll replaces the cache contents and selects the session with the
// latest UpdatedAt as active. If sessions is empty, a fresh "default"
// session is created and made active.
func (c *cache) setAll(loaded []*models.Session) *models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sessions = make(map[string]*models.Session, len(loaded))
	var latest *models.Session
	for _, s := range loaded {
		c.sessions[s.ID] = s
		if latest == nil || s.UpdatedAt.After(latest.UpdatedAt) {
			latest = s
		}
	}
	if latest == nil {
		latest = newDefaultSession()
		c.sessions[latest.ID] = latest
	}
	c.activeID = latest.ID
	return latest.Clone()
}

func newDefaultSession() *models.Session {
	now := time.Now().UTC()
	return &models.Session{
		ID:        uuid.NewString(),
		Name:      "default",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *cache) active() *models.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessions[c.activeID].Clone()
}

func (c *cache) setActive(id string) (*models.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[id]
	if !ok {
		return nil, false
	}
	c.activeID = id
	return s.Clone(), true
}

// push appends msg to the active session and returns its post-append
// clone for the caller to persist.
func (c *cache) push(msg models.Message) (*models.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	active, ok := c.sessions[c.activeID]
	if !ok {
		return nil, false
	}
	active.Messages = append(active.Messages, msg)
	active.UpdatedAt = time.Now().UTC()
	return active.Clone(), true
}

// recent returns the tail maxHistory messages of the active session,
// saturating at length if the session is shorter.
func (c *cache) recent() []models.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	active, ok := c.sessions[c.activeID]
	if !ok {
		return nil
	}
	msgs := active.Messages
	if c.maxHistory > 0 && len(msgs) > c.maxHistory {
		msgs = msgs[len(msgs)-c.maxHistory:]
	}
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	return out
}

func (c *cache) get(id string) (*models.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sessions[id]
	return s.Clone(), ok
}

func (c *cache) list() []*models.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*models.Session, 0, len(c.sessions))
	for _, s := range c.sessions {
		out = append(out, s.Clone())
	}
	return out
}

func (c *cache) put(s *models.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[s.ID] = s.Clone()
}

// create builds a brand-new session named name, inserts it, and makes it
// active.
func (c *cache) create(name string) *models.Session {
	now := time.Now().UTC()
	s := &models.Session{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.mu.Lock()
	c.sessions[s.ID] = s
	c.activeID = s.ID
	c.mu.Unlock()
	return s.Clone()
}
