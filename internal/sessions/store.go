// Package sessions implements durable, append-only storage of agent
// sessions: an in-memory cache, a flat-file <uuid>.json backend (the
// spec-mandated default), and an optional SQL-backed alternate store.
package sessions

import (
	"context"

	"github.com/Bbeierle12/Agent-Shell/pkg/models"
)

// Store is the session persistence contract the agent runtime drives.
// Implementations maintain one "active" session at a time and a bounded
// recent-message window over it.
type Store interface {
	// Load discovers and loads all sessions known to the backend,
	// selecting the one with the latest UpdatedAt as active. If none
	// exist, it creates a "default" session and makes it active.
	Load(ctx context.Context) error

	// Active returns a clone of the current active session.
	Active() *models.Session

	// SetActive switches the active session to id.
	SetActive(ctx context.Context, id string) error

	// PushMessage appends msg to the active session, sets UpdatedAt, and
	// — if auto-save is enabled — persists the active session
	// synchronously.
	PushMessage(ctx context.Context, msg models.Message) error

	// RecentMessages returns the tail of the active session's messages,
	// saturating at its length if shorter than the configured window.
	RecentMessages() []models.Message

	// Save persists the active session synchronously.
	Save(ctx context.Context) error

	// SaveAsync persists the active session without blocking the
	// caller; errors are delivered to the returned channel (buffered,
	// capacity 1) rather than returned directly.
	SaveAsync(ctx context.Context) <-chan error

	// Get returns a clone of the session with the given id.
	Get(ctx context.Context, id string) (*models.Session, error)

	// List returns clones of every known session.
	List(ctx context.Context) []*models.Session

	// Create makes a brand-new session named name, persists it if the
	// backend is durable, and makes it the active session.
	Create(ctx context.Context, name string) error
}
