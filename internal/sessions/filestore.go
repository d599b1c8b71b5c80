package sessions

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Bbeierle12/Agent-Shell/internal/agenterr"
	"github.com/Bbeierle12/Agent-Shell/pkg/models"
)

// FileStore persists sessions as one <uuid>.json file per session under a
// directory, per the spec's session file format. Writes are full
// overwrites — no temp file and rename — matching the spec's "temp-free
// write" requirement.
type FileStore struct {
	cache    *cache
	dir      string
	autoSave bool
	logger   *slog.Logger
}

// FileStoreConfig configures a FileStore.
type FileStoreConfig struct {
	Dir        string
	MaxHistory int
	AutoSave   bool
	Logger     *slog.Logger
}

// NewFileStore builds a FileStore rooted at cfg.Dir. The directory is not
// scanned until Load is called.
func NewFileStore(cfg FileStoreConfig) *FileStore {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default().With("component", "sessions")
	}
	return &FileStore{
		cache:    newCache(cfg.MaxHistory),
		dir:      cfg.Dir,
		autoSave: cfg.AutoSave,
		logger:   logger,
	}
}

// Load scans fs.dir for <uuid>.json files. Corrupt files are logged and
// skipped rather than aborting startup. If none exist, a fresh "default"
// session is created (but not yet written to disk). The active session is
// the one with the latest UpdatedAt.
func (fs *FileStore) Load(ctx context.Context) error {
	if err := os.MkdirAll(fs.dir, 0o755); err != nil {
		return &agenterr.SessionError{Message: "create sessions directory", Cause: err}
	}

	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return &agenterr.SessionError{Message: "scan sessions directory", Cause: err}
	}

	var loaded []*models.Session
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(fs.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			fs.logger.Warn("session file unreadable, skipping", "path", path, "error", err)
			continue
		}
		var session models.Session
		if err := json.Unmarshal(data, &session); err != nil {
			fs.logger.Warn("session file corrupt, skipping", "path", path, "error", err)
			continue
		}
		loaded = append(loaded, &session)
	}

	fs.cache.setAll(loaded)
	return nil
}

func (fs *FileStore) Active() *models.Session { return fs.cache.active() }

func (fs *FileStore) SetActive(ctx context.Context, id string) error {
	if _, ok := fs.cache.setActive(id); !ok {
		return &agenterr.SessionError{SessionID: id, Message: "session not found"}
	}
	return nil
}

func (fs *FileStore) PushMessage(ctx context.Context, msg models.Message) error {
	active, ok := fs.cache.push(msg)
	if !ok {
		return &agenterr.SessionError{Message: "no active session"}
	}
	if !fs.autoSave {
		return nil
	}
	return fs.writeSession(active)
}

func (fs *FileStore) RecentMessages() []models.Message { return fs.cache.recent() }

// Save persists the active session synchronously.
func (fs *FileStore) Save(ctx context.Context) error {
	active := fs.cache.active()
	if active == nil {
		return &agenterr.SessionError{Message: "no active session"}
	}
	return fs.writeSession(active)
}

// SaveAsync persists the active session on a separate goroutine so
// callers (e.g. async request handlers) never block on disk I/O. The
// returned channel carries exactly one value.
func (fs *FileStore) SaveAsync(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	active := fs.cache.active()
	go func() {
		if active == nil {
			done <- &agenterr.SessionError{Message: "no active session"}
			return
		}
		done <- fs.writeSession(active)
	}()
	return done
}

func (fs *FileStore) Get(ctx context.Context, id string) (*models.Session, error) {
	s, ok := fs.cache.get(id)
	if !ok {
		return nil, &agenterr.SessionError{SessionID: id, Message: "session not found"}
	}
	return s, nil
}

func (fs *FileStore) List(ctx context.Context) []*models.Session { return fs.cache.list() }

// Create builds a new session named name, writes it to disk immediately
// regardless of auto-save, and makes it active.
func (fs *FileStore) Create(ctx context.Context, name string) error {
	s := fs.cache.create(name)
	return fs.writeSession(s)
}

// writeSession serializes session to <id>.json in fs.dir, overwriting any
// existing file in place. The in-memory update has already taken effect
// by the time this is called, per the spec's failure-semantics contract:
// a disk error here never loses the just-appended message.
func (fs *FileStore) writeSession(session *models.Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return &agenterr.SessionError{SessionID: session.ID, Message: "marshal session", Cause: err}
	}
	path := filepath.Join(fs.dir, session.ID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &agenterr.SessionError{SessionID: session.ID, Message: "write session file", Cause: err}
	}
	return nil
}
