package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/Bbeierle12/Agent-Shell/internal/agenterr"
	"github.com/Bbeierle12/Agent-Shell/pkg/models"
)

// SQLStore is an alternate Store backend for deployments that want
// sessions in a real database instead of flat files: modernc.org/sqlite
// for a zero-dependency embedded database, or Postgres (lib/pq) for a
// shared server. Each session is stored as a single JSON blob row, mirroring
// the on-disk <uuid>.json format so the two backends stay interchangeable.
type SQLStore struct {
	db     *sql.DB
	cache  *cache
	driver string
}

// SQLConfig selects the driver and connection string.
type SQLConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver     string
	DSN        string
	MaxHistory int
}

// NewSQLStore opens the database and ensures the sessions table exists.
func NewSQLStore(ctx context.Context, cfg SQLConfig) (*SQLStore, error) {
	driver := strings.TrimSpace(cfg.Driver)
	if driver == "" {
		driver = "sqlite"
	}
	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, &agenterr.SessionError{Message: "open session database", Cause: err}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &agenterr.SessionError{Message: "connect to session database", Cause: err}
	}

	ddl := `CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		updated_at TIMESTAMP NOT NULL,
		data TEXT NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		db.Close()
		return nil, &agenterr.SessionError{Message: "create sessions table", Cause: err}
	}

	return &SQLStore{db: db, cache: newCache(cfg.MaxHistory), driver: driver}, nil
}

// rebind rewrites "?" placeholders to Postgres's "$1, $2, ..." form when
// the store is running against lib/pq — database/sql has no driver-agnostic
// placeholder syntax, so each query is written once with "?" and rebound
// per driver.
func (s *SQLStore) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Close releases the underlying database connection.
func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) Load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM sessions`)
	if err != nil {
		return &agenterr.SessionError{Message: "query sessions", Cause: err}
	}
	defer rows.Close()

	var loaded []*models.Session
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return &agenterr.SessionError{Message: "scan session row", Cause: err}
		}
		var session models.Session
		if err := json.Unmarshal([]byte(blob), &session); err != nil {
			continue // corrupt row: skip, matching the file store's tolerance
		}
		loaded = append(loaded, &session)
	}
	if err := rows.Err(); err != nil {
		return &agenterr.SessionError{Message: "iterate sessions", Cause: err}
	}

	active := s.cache.setAll(loaded)
	if len(loaded) == 0 {
		return s.upsert(ctx, active)
	}
	return nil
}

func (s *SQLStore) Active() *models.Session { return s.cache.active() }

func (s *SQLStore) SetActive(ctx context.Context, id string) error {
	if _, ok := s.cache.setActive(id); !ok {
		return &agenterr.SessionError{SessionID: id, Message: "session not found"}
	}
	return nil
}

func (s *SQLStore) PushMessage(ctx context.Context, msg models.Message) error {
	active, ok := s.cache.push(msg)
	if !ok {
		return &agenterr.SessionError{Message: "no active session"}
	}
	return s.upsert(ctx, active)
}

func (s *SQLStore) RecentMessages() []models.Message { return s.cache.recent() }

func (s *SQLStore) Save(ctx context.Context) error {
	active := s.cache.active()
	if active == nil {
		return &agenterr.SessionError{Message: "no active session"}
	}
	return s.upsert(ctx, active)
}

func (s *SQLStore) SaveAsync(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	active := s.cache.active()
	go func() {
		if active == nil {
			done <- &agenterr.SessionError{Message: "no active session"}
			return
		}
		done <- s.upsert(ctx, active)
	}()
	return done
}

func (s *SQLStore) Get(ctx context.Context, id string) (*models.Session, error) {
	if cached, ok := s.cache.get(id); ok {
		return cached, nil
	}
	var blob string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT data FROM sessions WHERE id = ?`), id).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, &agenterr.SessionError{SessionID: id, Message: "session not found"}
	}
	if err != nil {
		return nil, &agenterr.SessionError{SessionID: id, Message: "query session", Cause: err}
	}
	var session models.Session
	if err := json.Unmarshal([]byte(blob), &session); err != nil {
		return nil, &agenterr.SessionError{SessionID: id, Message: "unmarshal session", Cause: err}
	}
	s.cache.put(&session)
	return session.Clone(), nil
}

func (s *SQLStore) List(ctx context.Context) []*models.Session { return s.cache.list() }

// Create builds a new session named name, upserts it immediately, and
// makes it active.
func (s *SQLStore) Create(ctx context.Context, name string) error {
	session := s.cache.create(name)
	return s.upsert(ctx, session)
}

func (s *SQLStore) upsert(ctx context.Context, session *models.Session) error {
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(session)
	if err != nil {
		return &agenterr.SessionError{SessionID: session.ID, Message: "marshal session", Cause: err}
	}
	query := s.rebind(`INSERT INTO sessions (id, updated_at, data) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET updated_at = excluded.updated_at, data = excluded.data`)
	if _, err := s.db.ExecContext(ctx, query, session.ID, session.UpdatedAt, string(data)); err != nil {
		return &agenterr.SessionError{SessionID: session.ID, Message: fmt.Sprintf("upsert session: %v", err), Cause: err}
	}
	return nil
}
