package sessions

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bbeierle12/Agent-Shell/pkg/models"
)

func TestMemoryStore_LoadCreatesDefaultSession(t *testing.T) {
	store := NewMemoryStore(0)
	require.NoError(t, store.Load(context.Background()))

	active := store.Active()
	require.NotNil(t, active)
	assert.Equal(t, "default", active.Name)
}

func TestMemoryStore_PushMessageUpdatesActiveSession(t *testing.T) {
	store := NewMemoryStore(0)
	require.NoError(t, store.Load(context.Background()))

	before := store.Active().UpdatedAt
	require.NoError(t, store.PushMessage(context.Background(), models.NewMessage(models.RoleUser, "hi")))

	active := store.Active()
	require.Len(t, active.Messages, 1)
	assert.True(t, active.UpdatedAt.After(before) || active.UpdatedAt.Equal(before))
}

func TestMemoryStore_RecentMessagesSaturatesAtWindow(t *testing.T) {
	store := NewMemoryStore(2)
	require.NoError(t, store.Load(context.Background()))

	for i := 0; i < 5; i++ {
		require.NoError(t, store.PushMessage(context.Background(), models.NewMessage(models.RoleUser, "msg")))
	}

	assert.Len(t, store.RecentMessages(), 2)
}

func TestFileStore_DiscoversExistingSessionsAndSelectsLatestActive(t *testing.T) {
	dir := t.TempDir()

	older := &models.Session{ID: "aaa", Name: "older", UpdatedAt: time.Now().Add(-time.Hour)}
	newer := &models.Session{ID: "bbb", Name: "newer", UpdatedAt: time.Now()}
	writeSessionFile(t, dir, older)
	writeSessionFile(t, dir, newer)

	fs := NewFileStore(FileStoreConfig{Dir: dir})
	require.NoError(t, fs.Load(context.Background()))

	active := fs.Active()
	require.NotNil(t, active)
	assert.Equal(t, "newer", active.Name)
}

func TestFileStore_SkipsCorruptSessionFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644))

	fs := NewFileStore(FileStoreConfig{Dir: dir})
	require.NoError(t, fs.Load(context.Background()))

	active := fs.Active()
	require.NotNil(t, active)
	assert.Equal(t, "default", active.Name)
}

func TestFileStore_AutoSaveWritesFileOnPush(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(FileStoreConfig{Dir: dir, AutoSave: true})
	require.NoError(t, fs.Load(context.Background()))

	require.NoError(t, fs.PushMessage(context.Background(), models.NewMessage(models.RoleUser, "hello")))

	active := fs.Active()
	data, err := os.ReadFile(filepath.Join(dir, active.ID+".json"))
	require.NoError(t, err)

	var onDisk models.Session
	require.NoError(t, json.Unmarshal(data, &onDisk))
	require.Len(t, onDisk.Messages, 1)
	assert.Equal(t, "hello", onDisk.Messages[0].Content)
}

func TestFileStore_SaveAsyncDeliversResultOnChannel(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(FileStoreConfig{Dir: dir})
	require.NoError(t, fs.Load(context.Background()))

	err := <-fs.SaveAsync(context.Background())
	assert.NoError(t, err)

	active := fs.Active()
	_, statErr := os.Stat(filepath.Join(dir, active.ID+".json"))
	assert.NoError(t, statErr)
}

func TestMemoryStore_CreateMakesNewSessionActive(t *testing.T) {
	store := NewMemoryStore(0)
	require.NoError(t, store.Load(context.Background()))

	require.NoError(t, store.Create(context.Background(), "work"))

	active := store.Active()
	require.NotNil(t, active)
	assert.Equal(t, "work", active.Name)
	assert.Empty(t, active.Messages)
}

func TestFileStore_CreatePersistsImmediatelyEvenWithoutAutoSave(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(FileStoreConfig{Dir: dir, AutoSave: false})
	require.NoError(t, fs.Load(context.Background()))

	require.NoError(t, fs.Create(context.Background(), "nightly"))

	active := fs.Active()
	assert.Equal(t, "nightly", active.Name)
	_, statErr := os.Stat(filepath.Join(dir, active.ID+".json"))
	assert.NoError(t, statErr)
}

func writeSessionFile(t *testing.T, dir string, s *models.Session) {
	t.Helper()
	data, err := json.Marshal(s)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, s.ID+".json"), data, 0o644))
}
