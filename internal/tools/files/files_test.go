package files

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_RejectsEscape(t *testing.T) {
	root := t.TempDir()
	r := Resolver{Root: root}

	_, err := r.Resolve("../../etc/passwd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is outside the workspace root")
}

func TestResolver_AllowsWithinRoot(t *testing.T) {
	root := t.TempDir()
	r := Resolver{Root: root}

	resolved, err := r.Resolve("sub/file.txt")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(resolved))
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	root := t.TempDir()
	w := NewWriteTool(Config{Workspace: root})
	r := NewReadTool(Config{Workspace: root})

	writeArgs, _ := json.Marshal(map[string]any{"path": "note.txt", "content": "hello"})
	out, err := w.Execute(context.Background(), writeArgs)
	require.NoError(t, err)
	require.False(t, out.IsError)

	readArgs, _ := json.Marshal(map[string]any{"path": "note.txt"})
	out, err = r.Execute(context.Background(), readArgs)
	require.NoError(t, err)
	require.False(t, out.IsError)
	assert.Contains(t, out.Content, "hello")
}

func TestListTool_Recursive(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "b", "leaf.txt"), []byte("x"), 0o644))

	l := NewListTool(Config{Workspace: root})
	args, _ := json.Marshal(map[string]any{"path": ".", "recursive": true})
	out, err := l.Execute(context.Background(), args)
	require.NoError(t, err)
	require.False(t, out.IsError)
	assert.Contains(t, out.Content, "leaf.txt")
}

func TestListTool_SymlinkCycleDoesNotHang(t *testing.T) {
	root := t.TempDir()
	loop := filepath.Join(root, "loop")
	require.NoError(t, os.Symlink(root, loop))

	l := NewListTool(Config{Workspace: root})
	args, _ := json.Marshal(map[string]any{"path": ".", "recursive": true})
	out, err := l.Execute(context.Background(), args)
	require.NoError(t, err)
	require.False(t, out.IsError)
}
