package files

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Bbeierle12/Agent-Shell/pkg/models"
)

// maxListDepth bounds recursive listing to prevent runaway traversal of
// deep or cyclic directory trees.
const maxListDepth = 20

// ListTool lists workspace directory entries, flat or recursive.
type ListTool struct {
	resolver Resolver
}

// NewListTool builds a list tool scoped to cfg.Workspace.
func NewListTool(cfg Config) *ListTool {
	return &ListTool{resolver: Resolver{Root: cfg.Workspace}}
}

func (t *ListTool) Name() string        { return "list" }
func (t *ListTool) Description() string { return "List directory entries in the workspace, optionally recursive." }

func (t *ListTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {"type": "string", "description": "Directory to list (relative to workspace). Defaults to the workspace root."},
			"recursive": {"type": "boolean", "description": "Descend into subdirectories (default: false)."}
		}
	}`)
}

// entry is one line of the rendered listing.
type entry struct {
	Path       string `json:"path"`
	Type       string `json:"type"` // file | dir | symlink
	Size       int64  `json:"size,omitempty"`
	Annotation string `json:"annotation,omitempty"`
}

func (t *ListTool) Execute(ctx context.Context, params json.RawMessage) (*models.ToolOutput, error) {
	var input struct {
		Path      string `json:"path"`
		Recursive bool   `json:"recursive"`
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &input); err != nil {
			return toolError(fmt.Sprintf("invalid parameters: %v", err)), nil
		}
	}
	if input.Path == "" {
		input.Path = "."
	}

	root, err := t.resolver.Resolve(input.Path)
	if err != nil {
		return toolError(err.Error()), nil
	}

	w := &walker{
		resolver: t.resolver,
		visited:  make(map[string]bool),
	}
	entries, err := w.walk(root, input.Recursive, 0)
	if err != nil {
		return toolError(err.Error()), nil
	}

	payload, _ := json.Marshal(map[string]any{"entries": entries})
	return &models.ToolOutput{Content: string(payload)}, nil
}

// walker carries traversal state: a canonical-path visited set, shared
// across real directories and the symlink graph, so a cycle in either can
// never cause unbounded recursion.
type walker struct {
	resolver Resolver
	visited  map[string]bool
}

func (w *walker) walk(dir string, recursive bool, depth int) ([]entry, error) {
	if depth > maxListDepth {
		return nil, nil
	}
	if w.visited[dir] {
		return nil, nil
	}
	w.visited[dir] = true

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var out []entry
	for _, de := range dirEntries {
		full := filepath.Join(dir, de.Name())
		info, err := os.Lstat(full)
		if err != nil {
			out = append(out, entry{Path: full, Type: "unknown", Annotation: err.Error()})
			continue
		}

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			e, descend, target := w.classifySymlink(full)
			out = append(out, e)
			if recursive && descend {
				children, err := w.walk(target, recursive, depth+1)
				if err == nil {
					out = append(out, children...)
				}
			}
		case info.IsDir():
			out = append(out, entry{Path: full, Type: "dir"})
			if recursive {
				children, err := w.walk(full, recursive, depth+1)
				if err == nil {
					out = append(out, children...)
				}
			}
		default:
			out = append(out, entry{Path: full, Type: "file", Size: info.Size()})
		}
	}
	return out, nil
}

// classifySymlink resolves a symlink once. If the target lies outside the
// workspace or cannot be canonicalized, the entry is listed with an
// annotation and the caller must not descend into it.
func (w *walker) classifySymlink(path string) (e entry, descend bool, target string) {
	resolved, err := w.resolver.Resolve(path)
	if err != nil {
		return entry{Path: path, Type: "symlink", Annotation: strings.TrimSpace(err.Error())}, false, ""
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return entry{Path: path, Type: "symlink", Annotation: "broken symlink"}, false, ""
	}
	if !info.IsDir() {
		return entry{Path: path, Type: "symlink", Size: info.Size()}, false, ""
	}
	return entry{Path: path, Type: "symlink"}, true, resolved
}
