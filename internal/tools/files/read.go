package files

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Bbeierle12/Agent-Shell/pkg/models"
)

// Config controls the shared workspace root for the file tools.
type Config struct {
	Workspace    string
	MaxReadBytes int
}

// ReadTool reads a file confined to Config.Workspace.
type ReadTool struct {
	resolver Resolver
	maxBytes int
}

// NewReadTool builds a read tool scoped to cfg.Workspace.
func NewReadTool(cfg Config) *ReadTool {
	limit := cfg.MaxReadBytes
	if limit <= 0 {
		limit = 200_000
	}
	return &ReadTool{resolver: Resolver{Root: cfg.Workspace}, maxBytes: limit}
}

func (t *ReadTool) Name() string        { return "read" }
func (t *ReadTool) Description() string { return "Read a file from the workspace with optional offset and byte limit." }

func (t *ReadTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {"type": "string", "description": "Path to the file (relative to workspace)."},
			"offset": {"type": "integer", "minimum": 0, "description": "Byte offset to start reading from."},
			"max_bytes": {"type": "integer", "minimum": 0, "description": "Maximum bytes to read."}
		},
		"required": ["path"]
	}`)
}

func (t *ReadTool) Execute(ctx context.Context, params json.RawMessage) (*models.ToolOutput, error) {
	var input struct {
		Path     string `json:"path"`
		Offset   int64  `json:"offset"`
		MaxBytes int    `json:"max_bytes"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return toolError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if strings.TrimSpace(input.Path) == "" {
		return toolError("path is required"), nil
	}
	if input.Offset < 0 {
		return toolError("offset must be >= 0"), nil
	}

	resolved, err := t.resolver.Resolve(input.Path)
	if err != nil {
		return toolError(err.Error()), nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		return toolError(fmt.Sprintf("open file: %v", err)), nil
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return toolError(fmt.Sprintf("stat file: %v", err)), nil
	}
	if input.Offset > 0 {
		if _, err := file.Seek(input.Offset, io.SeekStart); err != nil {
			return toolError(fmt.Sprintf("seek file: %v", err)), nil
		}
	}

	limit := t.maxBytes
	if input.MaxBytes > 0 && input.MaxBytes < limit {
		limit = input.MaxBytes
	}

	buf, err := io.ReadAll(io.LimitReader(file, int64(limit)))
	if err != nil {
		return toolError(fmt.Sprintf("read file: %v", err)), nil
	}

	truncated := input.Offset+int64(len(buf)) < info.Size()
	payload, _ := json.Marshal(map[string]any{
		"path":      input.Path,
		"content":   string(buf),
		"offset":    input.Offset,
		"bytes":     len(buf),
		"truncated": truncated,
	})
	return &models.ToolOutput{Content: string(payload)}, nil
}

func toolError(message string) *models.ToolOutput {
	return &models.ToolOutput{Content: message, IsError: true}
}
