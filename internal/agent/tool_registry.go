package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Bbeierle12/Agent-Shell/internal/agenterr"
	"github.com/Bbeierle12/Agent-Shell/pkg/models"
)

// Tool parameter limits to prevent resource exhaustion from a misbehaving
// or adversarial model response.
const (
	// MaxToolNameLength is the maximum length of a tool name.
	MaxToolNameLength = 256

	// MaxToolArgsSize is the maximum size of a tool call's argument JSON.
	MaxToolArgsSize = 10 << 20
)

// ToolRegistry is the name-indexed catalog of tools available to a turn.
// It is safe for concurrent use: registration happens once at startup,
// lookups happen once per tool call within a turn.
type ToolRegistry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewToolRegistry returns an empty registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]Tool)}
}

// Register adds tool, replacing any existing tool with the same name.
func (r *ToolRegistry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
}

// Unregister removes a tool by name. A no-op if the name is absent.
func (r *ToolRegistry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tools, name)
}

// Get returns the tool registered under name, if any.
func (r *ToolRegistry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Schemas returns the catalog entries for every registered tool, in no
// particular order — callers that need a stable order (e.g. filtering by
// allowlist) should sort by name.
func (r *ToolRegistry) Schemas() []models.ToolSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.ToolSchema, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, ToolSchema(t))
	}
	return out
}

// Execute runs the named tool against args. It never returns a Go error
// for a tool-level failure — not-found, a tool panic, or the tool's own
// returned error are all folded into an is-error ToolOutput, matching the
// turn loop's contract that a tool call can never abort a turn.
func (r *ToolRegistry) Execute(ctx context.Context, call models.ToolCall) *models.ToolOutput {
	if len(call.Name) > MaxToolNameLength {
		return errorOutput(call.ID, fmt.Sprintf("tool name exceeds maximum length of %d characters", MaxToolNameLength))
	}
	if len(call.Arguments) > MaxToolArgsSize {
		return errorOutput(call.ID, fmt.Sprintf("tool arguments exceed maximum size of %d bytes", MaxToolArgsSize))
	}

	r.mu.RLock()
	tool, ok := r.tools[call.Name]
	r.mu.RUnlock()
	if !ok {
		err := &agenterr.ToolNotFoundError{Name: call.Name}
		return errorOutput(call.ID, err.Error())
	}

	return r.run(ctx, tool, call)
}

// run invokes tool.Execute, recovering a panic into an is-error output so
// one misbehaving tool can never take down the turn loop's goroutine.
func (r *ToolRegistry) run(ctx context.Context, tool Tool, call models.ToolCall) (out *models.ToolOutput) {
	defer func() {
		if rec := recover(); rec != nil {
			out = errorOutput(call.ID, fmt.Sprintf("tool %s panicked: %v", call.Name, rec))
		}
	}()

	if !json.Valid([]byte(call.Arguments)) {
		return errorOutput(call.ID, fmt.Sprintf("tool %s: arguments are not valid JSON", call.Name))
	}

	result, err := tool.Execute(ctx, json.RawMessage(call.Arguments))
	if err != nil {
		wrapped := agenterr.NewToolExecutionError(call.Name, err)
		return errorOutput(call.ID, wrapped.Error())
	}
	if result == nil {
		return errorOutput(call.ID, fmt.Sprintf("tool %s returned no output", call.Name))
	}
	result.ToolCallID = call.ID
	return result
}

func errorOutput(toolCallID, message string) *models.ToolOutput {
	return &models.ToolOutput{ToolCallID: toolCallID, Content: message, IsError: true}
}

// EffectiveToolSet filters schemas to the subset permitted for a session:
// the allowlist (if non-empty) restricts to named tools, then the
// denylist removes named tools. Both lists are evaluated by exact name
// match, per spec — no globbing.
func EffectiveToolSet(schemas []models.ToolSchema, allow, deny []string) []models.ToolSchema {
	allowSet := toSet(allow)
	denySet := toSet(deny)

	out := make([]models.ToolSchema, 0, len(schemas))
	for _, s := range schemas {
		if len(allowSet) > 0 {
			if _, ok := allowSet[s.Name]; !ok {
				continue
			}
		}
		if _, ok := denySet[s.Name]; ok {
			continue
		}
		out = append(out, s)
	}
	return out
}

func toSet(names []string) map[string]struct{} {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// IsPermitted reports whether name survives the same allow/deny filter
// EffectiveToolSet applies, without materializing the filtered schema
// slice — used by the turn loop to reject a model-requested tool call
// that isn't in the session's effective set even though it exists in the
// global registry.
func IsPermitted(name string, allow, deny []string) bool {
	if len(allow) > 0 {
		found := false
		for _, a := range allow {
			if a == name {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, d := range deny {
		if d == name {
			return false
		}
	}
	return true
}
