// Package agenterr defines the runtime's error taxonomy: a small set of
// typed errors, one per failure domain, each carrying the context a caller
// needs without parsing strings. The failures a caller has to tell apart
// are returned as one of these (or wrapped in one); other failures are
// plain wrapped errors.
package agenterr

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned by any blocking operation whose context was
// cancelled before it completed.
var ErrCancelled = errors.New("agentshell: operation cancelled")

// ConfigError wraps a failure loading or validating configuration.
type ConfigError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("config: %s", e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// NewConfigError builds a ConfigError from a path and an underlying cause.
func NewConfigError(path string, cause error) *ConfigError {
	return &ConfigError{Path: path, Message: cause.Error(), Cause: cause}
}

// ProviderError wraps a failure from the provider chain: either every
// candidate was exhausted, or a single candidate returned a permanent
// (non-retryable) failure.
type ProviderError struct {
	Provider  string
	Permanent bool
	Message   string
	Cause     error
}

func (e *ProviderError) Error() string {
	kind := "transient"
	if e.Permanent {
		kind = "permanent"
	}
	if e.Provider != "" {
		return fmt.Sprintf("provider %s (%s): %s", e.Provider, kind, e.Message)
	}
	return fmt.Sprintf("provider chain (%s): %s", kind, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// ToolExecutionError is never fatal to a turn: the loop converts it to an
// is-error ToolOutput and continues. It is still a typed error so the
// conversion site has structured fields to work with.
type ToolExecutionError struct {
	Name    string
	Message string
	Cause   error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s: %s", e.Name, e.Message)
}

func (e *ToolExecutionError) Unwrap() error { return e.Cause }

// NewToolExecutionError builds a ToolExecutionError from a tool name and
// the error it returned.
func NewToolExecutionError(name string, cause error) *ToolExecutionError {
	return &ToolExecutionError{Name: name, Message: cause.Error(), Cause: cause}
}

// ToolNotFoundError indicates the model requested a tool name that is not
// registered. (A registered name that the session's allowlist/denylist
// excludes is refused by the loop with a "Tool not allowed" output, not
// with this type.) The loop treats
// this identically to a ToolExecutionError — both become an is-error
// ToolOutput — but keeps the distinct type for diagnostics and metrics.
type ToolNotFoundError struct {
	Name string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool %q is not registered or not permitted for this session", e.Name)
}

// AsToolExecutionError reports whether err is a ToolExecutionError or a
// ToolNotFoundError — the two kinds the turn loop folds into the same
// is-error tool output path — and returns the name/message pair.
func AsToolExecutionError(err error) (name, message string, ok bool) {
	var tee *ToolExecutionError
	if errors.As(err, &tee) {
		return tee.Name, tee.Message, true
	}
	var tnf *ToolNotFoundError
	if errors.As(err, &tnf) {
		return tnf.Name, tnf.Error(), true
	}
	return "", "", false
}

// SessionError wraps a failure reading, writing, or validating session
// state.
type SessionError struct {
	SessionID string
	Message   string
	Cause     error
}

func (e *SessionError) Error() string {
	if e.SessionID != "" {
		return fmt.Sprintf("session %s: %s", e.SessionID, e.Message)
	}
	return fmt.Sprintf("session: %s", e.Message)
}

func (e *SessionError) Unwrap() error { return e.Cause }

// SandboxError wraps a failure launching or supervising a sandboxed
// execution (container or direct mode).
type SandboxError struct {
	Mode    string
	Message string
	Cause   error
}

func (e *SandboxError) Error() string {
	return fmt.Sprintf("sandbox (%s): %s", e.Mode, e.Message)
}

func (e *SandboxError) Unwrap() error { return e.Cause }

// SchemaError indicates a tool's declared JSON schema, or the model's
// arguments against it, failed validation. Unlike ToolExecutionError this
// is fatal at turn start — the loop cannot proceed without a valid tool
// catalog.
type SchemaError struct {
	ToolName string
	Message  string
	Cause    error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema for tool %s: %s", e.ToolName, e.Message)
}

func (e *SchemaError) Unwrap() error { return e.Cause }

// IsPermanent classifies a provider-returned error as permanent
// (non-retryable: bad credentials, malformed request, unknown model) vs.
// transient (rate limit, timeout, 5xx) using the substring rules spec'd
// for the provider chain. Matching is case-insensitive and intentionally
// coarse — provider SDKs don't agree on a shared error taxonomy, so this
// mirrors the teacher's classifyToolError string-matching approach rather
// than inventing a stricter one.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Permanent
	}
	msg := err.Error()
	for _, needle := range permanentNeedles {
		if containsFold(msg, needle) {
			return true
		}
	}
	return false
}

var permanentNeedles = []string{
	"invalid_api_key",
	"authentication",
	"unauthorized",
	"invalid_request",
	"model_not_found",
	"permission",
}

func containsFold(s, substr string) bool {
	return len(substr) == 0 || indexFold(s, substr) >= 0
}

// indexFold is a tiny case-insensitive substring search, avoiding a
// strings.ToLower allocation per candidate on the hot failover path.
func indexFold(s, substr string) int {
	n, m := len(s), len(substr)
	if m == 0 {
		return 0
	}
	for i := 0; i+m <= n; i++ {
		matched := true
		for j := 0; j < m; j++ {
			a, b := s[i+j], substr[j]
			if 'A' <= a && a <= 'Z' {
				a += 'a' - 'A'
			}
			if 'A' <= b && b <= 'Z' {
				b += 'a' - 'A'
			}
			if a != b {
				matched = false
				break
			}
		}
		if matched {
			return i
		}
	}
	return -1
}
