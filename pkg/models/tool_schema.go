package models

import "encoding/json"

// ToolSchema describes a tool for the wire protocol's function-calling
// extension. Tool names are unique within a registry.
type ToolSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}
