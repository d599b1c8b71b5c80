package agent

import (
	"context"
	"encoding/json"

	"github.com/Bbeierle12/Agent-Shell/pkg/models"
)

// Tool is one callable capability the model can invoke. Implementations
// live under internal/tools/*; the registry only knows this interface.
type Tool interface {
	Name() string
	Description() string
	Schema() json.RawMessage
	Execute(ctx context.Context, args json.RawMessage) (*models.ToolOutput, error)
}

// ToolSchema renders t's catalog entry for the wire protocol.
func ToolSchema(t Tool) models.ToolSchema {
	return models.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Schema(),
	}
}
