package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Bbeierle12/Agent-Shell/pkg/models"
)

// ShellTool exposes Executor.ExecShell as a tool-registry entry.
type ShellTool struct {
	exec *Executor
}

// NewShellTool builds the exec_shell tool over exec.
func NewShellTool(exec *Executor) *ShellTool { return &ShellTool{exec: exec} }

func (t *ShellTool) Name() string { return "exec_shell" }
func (t *ShellTool) Description() string {
	return "Run a shell command in the sandbox and return its stdout, stderr, and exit code."
}

func (t *ShellTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"cmd": {"type": "string", "description": "Shell command to run."}
		},
		"required": ["cmd"]
	}`)
}

func (t *ShellTool) Execute(ctx context.Context, params json.RawMessage) (*models.ToolOutput, error) {
	var input struct {
		Cmd string `json:"cmd"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return errorOutput(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if input.Cmd == "" {
		return errorOutput("cmd is required"), nil
	}

	result, err := t.exec.ExecShell(ctx, input.Cmd)
	return resultOutput(result, err)
}

// PythonTool exposes Executor.ExecPython as a tool-registry entry.
type PythonTool struct {
	exec *Executor
}

// NewPythonTool builds the exec_python tool over exec.
func NewPythonTool(exec *Executor) *PythonTool { return &PythonTool{exec: exec} }

func (t *PythonTool) Name() string { return "exec_python" }
func (t *PythonTool) Description() string {
	return "Run Python code in the sandbox and return its stdout, stderr, and exit code."
}

func (t *PythonTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"code": {"type": "string", "description": "Python source to execute."}
		},
		"required": ["code"]
	}`)
}

func (t *PythonTool) Execute(ctx context.Context, params json.RawMessage) (*models.ToolOutput, error) {
	var input struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return errorOutput(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if input.Code == "" {
		return errorOutput("code is required"), nil
	}

	result, err := t.exec.ExecPython(ctx, input.Code)
	return resultOutput(result, err)
}

// resultOutput renders a Result as tool content. Per the sandbox's failure
// contract, a non-zero exit code is not itself an error — only a spawn
// failure or timeout is.
func resultOutput(result *Result, err error) (*models.ToolOutput, error) {
	if err != nil {
		return errorOutput(err.Error()), nil
	}
	payload, marshalErr := json.Marshal(map[string]any{
		"stdout":    result.Stdout,
		"stderr":    result.Stderr,
		"exit_code": result.ExitCode,
	})
	if marshalErr != nil {
		return nil, errors.New("marshal sandbox result: " + marshalErr.Error())
	}
	return &models.ToolOutput{Content: string(payload), IsError: false}, nil
}

func errorOutput(message string) *models.ToolOutput {
	return &models.ToolOutput{Content: message, IsError: true}
}
