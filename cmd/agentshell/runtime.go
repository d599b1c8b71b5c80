package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Bbeierle12/Agent-Shell/internal/agent"
	"github.com/Bbeierle12/Agent-Shell/internal/agenterr"
	"github.com/Bbeierle12/Agent-Shell/internal/config"
	"github.com/Bbeierle12/Agent-Shell/internal/observability"
	"github.com/Bbeierle12/Agent-Shell/internal/providers"
	"github.com/Bbeierle12/Agent-Shell/internal/providers/anthropic"
	"github.com/Bbeierle12/Agent-Shell/internal/providers/bedrock"
	"github.com/Bbeierle12/Agent-Shell/internal/providers/openai"
	"github.com/Bbeierle12/Agent-Shell/internal/sessions"
	"github.com/Bbeierle12/Agent-Shell/internal/tools/files"
	"github.com/Bbeierle12/Agent-Shell/internal/tools/sandbox"
	"github.com/Bbeierle12/Agent-Shell/internal/tools/webfetch"
	"github.com/Bbeierle12/Agent-Shell/pkg/models"
)

// runtime is the assembled set of long-lived components a CLI command
// drives: the turn loop, the session store, and the sandbox executor that
// the shell and Python tools share.
type runtime struct {
	cfg      *config.Config
	loop     *agent.Loop
	sessions *sessions.FileStore
	sandbox  *sandbox.Executor
	metrics  *observability.Metrics
}

// metricsOnce guards metrics registration: buildRuntime may run more than
// once per process (tests, or a future multi-command invocation), but
// Prometheus collectors can only be registered once.
var (
	metricsOnce sync.Once
	metrics     *observability.Metrics
)

func sharedMetrics() *observability.Metrics {
	metricsOnce.Do(func() { metrics = observability.NewMetrics() })
	return metrics
}

// buildRuntime loads configPath, optionally overlays profileName, and
// wires the provider chain, tool registry, and turn loop exactly as
// internal/config resolves them. workspace roots the filesystem tools; the
// sandbox tools use the configured sandbox work directory instead.
func buildRuntime(ctx context.Context, configPath, profileName, workspace string) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, agenterr.NewConfigError(configPath, err)
	}
	if profileName != "" {
		cfg, err = cfg.ApplyProfile(profileName)
		if err != nil {
			return nil, agenterr.NewConfigError(configPath, err)
		}
	}

	resolved := cfg.ResolvedProviders()
	if len(resolved) == 0 {
		return nil, agenterr.NewConfigError(configPath, fmt.Errorf("no providers configured"))
	}

	adapters := make([]agent.LLMProvider, 0, len(resolved))
	for _, p := range resolved {
		adapter, err := buildAdapter(ctx, p)
		if err != nil {
			return nil, agenterr.NewConfigError(configPath, fmt.Errorf("provider %s: %w", p.Name, err))
		}
		adapters = append(adapters, adapter)
	}
	chain := providers.NewChain(resolved, adapters)

	sandboxExec := sandbox.NewExecutor(cfg.SandboxConfig())

	tools := agent.NewToolRegistry()
	tools.Register(files.NewReadTool(files.Config{Workspace: workspace, MaxReadBytes: 1 << 20}))
	tools.Register(files.NewWriteTool(files.Config{Workspace: workspace, MaxReadBytes: 1 << 20}))
	tools.Register(files.NewListTool(files.Config{Workspace: workspace, MaxReadBytes: 1 << 20}))
	tools.Register(webfetch.New(webfetch.Config{}))
	tools.Register(sandbox.NewShellTool(sandboxExec))
	tools.Register(sandbox.NewPythonTool(sandboxExec))

	store := sessions.NewFileStore(cfg.SessionStoreConfig())
	if err := store.Load(ctx); err != nil {
		return nil, &agenterr.SessionError{Message: err.Error(), Cause: err}
	}

	m := sharedMetrics()
	m.SetActiveSessions(len(store.List(ctx)))

	return &runtime{
		cfg:      cfg,
		loop:     agent.NewLoop(chain, tools),
		sessions: store,
		sandbox:  sandboxExec,
		metrics:  m,
	}, nil
}

// buildAdapter picks the LLM SDK that speaks to p's endpoint.
//
// The spec's wire protocol (§6) describes a single generic
// OpenAI-compatible chat-completions format, which is what the openai
// adapter implements; that is the default for any api_base. Anthropic's
// native messages API and Bedrock's signed API are different wire
// formats entirely, so an endpoint is only routed to those adapters when
// its base URL unambiguously names that service — everything else,
// including arbitrary self-hosted OpenAI-compatible gateways, uses the
// generic openai adapter.
func buildAdapter(ctx context.Context, p models.ResolvedProvider) (agent.LLMProvider, error) {
	switch {
	case strings.Contains(p.BaseURL, "anthropic.com"):
		return anthropic.New(anthropic.Config{
			APIKey:       p.Credential,
			BaseURL:      p.BaseURL,
			DefaultModel: p.Model,
		})
	case strings.Contains(p.BaseURL, "bedrock"):
		return bedrock.New(ctx, bedrock.Config{
			DefaultModel: p.Model,
		})
	default:
		return openai.New(openai.Config{
			APIKey:       p.Credential,
			BaseURL:      p.BaseURL,
			DefaultModel: p.Model,
		})
	}
}
