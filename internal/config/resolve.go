package config

import (
	"os"
	"strconv"
	"time"

	"github.com/Bbeierle12/Agent-Shell/internal/cron"
	"github.com/Bbeierle12/Agent-Shell/internal/tools/sandbox"
	"github.com/Bbeierle12/Agent-Shell/pkg/models"
)

// ResolvedProviders builds the priority-ordered provider list the chain
// consumes. [[providers]] takes precedence over [provider] when
// non-empty; otherwise [provider] plus its failover list is expanded into
// an equivalent priority-ordered sequence.
func (c *Config) ResolvedProviders() []models.ResolvedProvider {
	if len(c.Providers) > 0 {
		return resolveProviderEntries(c.Providers)
	}
	return resolveLegacyProvider(c.Provider)
}

func resolveProviderEntries(entries []ProviderEntry) []models.ResolvedProvider {
	out := make([]models.ResolvedProvider, 0, len(entries))
	for _, p := range entries {
		credential := p.APIKey
		if credential == "" && p.APIKeyEnv != "" {
			credential = os.Getenv(p.APIKeyEnv)
		}
		out = append(out, models.ResolvedProvider{
			Name:        p.Name,
			BaseURL:     p.APIBase,
			Model:       p.Model,
			Credential:  credential,
			Priority:    p.Priority,
			Timeout:     time.Duration(p.TimeoutSecs) * time.Second,
			MaxRetries:  p.MaxRetries,
			Roles:       rolesSet(p.Roles),
			MaxTokens:   p.MaxTokens,
			Temperature: p.Temperature,
			TopP:        p.TopP,
		})
	}
	return out
}

// resolveLegacyProvider expands the singular [provider] table plus its
// failover list into the same priority-ordered shape [[providers]]
// produces, so the chain never needs to know which section was used.
func resolveLegacyProvider(p ProviderConfig) []models.ResolvedProvider {
	if p.APIBase == "" {
		return nil
	}
	out := []models.ResolvedProvider{{
		Name:        "primary",
		BaseURL:     p.APIBase,
		Model:       p.Model,
		Credential:  p.APIKey,
		Priority:    1,
		Timeout:     30 * time.Second,
		MaxRetries:  2,
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
		TopP:        p.TopP,
	}}
	for i, f := range p.Failover {
		model := f.Model
		if model == "" {
			model = p.Model
		}
		key := f.APIKey
		if key == "" {
			key = p.APIKey
		}
		out = append(out, models.ResolvedProvider{
			Name:        "failover-" + strconv.Itoa(i+1),
			BaseURL:     f.APIBase,
			Model:       model,
			Credential:  key,
			Priority:    i + 2,
			Timeout:     30 * time.Second,
			MaxRetries:  2,
			MaxTokens:   p.MaxTokens,
			Temperature: p.Temperature,
			TopP:        p.TopP,
		})
	}
	return out
}

func rolesSet(roles []string) map[string]struct{} {
	if len(roles) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// ScheduleConfigs builds the scheduler's configuration list from
// [[schedules]].
func (c *Config) ScheduleConfigs() []cron.ScheduleConfig {
	out := make([]cron.ScheduleConfig, 0, len(c.Schedules))
	for _, s := range c.Schedules {
		enabled := true
		if s.Enabled != nil {
			enabled = *s.Enabled
		}
		kind := s.Task
		if kind == "" {
			kind = string(cron.TaskPrompt)
		}
		out = append(out, cron.ScheduleConfig{
			Name:      s.Name,
			CronExpr:  s.Cron,
			Workspace: s.Workspace,
			Enabled:   enabled,
			Kind:      cron.TaskKind(kind),
			Skill:     s.Skill,
			Prompt:    s.Prompt,
		})
	}
	return out
}

// SandboxConfig builds the sandbox executor's Config from [sandbox].
func (c *Config) SandboxConfig() sandbox.Config {
	mode := sandbox.ModeContainer
	if c.Sandbox.Mode == "unsafe" {
		mode = sandbox.ModeDirect
	}
	return sandbox.Config{
		Mode:        mode,
		Image:       c.Sandbox.DockerImage,
		Timeout:     time.Duration(c.Sandbox.TimeoutSecs) * time.Second,
		MemoryLimit: c.Sandbox.MemoryLimit,
		WorkDir:     c.Sandbox.WorkDir,
	}
}
