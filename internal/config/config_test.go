package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bbeierle12/Agent-Shell/internal/cron"
	"github.com/Bbeierle12/Agent-Shell/internal/tools/sandbox"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "agentshell.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_ValidSingleProvider(t *testing.T) {
	path := writeConfig(t, `
system_prompt = "You are a helpful assistant."

[provider]
api_base = "https://api.anthropic.com"
model = "claude-3-5-sonnet"
api_key = "sk-test"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.anthropic.com", cfg.Provider.APIBase)
}

func TestLoad_RejectsMissingProvider(t *testing.T) {
	path := writeConfig(t, `system_prompt = "hi"`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider")
}

func TestLoad_RejectsUnsetAPIKeyEnv(t *testing.T) {
	path := writeConfig(t, `
[[providers]]
name = "primary"
api_base = "https://api.openai.com"
model = "gpt-4o"
api_key_env = "DOES_NOT_EXIST_AGENTSHELL_TEST"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOES_NOT_EXIST_AGENTSHELL_TEST")
}

func TestLoad_RejectsInvalidSandboxMode(t *testing.T) {
	path := writeConfig(t, `
[provider]
api_base = "https://api.anthropic.com"
model = "claude"

[sandbox]
mode = "chroot"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sandbox.mode")
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[[providers]]
name = "primary"
api_base = "https://api.anthropic.com"
model = "claude"
api_key = "sk-test"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Providers[0].Priority)
	assert.Equal(t, 30, cfg.Providers[0].TimeoutSecs)
	assert.Equal(t, 2, cfg.Providers[0].MaxRetries)
	assert.Equal(t, "docker", cfg.Sandbox.Mode)
}

func TestResolvedProviders_RepeatedTakesPrecedenceOverSingular(t *testing.T) {
	cfg := &Config{
		Provider: ProviderConfig{APIBase: "https://ignored.example", Model: "ignored"},
		Providers: []ProviderEntry{
			{Name: "a", APIBase: "https://a.example", Model: "m-a", APIKey: "key-a", Priority: 1},
			{Name: "b", APIBase: "https://b.example", Model: "m-b", APIKey: "key-b", Priority: 2},
		},
	}

	resolved := cfg.ResolvedProviders()
	require.Len(t, resolved, 2)
	assert.Equal(t, "a", resolved[0].Name)
	assert.Equal(t, "https://a.example", resolved[0].BaseURL)
}

func TestResolvedProviders_LegacyProviderExpandsFailoverList(t *testing.T) {
	cfg := &Config{
		Provider: ProviderConfig{
			APIBase: "https://primary.example",
			Model:   "claude",
			APIKey:  "sk-primary",
			Failover: []FailoverEntry{
				{APIBase: "https://backup.example"},
			},
		},
	}

	resolved := cfg.ResolvedProviders()
	require.Len(t, resolved, 2)
	assert.Equal(t, "primary", resolved[0].Name)
	assert.Equal(t, 1, resolved[0].Priority)
	assert.Equal(t, "https://backup.example", resolved[1].BaseURL)
	assert.Equal(t, "claude", resolved[1].Model, "failover inherits model when unset")
	assert.Equal(t, "sk-primary", resolved[1].Credential, "failover inherits api_key when unset")
}

func TestScheduleConfigs_DefaultsTaskAndEnabled(t *testing.T) {
	cfg := &Config{
		Schedules: []ScheduleEntry{
			{Name: "nightly", Cron: "0 2 * * *"},
		},
	}

	scs := cfg.ScheduleConfigs()
	require.Len(t, scs, 1)
	assert.Equal(t, "nightly", scs[0].Name)
	assert.Equal(t, cron.TaskPrompt, scs[0].Kind)
	assert.True(t, scs[0].Enabled)
}

func TestSandboxConfig_MapsModeStrings(t *testing.T) {
	docker := (&Config{Sandbox: SandboxConfig{Mode: "docker"}}).SandboxConfig()
	assert.Equal(t, sandbox.ModeContainer, docker.Mode)

	unsafeMode := (&Config{Sandbox: SandboxConfig{Mode: "unsafe"}}).SandboxConfig()
	assert.Equal(t, sandbox.ModeDirect, unsafeMode.Mode)
}

func TestApplyProfile_OverlaysOnlyListedFields(t *testing.T) {
	cfg := &Config{
		SystemPrompt: "default prompt",
		Provider:     ProviderConfig{Model: "claude-haiku", APIBase: "https://api.anthropic.com"},
		Profiles: map[string]ProfileConfig{
			"precise": {Model: "claude-opus", Temperature: 0.1},
		},
	}

	effective, err := cfg.ApplyProfile("precise")
	require.NoError(t, err)
	assert.Equal(t, "claude-opus", effective.Provider.Model)
	assert.Equal(t, 0.1, effective.Provider.Temperature)
	assert.Equal(t, "https://api.anthropic.com", effective.Provider.APIBase, "unset overlay fields are unchanged")
	assert.Equal(t, "default prompt", cfg.SystemPrompt, "original config is untouched")
}

func TestApplyProfile_UnknownNameErrors(t *testing.T) {
	cfg := &Config{Profiles: map[string]ProfileConfig{}}
	_, err := cfg.ApplyProfile("missing")
	assert.Error(t, err)
}
