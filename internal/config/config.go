// Package config loads the agentshell TOML configuration file and
// resolves it into the concrete types the rest of the runtime consumes:
// a provider chain's []models.ResolvedProvider, the scheduler's
// []cron.ScheduleConfig, and the sandbox executor's sandbox.Config.
//
// Config loading is intentionally a thin layer over github.com/BurntSushi/toml
// rather than the teacher's YAML-plus-$include overlay engine — there is
// no multi-file include mechanism here, just one file and an optional
// named profile overlay.
package config

// Config is the full parsed contents of the TOML configuration file.
type Config struct {
	SystemPrompt string                   `toml:"system_prompt"`
	Provider     ProviderConfig           `toml:"provider"`
	Providers    []ProviderEntry          `toml:"providers"`
	Schedules    []ScheduleEntry          `toml:"schedules"`
	Sandbox      SandboxConfig            `toml:"sandbox"`
	Server       ServerConfig             `toml:"server"`
	Session      SessionConfig            `toml:"session"`
	Profiles     map[string]ProfileConfig `toml:"profiles"`
}

// ProviderConfig is the singular [provider] table: the default model
// endpoint, with an optional ordered failover list.
type ProviderConfig struct {
	APIBase     string           `toml:"api_base"`
	Model       string           `toml:"model"`
	APIKey      string           `toml:"api_key"`
	MaxTokens   int              `toml:"max_tokens"`
	Temperature float64          `toml:"temperature"`
	TopP        float64          `toml:"top_p"`
	Failover    []FailoverEntry  `toml:"failover"`
}

// FailoverEntry is one [[provider.failover]] candidate. Model and APIKey
// default to the parent ProviderConfig's values when left empty.
type FailoverEntry struct {
	APIBase string `toml:"api_base"`
	Model   string `toml:"model"`
	APIKey  string `toml:"api_key"`
}

// ProviderEntry is one [[providers]] table entry. When the [[providers]]
// list is non-empty it takes precedence over [provider] entirely.
type ProviderEntry struct {
	Name        string   `toml:"name"`
	APIBase     string   `toml:"api_base"`
	Model       string   `toml:"model"`
	APIKey      string   `toml:"api_key"`
	APIKeyEnv   string   `toml:"api_key_env"`
	Priority    int      `toml:"priority"`
	TimeoutSecs int      `toml:"timeout_secs"`
	MaxRetries  int      `toml:"max_retries"`
	Roles       []string `toml:"roles"`
	MaxTokens   int      `toml:"max_tokens"`
	Temperature float64  `toml:"temperature"`
	TopP        float64  `toml:"top_p"`
}

// ScheduleEntry is one [[schedules]] table entry.
type ScheduleEntry struct {
	Name      string `toml:"name"`
	Cron      string `toml:"cron"`
	Workspace string `toml:"workspace"`
	Task      string `toml:"task"`
	Skill     string `toml:"skill"`
	Prompt    string `toml:"prompt"`
	Enabled   *bool  `toml:"enabled"`
}

// SandboxConfig is the [sandbox] table.
type SandboxConfig struct {
	Mode          string `toml:"mode"`
	DockerImage   string `toml:"docker_image"`
	TimeoutSecs   int    `toml:"timeout_secs"`
	MemoryLimit   int64  `toml:"memory_limit"`
	WorkDir       string `toml:"work_dir"`
	WorkspaceRoot string `toml:"workspace_root"`
}

// ServerConfig is the [server] table. Only types are provided here; the
// HTTP server itself is out of this module's scope.
type ServerConfig struct {
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	AuthToken string `toml:"auth_token"`
	CORS      bool   `toml:"cors"`
}

// SessionConfig is the [session] table.
type SessionConfig struct {
	HistoryDir string `toml:"history_dir"`
	MaxHistory uint   `toml:"max_history"`
	AutoSave   *bool  `toml:"auto_save"`
}

// ProfileConfig is one [profiles.<name>] overlay. Only non-zero fields
// override the base configuration when the profile is applied.
type ProfileConfig struct {
	Model        string  `toml:"model"`
	APIBase      string  `toml:"api_base"`
	SystemPrompt string  `toml:"system_prompt"`
	MaxTokens    int     `toml:"max_tokens"`
	Temperature  float64 `toml:"temperature"`
}
