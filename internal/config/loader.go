package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load reads and parses the TOML configuration file at path, applies
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	for i := range cfg.Providers {
		p := &cfg.Providers[i]
		if p.Priority == 0 {
			p.Priority = 1
		}
		if p.TimeoutSecs == 0 {
			p.TimeoutSecs = 30
		}
		if p.MaxRetries == 0 {
			p.MaxRetries = 2
		}
	}
	for i := range cfg.Schedules {
		s := &cfg.Schedules[i]
		if s.Task == "" {
			s.Task = "prompt"
		}
		if s.Enabled == nil {
			enabled := true
			s.Enabled = &enabled
		}
	}
	if cfg.Sandbox.Mode == "" {
		cfg.Sandbox.Mode = "docker"
	}
	if cfg.Sandbox.TimeoutSecs == 0 {
		cfg.Sandbox.TimeoutSecs = 30
	}
	if cfg.Session.AutoSave == nil {
		autoSave := true
		cfg.Session.AutoSave = &autoSave
	}
}

// ValidationError collects every configuration problem found by validate
// so a user sees all of them at once instead of fixing one at a time.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "config validation failed:\n- " + strings.Join(e.Issues, "\n- ")
}

func validate(cfg *Config) error {
	var issues []string

	if len(cfg.Providers) == 0 && cfg.Provider.APIBase == "" {
		issues = append(issues, "either [provider] or [[providers]] must configure at least one endpoint")
	}
	for i, p := range cfg.Providers {
		if p.APIBase == "" {
			issues = append(issues, fmt.Sprintf("providers[%d].api_base is required", i))
		}
		if p.APIKey == "" && p.APIKeyEnv == "" {
			issues = append(issues, fmt.Sprintf("providers[%d] must set api_key or api_key_env", i))
		}
		if p.APIKeyEnv != "" && os.Getenv(p.APIKeyEnv) == "" {
			issues = append(issues, fmt.Sprintf("providers[%d].api_key_env %q is unset", i, p.APIKeyEnv))
		}
	}

	for i, s := range cfg.Schedules {
		if s.Name == "" {
			issues = append(issues, fmt.Sprintf("schedules[%d].name is required", i))
		}
		if s.Cron == "" {
			issues = append(issues, fmt.Sprintf("schedules[%d].cron is required", i))
		}
		switch s.Task {
		case "heartbeat", "prompt", "custom":
		default:
			issues = append(issues, fmt.Sprintf("schedules[%d].task must be \"heartbeat\", \"prompt\", or \"custom\"", i))
		}
	}

	switch cfg.Sandbox.Mode {
	case "docker", "unsafe":
	default:
		issues = append(issues, "sandbox.mode must be \"docker\" or \"unsafe\"")
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
