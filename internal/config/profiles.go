package config

import "fmt"

// ApplyProfile returns a copy of cfg with the named [profiles.<name>]
// overlay applied: only the overlay's non-zero fields replace the base
// config's [provider] and system_prompt values. The original cfg is left
// untouched.
func (c *Config) ApplyProfile(name string) (*Config, error) {
	profile, ok := c.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("config: no profile named %q", name)
	}

	effective := *c
	if profile.Model != "" {
		effective.Provider.Model = profile.Model
	}
	if profile.APIBase != "" {
		effective.Provider.APIBase = profile.APIBase
	}
	if profile.SystemPrompt != "" {
		effective.SystemPrompt = profile.SystemPrompt
	}
	if profile.MaxTokens != 0 {
		effective.Provider.MaxTokens = profile.MaxTokens
	}
	if profile.Temperature != 0 {
		effective.Provider.Temperature = profile.Temperature
	}
	return &effective, nil
}
