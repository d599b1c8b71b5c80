package config

import "github.com/Bbeierle12/Agent-Shell/internal/sessions"

// SessionStoreConfig builds the file-backed session store's configuration
// from [session]. HistoryDir defaults to "sessions" when unset.
func (c *Config) SessionStoreConfig() sessions.FileStoreConfig {
	dir := c.Session.HistoryDir
	if dir == "" {
		dir = "sessions"
	}
	autoSave := true
	if c.Session.AutoSave != nil {
		autoSave = *c.Session.AutoSave
	}
	maxHistory := int(c.Session.MaxHistory)
	if maxHistory <= 0 {
		maxHistory = 50
	}
	return sessions.FileStoreConfig{
		Dir:        dir,
		MaxHistory: maxHistory,
		AutoSave:   autoSave,
	}
}
