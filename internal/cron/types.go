package cron

import "time"

// TaskKind discriminates the three task descriptors the scheduler can
// deliver.
type TaskKind string

const (
	TaskHeartbeat TaskKind = "heartbeat"
	TaskPrompt    TaskKind = "prompt"
	TaskCustom    TaskKind = "custom"
)

// Task is the descriptor a fired schedule hands to an external dispatcher
// over the scheduler's task channel. Skill and Prompt are copied from the
// schedule's configuration whatever the Kind; a custom task carries its
// text in Prompt.
type Task struct {
	Kind         TaskKind
	ScheduleName string
	Workspace    string

	// Heartbeat payload.
	Skill string

	// Prompt payload.
	Prompt string
}

// ScheduleConfig is one configured schedule entry, as loaded from
// internal/config's [[schedules]] table.
type ScheduleConfig struct {
	Name      string
	CronExpr  string
	Workspace string
	Enabled   bool
	Kind      TaskKind
	Skill     string
	Prompt    string
}

// ScheduleState is the persisted, per-schedule runtime state that survives
// restarts.
type ScheduleState struct {
	NextRun   time.Time `json:"next_run"`
	LastRun   time.Time `json:"last_run,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	RunCount  int       `json:"run_count"`
}

// State is the scheduler's full persisted state, keyed by schedule name.
type State struct {
	Schedules map[string]ScheduleState `json:"schedules"`
}
