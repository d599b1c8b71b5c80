package cron

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// schedule is one normalized, parsed cron entry, paired with the task
// descriptor it fires and its mutable runtime state.
type schedule struct {
	cfg  ScheduleConfig
	spec cron.Schedule

	nextRun   time.Time
	lastRun   time.Time
	lastError string
	runCount  int
}

// newSchedule parses cfg.CronExpr (5, 6, or 7 fields) and computes the
// first next-run strictly after now. An invalid expression is returned as
// an error; the caller logs a warning and disables the schedule rather
// than aborting the scheduler.
func newSchedule(cfg ScheduleConfig, now time.Time) (*schedule, error) {
	if cfg.Workspace == "" {
		cfg.Workspace = "default"
	}
	normalized, err := NormalizeCronExpr(cfg.CronExpr)
	if err != nil {
		return nil, err
	}
	spec, err := cronParser.Parse(stripYear(normalized))
	if err != nil {
		return nil, fmt.Errorf("cron: invalid expression %q: %w", cfg.CronExpr, err)
	}
	return &schedule{
		cfg:     cfg,
		spec:    spec,
		nextRun: spec.Next(now),
	}, nil
}

// task renders the Task descriptor this schedule fires.
func (s *schedule) task() Task {
	return Task{
		Kind:         s.cfg.Kind,
		ScheduleName: s.cfg.Name,
		Workspace:    s.cfg.Workspace,
		Skill:        s.cfg.Skill,
		Prompt:       s.cfg.Prompt,
	}
}
