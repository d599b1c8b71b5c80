package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Bbeierle12/Agent-Shell/internal/backoff"
)

// maxSleep is how long the scheduler sleeps between ticks when it has no
// schedule at all. The schedule list is fixed at construction and the
// state file is read only then; waking does not reload either.
const maxSleep = time.Hour

// Scheduler fires configured cron schedules on time, persists run state
// across restarts, and delivers fired Task descriptors over a channel to
// an external dispatcher. It does not itself know how to execute a task.
type Scheduler struct {
	mu        sync.Mutex
	schedules []*schedule
	statePath string
	now       func() time.Time
	logger    *slog.Logger
	tasks     chan Task
}

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger overrides the scheduler's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTaskBuffer sets the task channel's buffer size (default 16).
func WithTaskBuffer(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.tasks = make(chan Task, n)
		}
	}
}

// NewScheduler builds a Scheduler from configured schedules and the path
// to its persisted state file (empty disables persistence). Schedules with
// an invalid cron expression are logged and dropped rather than aborting
// construction; disabled schedules are silently dropped.
func NewScheduler(cfgs []ScheduleConfig, statePath string, opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		statePath: statePath,
		now:       time.Now,
		logger:    slog.Default().With("component", "cron"),
		tasks:     make(chan Task, 16),
	}
	for _, opt := range opts {
		opt(s)
	}

	state, err := loadState(statePath)
	if err != nil {
		s.logger.Warn("cron state load failed, starting fresh", "error", err)
		state = State{Schedules: make(map[string]ScheduleState)}
	}

	now := s.now()
	for _, cfg := range cfgs {
		if !cfg.Enabled {
			continue
		}
		sch, err := newSchedule(cfg, now)
		if err != nil {
			s.logger.Warn("cron schedule disabled: invalid expression", "name", cfg.Name, "error", err)
			continue
		}
		if saved, ok := state.Schedules[cfg.Name]; ok {
			sch.nextRun = saved.NextRun
			sch.lastRun = saved.LastRun
			sch.lastError = saved.LastError
			sch.runCount = saved.RunCount
		}
		s.schedules = append(s.schedules, sch)
	}
	return s, nil
}

// Tasks returns the channel fired tasks are delivered on.
func (s *Scheduler) Tasks() <-chan Task {
	return s.tasks
}

// Run drives the tick/sleep loop until ctx is cancelled. Each tick fires
// every schedule whose next run is due, persists state if anything fired,
// then sleeps until the earliest remaining next run (or maxSleep, if
// none).
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if s.Tick(ctx) {
			if err := s.persist(); err != nil {
				s.logger.Warn("cron state save failed", "error", err)
			}
		}
		if err := backoff.Sleep(ctx, s.sleepDuration()); err != nil {
			return err
		}
	}
}

// Tick fires every due schedule once and reports whether anything fired.
// Exported so tests (and a restart's immediate catch-up tick) can drive
// the scheduler without waiting on the sleep loop.
func (s *Scheduler) Tick(ctx context.Context) bool {
	now := s.now()

	s.mu.Lock()
	due := make([]*schedule, 0, len(s.schedules))
	for _, sch := range s.schedules {
		if !now.Before(sch.nextRun) {
			due = append(due, sch)
		}
	}
	s.mu.Unlock()

	for _, sch := range due {
		s.fire(ctx, sch, now)
	}
	return len(due) > 0
}

func (s *Scheduler) fire(ctx context.Context, sch *schedule, now time.Time) {
	task := sch.task()
	s.deliver(ctx, task)

	s.mu.Lock()
	sch.lastRun = now
	sch.lastError = ""
	sch.runCount++
	sch.nextRun = sch.spec.Next(now)
	s.mu.Unlock()
}

// deliver sends task to the task channel, yielding to ctx cancellation so
// a stalled consumer cannot wedge the scheduler loop forever.
func (s *Scheduler) deliver(ctx context.Context, task Task) {
	select {
	case s.tasks <- task:
	case <-ctx.Done():
	}
}

func (s *Scheduler) sleepDuration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var earliest time.Time
	for _, sch := range s.schedules {
		if earliest.IsZero() || sch.nextRun.Before(earliest) {
			earliest = sch.nextRun
		}
	}
	if earliest.IsZero() {
		return maxSleep
	}
	if d := earliest.Sub(now); d > 0 {
		return d
	}
	return 0
}

func (s *Scheduler) persist() error {
	s.mu.Lock()
	state := State{Schedules: make(map[string]ScheduleState, len(s.schedules))}
	for _, sch := range s.schedules {
		state.Schedules[sch.cfg.Name] = ScheduleState{
			NextRun:   sch.nextRun,
			LastRun:   sch.lastRun,
			LastError: sch.lastError,
			RunCount:  sch.runCount,
		}
	}
	s.mu.Unlock()
	return saveState(s.statePath, state)
}
