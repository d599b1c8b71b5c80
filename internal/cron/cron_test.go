package cron

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCronExpr(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "* * * * *", want: "0 * * * * * *"},
		{in: "30 * * * * *", want: "30 * * * * * *"},
		{in: "30 * * * * * 2030", want: "30 * * * * * 2030"},
		{in: "* * *", wantErr: true},
	}
	for _, tc := range cases {
		got, err := NormalizeCronExpr(tc.in)
		if tc.wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestScheduler_TickFiresDueScheduleAndAdvances(t *testing.T) {
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: fixed}

	s, err := NewScheduler(
		[]ScheduleConfig{{Name: "every-minute", CronExpr: "* * * * *", Workspace: "ws", Enabled: true, Kind: TaskHeartbeat, Skill: "check-in"}},
		"",
		WithNow(clock.Now),
	)
	require.NoError(t, err)

	clock.t = fixed.Add(time.Minute)
	fired := s.Tick(context.Background())
	assert.True(t, fired)

	select {
	case task := <-s.Tasks():
		assert.Equal(t, TaskHeartbeat, task.Kind)
		assert.Equal(t, "every-minute", task.ScheduleName)
		assert.Equal(t, "ws", task.Workspace)
		assert.Equal(t, "check-in", task.Skill)
	default:
		t.Fatal("expected a delivered task")
	}

	assert.False(t, s.Tick(context.Background()), "should not re-fire before the next minute elapses")
}

func TestScheduler_InvalidExpressionDisablesWithoutAborting(t *testing.T) {
	s, err := NewScheduler(
		[]ScheduleConfig{
			{Name: "bad", CronExpr: "not a cron expr", Enabled: true, Kind: TaskCustom},
			{Name: "good", CronExpr: "* * * * *", Enabled: true, Kind: TaskCustom},
		},
		"",
	)
	require.NoError(t, err)
	assert.Len(t, s.schedules, 1)
	assert.Equal(t, "good", s.schedules[0].cfg.Name)
}

func TestScheduler_PersistsAndReloadsState(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.json")
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: fixed}

	s, err := NewScheduler(
		[]ScheduleConfig{{Name: "hb", CronExpr: "* * * * *", Enabled: true, Kind: TaskHeartbeat}},
		statePath,
		WithNow(clock.Now),
	)
	require.NoError(t, err)

	clock.t = fixed.Add(time.Minute)
	require.True(t, s.Tick(context.Background()))
	require.NoError(t, s.persist())

	reloaded, err := NewScheduler(
		[]ScheduleConfig{{Name: "hb", CronExpr: "* * * * *", Enabled: true, Kind: TaskHeartbeat}},
		statePath,
		WithNow(clock.Now),
	)
	require.NoError(t, err)
	require.Len(t, reloaded.schedules, 1)
	assert.Equal(t, 1, reloaded.schedules[0].runCount)
}

func TestScheduler_SleepDurationIsEarliestNextRun(t *testing.T) {
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: fixed}

	s, err := NewScheduler(
		[]ScheduleConfig{{Name: "hb", CronExpr: "* * * * *", Enabled: true, Kind: TaskHeartbeat}},
		"",
		WithNow(clock.Now),
	)
	require.NoError(t, err)

	d := s.sleepDuration()
	assert.LessOrEqual(t, d, time.Minute)
	assert.Greater(t, d, time.Duration(0))
}

func TestScheduler_SleepDurationDefaultsWhenNoSchedules(t *testing.T) {
	s, err := NewScheduler(nil, "")
	require.NoError(t, err)
	assert.Equal(t, maxSleep, s.sleepDuration())
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }
