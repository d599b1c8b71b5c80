package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Bbeierle12/Agent-Shell/internal/agent"
	"github.com/Bbeierle12/Agent-Shell/internal/cron"
	"github.com/Bbeierle12/Agent-Shell/pkg/models"
)

// buildScheduleCmd groups the scheduler's commands.
func buildScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run or inspect the cron-style task scheduler",
	}
	cmd.AddCommand(buildScheduleRunCmd())
	return cmd
}

// buildScheduleRunCmd starts the scheduler and dispatches every fired task
// into an agent turn until interrupted. This is the runtime's external
// dispatcher, bridging the scheduler's task channel to the turn loop; the
// scheduler package itself knows nothing about agent turns.
func buildScheduleRunCmd() *cobra.Command {
	var (
		configPath  string
		profileName string
		workspace   string
		statePath   string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the scheduler and dispatch fired tasks into agent turns",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := buildRuntime(ctx, configPath, profileName, workspace)
			if err != nil {
				return err
			}

			sched, err := cron.NewScheduler(rt.cfg.ScheduleConfigs(), statePath)
			if err != nil {
				return fmt.Errorf("start scheduler: %w", err)
			}

			go dispatchTasks(ctx, rt, sched.Tasks(), cmd)

			fmt.Fprintln(cmd.OutOrStdout(), "scheduler running, press ctrl-c to stop")
			return sched.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "agentshell.toml", "path to the TOML config file")
	cmd.Flags().StringVar(&profileName, "profile", "", "named [profiles.<name>] overlay to apply")
	cmd.Flags().StringVar(&workspace, "workspace", ".", "root directory the file tools are confined to")
	cmd.Flags().StringVar(&statePath, "state", "agentshell-schedule-state.json", "path to the scheduler's persisted run-state file")

	return cmd
}

// dispatchTasks drains fired tasks and runs each as its own agent turn
// against a session named after the schedule, so repeated runs of the
// same schedule accumulate history instead of colliding.
func dispatchTasks(ctx context.Context, rt *runtime, tasks <-chan cron.Task, cmd *cobra.Command) {
	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-tasks:
			if !ok {
				return
			}
			if err := runScheduledTask(ctx, rt, task); err != nil {
				rt.metrics.RecordScheduleFire(task.ScheduleName, "error")
				fmt.Fprintf(cmd.ErrOrStderr(), "schedule %s failed: %v\n", task.ScheduleName, err)
				continue
			}
			rt.metrics.RecordScheduleFire(task.ScheduleName, "success")
		}
	}
}

func runScheduledTask(ctx context.Context, rt *runtime, task cron.Task) error {
	if err := selectOrCreateSession(ctx, rt, "schedule-"+task.ScheduleName); err != nil {
		return err
	}

	prompt := taskPrompt(task)
	if err := rt.sessions.PushMessage(ctx, models.NewMessage(models.RoleUser, prompt)); err != nil {
		return err
	}

	in := agent.TurnInput{
		History:      rt.sessions.RecentMessages(),
		SystemPrompt: rt.cfg.SystemPrompt,
	}
	reply, err := rt.loop.Run(ctx, in, agent.NopSink{})
	if err != nil {
		return err
	}
	if err := rt.sessions.PushMessage(ctx, *reply); err != nil {
		return err
	}
	return rt.sessions.Save(ctx)
}

// taskPrompt renders a fired task's kind-specific payload into the turn's
// user message.
func taskPrompt(task cron.Task) string {
	switch task.Kind {
	case cron.TaskHeartbeat:
		if task.Skill != "" {
			return "heartbeat: run skill " + task.Skill
		}
		return "heartbeat"
	case cron.TaskPrompt:
		return task.Prompt
	default:
		return task.Prompt
	}
}
