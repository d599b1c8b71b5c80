package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Bbeierle12/Agent-Shell/internal/agent"
	"github.com/Bbeierle12/Agent-Shell/pkg/models"
)

// buildRunCmd drives one agent turn against the active session and
// prints the assistant's final message.
func buildRunCmd() *cobra.Command {
	var (
		configPath  string
		profileName string
		workspace   string
		sessionName string
		role        string
		toolAllow   []string
		toolDeny    []string
	)

	cmd := &cobra.Command{
		Use:   "run [prompt]",
		Short: "Run one agent turn and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")

			ctx := cmd.Context()
			rt, err := buildRuntime(ctx, configPath, profileName, workspace)
			if err != nil {
				return err
			}

			if sessionName != "" {
				if err := selectOrCreateSession(ctx, rt, sessionName); err != nil {
					return err
				}
			}

			userMsg := models.NewMessage(models.RoleUser, prompt)
			if err := rt.sessions.PushMessage(ctx, userMsg); err != nil {
				return err
			}

			in := agent.TurnInput{
				History:      rt.sessions.RecentMessages(),
				SystemPrompt: rt.cfg.SystemPrompt,
				ToolAllow:    toolAllow,
				ToolDeny:     toolDeny,
				Role:         role,
			}

			reply, err := rt.loop.Run(ctx, in, agent.NopSink{})
			if err != nil {
				return err
			}
			if err := rt.sessions.PushMessage(ctx, *reply); err != nil {
				return err
			}
			if err := rt.sessions.Save(ctx); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), reply.Content)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "agentshell.toml", "path to the TOML config file")
	cmd.Flags().StringVar(&profileName, "profile", "", "named [profiles.<name>] overlay to apply")
	cmd.Flags().StringVar(&workspace, "workspace", ".", "root directory the file tools are confined to")
	cmd.Flags().StringVar(&sessionName, "session", "", "session name to use or create (default: the most recently active session)")
	cmd.Flags().StringVar(&role, "role", "", "provider role tag to route this turn to")
	cmd.Flags().StringSliceVar(&toolAllow, "tool-allow", nil, "restrict tool use to this allowlist")
	cmd.Flags().StringSliceVar(&toolDeny, "tool-deny", nil, "deny these tools for this turn")

	return cmd
}

// selectOrCreateSession makes name the active session, creating it first
// if no session by that name exists yet.
func selectOrCreateSession(ctx context.Context, rt *runtime, name string) error {
	for _, s := range rt.sessions.List(ctx) {
		if s.Name == name {
			return rt.sessions.SetActive(ctx, s.ID)
		}
	}
	return rt.sessions.Create(ctx, name)
}
