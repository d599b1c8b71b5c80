package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// buildSessionCmd groups session-inspection commands.
func buildSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect persisted sessions",
	}
	cmd.AddCommand(buildSessionListCmd(), buildSessionShowCmd())
	return cmd
}

func buildSessionListCmd() *cobra.Command {
	var (
		configPath  string
		profileName string
		workspace   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every known session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := buildRuntime(ctx, configPath, profileName, workspace)
			if err != nil {
				return err
			}
			for _, s := range rt.sessions.List(ctx) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d messages\tupdated %s\n",
					s.ID, s.Name, len(s.Messages), s.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "agentshell.toml", "path to the TOML config file")
	cmd.Flags().StringVar(&profileName, "profile", "", "named [profiles.<name>] overlay to apply")
	cmd.Flags().StringVar(&workspace, "workspace", ".", "root directory the file tools are confined to")

	return cmd
}

func buildSessionShowCmd() *cobra.Command {
	var (
		configPath  string
		profileName string
		workspace   string
	)

	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print a session's message history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := buildRuntime(ctx, configPath, profileName, workspace)
			if err != nil {
				return err
			}
			s, err := rt.sessions.Get(ctx, args[0])
			if err != nil {
				return err
			}
			for _, msg := range s.Messages {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", msg.Role, msg.Content)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "agentshell.toml", "path to the TOML config file")
	cmd.Flags().StringVar(&profileName, "profile", "", "named [profiles.<name>] overlay to apply")
	cmd.Flags().StringVar(&workspace, "workspace", ".", "root directory the file tools are confined to")

	return cmd
}
