// Package main provides the agentshell CLI: a model-agnostic, tool-using
// agent runtime with a provider failover chain, a sandboxed tool registry,
// a cron-style scheduler, and file-backed session persistence.
//
// Usage:
//
//	agentshell run --config agentshell.toml --session default "what is 2+2?"
//	agentshell schedule run --config agentshell.toml
//	agentshell session list --config agentshell.toml
//
// Configuration is a single TOML file; see internal/config for its shape.
// Exit codes: 0 normal, 1 config/IO error, 2 usage error.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Bbeierle12/Agent-Shell/internal/agenterr"
)

// version, commit, and date are populated by ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps the runtime's typed error taxonomy onto the spec's
// three exit codes. Errors with no matching agenterr type are cobra's own
// usage errors (unknown flag, wrong arg count), which get the usage code.
func exitCodeFor(err error) int {
	var cfgErr *agenterr.ConfigError
	var sessErr *agenterr.SessionError
	var provErr *agenterr.ProviderError
	var sbErr *agenterr.SandboxError
	var schemaErr *agenterr.SchemaError
	switch {
	case errors.As(err, &cfgErr), errors.As(err, &sessErr):
		return 1
	case errors.As(err, &provErr), errors.As(err, &sbErr), errors.As(err, &schemaErr):
		return 1
	default:
		return 2
	}
}

// buildRootCmd assembles the command tree. Separated from main for
// testability.
func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "agentshell",
		Short:   "A model-agnostic, tool-using agent runtime",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),

		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		buildRunCmd(),
		buildScheduleCmd(),
		buildSessionCmd(),
	)

	return rootCmd
}
