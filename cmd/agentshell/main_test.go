package main

import (
	"errors"
	"testing"

	"github.com/Bbeierle12/Agent-Shell/internal/agenterr"
)

func TestBuildRootCmdIncludesSubcommands(t *testing.T) {
	cmd := buildRootCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	required := []string{"run", "schedule", "session"}
	for _, name := range required {
		if !names[name] {
			t.Fatalf("expected subcommand %q to be registered", name)
		}
	}
}

func TestExitCodeFor(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"config error", &agenterr.ConfigError{Message: "bad toml"}, 1},
		{"session error", &agenterr.SessionError{Message: "disk full"}, 1},
		{"provider error", &agenterr.ProviderError{Message: "no endpoint responded"}, 1},
		{"bare cobra usage error", errors.New("unknown flag: --bogus"), 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := exitCodeFor(tc.err); got != tc.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}
