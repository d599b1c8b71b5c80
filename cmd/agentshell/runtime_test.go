package main

import (
	"context"
	"testing"

	"github.com/Bbeierle12/Agent-Shell/pkg/models"
)

func TestBuildAdapter_RoutesByBaseURL(t *testing.T) {
	cases := []struct {
		name    string
		baseURL string
		want    string
	}{
		{"anthropic endpoint", "https://api.anthropic.com/v1", "anthropic"},
		{"self-hosted openai-compatible gateway", "https://llm.internal.example/v1", "openai"},
		{"plain openai endpoint", "https://api.openai.com/v1", "openai"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			adapter, err := buildAdapter(context.Background(), models.ResolvedProvider{
				Name:       "test",
				BaseURL:    tc.baseURL,
				Model:      "some-model",
				Credential: "test-key",
			})
			if err != nil {
				t.Fatalf("buildAdapter: %v", err)
			}
			if adapter.Name() != tc.want {
				t.Errorf("adapter.Name() = %q, want %q", adapter.Name(), tc.want)
			}
		})
	}
}

func TestBuildAdapter_AnthropicRequiresCredential(t *testing.T) {
	_, err := buildAdapter(context.Background(), models.ResolvedProvider{
		BaseURL: "https://api.anthropic.com",
		Model:   "claude",
	})
	if err == nil {
		t.Fatal("expected an error for a missing API key")
	}
}
