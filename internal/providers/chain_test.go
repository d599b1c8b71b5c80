package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/Bbeierle12/Agent-Shell/internal/agent"
	"github.com/Bbeierle12/Agent-Shell/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name string
}

func (f *fakeProvider) Name() string { return f.name }
func (f *fakeProvider) Complete(ctx context.Context, req *agent.CompletionRequest) (<-chan *agent.CompletionChunk, error) {
	ch := make(chan *agent.CompletionChunk, 1)
	ch <- &agent.CompletionChunk{Done: true}
	close(ch)
	return ch, nil
}

func TestChain_SkipsExhaustedProvider(t *testing.T) {
	cfgs := []models.ResolvedProvider{
		{Name: "a", Priority: 0, MaxRetries: 1},
		{Name: "b", Priority: 1, MaxRetries: 2},
	}
	chain := NewChain(cfgs, []agent.LLMProvider{&fakeProvider{"a"}, &fakeProvider{"b"}})

	attempted := []string{}
	err := chain.RequestWithFailover(context.Background(), "", func(ctx context.Context, p models.ResolvedProvider) Outcome {
		attempted = append(attempted, p.Name)
		return Transient(errors.New("boom"))
	})
	require.Error(t, err)
	assert.Equal(t, []string{"a", "b"}, attempted, "a transient failure on a fails over to b; a is now exhausted")

	attempted = nil
	err = chain.RequestWithFailover(context.Background(), "", func(ctx context.Context, p models.ResolvedProvider) Outcome {
		attempted = append(attempted, p.Name)
		return Transient(errors.New("boom"))
	})
	require.Error(t, err)
	assert.Equal(t, []string{"b"}, attempted, "a should be skipped once exhausted")
}

func TestChain_PermanentErrorAbortsFailover(t *testing.T) {
	cfgs := []models.ResolvedProvider{
		{Name: "a", Priority: 0, MaxRetries: 3},
		{Name: "b", Priority: 1, MaxRetries: 3},
	}
	chain := NewChain(cfgs, []agent.LLMProvider{&fakeProvider{"a"}, &fakeProvider{"b"}})

	var attempted []string
	err := chain.RequestWithFailover(context.Background(), "", func(ctx context.Context, p models.ResolvedProvider) Outcome {
		attempted = append(attempted, p.Name)
		return Permanent(errors.New("invalid_api_key"))
	})
	require.Error(t, err)
	assert.Equal(t, []string{"a"}, attempted)
}

func TestChain_SuccessResetsConsecutiveFailures(t *testing.T) {
	cfgs := []models.ResolvedProvider{{Name: "a", Priority: 0, MaxRetries: 2}}
	chain := NewChain(cfgs, []agent.LLMProvider{&fakeProvider{"a"}})

	_ = chain.RequestWithFailover(context.Background(), "", func(ctx context.Context, p models.ResolvedProvider) Outcome {
		return Transient(errors.New("boom"))
	})
	require.Equal(t, 1, chain.Health("a").ConsecutiveFailures)

	err := chain.RequestWithFailover(context.Background(), "", func(ctx context.Context, p models.ResolvedProvider) Outcome {
		return Outcome{}
	})
	require.NoError(t, err)
	assert.Equal(t, 0, chain.Health("a").ConsecutiveFailures)
}
