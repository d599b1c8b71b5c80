// Package providers implements the provider chain: priority-ordered
// failover across configured LLM endpoints, with per-provider health
// accounting and permanent/transient error classification.
package providers

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Bbeierle12/Agent-Shell/internal/agent"
	"github.com/Bbeierle12/Agent-Shell/internal/agenterr"
	"github.com/Bbeierle12/Agent-Shell/pkg/models"
)

// Outcome is what a request-with-failover closure returns for one
// candidate: success, a Transient failure (try the next candidate), or a
// Permanent failure (abort the whole chain immediately).
type Outcome struct {
	Err       error
	Permanent bool
}

// Transient wraps err as a retryable failure.
func Transient(err error) Outcome { return Outcome{Err: err} }

// Permanent wraps err as a non-retryable failure that should abort
// failover rather than try the next candidate.
func Permanent(err error) Outcome { return Outcome{Err: err, Permanent: true} }

// candidate pairs a resolved provider configuration with its live
// LLMProvider adapter.
type candidate struct {
	cfg      models.ResolvedProvider
	provider agent.LLMProvider
}

// Chain selects a live endpoint for each call and fails over across the
// configured list without retrying permanent errors. Health state is
// exclusively owned by the chain.
type Chain struct {
	mu         sync.RWMutex
	candidates []candidate
	health     map[string]*models.ProviderHealth
}

// NewChain builds a chain from resolved provider configs paired with
// their concrete adapters, in the same order. The candidates keep that
// order; selection sorts a filtered copy by ascending Priority per call
// and never mutates this base order.
func NewChain(cfgs []models.ResolvedProvider, adapters []agent.LLMProvider) *Chain {
	c := &Chain{health: make(map[string]*models.ProviderHealth)}
	for i, cfg := range cfgs {
		c.candidates = append(c.candidates, candidate{cfg: cfg, provider: adapters[i]})
		c.health[cfg.Name] = &models.ProviderHealth{}
	}
	return c
}

// Health returns a copy of provider name's health counters, for metrics
// and diagnostics. Returns the zero value if name is unknown.
func (c *Chain) Health(name string) models.ProviderHealth {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if h, ok := c.health[name]; ok {
		return *h
	}
	return models.ProviderHealth{}
}

// selectCandidates returns the Healthy providers matching role, sorted by
// ascending priority with ties broken by original list order. The health
// lock is held only for this snapshot.
func (c *Chain) selectCandidates(role string) []candidate {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]candidate, 0, len(c.candidates))
	for _, cand := range c.candidates {
		if !cand.cfg.MatchesRole(role) {
			continue
		}
		h := c.health[cand.cfg.Name]
		if h.Exhausted(cand.cfg.MaxRetries) {
			continue
		}
		out = append(out, cand)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].cfg.Priority < out[j].cfg.Priority
	})
	return out
}

func (c *Chain) recordSuccess(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := c.health[name]
	h.ConsecutiveFailures = 0
	h.TotalRequests++
	h.LastSuccess = time.Now()
}

func (c *Chain) recordFailure(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := c.health[name]
	h.ConsecutiveFailures++
	h.TotalFailures++
	h.TotalRequests++
	h.LastFailure = time.Now()
}

// RequestWithFailover runs fn against each Healthy candidate matching role
// in priority order. fn's closure receives the resolved provider config
// and returns an Outcome — not a raw error — so the chain can distinguish
// Transient from Permanent without string-sniffing at this layer.
func (c *Chain) RequestWithFailover(ctx context.Context, role string, fn func(ctx context.Context, p models.ResolvedProvider) Outcome) error {
	candidates := c.selectCandidates(role)
	if len(candidates) == 0 {
		return &agenterr.ProviderError{Message: "All providers exhausted"}
	}

	var failures []string
	for _, cand := range candidates {
		outcome := fn(ctx, cand.cfg)
		if outcome.Err == nil {
			c.recordSuccess(cand.cfg.Name)
			return nil
		}
		c.recordFailure(cand.cfg.Name)
		if outcome.Permanent {
			return &agenterr.ProviderError{
				Provider:  cand.cfg.Name,
				Permanent: true,
				Message:   outcome.Err.Error(),
				Cause:     outcome.Err,
			}
		}
		failures = append(failures, cand.cfg.Name+": "+outcome.Err.Error())
	}
	return &agenterr.ProviderError{Message: "All providers failed: " + strings.Join(failures, "; ")}
}

// Complete implements agent.LLMProvider (and so agent.ProviderChain) by
// running RequestWithFailover over each candidate's Complete method,
// classifying the returned error via agenterr.IsPermanent.
func (c *Chain) Complete(ctx context.Context, req *agent.CompletionRequest) (<-chan *agent.CompletionChunk, error) {
	var result <-chan *agent.CompletionChunk
	err := c.RequestWithFailover(ctx, req.Role, func(ctx context.Context, p models.ResolvedProvider) Outcome {
		candReq := *req
		if candReq.Model == "" {
			candReq.Model = p.Model
		}
		provider := c.providerFor(p.Name)
		if provider == nil {
			return Permanent(&agenterr.ProviderError{Provider: p.Name, Message: "no adapter configured"})
		}
		ch, err := provider.Complete(ctx, &candReq)
		if err != nil {
			if agenterr.IsPermanent(err) {
				return Permanent(err)
			}
			return Transient(err)
		}
		result = ch
		return Outcome{}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Name identifies the chain itself as an agent.LLMProvider, useful when
// the chain is nested inside another chain (e.g. per-profile routing).
func (c *Chain) Name() string { return "chain" }

func (c *Chain) providerFor(name string) agent.LLMProvider {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, cand := range c.candidates {
		if cand.cfg.Name == name {
			return cand.provider
		}
	}
	return nil
}
