package models

import "time"

// ResolvedProvider is a single configured LLM endpoint, ready for the
// provider chain to dispatch requests against.
type ResolvedProvider struct {
	Name               string
	BaseURL            string
	Model              string
	Credential         string
	Priority           int
	Timeout            time.Duration
	MaxRetries         int // consecutive-failure threshold before Exhausted
	Roles              map[string]struct{}
	MaxTokens          int
	Temperature        float64
	TopP               float64
}

// MatchesRole reports whether this provider accepts requests tagged with
// role. A provider with no roles configured matches any role.
func (p *ResolvedProvider) MatchesRole(role string) bool {
	if len(p.Roles) == 0 || role == "" {
		return true
	}
	_, ok := p.Roles[role]
	return ok
}

// ProviderHealth is the mutable per-provider health counter set.
type ProviderHealth struct {
	ConsecutiveFailures int
	LastSuccess         time.Time
	LastFailure         time.Time
	TotalRequests       int64
	TotalFailures       int64
	LastLatency         time.Duration
}

// Exhausted reports whether the provider has crossed its failure
// threshold and should be skipped by selection.
func (h *ProviderHealth) Exhausted(maxRetries int) bool {
	return h.ConsecutiveFailures >= maxRetries
}
