// Package backoff provides exponential backoff with jitter, used anywhere
// this runtime needs to wait between retries or ticks without busy-looping.
package backoff

import (
	"math"
	"math/rand"
	"time"
)

// Policy parameterizes an exponential backoff curve.
type Policy struct {
	InitialMs float64
	MaxMs     float64
	Factor    float64
	Jitter    float64
}

// DefaultPolicy is a sensible general-purpose curve: 100ms initial, 30s
// cap, doubling, 10% jitter.
func DefaultPolicy() Policy {
	return Policy{InitialMs: 100, MaxMs: 30000, Factor: 2, Jitter: 0.1}
}

// Compute returns the backoff duration for attempt (1-indexed), using the
// package's random source for jitter.
func Compute(policy Policy, attempt int) time.Duration {
	return computeWithRand(policy, attempt, rand.Float64()) // #nosec G404 -- jitter only, not security sensitive
}

func computeWithRand(policy Policy, attempt int, r float64) time.Duration {
	exp := math.Max(float64(attempt-1), 0)
	base := policy.InitialMs * math.Pow(policy.Factor, exp)
	jittered := base * policy.Jitter * r
	total := math.Min(policy.MaxMs, base+jittered)
	return time.Duration(math.Round(total)) * time.Millisecond
}
