package backoff

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompute_GrowsExponentiallyAndClampsToMax(t *testing.T) {
	policy := Policy{InitialMs: 100, MaxMs: 1000, Factor: 2, Jitter: 0}

	assert.Equal(t, 100*time.Millisecond, computeWithRand(policy, 1, 0))
	assert.Equal(t, 200*time.Millisecond, computeWithRand(policy, 2, 0))
	assert.Equal(t, 400*time.Millisecond, computeWithRand(policy, 3, 0))
	assert.Equal(t, 1000*time.Millisecond, computeWithRand(policy, 10, 0), "should clamp to MaxMs")
}

func TestSleep_ReturnsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Sleep(ctx, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSleep_ZeroDurationReturnsImmediately(t *testing.T) {
	assert.NoError(t, Sleep(context.Background(), 0))
}
