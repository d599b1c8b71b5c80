package sandbox

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutor_DirectShell(t *testing.T) {
	e := NewExecutor(Config{Mode: ModeDirect, Timeout: 5 * time.Second})

	result, err := e.ExecShell(context.Background(), "echo hello")
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, result.Stdout, "hello")
}

func TestExecutor_DirectShellNonZeroExitIsNotError(t *testing.T) {
	e := NewExecutor(Config{Mode: ModeDirect, Timeout: 5 * time.Second})

	result, err := e.ExecShell(context.Background(), "exit 7")
	require.NoError(t, err)
	assert.Equal(t, 7, result.ExitCode)
}

func TestExecutor_DirectShellTimeout(t *testing.T) {
	e := NewExecutor(Config{Mode: ModeDirect, Timeout: 200 * time.Millisecond})

	_, err := e.ExecShell(context.Background(), "sleep 5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestExecutor_DirectPythonReadsStdin(t *testing.T) {
	e := NewExecutor(Config{Mode: ModeDirect, Timeout: 5 * time.Second})

	result, err := e.ExecPython(context.Background(), "print(1 + 1)")
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, result.Stdout, "2")
}

func TestContainerArgs_InvariantsAndBothTmpfsMounts(t *testing.T) {
	e := NewExecutor(Config{
		Mode:        ModeContainer,
		Image:       "python:3.11-alpine",
		Timeout:     5 * time.Second,
		MemoryLimit: 256 << 20,
		WorkDir:     "/workspace",
	})

	args := e.containerArgs("test-container", []string{"python3", "-"})
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "--rm")
	assert.Contains(t, joined, "--network none")
	assert.Contains(t, joined, "--pids-limit 100")
	assert.Contains(t, joined, "--ulimit nofile=1024:1024")
	assert.Contains(t, joined, "--memory 256m")
	assert.Contains(t, joined, "--memory-swap 256m")
	assert.Contains(t, joined, "--tmpfs /tmp:rw,noexec,nosuid,size=64m")
	assert.Contains(t, joined, "--tmpfs /workspace:rw,noexec,nosuid,size=64m")
	assert.Contains(t, joined, "python:3.11-alpine python3 -")
}

func TestContainerArgs_NetworkEnabledOmitsNetworkNone(t *testing.T) {
	e := NewExecutor(Config{Mode: ModeContainer, Image: "alpine", NetworkEnabled: true})

	args := e.containerArgs("test-container", []string{"true"})
	assert.NotContains(t, strings.Join(args, " "), "--network none")
}

func TestPool_BoundsConcurrency(t *testing.T) {
	p := NewPool(1)

	release, err := p.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = p.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	release2, err := p.Acquire(context.Background())
	require.NoError(t, err)
	release2()
}
