// Package sandbox runs shell and Python payloads under a container or
// direct host mode, grounded on the teacher's Docker argument-building
// executor generalized to the two-mode, two-language contract this
// runtime needs.
package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Bbeierle12/Agent-Shell/internal/agenterr"
)

// Mode selects how code is executed.
type Mode string

const (
	ModeContainer Mode = "container"
	ModeDirect    Mode = "direct"
)

// gracePeriod is added to the configured timeout before the container is
// force-removed, giving the Docker runtime time to reap the process tree.
const gracePeriod = 5 * time.Second

// tmpfsSize is the size of each of the /tmp and /workspace tmpfs mounts in
// a container-mode run.
const tmpfsSize = "64m"

// Config describes one sandbox's static execution environment.
type Config struct {
	Mode           Mode
	Image          string
	Timeout        time.Duration
	MemoryLimit    int64 // bytes; 0 means unset
	WorkDir        string
	NetworkEnabled bool
	MaxConcurrent  int
}

// Result is the outcome of one exec_shell or exec_python call.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor runs shell and Python payloads per Config, bounding concurrent
// container runs with a Pool so host resource use stays capped.
type Executor struct {
	cfg  Config
	pool *Pool
}

// NewExecutor builds an Executor. A zero Timeout defaults to 30s.
func NewExecutor(cfg Config) *Executor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	return &Executor{cfg: cfg, pool: NewPool(cfg.MaxConcurrent)}
}

// ExecShell runs cmd under the host shell (direct mode) or a shell inside
// the configured container image (container mode).
func (e *Executor) ExecShell(ctx context.Context, cmd string) (*Result, error) {
	return e.run(ctx, []string{"bash", "-c", cmd}, "")
}

// ExecPython runs code under python3. The code is always delivered over
// stdin — as a CLI argument it would risk the host's argument-length
// limit — and the runner reads it from "-".
func (e *Executor) ExecPython(ctx context.Context, code string) (*Result, error) {
	return e.run(ctx, []string{"python3", "-"}, code)
}

func (e *Executor) run(ctx context.Context, argv []string, stdin string) (*Result, error) {
	release, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, &agenterr.SandboxError{Mode: string(e.cfg.Mode), Message: "sandbox pool: " + err.Error(), Cause: err}
	}
	defer release()

	switch e.cfg.Mode {
	case ModeDirect:
		return e.runDirect(ctx, argv, stdin)
	default:
		return e.runContainer(ctx, argv, stdin)
	}
}

func (e *Executor) runDirect(ctx context.Context, argv []string, stdin string) (*Result, error) {
	hardCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(hardCtx, argv[0], argv[1:]...)
	if e.cfg.WorkDir != "" {
		cmd.Dir = e.cfg.WorkDir
	}
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	result, runErr := runAndCollect(cmd)
	if hardCtx.Err() == context.DeadlineExceeded {
		return nil, &agenterr.SandboxError{Mode: string(e.cfg.Mode), Message: "Command timed out"}
	}
	if runErr != nil {
		return nil, &agenterr.SandboxError{Mode: string(e.cfg.Mode), Message: fmt.Sprintf("Failed to spawn: %v", runErr), Cause: runErr}
	}
	return result, nil
}

func (e *Executor) runContainer(ctx context.Context, argv []string, stdin string) (*Result, error) {
	name := "agentshell-" + uuid.NewString()

	runCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout+gracePeriod)
	defer cancel()

	args := e.containerArgs(name, argv)
	cmd := exec.CommandContext(runCtx, "docker", args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	result, runErr := runAndCollect(cmd)
	timedOut := runCtx.Err() == context.DeadlineExceeded

	reapCtx, reapCancel := context.WithTimeout(context.Background(), gracePeriod)
	_ = exec.CommandContext(reapCtx, "docker", "rm", "-f", name).Run()
	reapCancel()

	if timedOut {
		return nil, &agenterr.SandboxError{Mode: string(e.cfg.Mode), Message: "Command timed out"}
	}
	if runErr != nil {
		return nil, &agenterr.SandboxError{Mode: string(e.cfg.Mode), Message: fmt.Sprintf("Failed to spawn: %v", runErr), Cause: runErr}
	}
	return result, nil
}

// containerArgs builds the invariant docker run argument list: no network
// unless explicitly enabled, memory and process limits, a read-only root
// filesystem with writable-but-non-executable scratch space at /tmp and
// /workspace, and the image/command to run.
func (e *Executor) containerArgs(name string, argv []string) []string {
	args := []string{
		"run", "--rm", "-i",
		"--read-only",
		"--name", name,
		"--pids-limit", "100",
		"--ulimit", "nofile=1024:1024",
	}
	if !e.cfg.NetworkEnabled {
		args = append(args, "--network", "none")
	}
	if e.cfg.MemoryLimit > 0 {
		mb := e.cfg.MemoryLimit / (1 << 20)
		if mb < 1 {
			mb = 1
		}
		limit := strconv.FormatInt(mb, 10) + "m"
		args = append(args, "--memory", limit, "--memory-swap", limit)
	}
	args = append(args,
		"--tmpfs", "/tmp:rw,noexec,nosuid,size="+tmpfsSize,
		"--tmpfs", "/workspace:rw,noexec,nosuid,size="+tmpfsSize,
	)
	if e.cfg.WorkDir != "" {
		args = append(args, "-w", e.cfg.WorkDir)
	}
	args = append(args, e.cfg.Image)
	args = append(args, argv...)
	return args
}

func runAndCollect(cmd *exec.Cmd) (*Result, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{Stdout: stdout.String(), Stderr: stderr.String()}

	if err == nil {
		return result, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	return nil, err
}
