package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// codeFileName is the file the user code is written to inside the
// workspace before the interpreter runs it.
const codeFileName = "main.py"

// limits are the resource ceilings for one run. How they are applied
// is platform-specific; see the rlimit files.
type limits struct {
	maxMemoryBytes int64
	maxCPUTime     time.Duration
}

// processHandle abstracts platform-divergent process-group control.
// The supervisor depends only on this interface.
type processHandle interface {
	alive() bool
	terminateGracefully()
	terminateForcefully()
}

// runProcess spawns the interpreter for one run and supervises it to a
// terminal state. Elapsed time is measured from spawn to terminal
// state, independent of the outcome.
func (e *Engine) runProcess(ctx context.Context, log *zap.Logger, req Request, timeout time.Duration, ws *workspace) Result {
	cmd, err := e.buildCommand(req, ws)
	if err != nil {
		log.Error("command setup failed", zap.Error(err))
		return Result{Status: StatusFailed, Stderr: err.Error()}
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Bound the post-exit wait for output pipes held open by orphaned
	// descendants.
	cmd.WaitDelay = e.cfg.GracePeriod

	start := time.Now()
	if err := cmd.Start(); err != nil {
		log.Error("failed to spawn interpreter", zap.Error(err))
		return Result{
			Status:   StatusFailed,
			Stderr:   fmt.Sprintf("failed to start interpreter: %v", err),
			Duration: time.Since(start),
		}
	}

	proc := newProcessHandle(cmd.Process)
	applyLimits(cmd.Process.Pid, e.limitsFor(req), log)

	state, waitErr := supervise(ctx, cmd, proc, timeout, e.cfg.GracePeriod, log)
	elapsed := time.Since(start)

	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: elapsed,
	}

	switch state {
	case runTimedOut:
		res.Status = StatusTimeout
	case runCompleted:
		ps := cmd.ProcessState
		if ps != nil && ps.Exited() {
			rc := ps.ExitCode()
			res.ReturnCode = &rc
			if rc == 0 {
				res.Status = StatusSuccess
			} else {
				res.Status = StatusError
			}
		} else {
			// Killed by a signal the engine did not send, e.g. the
			// kernel enforcing a resource ceiling. The process never
			// exited on its own, so ReturnCode stays nil.
			res.Status = StatusError
		}
	default: // runCrashed
		log.Error("process wait failed", zap.Error(waitErr))
		res.Status = StatusFailed
		if res.Stderr == "" && waitErr != nil {
			res.Stderr = fmt.Sprintf("process execution failed: %v", waitErr)
		}
	}
	return res
}

// buildCommand prepares the interpreter invocation. The user code is
// delivered as an argument-vector element or a file in the workspace,
// never interpolated into a shell string.
func (e *Engine) buildCommand(req Request, ws *workspace) (*exec.Cmd, error) {
	var cmd *exec.Cmd
	if ws != nil {
		codePath := filepath.Join(ws.Dir(), codeFileName)
		if err := os.WriteFile(codePath, []byte(req.Code), filePermission); err != nil {
			return nil, fmt.Errorf("failed to write code file: %w", err)
		}
		cmd = exec.Command(e.cfg.Interpreter, codeFileName)
		cmd.Dir = ws.Dir()
	} else {
		cmd = exec.Command(e.cfg.Interpreter, "-c", req.Code)
		cmd.Dir = os.TempDir()
	}
	cmd.Env = minimalEnv(cmd.Dir)
	setProcessGroup(cmd)
	return cmd, nil
}

// minimalEnv builds the explicit allow-list environment for user code.
// The host environment is never inherited wholesale, so host secrets
// cannot leak into user code.
func minimalEnv(workdir string) []string {
	path := os.Getenv("PATH")
	if path == "" {
		path = "/usr/bin:/bin"
	}
	env := []string{
		"PATH=" + path,
		"HOME=" + workdir,
		"TMPDIR=" + workdir,
		"TMP=" + workdir,
		"TEMP=" + workdir,
		"PYTHONUNBUFFERED=1",
		"PYTHONDONTWRITEBYTECODE=1",
	}
	for _, key := range []string{"PYTHONPATH", "PYTHONHOME"} {
		if value, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+value)
		}
	}
	return env
}

// completionState maps a Wait error onto the supervisor state machine.
// ErrWaitDelay means a descendant held the output pipes past the grace
// window; the child itself exited and its process state is populated,
// so the run still completed.
func completionState(waitErr error) runState {
	if waitErr == nil || errors.Is(waitErr, exec.ErrWaitDelay) {
		return runCompleted
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return runCompleted
	}
	return runCrashed
}
