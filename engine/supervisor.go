package engine

import (
	"context"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// runState is the terminal state of a supervised run.
type runState int

const (
	// runCompleted: the process reached its own exit (any code, or a
	// signal kill not sent by the engine) before the deadline.
	runCompleted runState = iota
	// runTimedOut: the deadline elapsed (or the caller canceled) and
	// the process group was terminated by escalation.
	runTimedOut
	// runCrashed: waiting on the process failed for an engine-level
	// reason.
	runCrashed
)

// supervise races the process's natural completion against the
// deadline. On expiry, or on caller cancellation, it escalates
// termination over the whole process group: graceful signal, a short
// grace interval, then forced kill. Transitions are terminal; the same
// run is never retried.
func supervise(ctx context.Context, cmd *exec.Cmd, proc processHandle, timeout, grace time.Duration, log *zap.Logger) (runState, error) {
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	select {
	case waitErr := <-done:
		// A spawned descendant can outlive a leader that exited on its
		// own; sweep the group before reporting completion.
		if proc.alive() {
			proc.terminateForcefully()
		}
		return completionState(waitErr), waitErr
	case <-deadline.C:
		log.Warn("deadline exceeded, terminating process group", zap.Duration("timeout", timeout))
	case <-ctx.Done():
		log.Warn("execution canceled, terminating process group", zap.Error(ctx.Err()))
	}

	proc.terminateGracefully()
	select {
	case <-done:
	case <-time.After(grace):
		proc.terminateForcefully()
		// Bounded by cmd.WaitDelay once the group is gone.
		<-done
	}

	// Descendants may survive a graceful exit of the leader; sweep the
	// group so no part of the tree outlives the run.
	if proc.alive() {
		proc.terminateForcefully()
	}
	return runTimedOut, nil
}
