//go:build unix

package engine

import (
	"context"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExecuteTerminatesProcessTree verifies that descendants spawned
// by user code do not survive a timeout: the termination signal goes
// to the whole process group.
func TestExecuteTerminatesProcessTree(t *testing.T) {
	requirePython(t)
	eng := testEngine(t, testConfig())

	res, err := eng.Execute(context.Background(), Request{
		Code: strings.Join([]string{
			"import subprocess, sys, time",
			"child = subprocess.Popen(['sleep', '60'])",
			"print(child.pid)",
			"sys.stdout.flush()",
			"time.sleep(60)",
		}, "\n"),
		Timeout: time.Second,
	})
	require.NoError(t, err)
	require.Equal(t, StatusTimeout, res.Status)

	childPid, err := strconv.Atoi(strings.TrimSpace(res.Stdout))
	require.NoError(t, err, "child pid should have been printed before the timeout")

	// Reaping is asynchronous; give init a moment to collect the kill.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if syscall.Kill(childPid, 0) != nil {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	assert.Error(t, syscall.Kill(childPid, 0), "spawned child should not survive the run")
}

// TestExecuteCleanExitWithLingeringChild verifies that a clean exit is
// classified from the process's own return code even when a spawned
// child keeps the output pipes open past the exit.
func TestExecuteCleanExitWithLingeringChild(t *testing.T) {
	requirePython(t)
	eng := testEngine(t, testConfig())

	res, err := eng.Execute(context.Background(), Request{
		Code: strings.Join([]string{
			"import subprocess",
			"subprocess.Popen(['sleep', '60'])",
			"print('parent done')",
		}, "\n"),
		Timeout: 10 * time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, res.Status)
	require.NotNil(t, res.ReturnCode)
	assert.Equal(t, 0, *res.ReturnCode)
	assert.Contains(t, res.Stdout, "parent done")
}

// TestExecuteSignalKilledChild verifies classification of a child
// killed by a signal the engine did not send.
func TestExecuteSignalKilledChild(t *testing.T) {
	requirePython(t)
	eng := testEngine(t, testConfig())

	res, err := eng.Execute(context.Background(), Request{
		Code:    "import os, signal\nos.kill(os.getpid(), signal.SIGKILL)",
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusError, res.Status)
	assert.Nil(t, res.ReturnCode)
}
