//go:build linux

package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitsEnforcedReported(t *testing.T) {
	eng := testEngine(t, testConfig())
	assert.True(t, eng.LimitsEnforced())
}

// TestMemoryCeilingEnforced checks that the reported capability
// matches actual enforcement: an allocation over the ceiling fails
// inside the child rather than exhausting the host.
func TestMemoryCeilingEnforced(t *testing.T) {
	requirePython(t)
	eng := testEngine(t, testConfig())

	res, err := eng.Execute(context.Background(), Request{
		Code:           "data = bytearray(512 * 1024 * 1024)\nprint('allocated')",
		Timeout:        10 * time.Second,
		MaxMemoryBytes: 64 * 1024 * 1024,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusError, res.Status)
	assert.NotContains(t, res.Stdout, "allocated")
}

// TestCPUCeilingEnforced checks that cumulative CPU time is bounded
// independently of the wall-clock deadline: a busy loop dies at the
// CPU ceiling well before the timeout.
func TestCPUCeilingEnforced(t *testing.T) {
	requirePython(t)
	eng := testEngine(t, testConfig())

	res, err := eng.Execute(context.Background(), Request{
		Code:       "while True:\n    pass",
		Timeout:    15 * time.Second,
		MaxCPUTime: time.Second,
	})
	require.NoError(t, err)

	// The kernel ends the process with a signal, so there is no exit
	// code of its own.
	assert.Equal(t, StatusError, res.Status)
	assert.Nil(t, res.ReturnCode)
	assert.Less(t, res.Duration, 10*time.Second)
}
