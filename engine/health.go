package engine

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// healthProbeTimeout bounds each individual health probe.
const healthProbeTimeout = 2 * time.Second

// Check is a single health probe outcome.
type Check struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Report aggregates the engine's health probes.
type Report struct {
	Healthy bool             `json:"healthy"`
	Checks  map[string]Check `json:"checks"`
}

// Health verifies the engine's environment dependencies: the
// interpreter is resolvable and runnable, and the workspace base
// directory is writable. These map to the failed-status causes an
// operator would want alerted on.
func (e *Engine) Health(ctx context.Context) Report {
	checks := make(map[string]Check)
	healthy := true

	fail := func(name, detail string) {
		checks[name] = Check{Status: "error", Detail: detail}
		healthy = false
	}
	pass := func(name, detail string) {
		checks[name] = Check{Status: "ok", Detail: detail}
	}

	path, err := exec.LookPath(e.cfg.Interpreter)
	if err != nil {
		fail("interpreter", fmt.Sprintf("%s not found in PATH", e.cfg.Interpreter))
		fail("subprocess", "cannot probe: interpreter not found")
	} else {
		pass("interpreter", path)

		probeCtx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
		out, runErr := exec.CommandContext(probeCtx, path, "--version").CombinedOutput()
		cancel()
		if runErr != nil {
			fail("subprocess", fmt.Sprintf("interpreter failed to run: %v", runErr))
		} else {
			pass("subprocess", strings.TrimSpace(string(out)))
		}
	}

	ws, err := newWorkspace(e.cfg.WorkspaceDir, "health")
	if err != nil {
		fail("workspace", err.Error())
	} else {
		ws.destroy(e.logger)
		pass("workspace", "workspace directory is writable")
	}

	return Report{Healthy: healthy, Checks: checks}
}
